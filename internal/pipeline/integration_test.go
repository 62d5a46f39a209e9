//go:build integration

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/leads"
	"nexusq/internal/testutil"
)

func TestIntegration_RepositoryListAndBoard(t *testing.T) {
	infra := testutil.Postgres(t)
	ctx := context.Background()

	var leadID string
	require.NoError(t, infra.DB.GetContext(ctx, &leadID, `
		INSERT INTO leads (name, service, status) VALUES ('Tariro', 'solar', 'new') RETURNING id`))

	_, err := infra.DB.ExecContext(ctx, `
		INSERT INTO pipeline (lead_id, stage, value, probability, updated_at) VALUES
			($1, 'new', 100.50, 0.20, NOW() - INTERVAL '1 hour'),
			($1, 'quoted', 2500, 0.60, NOW())`, leadID)
	require.NoError(t, err)

	rows, err := NewRepository(infra.DB).List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", *rows[0].Stage)
	assert.InDelta(t, 100.50, *rows[0].Value, 0.001)
	assert.Equal(t, "quoted", *rows[1].Stage)

	newest, err := NewRepository(infra.DB).List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "quoted", *newest[0].Stage)

	leadRows, err := leads.NewRepository(infra.DB).List(ctx, 10)
	require.NoError(t, err)

	board := BuildBoard(leadRows, rows)
	for _, col := range board.Columns {
		if col.Stage == StageQuoted {
			require.Len(t, col.Cards, 1)
			assert.Equal(t, "Tariro", col.Cards[0].Name)
			assert.Equal(t, "SOLAR", col.Cards[0].Company)
			assert.InDelta(t, 2500, col.Cards[0].Value, 0.001)
		} else {
			assert.Empty(t, col.Cards, col.Stage)
		}
	}
}
