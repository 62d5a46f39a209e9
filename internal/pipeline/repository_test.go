package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_List(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	cols := []string{"id", "client_id", "lead_id", "stage", "value", "probability", "updated_at"}
	mock.ExpectQuery(`SELECT .+ FROM pipeline\s+ORDER BY updated_at DESC NULLS LAST, id DESC\s+LIMIT \$1`).
		WithArgs(2000).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p1", nil, "lead-1", "quoted", 1200.5, 0.4, time.Now()).
			AddRow("p2", nil, nil, "new", nil, nil, nil))

	rows, err := NewRepository(sqlx.NewDb(mockDB, "sqlmock")).List(context.Background(), 2000)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p2", rows[0].ID)
	assert.Nil(t, rows[0].LeadID)
	assert.Equal(t, 1200.5, *rows[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListKeepsNewestRowsUnderLimit(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "client_id", "lead_id", "stage", "value", "probability", "updated_at"}
	// The store applies the limit to the newest rows and returns them newest first.
	mock.ExpectQuery(`SELECT .+ FROM pipeline`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("p3", nil, "lead-1", "booked", 900.0, nil, base.Add(2*time.Hour)).
			AddRow("p2", nil, "lead-1", "quoted", 500.0, nil, base.Add(time.Hour)))

	rows, err := NewRepository(sqlx.NewDb(mockDB, "sqlmock")).List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"p2", "p3"}, []string{rows[0].ID, rows[1].ID})

	latest := LatestByLead(rows)
	assert.Equal(t, "booked", *latest["lead-1"].Stage)
	assert.Equal(t, 900.0, *latest["lead-1"].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}
