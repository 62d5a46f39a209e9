package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"nexusq/internal/constants"
	"nexusq/pkg/metrics"
)

type Repository interface {
	List(ctx context.Context, limit int) ([]Row, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &PostgresRepository{db: db}
}

// List returns the newest limit rows, oldest first. Ties on updated_at resolve by id so
// the later row in the result is the one LatestByLead keeps.
func (r *PostgresRepository) List(ctx context.Context, limit int) (rows []Row, err error) {
	start := time.Now()
	defer func() { metrics.TrackQuery(constants.TablePipeline, "select", start, err) }()

	query := `
		SELECT id, client_id, lead_id, stage, value::float8 AS value,
			probability::float8 AS probability, updated_at
		FROM pipeline
		ORDER BY updated_at DESC NULLS LAST, id DESC
		LIMIT $1`

	rows = []Row{}
	if err = r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list pipeline rows: %w", err)
	}

	slices.Reverse(rows)
	return rows, nil
}
