package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"nexusq/internal/constants"
	"nexusq/pkg/metrics"
)

const leadColumns = `id, client_id, first_name, last_name, name, email, phone, address, source,
	service, urgency, status, score, created_at, last_contacted_at`

type Repository interface {
	Create(ctx context.Context, q sqlx.QueryerContext, req CreateLeadRequest) (*Lead, error)
	List(ctx context.Context, limit int) ([]Lead, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &PostgresRepository{db: db}
}

// Create inserts the lead through q and returns the stored row.
func (r *PostgresRepository) Create(ctx context.Context, q sqlx.QueryerContext, req CreateLeadRequest) (lead *Lead, err error) {
	start := time.Now()
	defer func() { metrics.TrackQuery(constants.TableLeads, "insert", start, err) }()

	query := `
		INSERT INTO leads (first_name, last_name, email, phone, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + leadColumns

	var row Lead
	if err = sqlx.GetContext(ctx, q, &row, query,
		req.FirstName, req.LastName, req.Email, req.Phone, req.Source,
	); err != nil {
		return nil, fmt.Errorf("failed to insert lead: %w", err)
	}

	return &row, nil
}

// List returns the most recent leads first.
func (r *PostgresRepository) List(ctx context.Context, limit int) (rows []Lead, err error) {
	start := time.Now()
	defer func() { metrics.TrackQuery(constants.TableLeads, "select", start, err) }()

	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC LIMIT $1`

	rows = []Lead{}
	if err = r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	return rows, nil
}
