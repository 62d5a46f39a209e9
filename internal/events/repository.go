package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"nexusq/internal/constants"
	"nexusq/pkg/metrics"
)

const eventColumns = `id, entity_type, entity_id, event_type, payload, created_at`

const leadEventColumns = `id, client_id, lead_id, event_type, payload_json, created_at`

type Repository interface {
	Insert(ctx context.Context, q sqlx.QueryerContext, req EmitRequest) (*Event, error)
	List(ctx context.Context, filter ListFilter) ([]Event, error)
	ListLeadEvents(ctx context.Context, limit int) ([]LeadEvent, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &PostgresRepository{db: db}
}

// Insert writes one event row through q, which may be the pool or an open transaction.
func (r *PostgresRepository) Insert(ctx context.Context, q sqlx.QueryerContext, req EmitRequest) (ev *Event, err error) {
	start := time.Now()
	defer func() { metrics.TrackQuery(constants.TableEvents, "insert", start, err) }()

	payload := Payload(req.Payload)
	if payload == nil {
		payload = Payload{}
	}

	query := `
		INSERT INTO events (entity_type, entity_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + eventColumns

	var row Event
	if err = sqlx.GetContext(ctx, q, &row, query, req.EntityType, req.EntityID, req.EventType, payload); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	return &row, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (rows []Event, err error) {
	start := time.Now()
	defer func() { metrics.TrackQuery(constants.TableEvents, "select", start, err) }()

	var (
		conds []string
		args  []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("entity_type", filter.EntityType)
	add("entity_id", filter.EntityID)
	add("event_type", filter.EventType)

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows = []Event{}
	if err = r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return rows, nil
}

func (r *PostgresRepository) ListLeadEvents(ctx context.Context, limit int) (rows []LeadEvent, err error) {
	start := time.Now()
	defer func() { metrics.TrackQuery(constants.TableLeadEvents, "select", start, err) }()

	query := `SELECT ` + leadEventColumns + ` FROM lead_events ORDER BY created_at DESC LIMIT $1`

	rows = []LeadEvent{}
	if err = r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list lead events: %w", err)
	}

	return rows, nil
}
