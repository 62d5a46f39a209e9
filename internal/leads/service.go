package leads

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"nexusq/internal/constants"
	"nexusq/internal/events"
	"nexusq/internal/logger"
	pkgerrors "nexusq/pkg/errors"
	"nexusq/pkg/metrics"
)

type Service interface {
	CreateLead(ctx context.Context, req CreateLeadRequest) (*Lead, error)
	ListLeads(ctx context.Context, limit int) ([]Lead, error)
}

// TxBeginner opens the transaction that covers the lead and its event row.
type TxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// EventRecorder is the subset of the event service the lead flow needs.
type EventRecorder interface {
	Record(ctx context.Context, q sqlx.QueryerContext, req events.EmitRequest) (*events.Event, error)
	Dispatch(ctx context.Context, ev *events.Event)
}

type service struct {
	db     TxBeginner
	repo   Repository
	events EventRecorder
	logger logger.Logger
}

func NewService(db TxBeginner, repo Repository, recorder EventRecorder, log logger.Logger) Service {
	return &service{
		db:     db,
		repo:   repo,
		events: recorder,
		logger: log,
	}
}

// CreateLead stores the lead and its lead_created event in one transaction. The
// automation notification is dispatched only after commit and never affects the result.
func (s *service) CreateLead(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	lead, ev, err := s.createInTx(ctx, req)
	if err != nil {
		metrics.LeadsCreatedTotal.WithLabelValues("error").Inc()
		s.logger.ErrorwCtx(ctx, "Failed to create lead", "error", err, "source", req.Source)
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.LeadsCreatedTotal.WithLabelValues("success").Inc()
	s.logger.InfowCtx(ctx, "Lead created", "lead_id", lead.ID, "source", req.Source)

	s.events.Dispatch(ctx, ev)
	return lead, nil
}

func (s *service) createInTx(ctx context.Context, req CreateLeadRequest) (*Lead, *events.Event, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	lead, err := s.repo.Create(ctx, tx, req)
	if err != nil {
		return nil, nil, err
	}

	ev, err := s.events.Record(ctx, tx, events.EmitRequest{
		EntityType: constants.EntityTypeLead,
		EntityID:   lead.ID,
		EventType:  constants.EventTypeLeadCreated,
		Payload:    map[string]interface{}{"source": req.Source},
	})
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	return lead, ev, nil
}

func (s *service) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = constants.DefaultLeadLimit
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}

	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rows, nil
}
