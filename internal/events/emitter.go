package events

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nexusq/internal/constants"
	"nexusq/internal/logger"
	pkgerrors "nexusq/pkg/errors"
	"nexusq/pkg/logging"
	"nexusq/pkg/metrics"
)

// Dispatcher forwards a committed event to automation. Implementations must not block
// the caller and must never report failures back.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

type Service interface {
	Emit(ctx context.Context, req EmitRequest) (*Event, error)
	Record(ctx context.Context, q sqlx.QueryerContext, req EmitRequest) (*Event, error)
	Dispatch(ctx context.Context, ev *Event)
	ListEvents(ctx context.Context, filter ListFilter) ([]Event, error)
}

type Emitter struct {
	db         *sqlx.DB
	repo       Repository
	dispatcher Dispatcher
	logger     logger.Logger
}

type EmitterOption func(*Emitter)

func WithDispatcher(d Dispatcher) EmitterOption {
	return func(e *Emitter) {
		e.dispatcher = d
	}
}

func NewEmitter(db *sqlx.DB, repo Repository, log logger.Logger, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		db:     db,
		repo:   repo,
		logger: log,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Emit records the event and then hands it to the dispatcher without waiting.
// Only the insert can fail the call.
func (e *Emitter) Emit(ctx context.Context, req EmitRequest) (*Event, error) {
	ev, err := e.Record(ctx, e.db, req)
	if err != nil {
		return nil, err
	}

	e.Dispatch(ctx, ev)
	return ev, nil
}

// Record inserts the event through q without notifying anyone. Use it inside a
// transaction and call Dispatch after commit.
func (e *Emitter) Record(ctx context.Context, q sqlx.QueryerContext, req EmitRequest) (*Event, error) {
	if req.EntityType == "" || req.EventType == "" {
		return nil, pkgerrors.ErrValidation.WithDetail("message", "entity_type and event_type are required")
	}

	ev, err := e.repo.Insert(ctx, q, req)
	if err != nil {
		metrics.EventsEmittedTotal.WithLabelValues(req.EventType, "error").Inc()
		e.logger.ErrorwCtx(ctx, "Failed to emit event",
			"error", err,
			"entity_type", req.EntityType,
			"entity_id", req.EntityID,
			"event_type", req.EventType,
		)
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.EventsEmittedTotal.WithLabelValues(ev.EventType, "success").Inc()
	return ev, nil
}

// Dispatch passes ev to the dispatcher on a context detached from the request.
func (e *Emitter) Dispatch(ctx context.Context, ev *Event) {
	if e.dispatcher == nil || ev == nil {
		return
	}

	dctx := logging.WithEventID(logging.Detach(ctx), ev.ID)
	e.dispatcher.Dispatch(dctx, *ev)
}

func (e *Emitter) ListEvents(ctx context.Context, filter ListFilter) ([]Event, error) {
	filter.Limit = clampLimit(filter.Limit, constants.DefaultLimit, constants.MaxLimit)

	rows, err := e.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rows, nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
