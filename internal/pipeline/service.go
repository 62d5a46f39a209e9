package pipeline

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"nexusq/internal/constants"
	"nexusq/internal/leads"
	"nexusq/internal/logger"
	pkgerrors "nexusq/pkg/errors"
	"nexusq/pkg/metrics"
	"nexusq/pkg/validator"
)

type Service interface {
	Board(ctx context.Context) (*Board, error)
	Rows(ctx context.Context, limit int) ([]Row, error)
	UpdateStage(ctx context.Context, req StageUpdateRequest) error
}

// LeadLister is the subset of the lead repository the board needs.
type LeadLister interface {
	List(ctx context.Context, limit int) ([]leads.Lead, error)
}

type service struct {
	repo     Repository
	leads    LeadLister
	workflow WorkflowClient
	logger   logger.Logger
}

func NewService(repo Repository, leadLister LeadLister, workflow WorkflowClient, log logger.Logger) Service {
	return &service{
		repo:     repo,
		leads:    leadLister,
		workflow: workflow,
		logger:   log,
	}
}

func (s *service) Board(ctx context.Context) (*Board, error) {
	var (
		leadRows []leads.Lead
		rows     []Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leadRows, err = s.leads.List(gctx, constants.DefaultLeadLimit)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, constants.DefaultPipelineLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	return BuildBoard(leadRows, rows), nil
}

func (s *service) Rows(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = constants.DefaultPipelineLimit
	}
	if limit > constants.MaxSnapshotLimit {
		limit = constants.MaxSnapshotLimit
	}

	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rows, nil
}

// UpdateStage forwards the change to the workflow. Nothing is written locally; the
// board picks the change up once the workflow updates the pipeline table.
func (s *service) UpdateStage(ctx context.Context, req StageUpdateRequest) error {
	req.LeadID = strings.TrimSpace(req.LeadID)
	req.Stage = strings.ToLower(strings.TrimSpace(req.Stage))

	if err := validator.Validate(req); err != nil {
		fields := validator.Fields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		return pkgerrors.ErrValidation.WithCause(err).WithDetails(details)
	}

	update := StageUpdate{
		LeadID: req.LeadID,
		Stage:  Stage(req.Stage),
		Status: Stage(req.Stage),
	}
	if req.Value != nil {
		v := float64(*req.Value)
		update.Value = &v
	}

	if err := s.workflow.UpdateStage(ctx, update); err != nil {
		metrics.PipelineUpdatesTotal.WithLabelValues("error").Inc()
		s.logger.WarnwCtx(ctx, "Pipeline stage update failed",
			"lead_id", update.LeadID,
			"stage", update.Stage,
			"error", err,
		)
		return err
	}

	metrics.PipelineUpdatesTotal.WithLabelValues("success").Inc()
	s.logger.InfowCtx(ctx, "Pipeline stage updated", "lead_id", update.LeadID, "stage", update.Stage)
	return nil
}
