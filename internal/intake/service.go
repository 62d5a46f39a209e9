package intake

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/logger"
	pkgerrors "nexusq/pkg/errors"
	"nexusq/pkg/metrics"
	"nexusq/pkg/tracing"
	"nexusq/pkg/validator"
)

type Service interface {
	Submit(ctx context.Context, form Form) (*SubmitResult, error)
	Advance(ctx context.Context, req StepRequest) (*StepResult, error)
}

type Sender interface {
	Send(ctx context.Context, payload Payload) []TargetResult
}

type service struct {
	sender  Sender
	guard   *Guard
	source  string
	country string
	newRef  func() string
	logger  logger.Logger
}

type Option func(*service)

// WithGuard enables duplicate-submission protection.
func WithGuard(g *Guard) Option {
	return func(s *service) {
		s.guard = g
	}
}

func NewService(sender Sender, cfg config.IntakeConfig, log logger.Logger, opts ...Option) Service {
	s := &service{
		sender:  sender,
		source:  cfg.Source,
		country: cfg.DefaultCountry,
		newRef:  NewReferenceID,
		logger:  log,
	}
	if s.source == "" {
		s.source = constants.IntakeSource
	}
	if s.country == "" {
		s.country = constants.DefaultCountry
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewReferenceID returns an id of the form QX-XXXX-XXXX.
func NewReferenceID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return constants.ReferencePrefix + "-" + id[:4] + "-" + id[4:8]
}

// Validate checks a submission in form order and returns the normalised phone.
func (s *service) Validate(form Form) (string, error) {
	country := form.Country
	if country == "" {
		country = s.country
	}
	phone := NormalizePhone(form.Phone, country)

	switch {
	case !KnownService(form.Service):
		return "", fieldError("service", "Please select a service.")
	case strings.TrimSpace(form.Address) == "":
		return "", fieldError("address", "Please enter the service address.")
	case strings.TrimSpace(form.Name) == "":
		return "", fieldError("name", "Please enter your full name.")
	case strings.TrimSpace(form.Phone) == "":
		return "", fieldError("phone", "Please enter your phone number.")
	case !strings.HasPrefix(phone, "+"):
		return "", fieldError("phone", "Please enter a valid phone number (e.g. +44771840862).")
	}

	if err := validator.Get().Struct(form); err != nil {
		fields := validator.Fields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		return "", pkgerrors.ErrValidation.WithCause(err).WithDetails(details)
	}

	return phone, nil
}

// Submit posts the request to every intake webhook. It succeeds when at least one
// target answers 2xx.
func (s *service) Submit(ctx context.Context, form Form) (*SubmitResult, error) {
	ctx, span := tracing.GetTracer("intake").Start(ctx, "intake.submit")
	defer span.End()

	phone, err := s.Validate(form)
	if err != nil {
		metrics.IntakeSubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	payload := Payload{
		Source:      s.source,
		Service:     form.Service,
		Urgency:     form.Urgency,
		Address:     form.Address,
		Name:        form.Name,
		Phone:       phone,
		PhoneRaw:    form.Phone,
		ReferenceID: s.newRef(),
	}
	if payload.Urgency == "" {
		payload.Urgency = constants.DefaultUrgency
	}
	if form.Email != "" {
		email := form.Email
		payload.Email = &email
	}

	var claim string
	if s.guard != nil {
		key, fresh, err := s.guard.Claim(ctx, payload)
		if err != nil {
			metrics.IntakeSubmissionsTotal.WithLabelValues("error").Inc()
			return nil, pkgerrors.ErrServiceUnavailable.WithCause(err)
		}
		if !fresh {
			metrics.IntakeSubmissionsTotal.WithLabelValues("duplicate").Inc()
			return nil, pkgerrors.ErrConflict.WithMessage("This request has already been submitted.")
		}
		claim = key
	}

	results := s.sender.Send(ctx, payload)
	acked := 0
	for _, r := range results {
		if r.OK() {
			acked++
		}
	}

	if acked == 0 {
		if s.guard != nil {
			s.guard.Release(ctx, claim)
		}
		metrics.IntakeSubmissionsTotal.WithLabelValues("failed").Inc()
		s.logger.ErrorwCtx(ctx, "Intake submission failed on every target",
			"reference_id", payload.ReferenceID,
			"targets", len(results),
		)
		return nil, pkgerrors.ErrBadGateway.WithMessage("Something went wrong. Please try again.")
	}

	metrics.IntakeSubmissionsTotal.WithLabelValues("success").Inc()
	s.logger.InfowCtx(ctx, "Intake submitted",
		"reference_id", payload.ReferenceID,
		"service", payload.Service,
		"acknowledged", acked,
	)

	return &SubmitResult{
		ReferenceID:  payload.ReferenceID,
		Step:         StepSuccess,
		Progress:     StepSuccess.Progress(),
		Acknowledged: acked,
	}, nil
}

func (s *service) Advance(_ context.Context, req StepRequest) (*StepResult, error) {
	if err := validator.Validate(req); err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err)
	}

	var (
		next Step
		err  error
	)
	if req.Action == "back" {
		next, err = Back(req.Step)
	} else {
		next, err = Next(req.Step, req.Form)
	}
	if err != nil {
		return nil, err
	}

	return &StepResult{Step: next, Progress: next.Progress()}, nil
}
