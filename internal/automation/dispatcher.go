package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sony/gobreaker"

	"nexusq/internal/broker"
	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/events"
	"nexusq/internal/logger"
	"nexusq/pkg/cel"
	"nexusq/pkg/logging"
	"nexusq/pkg/metrics"
	"nexusq/pkg/models"
	"nexusq/pkg/tracing"
)

type task struct {
	ctx   context.Context
	event events.Event
}

// Dispatcher runs automation notifications on a bounded worker pool. Submission never
// blocks: when every worker is busy the notification is dropped and logged.
type Dispatcher struct {
	pool     *ants.PoolWithFunc
	notifier Notifier
	filter   *cel.Filter
	producer broker.Producer
	topic    string
	timeout  time.Duration
	logger   logger.Logger
}

var _ events.Dispatcher = (*Dispatcher)(nil)

type Option func(*Dispatcher)

// WithFilter limits webhook notifications to events matching filter.
func WithFilter(filter *cel.Filter) Option {
	return func(d *Dispatcher) {
		d.filter = filter
	}
}

// WithEventSink also publishes every event to topic on producer.
func WithEventSink(producer broker.Producer, topic string) Option {
	return func(d *Dispatcher) {
		if producer != nil && topic != "" {
			d.producer = producer
			d.topic = topic
		}
	}
}

func NewDispatcher(cfg config.AutomationConfig, notifier Notifier, log logger.Logger, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		notifier: notifier,
		logger:   log.Named("automation"),
	}
	if cfg.TimeoutSeconds > 0 {
		d.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	for _, opt := range opts {
		opt(d)
	}

	size := cfg.PoolSize
	if size <= 0 {
		size = constants.DefaultAutomationPoolSize
	}

	pool, err := ants.NewPoolWithFunc(size, func(i interface{}) {
		t, ok := i.(task)
		if !ok {
			d.logger.Errorw("Invalid automation task", "type", fmt.Sprintf("%T", i))
			return
		}
		d.process(t)
	},
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(time.Minute),
		ants.WithPanicHandler(func(p interface{}) {
			metrics.AutomationNotificationsTotal.WithLabelValues("panic").Inc()
			d.logger.Errorw("Panic recovered in automation worker", "panic", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create automation pool: %w", err)
	}
	d.pool = pool

	d.logger.Infow("Automation dispatcher initialized",
		"pool_size", size,
		"filter", d.filterExpression(),
		"event_topic", d.topic,
	)
	return d, nil
}

// NewFilter compiles the configured filter expression. An empty expression yields nil.
func NewFilter(expression string) (*cel.Filter, error) {
	if expression == "" {
		return nil, nil
	}

	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}
	return evaluator.CompileFilter(expression)
}

// Dispatch queues ev and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, ev events.Event) {
	err := d.pool.Invoke(task{ctx: ctx, event: ev})
	if err == nil {
		return
	}

	metrics.AutomationNotificationsTotal.WithLabelValues("dropped").Inc()
	if errors.Is(err, ants.ErrPoolOverload) {
		d.logger.WarnwCtx(ctx, "Automation pool overloaded, notification dropped",
			"event_id", ev.ID,
			"event_type", ev.EventType,
		)
		return
	}
	d.logger.ErrorwCtx(ctx, "Failed to submit automation task",
		"error", err,
		"event_id", ev.ID,
	)
}

func (d *Dispatcher) process(t task) {
	metrics.AutomationPoolRunning.Inc()
	defer metrics.AutomationPoolRunning.Dec()

	ctx := t.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	envelope := toEnvelope(ctx, t.event)

	if d.producer != nil {
		if err := d.producer.Publish(ctx, d.topic, envelope); err != nil {
			d.logger.WarnwCtx(ctx, "Failed to publish event to broker",
				"error", err,
				"topic", d.topic,
				"event_id", t.event.ID,
			)
		}
	}

	if d.filter != nil {
		matched, err := d.filter.Match(ctx, envelope)
		if err != nil {
			metrics.AutomationNotificationsTotal.WithLabelValues("filter_error").Inc()
			d.logger.WarnwCtx(ctx, "Automation filter evaluation failed",
				"error", err,
				"event_id", t.event.ID,
			)
			return
		}
		if !matched {
			metrics.AutomationNotificationsTotal.WithLabelValues("filtered").Inc()
			return
		}
	}

	if !d.notifierEnabled() {
		return
	}

	start := time.Now()
	err := d.notifier.Notify(ctx, t.event)
	status := notificationStatus(err)
	metrics.ObserveAutomationNotification(time.Since(start), status)

	if err != nil {
		d.logger.WarnwCtx(ctx, "Automation notification failed",
			"error", err,
			"status", status,
			"event_id", t.event.ID,
			"event_type", t.event.EventType,
		)
		return
	}

	d.logger.DebugwCtx(ctx, "Automation notified",
		"event_id", t.event.ID,
		"event_type", t.event.EventType,
	)
}

func notificationStatus(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport_error"
	}
}

func toEnvelope(ctx context.Context, ev events.Event) *models.EventEnvelope {
	return models.NewEventEnvelopeBuilder().
		WithID(ev.ID).
		WithSource(constants.ServiceName).
		WithTimestamp(ev.CreatedAt).
		WithEntity(ev.EntityType, ev.EntityID).
		WithEventType(ev.EventType).
		WithPayload(ev.Payload).
		WithTraceID(tracing.TraceID(ctx)).
		WithRequestID(logging.GetRequestID(ctx)).
		Build()
}

func (d *Dispatcher) notifierEnabled() bool {
	if d.notifier == nil {
		return false
	}
	if n, ok := d.notifier.(interface{ Enabled() bool }); ok {
		return n.Enabled()
	}
	return true
}

func (d *Dispatcher) filterExpression() string {
	if d.filter == nil {
		return ""
	}
	return d.filter.Expression()
}

func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Close waits up to timeout for in-flight notifications.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
