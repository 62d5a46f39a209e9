package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nexusq/internal/broker"
	"nexusq/internal/config"
	"nexusq/internal/logger"
)

// Base holds what every NexusQ process needs before its own components start.
type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the event producer. Producer stays nil when no broker is configured.
func (b *Base) InitBroker() error {
	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	if producer == nil {
		b.Logger.Info("No broker configured, event sink disabled")
		return nil
	}

	b.Logger.Infow("Event sink enabled",
		"broker", b.Config.Broker.Type,
		"topic", b.Config.Broker.Kafka.EventsTopic,
	)
	b.Producer = producer
	return nil
}

// ShutdownBroker closes the producer once; later calls are no-ops.
func (b *Base) ShutdownBroker() error {
	if b.Producer == nil {
		return nil
	}
	p := b.Producer
	b.Producer = nil
	if err := p.Close(); err != nil {
		return fmt.Errorf("producer close error: %w", err)
	}
	return nil
}

// Shutdown runs the component teardown first and closes the broker last, so events
// emitted while draining still reach it. All failures are joined into the result.
func (b *Base) Shutdown(ctx context.Context, components func(ctx context.Context) []error) error {
	start := time.Now()
	b.Logger.Info("Shutting down application...")

	var errs []error
	if components != nil {
		errs = append(errs, components(ctx)...)
	}
	errs = append(errs, b.ShutdownBroker())

	if err := errors.Join(errs...); err != nil {
		b.Logger.Errorw("Shutdown finished with errors", "error", err, "duration", time.Since(start))
		return fmt.Errorf("shutdown errors: %w", err)
	}

	b.Logger.Infow("Application exited successfully", "duration", time.Since(start))
	return nil
}
