package broker

import (
	"context"
	"fmt"

	"nexusq/internal/config"
	"nexusq/internal/logger"
	"nexusq/pkg/models"
)

// Producer publishes lead events to an external bus.
type Producer interface {
	Publish(ctx context.Context, topic string, msg *models.EventEnvelope) error
	Close() error
}

// NewProducer returns nil, nil when no broker is configured; callers treat a nil Producer
// as "publishing disabled".
func NewProducer(cfg config.BrokerConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case "kafka":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, fmt.Errorf("broker type kafka requires at least one broker address")
		}
		return NewKafkaProducer(cfg.Kafka, log.Named("broker")), nil
	default:
		return nil, fmt.Errorf("unknown broker type: %s", cfg.Type)
	}
}
