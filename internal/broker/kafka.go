package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/logger"
	"nexusq/pkg/metrics"
	"nexusq/pkg/models"
	"nexusq/pkg/tracing"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer messageWriter
	logger logger.Logger
}

func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           constants.KafkaBatchTimeout,
		WriteTimeout:           constants.KafkaWriteTimeout,
		AllowAutoTopicCreation: true,
		Async:                  false,
	}
	return &KafkaProducer{writer: w, logger: log}
}

// Publish writes msg keyed by entity id so events for one entity stay ordered.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, msg *models.EventEnvelope) error {
	if err := models.ValidateEventEnvelope(msg); err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	headers := tracing.InjectTraceContext(ctx, []kafka.Header{
		{Key: "event_type", Value: []byte(msg.EventType)},
	})

	key := msg.EntityID
	if key == "" {
		key = msg.ID
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(key),
			Value:   body,
			Headers: headers,
			Time:    msg.Timestamp,
		},
	)
	metrics.ObserveKafkaWriteDuration(topic, time.Since(start))

	if err != nil {
		metrics.IncKafkaMessagesWritten(topic, "error")
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten(topic, "success")
	p.logger.DebugwCtx(ctx, "Event published",
		"topic", topic,
		"event_id", msg.ID,
		"event_type", msg.EventType,
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
