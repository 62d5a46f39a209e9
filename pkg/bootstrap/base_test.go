package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/config"
	"nexusq/internal/logger"
	"nexusq/pkg/models"
)

type stubProducer struct {
	closeErr error
	closed   bool
}

func (p *stubProducer) Publish(context.Context, string, *models.EventEnvelope) error {
	return nil
}

func (p *stubProducer) Close() error {
	p.closed = true
	return p.closeErr
}

func TestInitBroker_Disabled(t *testing.T) {
	b := NewBase(&config.Config{}, logger.NopLogger())
	require.NoError(t, b.InitBroker())
	assert.Nil(t, b.Producer)
}

func TestInitBroker_UnknownType(t *testing.T) {
	b := NewBase(&config.Config{Broker: config.BrokerConfig{Type: "amqp"}}, logger.NopLogger())
	assert.Error(t, b.InitBroker())
}

func TestShutdown_CollectsErrors(t *testing.T) {
	p := &stubProducer{closeErr: errors.New("flush failed")}
	b := NewBase(&config.Config{}, logger.NopLogger())
	b.Producer = p

	called := false
	err := b.Shutdown(context.Background(), func(ctx context.Context) []error {
		called = true
		return nil
	})

	assert.True(t, called)
	assert.True(t, p.closed)
	assert.ErrorContains(t, err, "flush failed")
}

func TestInitRedis_NotConfigured(t *testing.T) {
	dc := NewDatabaseConnector(&config.Config{}, logger.NopLogger())
	client, err := dc.InitRedis(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestShutdown_ComponentsBeforeBroker(t *testing.T) {
	p := &stubProducer{}
	b := NewBase(&config.Config{}, logger.NopLogger())
	b.Producer = p

	drainErr := errors.New("drain timed out")
	var producerClosedDuringDrain bool
	err := b.Shutdown(context.Background(), func(ctx context.Context) []error {
		producerClosedDuringDrain = p.closed
		return []error{drainErr, nil}
	})

	assert.False(t, producerClosedDuringDrain)
	assert.True(t, p.closed)
	assert.ErrorIs(t, err, drainErr)
}

func TestShutdownBroker_Idempotent(t *testing.T) {
	p := &stubProducer{}
	b := NewBase(&config.Config{}, logger.NopLogger())
	b.Producer = p

	require.NoError(t, b.ShutdownBroker())
	require.NoError(t, b.ShutdownBroker())
	assert.True(t, p.closed)
	assert.Nil(t, b.Producer)
}
