package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"nexusq/pkg/logging"
)

func observed() (*SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &SugaredLogger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		l, err := New(level, "json")
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}

	_, err := New("loud", "json")
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New("info", "console")
	assert.NoError(t, err)
}

func TestContextFields(t *testing.T) {
	l, logs := observed()
	l.SetServiceName("nexusq")

	ctx := logging.WithRequestID(context.Background(), "req-1")
	l.InfowCtx(ctx, "hello", "k", "v")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "nexusq", fields["service_name"])
	assert.Equal(t, "v", fields["k"])
}

func TestNamedAndWithKeepServiceName(t *testing.T) {
	l, logs := observed()
	l.SetServiceName("nexusq")

	child := l.Named("realtime").With("channel", "nexusq_changes")
	child.WarnwCtx(context.Background(), "disconnected")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "realtime", entry.LoggerName)
	assert.Equal(t, "nexusq_changes", entry.ContextMap()["channel"])
	assert.Equal(t, "nexusq", entry.ContextMap()["service_name"])
}
