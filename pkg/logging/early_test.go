package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEarlyLog(t *testing.T) {
	var out, errOut bytes.Buffer
	exitCode := -1
	l := &EarlyLog{
		out:    &out,
		errOut: &errOut,
		now:    func() time.Time { return time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC) },
		exit:   func(code int) { exitCode = code },
	}

	l.Info("Migrations applied: %s", "up")
	l.Error("Failed to load config: %v", "missing file")
	l.Fatal("bye")

	assert.Equal(t, "2024-05-01T08:30:00Z INFO Migrations applied: up\n", out.String())
	assert.Equal(t,
		"2024-05-01T08:30:00Z ERROR Failed to load config: missing file\n"+
			"2024-05-01T08:30:00Z FATAL bye\n",
		errOut.String())
	assert.Equal(t, 1, exitCode)
}
