package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/logger"
)

const pingInterval = 90 * time.Second

// PQSource listens on a Postgres NOTIFY channel fed by the change triggers. Each
// payload is a JSON object {"table": ..., "op": ...}.
type PQSource struct {
	dsn     string
	channel string
	minWait time.Duration
	maxWait time.Duration
	logger  logger.Logger
}

func NewPQSource(dsn string, cfg config.RealtimeConfig, log logger.Logger) *PQSource {
	channel := cfg.Channel
	if channel == "" {
		channel = constants.ChangeChannel
	}
	minWait, maxWait := cfg.MinReconnectInterval, cfg.MaxReconnectInterval
	if minWait <= 0 {
		minWait = 10 * time.Second
	}
	if maxWait < minWait {
		maxWait = time.Minute
	}

	return &PQSource{
		dsn:     dsn,
		channel: channel,
		minWait: minWait,
		maxWait: maxWait,
		logger:  log.Named("realtime").With("channel", channel),
	}
}

func (s *PQSource) Run(ctx context.Context, sink func(Change)) error {
	listener := pq.NewListener(s.dsn, s.minWait, s.maxWait, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			s.logger.Warnw("Change listener connection attempt failed", "error", err)
		case pq.ListenerEventDisconnected:
			s.logger.Warnw("Change listener disconnected", "error", err)
		case pq.ListenerEventReconnected:
			s.logger.Infow("Change listener reconnected")
		}
	})
	defer listener.Close()

	if err := listener.Listen(s.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.channel, err)
	}
	s.logger.Infow("Listening for changes")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				sink(Change{Op: OpResync})
				continue
			}
			change, err := ParseChange(n.Extra)
			if err != nil {
				s.logger.Warnw("Ignoring malformed change notification", "payload", n.Extra, "error", err)
				continue
			}
			sink(change)
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				s.logger.Warnw("Change listener ping failed", "error", err)
			}
		}
	}
}

func ParseChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, err
	}
	if c.Table == "" {
		return Change{}, fmt.Errorf("change notification without table")
	}
	return c, nil
}
