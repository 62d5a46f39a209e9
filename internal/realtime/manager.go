package realtime

import (
	"context"
	"sync"

	"nexusq/internal/logger"
	"nexusq/pkg/metrics"
)

// OpResync is delivered to every subscriber after the change source reconnects, since
// notifications sent while disconnected are lost.
const OpResync = "RESYNC"

type Change struct {
	Table string `json:"table"`
	Op    string `json:"op"`
}

// Source produces changes until ctx is cancelled.
type Source interface {
	Run(ctx context.Context, sink func(Change)) error
}

type Subscription struct {
	ID     uint64
	C      <-chan Change
	ch     chan Change
	tables map[string]struct{}
}

func (s *Subscription) wants(table string) bool {
	if len(s.tables) == 0 {
		return true
	}
	_, ok := s.tables[table]
	return ok
}

// Manager fans changes out to subscribers. Delivery never blocks: a subscriber whose
// buffer is full misses the change.
type Manager struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	logger logger.Logger
}

func NewManager(buffer int, log logger.Logger) *Manager {
	if buffer <= 0 {
		buffer = 16
	}
	return &Manager{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: log,
	}
}

// Subscribe registers interest in tables; no tables means every table.
func (m *Manager) Subscribe(tables ...string) *Subscription {
	ch := make(chan Change, m.buffer)
	sub := &Subscription{C: ch, ch: ch, tables: make(map[string]struct{}, len(tables))}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		close(ch)
		return sub
	}
	m.nextID++
	sub.ID = m.nextID
	m.subs[sub.ID] = sub
	metrics.RealtimeSubscribers.Set(float64(len(m.subs)))

	return sub
}

// Unsubscribe removes the subscription and closes its channel. Unknown ids are ignored.
func (m *Manager) Unsubscribe(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[id]
	if !ok {
		return
	}
	delete(m.subs, id)
	close(sub.ch)
	metrics.RealtimeSubscribers.Set(float64(len(m.subs)))
}

func (m *Manager) Publish(c Change) {
	metrics.RealtimeChangesTotal.WithLabelValues(c.Table).Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subs {
		if c.Op != OpResync && !sub.wants(c.Table) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			metrics.RealtimeDroppedTotal.Inc()
		}
	}
}

// Run feeds the manager from src until ctx is done.
func (m *Manager) Run(ctx context.Context, src Source) error {
	m.logger.Infow("Realtime manager started")
	err := src.Run(ctx, m.Publish)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for id, sub := range m.subs {
		close(sub.ch)
		delete(m.subs, id)
	}
	metrics.RealtimeSubscribers.Set(0)
}
