package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexusq/internal/logger"
)

func receive(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
		return Change{}
	}
}

func assertNothing(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case c := <-sub.C:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestManager_FiltersByTable(t *testing.T) {
	m := NewManager(4, logger.NopLogger())
	leads := m.Subscribe("leads", "pipeline")
	all := m.Subscribe()

	m.Publish(Change{Table: "events", Op: "INSERT"})
	m.Publish(Change{Table: "pipeline", Op: "UPDATE"})

	assert.Equal(t, Change{Table: "pipeline", Op: "UPDATE"}, receive(t, leads))
	assertNothing(t, leads)

	assert.Equal(t, "events", receive(t, all).Table)
	assert.Equal(t, "pipeline", receive(t, all).Table)
}

func TestManager_ResyncReachesEveryone(t *testing.T) {
	m := NewManager(4, logger.NopLogger())
	sub := m.Subscribe("leads")

	m.Publish(Change{Op: OpResync})
	assert.Equal(t, OpResync, receive(t, sub).Op)
}

func TestManager_SlowSubscriberDrops(t *testing.T) {
	m := NewManager(1, logger.NopLogger())
	sub := m.Subscribe("leads")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			m.Publish(Change{Table: "leads", Op: "INSERT"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	receive(t, sub)
	assertNothing(t, sub)
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager(1, logger.NopLogger())
	sub := m.Subscribe("leads")

	m.Unsubscribe(sub.ID)
	m.Unsubscribe(sub.ID)

	_, ok := <-sub.C
	assert.False(t, ok)
	m.Publish(Change{Table: "leads"})
}

func TestManager_CloseClosesSubscriptions(t *testing.T) {
	m := NewManager(1, logger.NopLogger())
	sub := m.Subscribe()
	m.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	late := m.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok)
	m.Unsubscribe(late.ID)
}

type sliceSource []Change

func (s sliceSource) Run(ctx context.Context, sink func(Change)) error {
	for _, c := range s {
		sink(c)
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestManager_Run(t *testing.T) {
	m := NewManager(4, logger.NopLogger())
	sub := m.Subscribe("lead_events")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx, sliceSource{{Table: "lead_events", Op: "INSERT"}}) }()

	assert.Equal(t, "lead_events", receive(t, sub).Table)
	cancel()
	assert.NoError(t, <-errCh)
}

func TestParseChange(t *testing.T) {
	c, err := ParseChange(`{"table":"leads","op":"INSERT"}`)
	require.NoError(t, err)
	assert.Equal(t, Change{Table: "leads", Op: "INSERT"}, c)

	_, err = ParseChange(`{"op":"INSERT"}`)
	assert.Error(t, err)

	_, err = ParseChange(`nope`)
	assert.Error(t, err)
}
