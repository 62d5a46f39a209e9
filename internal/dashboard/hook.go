package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"nexusq/internal/config"
	"nexusq/internal/constants"
	"nexusq/internal/events"
	"nexusq/internal/leads"
	"nexusq/internal/logger"
	"nexusq/internal/pipeline"
	"nexusq/internal/realtime"
	pkgerrors "nexusq/pkg/errors"
	"nexusq/pkg/metrics"
)

type LeadSource interface {
	List(ctx context.Context, limit int) ([]leads.Lead, error)
}

type LeadEventSource interface {
	ListLeadEvents(ctx context.Context, limit int) ([]events.LeadEvent, error)
}

type PipelineSource interface {
	List(ctx context.Context, limit int) ([]pipeline.Row, error)
}

// Snapshot is the combined view served to the dashboard, pipeline and stream endpoints.
type Snapshot struct {
	Leads    []leads.Lead       `json:"leads"`
	Events   []events.LeadEvent `json:"events"`
	Pipeline []pipeline.Row     `json:"pipeline"`
	Loading  bool               `json:"loading"`
	Error    *string            `json:"error"`
}

// Hook keeps a snapshot of leads, lead events and pipeline rows and refreshes it
// whenever one of those tables changes.
type Hook struct {
	leads    LeadSource
	events   LeadEventSource
	pipeline PipelineSource
	manager  *realtime.Manager
	limits   config.DashboardConfig
	logger   logger.Logger

	mu   sync.RWMutex
	snap Snapshot

	loadMu sync.Mutex

	watchMu  sync.Mutex
	watchers map[chan struct{}]struct{}
	closed   bool

	sub *realtime.Subscription
	wg  sync.WaitGroup
}

// NewHook builds a hook. A nil manager disables realtime refresh.
func NewHook(leadSrc LeadSource, eventSrc LeadEventSource, pipeSrc PipelineSource,
	cfg config.DashboardConfig, manager *realtime.Manager, log logger.Logger) *Hook {
	if cfg.LeadLimit <= 0 {
		cfg.LeadLimit = constants.DefaultLeadLimit
	}
	if cfg.EventLimit <= 0 {
		cfg.EventLimit = constants.DefaultEventLimit
	}
	if cfg.PipelineLimit <= 0 {
		cfg.PipelineLimit = constants.DefaultPipelineLimit
	}

	return &Hook{
		leads:    leadSrc,
		events:   eventSrc,
		pipeline: pipeSrc,
		manager:  manager,
		limits:   cfg,
		logger:   log,
		snap: Snapshot{
			Leads:    []leads.Lead{},
			Events:   []events.LeadEvent{},
			Pipeline: []pipeline.Row{},
			Loading:  true,
		},
		watchers: make(map[chan struct{}]struct{}),
	}
}

// Load fetches all three tables in parallel. The error is cleared first and then set
// to the first failure in the order leads, events, pipeline; a failed fetch leaves an
// empty list. Silent loads never touch the loading flag. When ctx ends before the
// fetches finish the previous data and error are kept.
func (h *Hook) Load(ctx context.Context, silent bool) Snapshot {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	start := time.Now()
	mode := "full"
	if silent {
		mode = "silent"
	}

	h.mu.Lock()
	prevErr := h.snap.Error
	h.snap.Error = nil
	if !silent {
		h.snap.Loading = true
	}
	h.mu.Unlock()

	var (
		leadRows  []leads.Lead
		eventRows []events.LeadEvent
		pipeRows  []pipeline.Row
		errs      [3]error
	)

	var g errgroup.Group
	g.Go(fetch(&errs[0], func() (err error) {
		leadRows, err = h.leads.List(ctx, h.limits.LeadLimit)
		return err
	}))
	g.Go(fetch(&errs[1], func() (err error) {
		eventRows, err = h.events.ListLeadEvents(ctx, h.limits.EventLimit)
		return err
	}))
	g.Go(fetch(&errs[2], func() (err error) {
		pipeRows, err = h.pipeline.List(ctx, h.limits.PipelineLimit)
		return err
	}))
	_ = g.Wait()

	if ctx.Err() != nil {
		return h.abortLoad(ctx, prevErr, silent, mode, start)
	}

	if leadRows == nil || errs[0] != nil {
		leadRows = []leads.Lead{}
	}
	if eventRows == nil || errs[1] != nil {
		eventRows = []events.LeadEvent{}
	}
	if pipeRows == nil || errs[2] != nil {
		pipeRows = []pipeline.Row{}
	}

	var firstErr error
	for _, err := range errs {
		if err != nil {
			firstErr = err
			break
		}
	}

	h.mu.Lock()
	h.snap.Leads = leadRows
	h.snap.Events = eventRows
	h.snap.Pipeline = pipeRows
	if firstErr != nil {
		msg := firstErr.Error()
		h.snap.Error = &msg
	}
	if !silent {
		h.snap.Loading = false
	}
	snap := h.snap
	h.mu.Unlock()

	status := "success"
	if firstErr != nil {
		status = "error"
		h.logger.WarnwCtx(ctx, "Snapshot load failed", "mode", mode, "error", firstErr)
	}
	metrics.ObserveSnapshotLoad(time.Since(start), mode, status)

	h.notify()
	return snap
}

func (h *Hook) abortLoad(ctx context.Context, prevErr *string, silent bool, mode string, start time.Time) Snapshot {
	h.mu.Lock()
	h.snap.Error = prevErr
	if !silent {
		h.snap.Loading = false
	}
	snap := h.snap
	h.mu.Unlock()

	h.logger.WarnwCtx(ctx, "Snapshot load aborted, keeping previous data", "mode", mode, "error", ctx.Err())
	metrics.ObserveSnapshotLoad(time.Since(start), mode, "aborted")

	h.notify()
	return snap
}

// fetch stores the result of fn in dst. A panicking source is reported as an error.
func fetch(dst *error, fn func() error) func() error {
	return func() error {
		defer func() {
			if err := pkgerrors.RecoverPanic(recover()); err != nil {
				*dst = err
			}
		}()
		*dst = fn()
		return *dst
	}
}

func (h *Hook) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Start performs the initial load and then refreshes silently on every change to the
// watched tables until Close.
func (h *Hook) Start(ctx context.Context) {
	h.Load(ctx, false)

	if h.manager == nil {
		return
	}
	h.sub = h.manager.Subscribe(constants.TableLeads, constants.TableLeadEvents, constants.TablePipeline)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for range h.sub.C {
			drain(h.sub.C)
			h.Load(ctx, true)
		}
	}()
}

// drain discards changes already queued; the next load covers them.
func drain(ch <-chan realtime.Change) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (h *Hook) Close() {
	if h.sub != nil {
		h.manager.Unsubscribe(h.sub.ID)
	}
	h.wg.Wait()

	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	h.closed = true
	for ch := range h.watchers {
		close(ch)
		delete(h.watchers, ch)
	}
}

// Watch returns a channel signalled after every load and a func to stop watching.
// Signals coalesce when the reader is slow.
func (h *Hook) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.watchMu.Lock()
	if h.closed {
		h.watchMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.watchers[ch] = struct{}{}
	h.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.watchMu.Lock()
			defer h.watchMu.Unlock()
			if _, ok := h.watchers[ch]; ok {
				delete(h.watchers, ch)
				close(ch)
			}
		})
	}
}

func (h *Hook) notify() {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	for ch := range h.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
