// Package service wires the mapping table, session registry, action
// executor and per-target lanes into the MIDI dispatch loop.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/padmixer/internal/adapters/mq/worker"
	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/dedupe"
	"github.com/okian/padmixer/internal/domain/executor"
	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/domain/registry"
	"github.com/okian/padmixer/internal/domain/types"
	"github.com/okian/padmixer/pkg/logger"
	"github.com/okian/padmixer/pkg/metrics"
)

// Refresh policies.
const (
	RefreshTimer = "timer"
	RefreshEvent = "event"
)

// Sentinel errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyRunning = errors.New("dispatch loop already running")
)

// State of the dispatch loop.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "idle"
	}
}

// Mixer is everything the service needs from the audio backend.
type Mixer interface {
	registry.SessionSource
	executor.Mixer
}

// Service owns the dispatch loop.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	mixer     Mixer
	table     *mapping.Table
	keys      executor.KeySender
	launcher  executor.Launcher
	backendUp bool

	// Configuration
	refreshMode     string
	refreshInterval time.Duration
	callTimeout     time.Duration
	laneQueueSize   int
	targetApps      map[string]string
	inline          bool

	// Components, built by Start
	limiter  dedupe.Deduper
	registry *registry.Registry
	executor *executor.Executor
	lanes    *worker.Lanes

	// State
	started bool
	state   atomic.Int32
	seq     atomic.Uint64
	stopCh  chan struct{}
	wg      sync.WaitGroup

	received  atomic.Uint64
	unmapped  atomic.Uint64
	submitted atomic.Uint64
	rejected  atomic.Uint64

	logger logger.Logger
}

// New constructs a service over mixer and table. A nil table falls back to
// the built-in default mapping.
func New(mixer Mixer, table *mapping.Table, opts ...Option) *Service {
	if table == nil {
		table = mapping.Default()
	}
	s := &Service{
		mixer:           mixer,
		table:           table,
		backendUp:       mixer != nil,
		refreshMode:     RefreshTimer,
		refreshInterval: 500 * time.Millisecond,
		callTimeout:     2 * time.Second,
		laneQueueSize:   64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the registry, executor and lanes, performs the first session
// refresh and, in timer mode, starts the refresh ticker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.stopCh = make(chan struct{})
	s.limiter = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(256))
	s.registry = registry.New(s.mixer,
		registry.WithTargets(s.table.VolumeTargets()...),
		registry.WithApps(s.targetApps),
		registry.WithMaster(s.backendUp),
		registry.WithCallTimeout(s.callTimeout),
		registry.WithOnRefresh(s.limiter.Reset),
	)

	s.executor = executor.New(s.mixer, s.registry,
		executor.WithDevices(s.table.Devices()),
		executor.WithKeys(s.keys),
		executor.WithLauncher(s.launcher),
		executor.WithBackendAvailable(s.backendUp),
		executor.WithCallTimeout(s.callTimeout),
		executor.WithLimiter(s.limiter),
	)

	if !s.inline {
		s.lanes = worker.NewLanes(s.executor, worker.WithQueueSize(s.laneQueueSize))
		if err := s.lanes.Start(ctx); err != nil {
			return err
		}
	}

	metrics.UpdateBackendAvailable(s.backendUp)
	if !s.backendUp {
		s.logger.Warn(ctx, "audio backend unavailable, volume and device actions disabled")
	}

	s.refresh(ctx)
	if s.refreshMode == RefreshTimer {
		s.wg.Add(1)
		go s.refreshLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.String("refreshMode", s.refreshMode),
		logger.Duration("refreshInterval", s.refreshInterval),
		logger.Int("bindings", s.table.Len()),
		logger.Bool("inline", s.inline),
	)
	return nil
}

func (s *Service) refreshLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			err := s.registry.Refresh(ctx)
			switch {
			case err != nil && !failing:
				s.logger.Warn(ctx, "session refresh failing", logger.Error(err))
			case err == nil && failing:
				s.logger.Info(ctx, "session refresh recovered")
			}
			failing = err != nil
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	if err := s.registry.Refresh(ctx); err != nil {
		s.logger.Debug(ctx, "session refresh failed", logger.Error(err))
	}
}

// Run reads events until source closes or ctx is canceled. It returns nil on
// source closure and the context error on cancellation.
func (s *Service) Run(ctx context.Context, source <-chan model.MidiEvent) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	defer s.state.Store(int32(StateTerminated))

	s.logger.Info(ctx, "dispatch loop running")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "dispatch loop canceled")
			return ctx.Err()
		case ev, ok := <-source:
			if !ok {
				s.logger.Info(ctx, "input closed, dispatch loop terminated")
				return nil
			}
			s.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent resolves ev and hands its action to the lane for its target.
// Returns false when the event is unmapped or its lane rejected the job.
func (s *Service) HandleEvent(ctx context.Context, ev model.MidiEvent) bool { //nolint:gocritic // hugeParam: events are passed by value from the input channel
	if s.executor == nil {
		return false
	}
	s.received.Add(1)
	metrics.RecordEventReceived(ev.Kind.String())

	a, ok := s.table.Resolve(ev.Kind, ev.Identifier)
	if !ok {
		s.unmapped.Add(1)
		metrics.RecordEventUnmapped(ev.Kind.String())
		s.logger.Debug(ctx, "unmapped event",
			logger.String("kind", ev.Kind.String()),
			logger.Int("id", int(ev.Identifier)),
		)
		return false
	}

	var value float64
	if a.Type() == action.TypeVolume {
		value = model.VolumeScalar(ev.Value)
	}

	dispatched := s.dispatch(ctx, model.Job{
		Seq:     s.seq.Add(1),
		EventID: ev.ID,
		Lane:    action.LaneKey(a),
		Action:  a,
		Value:   value,
	})

	if s.refreshMode == RefreshEvent {
		s.refresh(ctx)
	}
	return dispatched
}

func (s *Service) dispatch(ctx context.Context, job model.Job) bool { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if s.lanes == nil {
		// Errors are logged by the executor.
		_ = s.executor.Execute(ctx, job.Action, job.Value)
		s.submitted.Add(1)
		return true
	}
	if !s.lanes.Submit(ctx, job) {
		s.rejected.Add(1)
		s.logger.Warn(ctx, "lane rejected job",
			logger.String("lane", job.Lane),
			logger.String("action", job.Action.String()),
		)
		return false
	}
	s.submitted.Add(1)
	return true
}

// Stop stops the refresh ticker and drains the lanes.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping service...")

	close(s.stopCh)
	s.wg.Wait()

	var err error
	if s.lanes != nil {
		err = s.lanes.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
	return err
}

// State reports the dispatch loop state.
func (s *Service) State() State {
	return State(s.state.Load())
}

// Targets returns the resolution status of every volume target.
func (s *Service) Targets() []types.TargetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil
	}
	return s.registry.Statuses()
}

// Bindings returns the active mapping table.
func (s *Service) Bindings() []types.Binding {
	return s.table.Bindings()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"state":            s.State().String(),
		"backendAvailable": s.backendUp,
		"refreshMode":      s.refreshMode,
		"bindings":         s.table.Len(),
		"eventsReceived":   s.received.Load(),
		"eventsUnmapped":   s.unmapped.Load(),
		"jobsSubmitted":    s.submitted.Load(),
		"jobsRejected":     s.rejected.Load(),
	}

	if s.registry != nil {
		resolved := 0
		for _, st := range s.registry.Statuses() {
			if st.Resolved {
				resolved++
			}
		}
		stats["targetsResolved"] = resolved
		stats["refreshes"] = s.registry.Refreshes()
		if last := s.registry.LastRefresh(); !last.IsZero() {
			stats["lastRefresh"] = last.Format(time.RFC3339Nano)
		}
	}
	if s.lanes != nil {
		stats["lanes"] = len(s.lanes.Keys())
		stats["laneDepth"] = s.lanes.Depth()
	}

	return stats
}
