package worker

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/okian/padmixer/internal/adapters/mq/queue"
	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/pkg/logger"
	"github.com/okian/padmixer/pkg/metrics"
)

// ErrLanesClosed is returned by Start after Shutdown.
var ErrLanesClosed = errors.New("lanes closed")

type lane struct {
	queue  *queue.InMemoryQueue
	worker *InMemoryWorker

	mu      sync.Mutex
	pending *model.Job // newest volume job not yet picked up; one wake-up sits in queue for it
}

// offer stores job as the lane's pending volume. The queue only carries a
// wake-up when no pending job exists, so a newer value is never rejected for
// lack of room.
func (ln *lane) offer(ctx context.Context, job model.Job) (bool, bool) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	ln.mu.Lock()
	defer ln.mu.Unlock()

	if ln.pending != nil {
		if job.Seq < ln.pending.Seq {
			return true, true
		}
		ln.pending = &job
		return true, true
	}
	if !ln.queue.Enqueue(ctx, job) {
		return false, false
	}
	ln.pending = &job
	return true, false
}

// take swaps a dequeued volume wake-up for the newest pending job.
func (ln *lane) take(job model.Job) (model.Job, bool) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if job.Action.Type() != action.TypeVolume {
		return job, true
	}
	ln.mu.Lock()
	defer ln.mu.Unlock()
	if ln.pending == nil {
		return job, false
	}
	next := *ln.pending
	ln.pending = nil
	return next, true
}

// Lanes creates one queue and worker per lane key on first use.
type Lanes struct {
	executor  Executor
	queueSize int
	logger    logger.Logger

	mu     sync.Mutex
	runCtx context.Context
	lanes  map[string]*lane
	closed bool
}

// NewLanes creates an idle lane set. Call Start before Submit.
func NewLanes(exec Executor, opts ...LanesOption) *Lanes {
	l := &Lanes{
		executor:  exec,
		queueSize: 64,
		lanes:     make(map[string]*lane),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("lanes")
	}
	return l
}

// Start sets the context workers run under.
func (l *Lanes) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLanesClosed
	}
	l.runCtx = ctx
	return nil
}

// Submit queues job on its lane. A pending volume job is replaced by any
// later one on the same lane, so the newest volume is always accepted while
// the lane is open. Returns false if the lane is full or closed.
func (l *Lanes) Submit(ctx context.Context, job model.Job) bool { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if job.Lane == "" {
		job.Lane = action.LaneKey(job.Action)
	}

	ln, ok := l.get(job.Lane)
	if !ok {
		metrics.RecordLaneRejected()
		return false
	}
	if job.Action.Type() == action.TypeVolume {
		ok, replaced := ln.offer(ctx, job)
		if !ok {
			metrics.RecordLaneRejected()
			return false
		}
		if replaced {
			metrics.RecordLaneSuperseded()
			metrics.RecordAction(string(job.Action.Type()), metrics.ResultSuperseded, 0)
			l.logger.Debug(ctx, "pending volume superseded",
				logger.String("lane", job.Lane),
				logger.String("event_id", job.EventID),
				logger.Int("seq", int(job.Seq)))
		}
		metrics.UpdateLaneDepth(l.Depth())
		return true
	}
	if !ln.queue.Enqueue(ctx, job) {
		metrics.RecordLaneRejected()
		l.logger.Warn(ctx, "lane full, dropping job",
			logger.String("lane", job.Lane),
			logger.String("action", job.Action.String()))
		return false
	}
	metrics.UpdateLaneDepth(l.Depth())
	return true
}

func (l *Lanes) get(key string) (*lane, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.runCtx == nil {
		return nil, false
	}
	if ln, ok := l.lanes[key]; ok {
		return ln, true
	}

	ln := &lane{queue: queue.NewInMemoryQueue(queue.WithCapacity(l.queueSize))}
	ln.worker = NewInMemoryWorker(ln.queue, l.executor,
		WithName("lane:"+key),
		WithLogger(l.logger),
		WithResolve(ln.take),
	)
	l.lanes[key] = ln
	go ln.worker.Run(l.runCtx)

	metrics.UpdateLaneCount(len(l.lanes))
	l.logger.Debug(l.runCtx, "lane created", logger.String("lane", key))
	return ln, true
}

// Depth returns the number of jobs waiting across all lanes.
func (l *Lanes) Depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ln := range l.lanes {
		n += ln.queue.Len()
	}
	return n
}

// Keys returns the lane keys created so far, sorted.
func (l *Lanes) Keys() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]string, 0, len(l.lanes))
	for k := range l.lanes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Shutdown closes every lane and waits for queued jobs to drain.
func (l *Lanes) Shutdown(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	lanes := make(map[string]*lane, len(l.lanes))
	for k, ln := range l.lanes {
		lanes[k] = ln
	}
	l.mu.Unlock()

	for _, ln := range lanes {
		_ = ln.queue.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()

	var errs []error
	for key, ln := range lanes {
		if err := ln.worker.Shutdown(shutdownCtx); err != nil {
			l.logger.Warn(ctx, "lane shutdown timed out", logger.String("lane", key))
			errs = append(errs, err)
		}
	}
	metrics.UpdateLaneDepth(0)
	return errors.Join(errs...)
}
