// Package worker runs resolved actions on per-target lanes. Jobs sharing a
// lane run one at a time in submission order; different lanes run in
// parallel, so a slow device switch never delays a knob.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/padmixer/internal/adapters/mq/queue"
	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/pkg/logger"
)

const workerShutdownTimeout = 5 * time.Second

// Executor performs one action.
type Executor interface {
	Execute(ctx context.Context, a action.Action, value float64) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker drains a single lane.
type Worker interface {
	// Run processes jobs until the queue closes or ctx is canceled.
	Run(ctx context.Context)

	// Shutdown waits for Run to return.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	executor Executor
	resolve  func(model.Job) (model.Job, bool)
	name     string

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading q and executing through exec.
func NewInMemoryWorker(q Queue, exec Executor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		executor: exec,
		name:     "worker",
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is closed and drained or ctx ends.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown waits for Run to finish. Close the queue first.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job model.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if w.resolve != nil {
		next, ok := w.resolve(job)
		if !ok {
			w.logger.Debug(ctx, "skipping job",
				logger.String("event_id", job.EventID),
				logger.Int("seq", int(job.Seq)))
			return
		}
		job = next
	}

	// The executor reports and logs its own failures.
	_ = w.executor.Execute(ctx, job.Action, job.Value)
}
