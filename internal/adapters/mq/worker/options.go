package worker

import (
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithResolve lets fn replace each dequeued job before it runs. Jobs for
// which fn returns false are skipped.
func WithResolve(fn func(model.Job) (model.Job, bool)) Option {
	return func(w *InMemoryWorker) {
		w.resolve = fn
	}
}

// LanesOption applies a configuration option to Lanes.
type LanesOption func(*Lanes)

// WithQueueSize sets the per-lane queue capacity.
func WithQueueSize(n int) LanesOption {
	return func(l *Lanes) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithLanesLogger sets a custom logger for Lanes and its workers.
func WithLanesLogger(lg logger.Logger) LanesOption {
	return func(l *Lanes) {
		if lg != nil {
			l.logger = lg
		}
	}
}
