package registry

import (
	"time"

	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/pkg/logger"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithTargets tracks targets whose process name equals the target itself.
// Targets already given an app by WithApps keep it; master is ignored.
func WithTargets(targets ...string) Option {
	return func(r *Registry) {
		for _, t := range targets {
			if t == "" || t == action.MasterTarget {
				continue
			}
			if _, ok := r.apps[t]; !ok {
				r.apps[t] = Normalize(t)
			}
		}
	}
}

// WithApps sets the process name backing each target, e.g. {"mic": "discord"}.
func WithApps(apps map[string]string) Option {
	return func(r *Registry) {
		for t, app := range apps {
			if t == "" || t == action.MasterTarget || app == "" {
				continue
			}
			r.apps[t] = Normalize(app)
		}
	}
}

// WithMaster marks the backend as initialised, making master resolvable.
func WithMaster(available bool) Option {
	return func(r *Registry) {
		r.master = available
	}
}

// WithCallTimeout bounds each enumeration call.
func WithCallTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithOnRefresh registers fn to run after each published snapshot.
func WithOnRefresh(fn func()) Option {
	return func(r *Registry) {
		if fn != nil {
			r.onRefresh = append(r.onRefresh, fn)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}
