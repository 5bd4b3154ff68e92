package service

import (
	"time"

	"github.com/okian/padmixer/internal/domain/executor"
	"github.com/okian/padmixer/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithKeys sets the media-key sender used by transport actions.
func WithKeys(k executor.KeySender) Option {
	return func(s *Service) {
		s.keys = k
	}
}

// WithLauncher sets the process launcher used by launch actions.
func WithLauncher(l executor.Launcher) Option {
	return func(s *Service) {
		s.launcher = l
	}
}

// WithBackendAvailable overrides backend availability. Pass false when the
// mixer is a degraded placeholder.
func WithBackendAvailable(up bool) Option {
	return func(s *Service) {
		s.backendUp = up
	}
}

// WithRefreshMode selects RefreshTimer or RefreshEvent. Other values are ignored.
func WithRefreshMode(mode string) Option {
	return func(s *Service) {
		if mode == RefreshTimer || mode == RefreshEvent {
			s.refreshMode = mode
		}
	}
}

// WithRefreshInterval sets the timer-mode refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithCallTimeout bounds every platform call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithLaneQueueSize sets the capacity of each lane.
func WithLaneQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.laneQueueSize = n
		}
	}
}

// WithTargetApps maps symbolic targets to process names.
func WithTargetApps(apps map[string]string) Option {
	return func(s *Service) {
		s.targetApps = apps
	}
}

// WithInlineExecution executes actions on the dispatch goroutine instead of
// on per-target lanes.
func WithInlineExecution(inline bool) Option {
	return func(s *Service) {
		s.inline = inline
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
