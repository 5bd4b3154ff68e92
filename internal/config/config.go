// Package config defines process configuration and the mapping document loader.
package config

import "time"

// Refresh modes.
const (
	RefreshTimer = "timer"
	RefreshEvent = "event"
)

// Refresh interval bounds in timer mode, in milliseconds.
const (
	MinRefreshIntervalMS = 250
	MaxRefreshIntervalMS = 1000
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// MidiDevice is matched as a substring of the input port name.
	MidiDevice string `koanf:"midi_device"`

	// EventBuffer bounds decoded events waiting for the dispatch loop.
	EventBuffer int `koanf:"event_buffer"`

	// ZeroVelocityNotes treats NoteOn with velocity 0 as a pad press.
	ZeroVelocityNotes bool `koanf:"zero_velocity_notes"`

	// MappingsPath locates the mapping document (JSON or YAML).
	MappingsPath string `koanf:"mappings_path"`

	// RefreshMode is "timer" (background ticker) or "event" (after every event).
	RefreshMode string `koanf:"refresh_mode"`

	// RefreshIntervalMS is the ticker period in timer mode, clamped to 250-1000.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// CallTimeoutMS bounds every platform call.
	CallTimeoutMS int `koanf:"call_timeout_ms"`

	// LaneQueueSize bounds pending jobs per execution lane.
	LaneQueueSize int `koanf:"lane_queue_size"`

	// MixerBinary overrides the pactl/svcl executable.
	MixerBinary string `koanf:"mixer_binary"`

	// MetricsAddr enables the HTTP stats endpoint when non-empty, e.g. "127.0.0.1:9180".
	MetricsAddr string `koanf:"metrics_addr"`

	// TargetApps maps a symbolic volume target to the process name backing it.
	TargetApps map[string]string `koanf:"target_apps"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		MidiDevice:        "LPD8",
		EventBuffer:       256,
		MappingsPath:      "config.json",
		RefreshMode:       RefreshTimer,
		RefreshIntervalMS: 500,
		CallTimeoutMS:     2000,
		LaneQueueSize:     64,
		TargetApps: map[string]string{
			"spotify": "spotify",
			"discord": "discord",
			"chrome":  "chrome",
			"mic":     "discord",
		},
	}
}

// RefreshInterval returns the ticker period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// CallTimeout returns the platform call bound.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMS) * time.Millisecond
}
