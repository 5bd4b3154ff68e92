package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PADMIXER_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PADMIXER_CONFIG is set
//  3. env (prefix PADMIXER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PADMIXER_REFRESH_INTERVAL_MS -> refresh_interval_ms
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects unusable values and clamps the refresh interval.
func (c *Config) validate() error {
	switch c.RefreshMode {
	case RefreshTimer:
		c.RefreshIntervalMS = min(max(c.RefreshIntervalMS, MinRefreshIntervalMS), MaxRefreshIntervalMS)
	case RefreshEvent:
	default:
		return fmt.Errorf("%w: refresh_mode %q must be %q or %q", ErrInvalidConfig, c.RefreshMode, RefreshTimer, RefreshEvent)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if c.MidiDevice == "" {
		return fmt.Errorf("%w: midi_device must not be empty", ErrInvalidConfig)
	}
	if c.CallTimeoutMS <= 0 {
		return fmt.Errorf("%w: call_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.LaneQueueSize <= 0 {
		return fmt.Errorf("%w: lane_queue_size must be positive", ErrInvalidConfig)
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("%w: event_buffer must be positive", ErrInvalidConfig)
	}
	return nil
}
