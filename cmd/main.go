package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/okian/padmixer/internal/adapters/audio"
	"github.com/okian/padmixer/internal/adapters/http/api"
	"github.com/okian/padmixer/internal/adapters/keys"
	"github.com/okian/padmixer/internal/adapters/launcher"
	"github.com/okian/padmixer/internal/adapters/midiin"
	app "github.com/okian/padmixer/internal/app"
	"github.com/okian/padmixer/internal/config"
	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/pkg/logger"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return exitFailure
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitFailure
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	table := loadTable(ctx, log, cfg)

	mixer, backendUp := openBackend(ctx, log, cfg)
	svc := app.New(mixer, table, serviceOptions(cfg, backendUp)...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return exitFailure
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil { //nolint:contextcheck // root context is already canceled
			log.Warn(stopCtx, "service stop incomplete", logger.Error(err))
		}
	}()

	defer midiin.CloseDriver()
	input, err := midiin.Open(ctx, cfg.MidiDevice,
		midiin.WithBuffer(cfg.EventBuffer),
		midiin.WithZeroVelocityNotes(cfg.ZeroVelocityNotes),
	)
	if err != nil {
		reportNoInput(os.Stderr, cfg.MidiDevice, midiin.Ports(), err)
		return exitFailure
	}
	defer func() { _ = input.Close() }()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := api.ListenAndServe(ctx, cfg.MetricsAddr, svc); err != nil {
				log.Error(ctx, "diagnostics server failed", logger.Error(err))
			}
		}()
	}

	err = svc.Run(ctx, input.Events())
	switch {
	case err == nil:
		log.Warn(ctx, "MIDI input closed", logger.String("port", input.Name()))
	case errors.Is(err, context.Canceled):
		log.Info(ctx, "shutting down...")
	default:
		log.Error(ctx, "dispatch loop failed", logger.Error(err))
		return exitFailure
	}
	if dropped := input.Dropped(); dropped > 0 {
		log.Warn(ctx, "MIDI events dropped", logger.Int("count", int(dropped)))
	}
	return exitOK
}

// loadTable reads the mapping document beside the executable. Any problem
// is logged and the built-in table is used.
func loadTable(ctx context.Context, log logger.Logger, cfg *config.Config) *mapping.Table {
	path := config.ResolveMappingsPath(cfg.MappingsPath, executableDir())
	table, err := config.LoadMappings(path)
	if err != nil {
		log.Warn(ctx, "mapping document rejected, using defaults", logger.String("path", path), logger.Error(err))
	} else {
		log.Info(ctx, "mapping loaded", logger.String("path", path), logger.Int("bindings", table.Len()))
	}
	return table
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

// openBackend probes the platform audio backend and falls back to the
// degraded one when it does not answer.
func openBackend(ctx context.Context, log logger.Logger, cfg *config.Config) (app.Mixer, bool) {
	var opts []audio.Option
	if cfg.MixerBinary != "" {
		opts = append(opts, audio.WithBinary(cfg.MixerBinary))
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout())
	defer cancel()

	backend, err := audio.NewPlatformBackend(probeCtx, opts...)
	if err != nil {
		log.Warn(ctx, "audio backend unavailable", logger.Error(err))
		return audio.Unavailable{Reason: err}, false
	}
	log.Info(ctx, "audio backend ready", logger.String("backend", backend.Name()))
	return backend, true
}

func serviceOptions(cfg *config.Config, backendUp bool) []app.Option {
	return []app.Option{
		app.WithLogger(logger.Get().Named("service")),
		app.WithBackendAvailable(backendUp),
		app.WithKeys(keys.New()),
		app.WithLauncher(launcher.New()),
		app.WithRefreshMode(cfg.RefreshMode),
		app.WithRefreshInterval(cfg.RefreshInterval()),
		app.WithCallTimeout(cfg.CallTimeout()),
		app.WithLaneQueueSize(cfg.LaneQueueSize),
		app.WithTargetApps(cfg.TargetApps),
	}
}

func reportNoInput(w io.Writer, want string, ports []string, err error) {
	fmt.Fprintf(w, "%v\n", err)
	if issue := fmsg.GetIssue(err); issue != "" {
		fmt.Fprintln(w, issue)
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no MIDI input ports found")
		return
	}
	fmt.Fprintf(w, "no input port contains %q; available ports:\n  %s\n", want, strings.Join(ports, "\n  "))
}
