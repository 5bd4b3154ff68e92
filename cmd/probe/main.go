package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/okian/padmixer/internal/adapters/audio"
	"github.com/okian/padmixer/internal/adapters/midiin"
	"github.com/okian/padmixer/internal/config"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/probe"
	"github.com/okian/padmixer/pkg/logger"
)

func main() {
	var (
		ports    = flag.Bool("ports", false, "List MIDI input ports")
		sessions = flag.Bool("sessions", false, "List audio sessions")
		devices  = flag.Bool("devices", false, "List output devices and alias matches")
		table    = flag.Bool("mapping", false, "Print the effective mapping table")
		watch    = flag.Bool("watch", false, "Print decoded MIDI events until interrupted")
		asJSON   = flag.Bool("json", false, "Emit the report as JSON")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	if err := logger.InitWithOptions(logger.Options{Writer: os.Stderr}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get().Named("probe")

	var exeDir string
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	mappings, err := config.LoadMappings(config.ResolveMappingsPath(cfg.MappingsPath, exeDir))
	if err != nil {
		log.Warn(ctx, "mapping document rejected, showing defaults", logger.Error(err))
	}

	var opts []audio.Option
	if cfg.MixerBinary != "" {
		opts = append(opts, audio.WithBinary(cfg.MixerBinary))
	}
	var backend probe.Lister
	if b, err := audio.NewPlatformBackend(ctx, opts...); err != nil {
		backend = audio.Unavailable{Reason: err}
	} else {
		backend = b
	}

	defer midiin.CloseDriver()
	env := probe.Env{
		Out:     os.Stdout,
		Ports:   midiin.Ports,
		Backend: backend,
		Table:   mappings,
		Open: func(ctx context.Context) (<-chan model.MidiEvent, func() error, error) {
			in, err := midiin.Open(ctx, cfg.MidiDevice,
				midiin.WithBuffer(cfg.EventBuffer),
				midiin.WithZeroVelocityNotes(cfg.ZeroVelocityNotes),
			)
			if err != nil {
				return nil, nil, err
			}
			return in.Events(), in.Close, nil
		},
	}

	pcfg := &probe.Config{
		Ports:    *ports,
		Sessions: *sessions,
		Devices:  *devices,
		Mapping:  *table,
		Watch:    *watch,
		JSON:     *asJSON,
	}
	if err := probe.Run(ctx, pcfg, env); err != nil {
		log.Error(ctx, "probe failed", logger.Error(err))
		midiin.CloseDriver()
		os.Exit(1) //nolint:gocritic // driver closed above
	}
}
