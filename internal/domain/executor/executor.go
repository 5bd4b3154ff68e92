// Package executor performs resolved actions through the platform
// collaborators and reports each outcome as at most one ActionError.
package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/dedupe"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/domain/registry"
	"github.com/okian/padmixer/pkg/logger"
	"github.com/okian/padmixer/pkg/metrics"
)

// Mixer is the audio side of the platform backend.
type Mixer interface {
	OutputDevices(ctx context.Context) ([]model.Device, error)
	SetDefaultOutput(ctx context.Context, id string) error
	SetSessionVolume(ctx context.Context, handle string, v float64) error
	SetMasterVolume(ctx context.Context, v float64) error
}

// Targets resolves symbolic targets to live sessions.
type Targets interface {
	Get(target string) (model.Session, bool)
}

// Devices resolves a device alias to an OS device-name substring.
type Devices interface {
	Lookup(alias string) (string, bool)
}

// KeySender emulates media keys.
type KeySender interface {
	Send(ctx context.Context, key action.TransportKey) error
}

// Launcher starts detached processes.
type Launcher interface {
	Start(ctx context.Context, path string) error
}

// Executor dispatches on the action type. It never caches session handles;
// every SetVolume reads the registry afresh.
type Executor struct {
	mixer    Mixer
	targets  Targets
	devices  Devices
	keys     KeySender
	launcher Launcher

	backendUp bool
	timeout   time.Duration
	limiter   dedupe.Deduper
	logger    logger.Logger

	backendLogged atomic.Bool
}

// New creates an executor. Missing collaborators put their actions in
// degraded mode.
func New(mixer Mixer, targets Targets, opts ...Option) *Executor {
	e := &Executor{
		mixer:     mixer,
		targets:   targets,
		backendUp: mixer != nil,
		timeout:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.limiter == nil {
		e.limiter = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(256))
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("executor")
	}
	return e
}

// Execute performs a. value is only read by SetVolume and is clamped to [0,1].
func (e *Executor) Execute(ctx context.Context, a action.Action, value float64) error {
	start := time.Now()

	var err error
	switch act := a.(type) {
	case action.SetVolume:
		err = e.setVolume(ctx, act, model.Clamp(value))
	case action.SwitchOutputDevice:
		err = e.switchDevice(ctx, act)
	case action.LaunchProcess:
		err = e.launch(ctx, act)
	case action.TransportControl:
		err = e.transport(ctx, act)
	default:
		return nil
	}

	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
		metrics.RecordActionError(KindName(err))
		e.report(ctx, a, err)
	}
	metrics.RecordAction(string(a.Type()), result, float64(time.Since(start).Microseconds())/1000)
	return err
}

func (e *Executor) setVolume(ctx context.Context, a action.SetVolume, v float64) error {
	if !e.backendUp {
		return newError(ErrBackendUnavailable, a, nil)
	}
	s, ok := e.targets.Get(a.Target)
	if !ok {
		return newError(ErrTargetUnavailable, a, nil)
	}

	err := e.call(ctx, func(ctx context.Context) error {
		if s.Handle == registry.MasterHandle {
			return e.mixer.SetMasterVolume(ctx, v)
		}
		return e.mixer.SetSessionVolume(ctx, s.Handle, v)
	})
	if err != nil {
		return e.classify(a, err, ErrTargetUnavailable)
	}
	e.logger.Debug(ctx, "volume set", logger.String("target", a.Target), logger.Float64("value", v))
	return nil
}

func (e *Executor) switchDevice(ctx context.Context, a action.SwitchOutputDevice) error {
	if !e.backendUp {
		return newError(ErrBackendUnavailable, a, nil)
	}
	var substr string
	var ok bool
	if e.devices != nil {
		substr, ok = e.devices.Lookup(a.Alias)
	}
	if !ok {
		return newError(ErrDeviceNotFound, a, errors.New("alias not configured"))
	}

	var devices []model.Device
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		devices, err = e.mixer.OutputDevices(ctx)
		return err
	})
	if err != nil {
		return e.classify(a, err, ErrDeviceNotFound)
	}

	d, found := model.FindDevice(devices, substr)
	if !found {
		return newError(ErrDeviceNotFound, a, nil)
	}
	if err := e.call(ctx, func(ctx context.Context) error {
		return e.mixer.SetDefaultOutput(ctx, d.ID)
	}); err != nil {
		return e.classify(a, err, ErrDeviceNotFound)
	}
	e.logger.Info(ctx, "switched output device",
		logger.String("alias", a.Alias),
		logger.String("device", d.Name))
	return nil
}

func (e *Executor) launch(ctx context.Context, a action.LaunchProcess) error {
	if e.launcher == nil {
		return newError(ErrLaunchFailed, a, ErrCapabilityUnavailable)
	}
	if err := e.call(ctx, func(ctx context.Context) error {
		return e.launcher.Start(ctx, a.Path)
	}); err != nil {
		return e.classify(a, err, ErrLaunchFailed)
	}
	e.logger.Info(ctx, "launched process", logger.String("path", a.Path))
	return nil
}

func (e *Executor) transport(ctx context.Context, a action.TransportControl) error {
	if e.keys == nil {
		return nil
	}
	err := e.call(ctx, func(ctx context.Context) error {
		return e.keys.Send(ctx, a.Key)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTimeout):
		return newError(ErrTimeout, a, err)
	case errors.Is(err, ErrCapabilityUnavailable):
		e.logger.Debug(ctx, "media key emulation unavailable",
			logger.String("key", a.Key.String()),
			logger.Error(err))
		return nil
	default:
		return newError(ErrKeyNotDelivered, a, err)
	}
}

// call runs fn with a bounded deadline. A collaborator that ignores its
// context is abandoned when the deadline passes.
func (e *Executor) call(ctx context.Context, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(callCtx) }()

	select {
	case err := <-done:
		if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return errors.Join(ErrTimeout, err)
		}
		return err
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return callCtx.Err()
	}
}

func (e *Executor) classify(a action.Action, err, fallback error) *ActionError {
	switch {
	case errors.Is(err, ErrTimeout):
		return newError(ErrTimeout, a, err)
	case errors.Is(err, ErrBackendUnavailable):
		return newError(ErrBackendUnavailable, a, err)
	default:
		return newError(fallback, a, err)
	}
}

// report logs err. TargetUnavailable is logged once per target between
// limiter resets; BackendUnavailable once per process.
func (e *Executor) report(ctx context.Context, a action.Action, err error) {
	switch {
	case errors.Is(err, ErrTargetUnavailable):
		if e.limiter.SeenAndRecord(ctx, action.LaneKey(a)) {
			return
		}
	case errors.Is(err, ErrBackendUnavailable):
		if !e.backendLogged.CompareAndSwap(false, true) {
			return
		}
	}
	e.logger.Warn(ctx, "action failed",
		logger.String("action", a.String()),
		logger.String("kind", KindName(err)),
		logger.Error(err))
}
