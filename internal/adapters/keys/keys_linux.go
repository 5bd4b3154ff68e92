//go:build linux

package keys

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/godbus/dbus/v5"
	"github.com/okian/padmixer/internal/domain/action"
)

// mprisSender talks to the first MPRIS player on the session bus. The mic
// mute key has no MPRIS equivalent and goes through xdotool.
type mprisSender struct {
	xdotool string
}

// New returns the platform key sender.
func New() Sender {
	path, _ := exec.LookPath("xdotool")
	return &mprisSender{xdotool: path}
}

func (m *mprisSender) Send(ctx context.Context, key action.TransportKey) error {
	if key == action.MuteMic {
		return m.muteMic(ctx)
	}
	method, ok := mprisMethod(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: session bus: %w", ErrUnsupported, err)
	}
	defer conn.Close()

	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return fmt.Errorf("list bus names: %w", err)
	}
	player, ok := pickPlayer(names)
	if !ok {
		return ErrNoPlayer
	}
	return conn.Object(player, mprisPath).CallWithContext(ctx, method, 0).Err
}

func (m *mprisSender) muteMic(ctx context.Context) error {
	if m.xdotool == "" {
		return ErrUnsupported
	}
	return exec.CommandContext(ctx, m.xdotool, "key", "XF86AudioMicMute").Run()
}
