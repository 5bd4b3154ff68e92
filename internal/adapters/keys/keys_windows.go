//go:build windows

package keys

import (
	"context"
	"fmt"

	"github.com/okian/padmixer/internal/domain/action"
	"golang.org/x/sys/windows"
)

const (
	vkVolumeMute     = 0xAD
	vkMediaNextTrack = 0xB0
	vkMediaPrevTrack = 0xB1
	vkMediaPlayPause = 0xB3

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
)

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	procKeybdEvent = user32.NewProc("keybd_event")
)

type keybdSender struct{}

// New returns the platform key sender.
func New() Sender {
	return keybdSender{}
}

func (keybdSender) Send(_ context.Context, key action.TransportKey) error {
	var vk uintptr
	switch key {
	case action.Previous:
		vk = vkMediaPrevTrack
	case action.PlayPause:
		vk = vkMediaPlayPause
	case action.Next:
		vk = vkMediaNextTrack
	case action.MuteMic:
		vk = vkVolumeMute
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := procKeybdEvent.Find(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	procKeybdEvent.Call(vk, 0, keyeventfExtendedKey, 0)
	procKeybdEvent.Call(vk, 0, keyeventfExtendedKey|keyeventfKeyUp, 0)
	return nil
}
