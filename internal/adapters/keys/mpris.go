package keys

import (
	"sort"
	"strings"

	"github.com/okian/padmixer/internal/domain/action"
)

const (
	mprisPrefix    = "org.mpris.MediaPlayer2."
	mprisPath      = "/org/mpris/MediaPlayer2"
	mprisInterface = "org.mpris.MediaPlayer2.Player"
)

// mprisMethod maps a transport key to its MPRIS Player method.
func mprisMethod(key action.TransportKey) (string, bool) {
	switch key {
	case action.Previous:
		return mprisInterface + ".Previous", true
	case action.PlayPause:
		return mprisInterface + ".PlayPause", true
	case action.Next:
		return mprisInterface + ".Next", true
	default:
		return "", false
	}
}

// pickPlayer returns the lexically first MPRIS bus name so repeated presses
// go to the same player.
func pickPlayer(names []string) (string, bool) {
	var players []string
	for _, n := range names {
		if strings.HasPrefix(n, mprisPrefix) {
			players = append(players, n)
		}
	}
	if len(players) == 0 {
		return "", false
	}
	sort.Strings(players)
	return players[0], true
}
