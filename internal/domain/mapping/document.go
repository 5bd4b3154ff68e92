package mapping

// Document is the on-disk mapping configuration.
//
//	{
//	  "audio_devices": {"Headphones": "Headphones"},
//	  "midi_mappings": {
//	    "pads":  {"36": "previous_track"},
//	    "knobs": {"1": "volume:spotify"}
//	  }
//	}
type Document struct {
	AudioDevices map[string]string `koanf:"audio_devices" json:"audio_devices"`
	MidiMappings Bindings          `koanf:"midi_mappings" json:"midi_mappings"`
}

// Bindings holds the identifier -> action-string groups.
type Bindings struct {
	Pads  map[string]string `koanf:"pads" json:"pads"`
	Knobs map[string]string `koanf:"knobs" json:"knobs"`
}

// DefaultDocument returns the built-in mapping for an Akai LPD8 in its
// factory program: pads on notes 36-43, knobs on controllers 1-8.
func DefaultDocument() Document {
	return Document{
		AudioDevices: map[string]string{
			"Headphones":    "Headphones",
			"Desk Speakers": "Speakers",
		},
		MidiMappings: Bindings{
			Pads: map[string]string{
				"36": "previous_track",
				"37": "play_pause",
				"38": "next_track",
				"39": "switch_device:Headphones",
				"40": "launch:spotify.exe",
				"41": "mute_mic",
				"42": "launch:discord.exe",
				"43": "switch_device:Desk Speakers",
			},
			Knobs: map[string]string{
				"1": "volume:spotify",
				"2": "volume:discord",
				"3": "volume:mic",
				"4": "volume:master",
				"5": "volume:chrome",
				"6": "volume:app1",
				"7": "volume:app2",
				"8": "volume:master",
			},
		},
	}
}
