package probe

import "io"

// ShowHelp prints usage information for the probe tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `padmixer probe
==============

Shows what padmixer sees, so the mapping document can be filled in.

Usage:
  go run ./cmd/probe [options]

Options:
  -ports      List MIDI input ports
  -sessions   List audio sessions reported by the backend
  -devices    List output devices and which one each alias selects
  -mapping    Print the effective mapping table
  -watch      Print decoded MIDI events until interrupted
  -json       Emit the report as JSON
  -help       Show this help message

With no section flag every section is printed. The MIDI device, mapping
path and mixer binary come from the usual PADMIXER_* configuration.

Examples:
  # Which substring should audio_devices use?
  go run ./cmd/probe -devices

  # Which note does each pad send?
  go run ./cmd/probe -watch
`)
}
