package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/padmixer/internal/domain/mapping"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/domain/types"
)

// AliasMatch shows which device an alias would switch to.
type AliasMatch struct {
	Alias     string `json:"alias"`
	Substring string `json:"substring"`
	Device    string `json:"device,omitempty"`
}

// Report is everything the probe gathered.
type Report struct {
	Ports       []string        `json:"ports,omitempty"`
	Sessions    []model.Session `json:"sessions,omitempty"`
	Devices     []model.Device  `json:"devices,omitempty"`
	Aliases     []AliasMatch    `json:"aliases,omitempty"`
	Bindings    []types.Binding `json:"bindings,omitempty"`
	BackendErr  string          `json:"backend_error,omitempty"`
	sessionsSet bool
	devicesSet  bool
}

// Gather collects the sections selected by cfg.
func Gather(ctx context.Context, cfg *Config, env Env) *Report {
	all := cfg.All()
	r := &Report{}

	if (all || cfg.Ports) && env.Ports != nil {
		r.Ports = env.Ports()
	}
	if (all || cfg.Sessions) && env.Backend != nil {
		r.sessionsSet = true
		sessions, err := env.Backend.Sessions(ctx)
		if err != nil {
			r.BackendErr = err.Error()
		}
		r.Sessions = sessions
	}
	if (all || cfg.Devices) && env.Backend != nil {
		r.devicesSet = true
		devices, err := env.Backend.OutputDevices(ctx)
		if err != nil {
			r.BackendErr = err.Error()
		}
		r.Devices = devices
		r.Aliases = matchAliases(env.Table.Devices(), devices)
	}
	if all || cfg.Mapping {
		r.Bindings = env.Table.Bindings()
	}
	return r
}

func matchAliases(aliases mapping.DeviceAliases, devices []model.Device) []AliasMatch {
	out := make([]AliasMatch, 0, len(aliases))
	for alias, substr := range aliases {
		m := AliasMatch{Alias: alias, Substring: substr}
		if d, ok := model.FindDevice(devices, substr); ok {
			m.Device = d.Name
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

// WriteJSON encodes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText prints r as aligned tables. Styling is dropped when w is not a terminal.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	renderer := lipgloss.NewRenderer(w)
	heading := renderer.NewStyle().Bold(true).Underline(true)
	missing := renderer.NewStyle().Foreground(lipgloss.Color("9"))

	if r.Ports != nil {
		fmt.Fprintln(tw, heading.Render("MIDI input ports:"))
		if len(r.Ports) == 0 {
			fmt.Fprintln(tw, "  (none)")
		}
		for i, p := range r.Ports {
			fmt.Fprintf(tw, "  %d\t%s\n", i, p)
		}
		fmt.Fprintln(tw)
	}
	if r.BackendErr != "" {
		fmt.Fprintf(tw, "audio backend: %s\n\n", r.BackendErr)
	}
	if r.sessionsSet {
		fmt.Fprintln(tw, heading.Render("Audio sessions:"))
		if len(r.Sessions) == 0 {
			fmt.Fprintln(tw, "  (none)")
		}
		for _, s := range r.Sessions {
			fmt.Fprintf(tw, "  %s\t%s\n", s.Name, s.Handle)
		}
		fmt.Fprintln(tw)
	}
	if r.devicesSet {
		fmt.Fprintln(tw, heading.Render("Output devices:"))
		if len(r.Devices) == 0 {
			fmt.Fprintln(tw, "  (none)")
		}
		for _, d := range r.Devices {
			fmt.Fprintf(tw, "  %s\t%s\n", d.Name, d.ID)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, heading.Render("Device aliases:"))
		for _, a := range r.Aliases {
			dev := a.Device
			if dev == "" {
				dev = missing.Render("(no match)")
			}
			fmt.Fprintf(tw, "  %s\t%q\t-> %s\n", a.Alias, a.Substring, dev)
		}
		fmt.Fprintln(tw)
	}
	if r.Bindings != nil {
		fmt.Fprintln(tw, heading.Render("Mapping:"))
		for _, b := range r.Bindings {
			fmt.Fprintf(tw, "  %s\t%d\t%s\n", b.Kind, b.Identifier, b.Action)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
