package audio

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/padmixer/internal/domain/model"
)

// svclColumns is the listing layout requested from svcl.
const svclColumns = "Name,Type,Direction,Device Name,Process Path,Item ID,Command-Line Friendly ID"

// SoundVolumeBackend drives Windows Core Audio through NirSoft's svcl.exe.
type SoundVolumeBackend struct {
	opts options
}

// NewSoundVolume creates an svcl-backed mixer.
func NewSoundVolume(opts ...Option) *SoundVolumeBackend {
	return &SoundVolumeBackend{opts: buildOptions("svcl.exe", opts)}
}

func (s *SoundVolumeBackend) Name() string { return "svcl" }

// Probe checks that svcl runs and produces a listing.
func (s *SoundVolumeBackend) Probe(ctx context.Context) error {
	if _, err := s.rows(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	return nil
}

type svclRow map[string]string

func (s *SoundVolumeBackend) rows(ctx context.Context) ([]svclRow, error) {
	out, err := s.opts.runner(ctx, s.opts.binary, "/scomma", "", "/Columns", svclColumns)
	if err != nil {
		return nil, err
	}
	return parseSvcl(out)
}

func parseSvcl(out []byte) ([]svclRow, error) {
	out = bytes.TrimPrefix(out, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedOutput, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty listing", ErrUnexpectedOutput)
	}

	header := records[0]
	rows := make([]svclRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(svclRow, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[strings.TrimSpace(col)] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SoundVolumeBackend) Sessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Session
	for _, row := range rows {
		if row["Type"] != "Application" || row["Direction"] != "Render" {
			continue
		}
		name := filepath.Base(strings.ReplaceAll(row["Process Path"], `\`, "/"))
		if name == "." || name == "/" {
			name = row["Name"]
		}
		handle := row["Command-Line Friendly ID"]
		if name == "" || handle == "" {
			continue
		}
		out = append(out, model.Session{Name: name, Handle: handle})
	}
	return out, nil
}

func (s *SoundVolumeBackend) OutputDevices(ctx context.Context) ([]model.Device, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Device
	for _, row := range rows {
		if row["Type"] != "Device" || row["Direction"] != "Render" {
			continue
		}
		name := row["Name"]
		if dev := row["Device Name"]; dev != "" {
			name = fmt.Sprintf("%s (%s)", name, dev)
		}
		id := row["Item ID"]
		if id == "" {
			id = row["Command-Line Friendly ID"]
		}
		out = append(out, model.Device{Name: name, ID: id})
	}
	return out, nil
}

func (s *SoundVolumeBackend) SetDefaultOutput(ctx context.Context, id string) error {
	_, err := s.opts.runner(ctx, s.opts.binary, "/SetDefault", id, "all")
	return err
}

func (s *SoundVolumeBackend) SetSessionVolume(ctx context.Context, handle string, v float64) error {
	if handle == "" {
		return ErrInvalidHandle
	}
	_, err := s.opts.runner(ctx, s.opts.binary, "/SetVolume", handle, strconv.Itoa(percent(v)))
	return err
}

func (s *SoundVolumeBackend) SetMasterVolume(ctx context.Context, v float64) error {
	_, err := s.opts.runner(ctx, s.opts.binary, "/SetVolume", "DefaultRenderDevice", strconv.Itoa(percent(v)))
	return err
}
