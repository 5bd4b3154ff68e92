package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/padmixer/internal/domain/mapping"
)

// mappingDelim separates nested keys; device aliases may contain dots.
const mappingDelim = "::"

// LoadMappings reads the mapping document at path and builds its table.
// It never fails: on any problem it returns the built-in table together
// with an error wrapping ErrConfigInvalid for the caller to log.
func LoadMappings(path string) (*mapping.Table, error) {
	doc, err := readDocument(path)
	if err != nil {
		return mapping.Default(), fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	tbl, err := mapping.Build(doc)
	if err != nil {
		return mapping.Default(), fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
	}
	return tbl, nil
}

func readDocument(path string) (mapping.Document, error) {
	var doc mapping.Document
	if path == "" {
		return doc, fmt.Errorf("%w: no mappings path", ErrLoadConfig)
	}

	var parser koanf.Parser = json.Parser()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	}

	k := koanf.New(mappingDelim)
	if err := k.Load(file.Provider(path), parser); err != nil {
		return doc, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return doc, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return doc, nil
}

// ResolveMappingsPath makes a relative path relative to dir, the directory
// holding the executable. Absolute paths are returned unchanged.
func ResolveMappingsPath(path, dir string) string {
	if path == "" || filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
