package config

import (
	"bytes"
	"encoding/json"

	"github.com/openslx/slotctl/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DumpFormat selects the encoding used by Dump
type DumpFormat string

const (
	DumpYAML DumpFormat = "yaml"
	DumpTOML DumpFormat = "toml"
	DumpJSON DumpFormat = "json"
)

// ParseDumpFormat converts a flag value into a DumpFormat
func ParseDumpFormat(s string) (DumpFormat, error) {
	switch DumpFormat(s) {
	case DumpYAML, DumpTOML, DumpJSON:
		return DumpFormat(s), nil
	case "yml":
		return DumpYAML, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown dump format %q (use yaml, toml or json)", s)
	}
}

// Dump encodes the effective configuration
func Dump(cfg *Config, format DumpFormat) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case DumpTOML:
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config as toml")
		}
	case DumpJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config as json")
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config as yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode config as yaml")
		}
	}

	return buf.Bytes(), nil
}
