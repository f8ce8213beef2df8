package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/logging"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "SLOTCTL_"

// configNames are searched for in the XDG config directories
var configNames = []string{
	"slotctl/config.yml",
	"slotctl/config.yaml",
	"slotctl/config.toml",
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// Path is an explicit config file. It must exist when set.
	Path string
	// SkipEnv disables SLOTCTL_* overrides
	SkipEnv bool
	// Set holds key=value overrides applied last, e.g.
	// images.bwlp.keep-testing=5
	Set []string
}

// Load merges defaults, the config file and the environment into a Config.
// The result is not validated; call Validate before using it.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. Config file
	path, err := findConfigFile(opts.Path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	} else {
		logger.Debug().Msg("No config file found, using defaults")
	}

	// 3. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
		}
	}

	// 4. Command line overrides
	if len(opts.Set) > 0 {
		overrides, err := parseOverrides(opts.Set)
		if err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := decode(k)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// LoadDefaults returns the embedded defaults only
func LoadDefaults() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}
	return decode(k)
}

func decode(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	return &cfg, nil
}

// parseOverrides turns key=value pairs into a flat koanf map
func parseOverrides(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "override %q is not key=value", pair).
				WithDetail("override", pair)
		}
		out[key] = value
	}
	return out, nil
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", explicit).
				WithDetail("path", explicit)
		}
		return explicit, nil
	}
	for _, name := range configNames {
		if path, err := xdg.SearchConfigFile(name); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser()
	default:
		return yaml.Parser()
	}
}

// envKey maps SLOTCTL_GENERAL__WWW_PATH to general.www-path
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.Split(s, "__")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "_", "-")
	}
	return strings.Join(parts, ".")
}
