package config

import (
	"sort"
	"time"

	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/types"
)

// Config is the complete slotctl configuration
type Config struct {
	General General          `koanf:"general" yaml:"general" toml:"general" json:"general"`
	Images  map[string]Image `koanf:"images" yaml:"images" toml:"images" json:"images"`

	// Source is the config file that was loaded, empty when none was found
	Source string `koanf:"-" yaml:"-" toml:"-" json:"-"`
}

// General holds installation wide settings
type General struct {
	DefaultImage   string        `koanf:"default-image" yaml:"default-image" toml:"default-image" json:"defaultImage"`
	TftpdPath      string        `koanf:"tftpd-path" yaml:"tftpd-path" toml:"tftpd-path" json:"tftpdPath"`
	WWWPath        string        `koanf:"www-path" yaml:"www-path" toml:"www-path" json:"wwwPath"`
	ImagePath      string        `koanf:"image-path" yaml:"image-path" toml:"image-path" json:"imagePath"`
	OpenSLXBase    string        `koanf:"openslx-base" yaml:"openslx-base" toml:"openslx-base" json:"openslxBase"`
	ConfigDir      string        `koanf:"config-dir" yaml:"config-dir" toml:"config-dir" json:"configDir"`
	DNBD3Servers   []string      `koanf:"dnbd3-servers" yaml:"dnbd3-servers" toml:"dnbd3-servers" json:"dnbd3Servers"`
	CommandTimeout time.Duration `koanf:"command-timeout" yaml:"command-timeout" toml:"command-timeout" json:"commandTimeout"`
}

// Image describes one network-boot image and its retention policy
type Image struct {
	Name          string `koanf:"name" yaml:"name" toml:"name" json:"name"`
	Remote        string `koanf:"remote" yaml:"remote" toml:"remote" json:"remote"`
	Stage32Name   string `koanf:"stage32-name" yaml:"stage32-name" toml:"stage32-name" json:"stage32Name"`
	Config        string `koanf:"config" yaml:"config" toml:"config" json:"config"`
	KeepTesting   int    `koanf:"keep-testing" yaml:"keep-testing" toml:"keep-testing" json:"keepTesting"`
	KeepStable    int    `koanf:"keep-stable" yaml:"keep-stable" toml:"keep-stable" json:"keepStable"`
	KeepOldStable int    `koanf:"keep-oldstable" yaml:"keep-oldstable" toml:"keep-oldstable" json:"keepOldStable"`

	// Areas overrides retention counts per area (boot, web, image)
	Areas map[string]AreaPolicy `koanf:"areas" yaml:"areas,omitempty" toml:"areas,omitempty" json:"areas,omitempty"`
}

// AreaPolicy holds optional per-area retention overrides. Unset counts
// fall back to the image's counts.
type AreaPolicy struct {
	KeepTesting   *int `koanf:"keep-testing" yaml:"keep-testing,omitempty" toml:"keep-testing,omitempty" json:"keepTesting,omitempty"`
	KeepStable    *int `koanf:"keep-stable" yaml:"keep-stable,omitempty" toml:"keep-stable,omitempty" json:"keepStable,omitempty"`
	KeepOldStable *int `koanf:"keep-oldstable" yaml:"keep-oldstable,omitempty" toml:"keep-oldstable,omitempty" json:"keepOldStable,omitempty"`
}

// Retention returns the image-wide retention policy
func (i Image) Retention() types.RetentionPolicy {
	return types.RetentionPolicy{
		KeepTesting:   i.KeepTesting,
		KeepStable:    i.KeepStable,
		KeepOldStable: i.KeepOldStable,
	}
}

// RetentionFor returns the retention policy of one area, applying overrides
func (i Image) RetentionFor(area types.AreaKind) types.RetentionPolicy {
	policy := i.Retention()
	override, ok := i.Areas[string(area)]
	if !ok {
		return policy
	}
	if override.KeepTesting != nil {
		policy.KeepTesting = *override.KeepTesting
	}
	if override.KeepStable != nil {
		policy.KeepStable = *override.KeepStable
	}
	if override.KeepOldStable != nil {
		policy.KeepOldStable = *override.KeepOldStable
	}
	return policy
}

// Image looks up an image by its config key. An empty key selects the
// default image.
func (c *Config) Image(key string) (Image, error) {
	if key == "" {
		key = c.General.DefaultImage
	}
	if key == "" {
		return Image{}, errors.New(errors.ErrImageUnknown, "no image given and no default-image configured")
	}
	img, ok := c.Images[key]
	if !ok {
		return Image{}, errors.Newf(errors.ErrImageUnknown, "image %q is not configured", key).
			WithDetail("known", c.ImageKeys())
	}
	return img, nil
}

// ImageKeys returns the configured image keys, sorted
func (c *Config) ImageKeys() []string {
	keys := make([]string, 0, len(c.Images))
	for k := range c.Images {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
