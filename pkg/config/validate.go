package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/types"
)

// Validate checks the whole configuration and reports every problem found
// as one CONFIG_INVALID error wrapping a multierror.
func (c *Config) Validate() error {
	var result *multierror.Error

	paths := []struct {
		key   string
		value string
	}{
		{"general.tftpd-path", c.General.TftpdPath},
		{"general.www-path", c.General.WWWPath},
		{"general.image-path", c.General.ImagePath},
		{"general.openslx-base", c.General.OpenSLXBase},
		{"general.config-dir", c.General.ConfigDir},
	}
	for _, p := range paths {
		switch {
		case p.value == "":
			result = multierror.Append(result, fmt.Errorf("%s is required", p.key))
		case !filepath.IsAbs(p.value):
			result = multierror.Append(result, fmt.Errorf("%s must be absolute, got %q", p.key, p.value))
		}
	}

	if c.General.CommandTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("general.command-timeout must not be negative"))
	}

	if len(c.Images) == 0 {
		result = multierror.Append(result, fmt.Errorf("no images configured"))
	}
	if def := c.General.DefaultImage; def != "" {
		if _, ok := c.Images[def]; !ok {
			result = multierror.Append(result, fmt.Errorf("general.default-image %q is not a configured image", def))
		}
	}

	for _, key := range c.ImageKeys() {
		img := c.Images[key]
		prefix := "images." + key
		if img.Name == "" {
			result = multierror.Append(result, fmt.Errorf("%s.name is required", prefix))
		} else if filepath.Base(img.Name) != img.Name {
			result = multierror.Append(result, fmt.Errorf("%s.name must not contain a path separator", prefix))
		}
		result = validateCounts(result, prefix, img.Retention())

		areaKeys := make([]string, 0, len(img.Areas))
		for areaKey := range img.Areas {
			areaKeys = append(areaKeys, areaKey)
		}
		sort.Strings(areaKeys)
		for _, areaKey := range areaKeys {
			area, err := types.ParseAreaKind(areaKey)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s.areas: %w", prefix, err))
				continue
			}
			result = validateCounts(result, fmt.Sprintf("%s.areas.%s", prefix, area), img.RetentionFor(area))
		}
	}

	if result == nil {
		return nil
	}
	return errors.Wrap(result.ErrorOrNil(), errors.ErrConfigValid, "invalid configuration").
		WithDetail("problems", len(result.Errors))
}

func validateCounts(result *multierror.Error, prefix string, policy types.RetentionPolicy) *multierror.Error {
	counts := []struct {
		key   string
		value int
	}{
		{"keep-testing", policy.KeepTesting},
		{"keep-stable", policy.KeepStable},
		{"keep-oldstable", policy.KeepOldStable},
	}
	for _, c := range counts {
		if c.value < 0 {
			result = multierror.Append(result, fmt.Errorf("%s.%s must not be negative, got %d", prefix, c.key, c.value))
		}
	}
	return result
}
