// Package config loads slotctl configuration.
//
// Sources are layered in this order, later ones winning:
//
//  1. the embedded defaults (embedded/defaults.yml)
//  2. the config file: --config, else slotctl/config.yml (or config.toml)
//     in the XDG config directories
//  3. SLOTCTL_* environment variables, where a double underscore separates
//     sections and a single underscore becomes a dash
//     (SLOTCTL_GENERAL__WWW_PATH sets general.www-path)
//
// The merged result is decoded into Config and checked once by Validate,
// which reports every problem in a single aggregated error.
package config
