// Package config loads harness options from a TOML file.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Options holds the tunable harness settings.
type Options struct {
	// IgnoreCase makes fixture path resolution case-insensitive.
	IgnoreCase bool `toml:"ignore_case"`

	// Color enables ANSI-colored failure rendering.
	Color bool `toml:"color"`

	// MaxPasses bounds the analyzer polling loop.
	MaxPasses int `toml:"max_passes"`

	// CancelAfter, when positive, hands the analyzer a token that
	// requests cancellation after that many polls. Used to exercise the
	// analyzer's cancellation handling.
	CancelAfter int `toml:"cancel_after"`
}

// Default returns the built-in option values.
func Default() Options {
	return Options{
		Color:     true,
		MaxPasses: 100,
	}
}

// Load reads options from path, layered over the defaults. A missing file
// is not an error; the defaults apply unchanged.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &opts); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if opts.MaxPasses <= 0 {
		opts.MaxPasses = Default().MaxPasses
	}
	return opts, nil
}
