// Package config loads scriptlint's optional project configuration from a
// .scriptlint.toml file. The config only supplies defaults for things the CLI
// can also set directly (renderer choice, prelude path, Info suppression,
// color policy); flags always win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultFilename is the name searched for next to the linted source file
// when no --config flag is given.
const DefaultFilename = ".scriptlint.toml"

// ColorMode controls when the fancy renderer applies ANSI color.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

type marshaledConfig struct {
	Format       string `toml:"format"`
	Prelude      string `toml:"prelude"`
	SuppressInfo bool   `toml:"suppress-info"`
	Color        string `toml:"color"`
}

// Config holds the loaded project configuration with all defaults applied.
type Config struct {
	// Format is the default diagnostic renderer, "tool" or "fancy". Empty
	// means the CLI decides (fancy on a terminal, tool otherwise).
	Format string

	// Prelude is a path to a prelude file defining built-in names, resolved
	// relative to the config file's own directory if not absolute. Empty
	// means no prelude.
	Prelude string

	// SuppressInfo drops Info-severity diagnostics from the output.
	SuppressInfo bool

	// Color is when the fancy renderer colorizes output.
	Color ColorMode
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{Color: ColorAuto}
}

// Load reads and validates the TOML config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %q: %w", path, err)
	}
	return Decode(string(data), filepath.Dir(path))
}

// Decode parses TOML config text. Relative prelude paths are resolved against
// dir.
func Decode(text string, dir string) (Config, error) {
	var mc marshaledConfig
	meta, err := toml.Decode(text, &mc)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if len(meta.Undecoded()) > 0 {
		return Config{}, fmt.Errorf("config: unrecognized key %q", meta.Undecoded()[0].String())
	}

	conf := Default()

	switch mc.Format {
	case "", "tool", "fancy":
		conf.Format = mc.Format
	default:
		return Config{}, fmt.Errorf("config: format must be 'tool' or 'fancy', not %q", mc.Format)
	}

	switch ColorMode(mc.Color) {
	case "", ColorAuto, ColorAlways, ColorNever:
		if mc.Color != "" {
			conf.Color = ColorMode(mc.Color)
		}
	default:
		return Config{}, fmt.Errorf("config: color must be 'auto', 'always', or 'never', not %q", mc.Color)
	}

	if mc.Prelude != "" {
		if filepath.IsAbs(mc.Prelude) {
			conf.Prelude = mc.Prelude
		} else {
			conf.Prelude = filepath.Join(dir, mc.Prelude)
		}
	}

	conf.SuppressInfo = mc.SuppressInfo

	return conf, nil
}

// LoadNear looks for DefaultFilename in the directory containing sourceFile
// and loads it if present. A missing config file is not an error; the
// defaults are returned.
func LoadNear(sourceFile string) (Config, error) {
	path := filepath.Join(filepath.Dir(sourceFile), DefaultFilename)
	conf, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	return conf, nil
}
