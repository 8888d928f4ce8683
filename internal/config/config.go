// Package config loads engine limits from an optional perlscope.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Limits are the resource knobs consumed once at engine construction.
// Zero values mean "no cap"; the fraction falls back to its default.
type Limits struct {
	MaxFiles           int     `toml:"max_files"`
	MaxSymbolsPerFile  int     `toml:"max_symbols_per_file"`
	MaxReparseFraction float64 `toml:"max_reparse_fraction"`
	TreeCacheSize      int     `toml:"tree_cache_size"`
	TableCacheSize     int     `toml:"table_cache_size"`
	ScanWorkers        int     `toml:"scan_workers"`
}

// Config is the full perlscope.toml shape.
type Config struct {
	Limits Limits `toml:"limits"`
}

// ManifestName is the per-workspace config file looked up by Find.
const ManifestName = "perlscope.toml"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxReparseFraction: 0.5,
			TreeCacheSize:      128,
			TableCacheSize:     256,
			ScanWorkers:        0, // 0 means GOMAXPROCS
		},
	}
}

// Load reads a config file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Find walks from startDir toward the filesystem root looking for a
// manifest, loading it when found. Absence is not an error.
func Find(startDir string) (Config, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Config{}, false, err
	}
	for {
		path := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, true, err
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, false, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), false, nil
		}
		dir = parent
	}
}

func (c Config) validate(path string) error {
	l := c.Limits
	if l.MaxFiles < 0 || l.MaxSymbolsPerFile < 0 || l.TreeCacheSize < 0 ||
		l.TableCacheSize < 0 || l.ScanWorkers < 0 {
		return fmt.Errorf("%s: limits must not be negative", path)
	}
	if l.MaxReparseFraction < 0 || l.MaxReparseFraction > 1 {
		return fmt.Errorf("%s: max_reparse_fraction must be within [0, 1]", path)
	}
	return nil
}
