// Package config loads the optional tetra.yaml project file. It
// generalizes the teacher's pkg/config (a handful of default
// constants) into a small struct decoded with gopkg.in/yaml.v3, since
// this toolchain's defaults span more than one value (backend choice,
// cache, metrics address).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults, mirroring the spirit of the teacher's DefaultPort const.
const (
	DefaultBackend     = "interp"
	DefaultCachePath   = "tetra_jit_cache.db"
	DefaultMetricsAddr = ""
)

// Config is the decoded shape of tetra.yaml.
type Config struct {
	Backend     string `yaml:"backend"`
	Cache       bool   `yaml:"cache"`
	CachePath   string `yaml:"cache_path"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads path if it exists, filling in defaults for anything the
// file doesn't set. A missing file is not an error: it returns the
// all-defaults Config.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Backend:   DefaultBackend,
		CachePath: DefaultCachePath,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.CachePath == "" {
		cfg.CachePath = DefaultCachePath
	}
	return cfg, nil
}
