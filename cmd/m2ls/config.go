package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/m2ls/pkg/util"
)

const defaultConfigPath = ".m2ls/config.yaml"

// ProjectConfig holds the contents of .m2ls/config.yaml.
type ProjectConfig struct {
	LogLevel     string   `yaml:"log_level"`
	LogFormat    string   `yaml:"log_format"`
	Watch        *bool    `yaml:"watch"`
	LibraryRoots []string `yaml:"library_roots"`
	MetricsAddr  string   `yaml:"metrics_addr"`
	Workspaces   []string `yaml:"workspaces"`
	CallLog      string   `yaml:"call_log"`
}

// loadProjectConfig reads the config file at path, or .m2ls/config.yaml in
// the current directory when path is empty.
// Returns nil (no error) if the default file does not exist. An explicit path
// that does not exist is an error.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// settings are the effective options after resolution.
type settings struct {
	LogLevel     util.LogLevel
	LogFormat    util.LogFormat
	Watch        bool
	LibraryRoots []string
	MetricsAddr  string
	Workspaces   []string
	CallLog      string
}

// overrides carries the flag values; the Set fields report whether a flag
// was given explicitly.
type overrides struct {
	LogLevel     string
	LogFormat    string
	Watch        bool
	WatchSet     bool
	LibraryRoots []string
	MetricsAddr  string
	CallLog      string
}

// resolveSettings applies the fallback chain to every option:
//  1. Explicit flag value
//  2. Value from the project config
//  3. Default
//
// Relative library roots and workspaces are made absolute against the
// working directory.
func resolveSettings(flags overrides, cfg *ProjectConfig) settings {
	if cfg == nil {
		cfg = &ProjectConfig{}
	}

	s := settings{
		LogLevel:    util.ParseLogLevel(firstNonEmpty(flags.LogLevel, cfg.LogLevel)),
		LogFormat:   util.LogFormat(firstNonEmpty(flags.LogFormat, cfg.LogFormat, string(util.FormatText))),
		Watch:       true,
		MetricsAddr: firstNonEmpty(flags.MetricsAddr, cfg.MetricsAddr),
		CallLog:     firstNonEmpty(flags.CallLog, cfg.CallLog),
	}

	switch {
	case flags.WatchSet:
		s.Watch = flags.Watch
	case cfg.Watch != nil:
		s.Watch = *cfg.Watch
	}

	roots := flags.LibraryRoots
	if len(roots) == 0 {
		roots = cfg.LibraryRoots
	}
	s.LibraryRoots = absPaths(roots)
	s.Workspaces = absPaths(cfg.Workspaces)

	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}
