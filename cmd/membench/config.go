// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/toole-brendan/membench/sweep"
)

const (
	defaultConfigFilename = "membench.yaml"
	defaultLogFilename    = "membench.log"
)

// config holds every setting the CLI accepts. Command-line flags are
// parsed first; an optional YAML file then fills in only the fields
// the flags left at their zero value, so a file-only setting survives
// an invocation that omits the corresponding flag.
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to a YAML configuration file"`
	LogDir     string `long:"logdir" description:"Directory to write the rotated log file to; empty disables file logging"`
	Debug      bool   `long:"debug" description:"Enable debug-level logging"`

	Op         string `short:"o" long:"op" description:"Operation to run: read-latency, write-latency, read-bandwidth, write-bandwidth, detect-cache" default:"detect-cache"`
	Size       uint64 `short:"s" long:"size" description:"Working-set size in bytes for read-latency/write-latency/read-bandwidth/write-bandwidth"`
	Iterations uint64 `short:"i" long:"iterations" description:"Override the auto-planned iteration count; 0 selects the automatic planner"`

	SweepMinSize         uint64 `long:"sweep-min-size" description:"Override the detect-cache sweep's smallest working-set size in bytes; 0 selects the package default"`
	SweepMaxSize         uint64 `long:"sweep-max-size" description:"Override the detect-cache sweep's largest working-set size in bytes; 0 selects the package default"`
	SweepPointsPerOctave int    `long:"sweep-points-per-octave" description:"Override the detect-cache sweep's samples per doubling; 0 selects the package default"`
}

// fileConfig mirrors the subset of config that may come from YAML;
// command-line flags always take precedence over these values.
type fileConfig struct {
	LogDir string `yaml:"logdir"`
	Debug  bool   `yaml:"debug"`

	Sweep struct {
		MinSize         uint64 `yaml:"min_size"`
		MaxSize         uint64 `yaml:"max_size"`
		PointsPerOctave int    `yaml:"points_per_octave"`
	} `yaml:"sweep"`
}

// loadConfig parses command-line flags, merges in an optional YAML
// file, and returns the effective configuration plus any positional
// arguments go-flags left over.
func loadConfig() (*config, []string, error) {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	rest, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	path := cfg.ConfigFile
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			candidate := filepath.Join(cwd, defaultConfigFilename)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	if path != "" {
		if err := mergeFileConfig(path, &cfg); err != nil {
			return nil, nil, err
		}
	}

	return &cfg, rest, nil
}

// mergeFileConfig reads a YAML config file and fills in any field of
// cfg the caller did not already set via a command-line flag.
func mergeFileConfig(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.LogDir == "" {
		cfg.LogDir = fc.LogDir
	}
	if !cfg.Debug {
		cfg.Debug = fc.Debug
	}
	if cfg.SweepMinSize == 0 {
		cfg.SweepMinSize = fc.Sweep.MinSize
	}
	if cfg.SweepMaxSize == 0 {
		cfg.SweepMaxSize = fc.Sweep.MaxSize
	}
	if cfg.SweepPointsPerOctave == 0 {
		cfg.SweepPointsPerOctave = fc.Sweep.PointsPerOctave
	}
	return nil
}

// sweepOptions translates the effective CLI/YAML configuration into
// the sweep.Options detect-cache runs with.
func (c *config) sweepOptions() sweep.Options {
	return sweep.Options{
		MinSize:         c.SweepMinSize,
		MaxSize:         c.SweepMaxSize,
		PointsPerOctave: c.SweepPointsPerOctave,
	}
}
