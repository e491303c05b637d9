package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chazu/netfsck/manifest"
)

// settings collects every source of run configuration before resolve
// applies their precedence: flag, then positional argument, then the
// manifest.
type settings struct {
	Manifest    *manifest.Manifest
	Positional  string // tape_size argument, empty when absent
	TapeFlag    *int
	TimeoutFlag *int
	Verbose     bool
}

// runOptions is the resolved configuration for one run.
type runOptions struct {
	TapeSize  int
	Timeout   time.Duration
	Verbosity int
	LogFile   *string // nil logs to stderr
}

func (s settings) resolve() (runOptions, error) {
	m := s.Manifest
	if m == nil {
		m = manifest.Default()
	}

	opts := runOptions{
		TapeSize:  m.Run.TapeSize,
		Timeout:   m.Timeout(),
		Verbosity: verbosityFor(s.Verbose, m.Log.Verbosity),
	}

	switch {
	case s.TapeFlag != nil:
		opts.TapeSize = *s.TapeFlag
	case s.Positional != "":
		n, err := strconv.Atoi(s.Positional)
		if err != nil {
			return runOptions{}, fmt.Errorf("invalid tape size %q", s.Positional)
		}
		opts.TapeSize = n
	}
	if opts.TapeSize <= 0 {
		return runOptions{}, fmt.Errorf("tape size must be positive, got %d", opts.TapeSize)
	}

	if s.TimeoutFlag != nil {
		opts.Timeout = 0
		if *s.TimeoutFlag > 0 {
			opts.Timeout = time.Duration(*s.TimeoutFlag) * time.Millisecond
		}
	}

	if m.Log.File != "" {
		file := m.Log.File
		if m.Path != "" && !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(m.Path), file)
		}
		opts.LogFile = &file
	}

	return opts, nil
}

// verbosityFor raises the configured verbosity to debug when -v is given.
func verbosityFor(verbose bool, configured int) int {
	if verbose && configured < 2 {
		return 2
	}
	return configured
}

// loadManifest reads an explicit config file, or searches upward from the
// program's directory. Without either it returns the defaults.
func loadManifest(configPath, programPath string) (*manifest.Manifest, error) {
	if configPath != "" {
		return manifest.LoadFile(configPath)
	}

	m, err := manifest.FindAndLoad(filepath.Dir(programPath))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}
