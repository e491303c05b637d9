// Package manifest handles netfsck.toml run configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "netfsck.toml"

// Defaults applied to settings the file leaves out.
const (
	DefaultTapeSize  = 30000
	DefaultTimeoutMS = 1000
)

// Manifest represents a netfsck.toml configuration.
type Manifest struct {
	Run Run `toml:"run"`
	Log Log `toml:"log"`

	// Path is the file the manifest was loaded from (set at load time).
	Path string `toml:"-"`
}

// Run configures the interpreter.
type Run struct {
	TapeSize int `toml:"tape-size"`
	// TimeoutMS is the initial connection timeout. Zero or negative
	// disables it; a nil pointer means the key was absent.
	TimeoutMS *int `toml:"timeout-ms"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is found.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// Load parses a netfsck.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if m.Run.TapeSize < 0 {
		return nil, fmt.Errorf("%s: run.tape-size must be positive, got %d", path, m.Run.TapeSize)
	}

	m.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a netfsck.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Run.TapeSize == 0 {
		m.Run.TapeSize = DefaultTapeSize
	}
	if m.Run.TimeoutMS == nil {
		ms := DefaultTimeoutMS
		m.Run.TimeoutMS = &ms
	}
}

// Timeout returns the initial connection timeout; zero means none.
func (m *Manifest) Timeout() time.Duration {
	if m.Run.TimeoutMS == nil || *m.Run.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(*m.Run.TimeoutMS) * time.Millisecond
}
