// Package manifest handles bugsworld.toml project configuration.
package manifest

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/bugsworld/compiler"
	"github.com/chazu/bugsworld/pkg/bytecode"
)

// FileName is the name of the project configuration file.
const FileName = "bugsworld.toml"

// DefaultStorePath is the program store location relative to the project
// directory.
const DefaultStorePath = ".bugsworld/programs.db"

// Manifest represents a bugsworld.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Dialect DialectConfig `toml:"dialect"`
	VM      VMConfig      `toml:"vm"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`

	// Dir is the directory containing the bugsworld.toml file (set at load time).
	Dir string `toml:"-"`

	dialect *compiler.Dialect
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version,omitempty"`
}

// DialectConfig selects the BL primitive set and surface syntax.
type DialectConfig struct {
	Primitives  []string `toml:"primitives"`
	Connectives bool     `toml:"connectives"`
}

// VMConfig configures the resolver.
type VMConfig struct {
	MaxChain int   `toml:"max-chain"`
	Seed     int64 `toml:"seed"` // 0 = nondeterministic
}

// StoreConfig configures the program store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LogConfig configures logging verbosity and destination.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file,omitempty"`
}

// Default returns the configuration used when no bugsworld.toml exists.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	m.dialect = compiler.DefaultDialect
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Project.Name == "" {
		m.Project.Name = filepath.Base(m.Dir)
	}
	if len(m.Dialect.Primitives) == 0 {
		m.Dialect.Primitives = compiler.DefaultDialect.Primitives()
	}
	if m.VM.MaxChain <= 0 {
		m.VM.MaxChain = bytecode.DefaultMaxChain
	}
	if m.Store.Path == "" {
		m.Store.Path = DefaultStorePath
	}
}

// Load parses a bugsworld.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()

	m.dialect, err = compiler.NewDialect(m.Dialect.Primitives, m.Dialect.Connectives)
	if err != nil {
		return nil, fmt.Errorf("invalid [dialect] in %s: %w", path, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a bugsworld.toml file,
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

// LoadOrDefault is FindAndLoad falling back to Default(startDir).
func LoadOrDefault(startDir string) (*Manifest, error) {
	m, err := FindAndLoad(startDir)
	if err != nil || m != nil {
		return m, err
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	return Default(dir), nil
}

// Save writes m as dir/bugsworld.toml. An existing file is left untouched
// and reported as an error.
func Save(dir string, m *Manifest) error {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// BLDialect returns the dialect described by the [dialect] table.
func (m *Manifest) BLDialect() *compiler.Dialect {
	if m.dialect == nil {
		return compiler.DefaultDialect
	}
	return m.dialect
}

// Resolver builds a resolver from the [vm] table. A non-zero seed makes
// RANDOM conditions repeatable.
func (m *Manifest) Resolver() *bytecode.Resolver {
	opts := []bytecode.Option{bytecode.WithMaxChain(m.VM.MaxChain)}
	if m.VM.Seed != 0 {
		opts = append(opts, bytecode.WithRand(rand.New(rand.NewSource(m.VM.Seed))))
	}
	return bytecode.NewResolver(opts...)
}

// StorePath returns the absolute path of the program store.
func (m *Manifest) StorePath() string {
	if filepath.IsAbs(m.Store.Path) {
		return m.Store.Path
	}
	return filepath.Join(m.Dir, m.Store.Path)
}

// LogFilePath returns the absolute path of the log file, or "" for stderr.
func (m *Manifest) LogFilePath() string {
	if m.Log.File == "" || filepath.IsAbs(m.Log.File) {
		return m.Log.File
	}
	return filepath.Join(m.Dir, m.Log.File)
}
