package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/bugsworld/pkg/bytecode"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "hunters"
version = "0.1.0"

[dialect]
primitives = ["move", "turnleft", "turnright", "turnback", "skip"]
connectives = true

[vm]
max-chain = 500
seed = 42

[store]
path = "data/programs.db"

[log]
verbosity = 2
file = "bugs.log"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "hunters" {
		t.Errorf("project name = %q, want hunters", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	d := m.BLDialect()
	if !d.IsPrimitive("turnback") || d.IsPrimitive("infect") {
		t.Errorf("dialect primitives = %v, want turnback and no infect", d.Primitives())
	}
	if !d.Connectives() {
		t.Error("dialect connectives = false, want true")
	}
	if m.VM.MaxChain != 500 || m.VM.Seed != 42 {
		t.Errorf("vm = %+v, want max-chain 500 seed 42", m.VM)
	}
	if got, want := m.StorePath(), filepath.Join(m.Dir, "data", "programs.db"); got != want {
		t.Errorf("store path = %q, want %q", got, want)
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}
	if got, want := m.LogFilePath(), filepath.Join(m.Dir, "bugs.log"); got != want {
		t.Errorf("log file = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := m.BLDialect().Primitives(); len(got) != 5 || !m.BLDialect().IsPrimitive("infect") {
		t.Errorf("default primitives = %v", got)
	}
	if m.BLDialect().Connectives() {
		t.Error("default connectives = true, want false")
	}
	if m.VM.MaxChain != bytecode.DefaultMaxChain {
		t.Errorf("default max-chain = %d, want %d", m.VM.MaxChain, bytecode.DefaultMaxChain)
	}
	if m.Store.Path != DefaultStorePath {
		t.Errorf("default store path = %q, want %q", m.Store.Path, DefaultStorePath)
	}
	if m.LogFilePath() != "" {
		t.Errorf("default log file = %q, want stderr", m.LogFilePath())
	}
}

func TestLoadManifestRejectsBadPrimitive(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[dialect]
primitives = ["move", "turn-around"]
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for non-identifier primitive")
	}

	writeManifest(t, dir, `
[dialect]
primitives = ["move", "WHILE"]
`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for keyword primitive")
	}
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[project\nname=")
	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no bugsworld.toml exists")
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("LoadOrDefault error: %v", err)
	}
	if m == nil {
		t.Fatal("LoadOrDefault returned nil")
	}
	if m.Project.Name != filepath.Base(dir) {
		t.Errorf("default project name = %q, want %q", m.Project.Name, filepath.Base(dir))
	}
	if m.StorePath() != filepath.Join(dir, DefaultStorePath) {
		t.Errorf("default store path = %q", m.StorePath())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := Default(dir)
	m.Project.Name = "saved"
	m.Dialect.Connectives = true
	m.VM.Seed = 7

	if err := Save(dir, m); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save(dir, m); err == nil {
		t.Error("second Save should refuse to overwrite")
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Project.Name != "saved" || !loaded.BLDialect().Connectives() || loaded.VM.Seed != 7 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestResolverSeed(t *testing.T) {
	m := Default(t.TempDir())
	m.VM.Seed = 99
	m.VM.MaxChain = 10

	p := bytecode.NewProgram([]int{int(bytecode.OpJumpIfNotRandom), 3, int(bytecode.OpMove), int(bytecode.OpTurnLeft)})
	run := func() []int {
		r := m.Resolver()
		if r.MaxChain() != 10 {
			t.Fatalf("max chain = %d, want 10", r.MaxChain())
		}
		var out []int
		for i := 0; i < 16; i++ {
			pc, err := r.NextPrimitive(p, 0, bytecode.Empty)
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, pc)
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded resolvers diverged at %d: %v vs %v", i, a, b)
		}
	}
}
