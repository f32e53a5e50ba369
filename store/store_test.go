package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/bugsworld/pkg/bytecode"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "programs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var hunter = bytecode.NewProgram([]int{13, 9, 0, 15, 7, 6, 0, 2, 4, 1})

func TestPutGet(t *testing.T) {
	s := openTemp(t)

	hash, err := s.Put("hunter", hunter)
	require.NoError(t, err)
	want, err := hunter.Hash()
	require.NoError(t, err)
	assert.Equal(t, want, hash)

	got, err := s.Get("hunter")
	require.NoError(t, err)
	assert.True(t, hunter.Equal(got))
}

func TestPutReplaces(t *testing.T) {
	s := openTemp(t)
	_, err := s.Put("p", hunter)
	require.NoError(t, err)

	other := bytecode.NewProgram([]int{4})
	hash, err := s.PutWithSource("p", other, "abc")
	require.NoError(t, err)

	e, err := s.Info("p")
	require.NoError(t, err)
	assert.Equal(t, hash, e.Hash)
	assert.Equal(t, 1, e.Words)
	assert.Equal(t, "abc", e.SourceHash)
	assert.False(t, e.Updated.IsZero())
}

func TestPutRejectsEmptyName(t *testing.T) {
	s := openTemp(t)
	_, err := s.Put("  ", hunter)
	assert.Error(t, err)
}

func TestNotFound(t *testing.T) {
	s := openTemp(t)

	_, err := s.Get("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.Info("ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Delete("ghost"), ErrNotFound))
}

func TestListAndDelete(t *testing.T) {
	s := openTemp(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Put(name, hunter)
		require.NoError(t, err)
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "mid", entries[1].Name)
	assert.Equal(t, "zeta", entries[2].Name)
	assert.Equal(t, hunter.Len(), entries[0].Words)

	names, err := s.FindByHash(entries[0].Hash)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	require.NoError(t, s.Delete("mid"))
	entries, err = s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReopenKeepsPrograms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Put("hunter", hunter)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get("hunter")
	require.NoError(t, err)
	assert.True(t, hunter.Equal(got))
}

func TestGetDetectsCorruption(t *testing.T) {
	s := openTemp(t)
	_, err := s.Put("hunter", hunter)
	require.NoError(t, err)

	_, err = s.db.Exec("UPDATE programs SET hash = 'deadbeef' WHERE name = 'hunter'")
	require.NoError(t, err)

	_, err = s.Get("hunter")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestMemoryStore(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Put("p", hunter)
	require.NoError(t, err)
	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
