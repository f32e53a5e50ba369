// Package store keeps a library of compiled BugsWorld programs in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/bugsworld/pkg/bytecode"
)

// ErrNotFound indicates the requested program doesn't exist.
var ErrNotFound = errors.New("program not found")

var log = commonlog.GetLogger("bugsworld.store")

// Entry describes a stored program without its words.
type Entry struct {
	Name       string
	Hash       string // hex SHA-256 of the CBOR encoding
	Words      int
	SourceHash string // content hash of the BL source, if recorded
	Updated    time.Time
}

// Store is a SQLite-backed program library keyed by name.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the store at path. Parent directories are created
// as needed; ":memory:" opens a private in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		name        TEXT PRIMARY KEY,
		hash        TEXT NOT NULL,
		words       INTEGER NOT NULL,
		source_hash TEXT NOT NULL DEFAULT '',
		data        BLOB NOT NULL,
		updated_at  INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened program store %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores p under name, replacing any previous program of that name, and
// returns its hash.
func (s *Store) Put(name string, p *bytecode.Program) (string, error) {
	return s.PutWithSource(name, p, "")
}

// PutWithSource is Put that also records the content hash of the BL source
// p was compiled from.
func (s *Store) PutWithSource(name string, p *bytecode.Program, sourceHash string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("saving program: empty name")
	}
	data, err := bytecode.MarshalProgram(p)
	if err != nil {
		return "", fmt.Errorf("encoding program %s: %w", name, err)
	}
	hash, err := p.Hash()
	if err != nil {
		return "", fmt.Errorf("hashing program %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO programs (name, hash, words, source_hash, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, hash, p.Len(), sourceHash, data, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("saving program %s: %w", name, err)
	}

	log.Infof("stored %s (%d words, %s)", name, p.Len(), hash[:12])
	return hash, nil
}

// Get loads the program stored under name. The stored hash is checked
// against the decoded program.
func (s *Store) Get(name string) (*bytecode.Program, error) {
	var (
		hash string
		data []byte
	)
	err := s.db.QueryRow("SELECT hash, data FROM programs WHERE name = ?", name).Scan(&hash, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("querying program %s: %w", name, err)
	}

	p, err := bytecode.UnmarshalProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", name, err)
	}
	got, err := p.Hash()
	if err != nil {
		return nil, err
	}
	if got != hash {
		log.Errorf("hash mismatch for %s: stored %s, computed %s", name, hash, got)
		return nil, fmt.Errorf("program %s is corrupt: hash mismatch", name)
	}
	return p, nil
}

// Info returns the entry for name without decoding the program.
func (s *Store) Info(name string) (Entry, error) {
	row := s.db.QueryRow(
		"SELECT name, hash, words, source_hash, updated_at FROM programs WHERE name = ?", name)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return e, err
}

// FindByHash returns the names of every program whose hash is hash.
func (s *Store) FindByHash(hash string) ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM programs WHERE hash = ? ORDER BY name", hash)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// List returns every stored entry ordered by name.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(
		"SELECT name, hash, words, source_hash, updated_at FROM programs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the program stored under name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM programs WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting program %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	log.Infof("deleted %s", name)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		updated int64
	)
	if err := sc.Scan(&e.Name, &e.Hash, &e.Words, &e.SourceHash, &updated); err != nil {
		return Entry{}, err
	}
	e.Updated = time.Unix(updated, 0)
	return e, nil
}
