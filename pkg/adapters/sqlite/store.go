// Package sqlite persists the record store in a SQLite database. Records are
// served from an in-memory store loaded at open time; every change set is
// written through in one transaction before other listeners see it.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/aretw0/rabbithole/pkg/adapters/memory"
	"github.com/aretw0/rabbithole/pkg/core"
)

// ErrNoPath is returned by Open when Config.Path is empty.
var ErrNoPath = errors.New("sqlite: database path required")

const schema = `CREATE TABLE IF NOT EXISTS records (
	title  TEXT PRIMARY KEY,
	fields TEXT NOT NULL
)`

// Config holds the configuration for the SQLite store.
type Config struct {
	Path        string // File path, or ":memory:"
	Logger      *slog.Logger
	EventBuffer int
}

// Store is a memory.Store whose contents are mirrored to SQLite.
type Store struct {
	*memory.Store
	db          *sql.DB
	path        string
	logger      *slog.Logger
	unsubscribe func()

	writes   atomic.Uint64
	failures atomic.Uint64
}

// Open opens or creates the database and loads its records.
func Open(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, ErrNoPath
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", config.Path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{
		Store:  memory.NewStore(memory.Config{Logger: logger, EventBuffer: config.EventBuffer}),
		db:     db,
		path:   config.Path,
		logger: logger,
	}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.unsubscribe = s.Store.Subscribe(s.persist)
	logger.Debug("sqlite store opened", "path", config.Path, "records", len(s.Titles()))
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT title, fields FROM records ORDER BY title`)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var title, raw string
		if err := rows.Scan(&title, &raw); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}
		var fields core.Fields
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return fmt.Errorf("decode %q: %w", title, err)
		}
		records = append(records, core.NewRecord(title, fields))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	s.Store.Batch(func() {
		for _, r := range records {
			s.Store.Put(r)
		}
	})
	return nil
}

// persist writes one change set. Listeners cannot fail, so errors are
// logged and counted.
func (s *Store) persist(changes core.ChangeSet) {
	if err := s.write(changes); err != nil {
		s.failures.Add(1)
		s.logger.Error("sqlite write failed", "changes", changes.String(), "error", err)
		return
	}
	s.writes.Add(1)
}

func (s *Store) write(changes core.ChangeSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, title := range changes.Titles() {
		r, ok := s.Store.Get(title)
		if !ok {
			if _, err := tx.Exec(`DELETE FROM records WHERE title = ?`, title); err != nil {
				return fmt.Errorf("delete %q: %w", title, err)
			}
			continue
		}
		raw, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("encode %q: %w", title, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO records (title, fields) VALUES (?, ?)
			 ON CONFLICT(title) DO UPDATE SET fields = excluded.fields`,
			title, string(raw),
		); err != nil {
			return fmt.Errorf("upsert %q: %w", title, err)
		}
	}
	return tx.Commit()
}

// Close stops persisting and closes the database.
func (s *Store) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	return s.db.Close()
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
