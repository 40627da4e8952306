// Package store provides the optional SQLite-backed persistence side
// channel for matched scan results (spec §4.J).
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure Go SQLite driver, no cgo
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite connection holding one append-only table of
// matched results. It is optional: a scan with no -store flag never
// constructs one, and the scanner package depends only on the narrow
// scanner.Store interface, not on this package directly.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at path and brings its
// schema up to date via embedded migrations, mirroring the teacher's
// iofs+sqlite.WithInstance+migrate.NewWithInstance wiring.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	dbDriver, err := sqlite.WithInstance(s.conn, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("up: %w", err)
	}
	return nil
}

// RecordMatch appends one row to the matches table. It implements
// scanner.Store.
func (s *Store) RecordMatch(ctx context.Context, runID, peer string, port int, body []byte, class string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO matches (run_id, peer, port, response, classification) VALUES (?, ?, ?, ?, ?)`,
		runID, peer, port, body, class,
	)
	if err != nil {
		return fmt.Errorf("store: insert match: %w", err)
	}
	return nil
}

// CountByRun returns the number of matches recorded for a given run ID.
// The management API's stats endpoint does not call it.
func (s *Store) CountByRun(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Health checks database connectivity, used by the management API's
// health endpoint when a store is attached.
func (s *Store) Health() error {
	return s.conn.Ping()
}
