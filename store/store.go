// Package store persists finished sorting sessions in SQLite.
//
// Store is safe for concurrent use; database/sql handles pooling and
// serialization, and every operation is a single statement.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wastewise-india/sortline/sim"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// ErrRunNotFound is returned by GetRun for an unknown session id.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is the final tally of one session.
type RunRecord struct {
	ID         string    `json:"id" msgpack:"id"` // session UUID
	Seed       int64     `json:"seed" msgpack:"seed"`
	ClockMs    int64     `json:"clock_ms" msgpack:"clock_ms"`
	FinishedAt time.Time `json:"finished_at" msgpack:"finished_at"`
	Stats      sim.Stats `json:"stats" msgpack:"stats"`
}

// NewRunRecord builds a record from the last snapshot of a session.
func NewRunRecord(snap sim.Snapshot, seed int64, finishedAt time.Time) RunRecord {
	return RunRecord{
		ID:         snap.SessionID,
		Seed:       seed,
		ClockMs:    snap.Clock,
		FinishedAt: finishedAt,
		Stats:      snap.Stats,
	}
}

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath. ":memory:" gives a
// private in-process database.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// every pooled connection must see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	logrus.Debugf("Run store opened at %s", dbPath)
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		clock_ms INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		total_processed INTEGER NOT NULL,
		diverted INTEGER NOT NULL,
		cleaned INTEGER NOT NULL,
		scrapped INTEGER NOT NULL,
		recovered INTEGER NOT NULL,
		escaped INTEGER NOT NULL,
		recovery_pct INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts rec, replacing any earlier record with the same id.
func (s *Store) SaveRun(ctx context.Context, rec RunRecord) error {
	if rec.ID == "" {
		return errors.New("save run: empty id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, seed, clock_ms, finished_at, total_processed, diverted, cleaned, scrapped, recovered, escaped, recovery_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Seed, rec.ClockMs, rec.FinishedAt.UnixMilli(),
		rec.Stats.TotalProcessed, rec.Stats.Diverted, rec.Stats.Cleaned, rec.Stats.Scrapped,
		rec.Stats.Recovered, rec.Stats.Escaped, rec.Stats.RecoveryPercentage,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

const selectRuns = `
	SELECT id, seed, clock_ms, finished_at, total_processed, diverted, cleaned, scrapped, recovered, escaped, recovery_pct
	FROM runs`

// ListRuns returns up to limit records, most recently finished first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// GetRun returns the record with the given session id.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, error) {
	rec, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		rec        RunRecord
		finishedAt int64
	)
	err := row.Scan(&rec.ID, &rec.Seed, &rec.ClockMs, &finishedAt,
		&rec.Stats.TotalProcessed, &rec.Stats.Diverted, &rec.Stats.Cleaned, &rec.Stats.Scrapped,
		&rec.Stats.Recovered, &rec.Stats.Escaped, &rec.Stats.RecoveryPercentage)
	if err != nil {
		return RunRecord{}, err
	}
	rec.FinishedAt = time.UnixMilli(finishedAt).UTC()
	return rec, nil
}
