package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

var pragmas = []string{
	`PRAGMA journal_mode = WAL;`,
	`PRAGMA synchronous = NORMAL;`,
	`PRAGMA busy_timeout = 5000;`,
}

// applyPragmas lets readers in other processes query the snapshot while
// watch is writing it.
func applyPragmas(db *sql.DB) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	return nil
}

// Store keeps the most recent snapshot in SQLite. Only one snapshot is ever
// stored; saving replaces it.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("state: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("state: opening DB: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("state: %w", err)
	}

	store := &Store{db: db}
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_latest (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			generated_at TEXT NOT NULL,
			body TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS provider_latest (
			provider TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			source TEXT NOT NULL,
			session_used_pct REAL,
			session_reset_at TEXT,
			weekly_used_pct REAL,
			weekly_reset_at TEXT,
			message_count INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("state: init schema: %w", err)
		}
	}
	return nil
}

// SaveLatest replaces the stored snapshot in a single transaction.
func (s *Store) SaveLatest(ctx context.Context, snap core.UsageSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("state: marshal snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("state: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_latest (id, generated_at, body) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET generated_at = excluded.generated_at, body = excluded.body`,
		formatTime(snap.GeneratedAt), string(body),
	); err != nil {
		return fmt.Errorf("state: write snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM provider_latest`); err != nil {
		return fmt.Errorf("state: clear providers: %w", err)
	}
	for _, p := range snap.Providers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO provider_latest (
				provider, status, source, session_used_pct, session_reset_at,
				weekly_used_pct, weekly_reset_at, message_count, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(p.Provider), string(p.Status), string(p.Source),
			nullFloat(p.SessionUsedPct), nullTime(p.SessionResetAt),
			nullFloat(p.WeeklyUsedPct), nullTime(p.WeeklyResetAt),
			len(p.Messages), formatTime(p.UpdatedAt),
		); err != nil {
			return fmt.Errorf("state: write provider %s: %w", p.Provider, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	return nil
}

// Latest returns the stored snapshot. ok is false when nothing was saved yet.
func (s *Store) Latest(ctx context.Context) (snap core.UsageSnapshot, ok bool, err error) {
	var body string
	err = s.db.QueryRowContext(ctx, `SELECT body FROM snapshot_latest WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("state: read snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return snap, false, fmt.Errorf("state: decode snapshot: %w", err)
	}
	return snap, true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
