// Package store handles SQLite persistence of the player profile.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/keykids/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const defaultSnapshotKeep = 5

// Store wraps SQLite access for profile data.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	keep   int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report recovered load problems.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSnapshotKeep sets how many profile snapshots survive pruning.
func WithSnapshotKeep(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.keep = n
		}
	}
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, logger: slog.Default(), keep: defaultSnapshotKeep}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`CREATE TABLE IF NOT EXISTS session_results (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			level_id INTEGER NOT NULL,
			mode TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			consistency INTEGER NOT NULL,
			stars INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			ended_at TEXT NOT NULL,
			correct INTEGER NOT NULL,
			errors INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profile_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at TEXT NOT NULL,
			data TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_session_results_ended_at ON session_results(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadProfile assembles the profile from the latest snapshot and the full
// result history. A missing or malformed snapshot yields the defaults.
func (s *Store) LoadProfile(ctx context.Context) (model.Profile, error) {
	history, err := s.ListResults(ctx, model.StatsConfig{})
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to load history: %w", err)
	}
	profile := model.DefaultProfile()

	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT data FROM profile_snapshots ORDER BY id DESC LIMIT 1`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return model.Profile{}, fmt.Errorf("failed to load snapshot: %w", err)
	default:
		snap, derr := decodeSnapshot([]byte(raw))
		if derr != nil {
			s.logger.Warn("ignoring malformed profile snapshot", "err", derr)
		} else {
			profile = snap.profile()
		}
	}
	profile.History = history
	return profile, nil
}

// SaveCompletion appends a session result and writes the updated profile in
// one transaction.
func (s *Store) SaveCompletion(ctx context.Context, profile model.Profile, result model.SessionResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO session_results (id, level_id, mode, wpm, accuracy, consistency, stars, duration_ms, ended_at, correct, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		result.LevelID,
		string(result.Mode),
		result.Wpm,
		result.Accuracy,
		result.Consistency,
		result.Stars,
		result.Duration.Milliseconds(),
		result.Timestamp.Format(time.RFC3339Nano),
		result.Correct,
		result.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	if err = s.insertSnapshot(ctx, tx, profile, result.Timestamp); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveProfile writes a snapshot without appending history.
func (s *Store) SaveProfile(ctx context.Context, profile model.Profile) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = s.insertSnapshot(ctx, tx, profile, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) insertSnapshot(ctx context.Context, tx *sql.Tx, profile model.Profile, at time.Time) error {
	data, err := json.Marshal(newSnapshot(profile))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profile_snapshots (saved_at, data) VALUES (?, ?)`,
		at.Format(time.RFC3339Nano), string(data),
	); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM profile_snapshots WHERE id NOT IN (
			SELECT id FROM profile_snapshots ORDER BY id DESC LIMIT ?
		)`, s.keep); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}

// Reset deletes all history and snapshots and stores a fresh default
// profile.
func (s *Store) Reset(ctx context.Context) error {
	for _, stmt := range []string{`DELETE FROM session_results`, `DELETE FROM profile_snapshots`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
	}
	return s.SaveProfile(ctx, model.DefaultProfile())
}

// ListResults returns session results in insertion order, filtered by cfg.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.SessionResult, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.LevelID != nil {
		clauses = append(clauses, "level_id = ?")
		args = append(args, *cfg.LevelID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, level_id, mode, wpm, accuracy, consistency, stars, duration_ms, ended_at, correct, errors
		FROM session_results
		WHERE %s
		ORDER BY seq ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.SessionResult
	for rows.Next() {
		var (
			r          model.SessionResult
			mode       string
			durationMs int64
			endedAt    string
		)
		if err := rows.Scan(&r.ID, &r.LevelID, &mode, &r.Wpm, &r.Accuracy, &r.Consistency, &r.Stars, &durationMs, &endedAt, &r.Correct, &r.Errors); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		r.Mode = model.Mode(mode)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Timestamp = parsed
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
