package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"turnbattle/internal/arena"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrInvalidLimit = fmt.Errorf("limit must be between 1 and %d", MaxListLimit)

const schema = `
CREATE TABLE IF NOT EXISTS battle_results (
	id          TEXT PRIMARY KEY,
	battle      TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	winner      TEXT NOT NULL DEFAULT '',
	turns       INTEGER NOT NULL,
	report      TEXT NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS battle_deaths (
	result_id TEXT NOT NULL REFERENCES battle_results(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	PRIMARY KEY (result_id, position)
);
`

// Store persists finished arena battles in Postgres.
type Store struct {
	db *sql.DB
}

// NewStore accepts an existing DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// NewStoreFromDB builds the store from a connection string (e.g. TURNBATTLE_DATABASE_URL).
func NewStoreFromDB(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the result tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveResult writes the result and its dead log in one transaction.
func (s *Store) SaveResult(ctx context.Context, r arena.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO battle_results (id, battle, outcome, winner, turns, report, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.Battle, r.Outcome, r.Winner, r.Turns, r.Report, r.FinishedAt); err != nil {
		return fmt.Errorf("insert result %s: %w", r.ID, err)
	}

	for i, name := range r.Dead {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO battle_deaths (result_id, position, name)
			VALUES ($1, $2, $3)
		`, r.ID, i, name); err != nil {
			return fmt.Errorf("insert death %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// ListResults returns the most recent results first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]arena.Result, error) {
	if limit <= 0 || limit > MaxListLimit {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.battle, r.outcome, r.winner, r.turns, r.report, r.finished_at,
		       COALESCE(array_agg(d.name ORDER BY d.position) FILTER (WHERE d.name IS NOT NULL), '{}')
		FROM battle_results r
		LEFT JOIN battle_deaths d ON d.result_id = r.id
		GROUP BY r.id
		ORDER BY r.finished_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []arena.Result{}
	for rows.Next() {
		var r arena.Result
		var dead pq.StringArray
		if err := rows.Scan(&r.ID, &r.Battle, &r.Outcome, &r.Winner, &r.Turns, &r.Report, &r.FinishedAt, &dead); err != nil {
			return nil, err
		}
		r.Dead = []string(dead)
		if r.Dead == nil {
			r.Dead = []string{}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
