package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hmnguyen-dev/tutien-engine/pkg/state"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS narrative_log (
	seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	entry  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_narrative_run ON narrative_log(run_id, seq);
`

// SQLiteStore implements Storage on a single SQLite file, for local play
// and development without a Redis.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (and migrates) the database at path. Use ":memory:"
// for an ephemeral store.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids lock
	// contention errors under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, gs *state.GameState) error {
	gs.UpdatedAt = time.Now()
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		gs.ID.String(), string(data), gs.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadRun(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM runs WHERE id = ?`, id.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &gs, nil
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM narrative_log WHERE run_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete narrative log: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) AppendNarrative(ctx context.Context, runID uuid.UUID, entry string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO narrative_log (run_id, entry) VALUES (?, ?)`,
		runID.String(), entry); err != nil {
		return fmt.Errorf("failed to append narrative: %w", err)
	}
	// Trim to the newest MaxNarrativeEntries rows.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM narrative_log WHERE run_id = ? AND seq NOT IN (
			SELECT seq FROM narrative_log WHERE run_id = ? ORDER BY seq DESC LIMIT ?
		)`, runID.String(), runID.String(), MaxNarrativeEntries); err != nil {
		return fmt.Errorf("failed to trim narrative log: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecentNarratives(ctx context.Context, runID uuid.UUID, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM (
			SELECT seq, entry FROM narrative_log WHERE run_id = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, runID.String(), n)
	if err != nil {
		return nil, fmt.Errorf("failed to read narrative log: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("failed to scan narrative entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
