package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS membership_queries (
	target      TEXT NOT NULL,
	word        TEXT NOT NULL,
	accepted    INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	PRIMARY KEY (target, word)
);

CREATE TABLE IF NOT EXISTS learning_runs (
	run_id          TEXT PRIMARY KEY,
	target          TEXT NOT NULL,
	status          TEXT NOT NULL,
	threshold       INTEGER NOT NULL DEFAULT 0,
	rounds          INTEGER NOT NULL DEFAULT 0,
	hypothesis_json TEXT,
	started_at      TEXT NOT NULL,
	finished_at     TEXT
);

CREATE TABLE IF NOT EXISTS rounds (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id          TEXT NOT NULL,
	round           INTEGER NOT NULL,
	threshold       INTEGER NOT NULL,
	candidate       TEXT NOT NULL,
	locations       INTEGER NOT NULL,
	counterexample  TEXT,
	outcome         TEXT NOT NULL,
	table_json      TEXT,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES learning_runs(run_id)
);
`
// #endregion schema

// #region store-struct
// Store keeps membership answers, learning runs and their round journal
// in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for the round journal.
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion close

// #region query-cache
// Lookup implements QueryCache.
func (s *Store) Lookup(ctx context.Context, target string, words []string) (map[string]bool, error) {
	out := make(map[string]bool)
	stmt, err := s.db.PrepareContext(ctx, `SELECT accepted FROM membership_queries WHERE target = ? AND word = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare lookup: %w", err)
	}
	defer stmt.Close()

	for _, w := range words {
		var accepted int
		err := stmt.QueryRowContext(ctx, target, w).Scan(&accepted)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup %q: %w", w, err)
		}
		out[w] = accepted != 0
	}
	return out, nil
}

// Save implements QueryCache. Existing answers are kept.
func (s *Store) Save(ctx context.Context, target string, answers map[string]bool) error {
	if len(answers) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for w, v := range answers {
		accepted := 0
		if v {
			accepted = 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO membership_queries (target, word, accepted, created_at) VALUES (?, ?, ?, ?)`,
			target, w, accepted, now,
		)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}
	return tx.Commit()
}

// CountQueries returns the number of cached answers for target.
func (s *Store) CountQueries(target string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM membership_queries WHERE target = ?`, target).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count queries: %w", err)
	}
	return n, nil
}
// #endregion query-cache

// #region runs
// CreateRun starts a new run record for target.
func (s *Store) CreateRun(target string) (RunRecord, error) {
	rec := RunRecord{
		RunID:     uuid.New().String(),
		Target:    target,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO learning_runs (run_id, target, status, started_at) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Target, rec.Status, rec.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	log.Printf("[STORE] run %s started for %s", rec.RunID, target)
	return rec, nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(runID, status string, threshold, rounds int, hypothesisJSON string) error {
	var hyp interface{}
	if hypothesisJSON != "" {
		hyp = hypothesisJSON
	}
	res, err := s.db.Exec(
		`UPDATE learning_runs SET status = ?, threshold = ?, rounds = ?, hypothesis_json = ?, finished_at = ?
		 WHERE run_id = ?`,
		status, threshold, rounds, hyp, time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	log.Printf("[STORE] run %s finished: %s after %d rounds", runID, status, rounds)
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, target, status, threshold, rounds, hypothesis_json, started_at, finished_at
		 FROM learning_runs WHERE run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, target, status, threshold, rounds, hypothesis_json, started_at, finished_at
		 FROM learning_runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var hyp, finished sql.NullString
	var started string
	if err := row.Scan(&rec.RunID, &rec.Target, &rec.Status, &rec.Threshold, &rec.Rounds, &hyp, &started, &finished); err != nil {
		return RunRecord{}, err
	}
	if hyp.Valid {
		rec.HypothesisJSON = hyp.String
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return rec, nil
}
// #endregion runs
