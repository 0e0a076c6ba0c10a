package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE rounds (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id         TEXT NOT NULL,
		round          INTEGER NOT NULL,
		threshold      INTEGER NOT NULL,
		candidate      TEXT NOT NULL,
		locations      INTEGER NOT NULL,
		counterexample TEXT,
		outcome        TEXT NOT NULL,
		table_json     TEXT,
		created_at     TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-round-tests
func TestLogRound_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := RoundEntry{
		RunID:          "r1",
		Round:          1,
		Threshold:      2,
		Candidate:      "table",
		Locations:      3,
		Counterexample: "a b",
		Outcome:        "counterexample",
		TableJSON:      `{"max_level":2}`,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogRound(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ListRounds(db, "r1")
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Counterexample != "a b" || got[0].Threshold != 2 || got[0].TableJSON != `{"max_level":2}` {
		t.Errorf("unexpected entry: %+v", got[0])
	}
	if !got[0].CreatedAt.Equal(entry.CreatedAt) {
		t.Errorf("created_at = %v", got[0].CreatedAt)
	}
}

func TestLogRound_NullableFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	if err := LogRound(db, RoundEntry{RunID: "r1", Round: 1, Candidate: "description", Outcome: "learned"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ce sql.NullString
	db.QueryRow("SELECT counterexample FROM rounds WHERE run_id = 'r1'").Scan(&ce)
	if ce.Valid {
		t.Error("expected NULL counterexample")
	}
}

func TestLogRound_DefaultsCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC().Add(-time.Second)
	if err := LogRound(db, RoundEntry{RunID: "r2", Round: 3, Candidate: "table", Outcome: "learned"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := ListRounds(db, "r2")
	if err != nil || len(got) != 1 {
		t.Fatalf("ListRounds: %v (%d rows)", err, len(got))
	}
	if got[0].CreatedAt.Before(before) {
		t.Errorf("created_at not defaulted: %v", got[0].CreatedAt)
	}
}
// #endregion log-round-tests
