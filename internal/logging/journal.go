package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-round
// LogRound writes a journal entry to the rounds table.
func LogRound(db *sql.DB, entry RoundEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO rounds (run_id, round, threshold, candidate, locations, counterexample, outcome, table_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Round,
		entry.Threshold,
		entry.Candidate,
		entry.Locations,
		nullIfEmpty(entry.Counterexample),
		entry.Outcome,
		nullIfEmpty(entry.TableJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log round: %w", err)
	}
	return nil
}
// #endregion log-round

// #region list-rounds
// ListRounds returns the journal of a run in round order.
func ListRounds(db *sql.DB, runID string) ([]RoundEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, round, threshold, candidate, locations, counterexample, outcome, table_json, created_at
		 FROM rounds WHERE run_id = ? ORDER BY round, id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var out []RoundEntry
	for rows.Next() {
		var e RoundEntry
		var ce, tbl sql.NullString
		var created string
		if err := rows.Scan(&e.RunID, &e.Round, &e.Threshold, &e.Candidate, &e.Locations, &ce, &e.Outcome, &tbl, &created); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		e.Counterexample = ce.String
		e.TableJSON = tbl.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-rounds

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
