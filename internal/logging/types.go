package logging

import "time"

// #region round-entry
// RoundEntry is a single row in the rounds table.
type RoundEntry struct {
	RunID          string
	Round          int
	Threshold      int
	Candidate      string // "table" | "description"
	Locations      int
	Counterexample string
	Outcome        string // "counterexample" | "learned"
	TableJSON      string
	CreatedAt      time.Time
}
// #endregion round-entry

// #region round-record
// TableRecord captures the table shape at the end of a round. Serialized
// as JSON into rounds.table_json.
type TableRecord struct {
	MaxLevel  int `json:"max_level"`
	ShortRows int `json:"short_rows"`
	LongRows  int `json:"long_rows"`
	Suffixes  int `json:"suffixes"`
	Queries   int `json:"queries"`
	Forks     int `json:"forks"`

	// Descriptions found for the bounded graph at this threshold
	Descriptions int `json:"descriptions"`
	Remaining    int `json:"remaining"`
}
// #endregion round-record
