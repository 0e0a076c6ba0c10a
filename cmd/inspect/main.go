package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/vcalearn/internal/logging"
	"github.com/danielpatrickdp/vcalearn/internal/model"
	"github.com/danielpatrickdp/vcalearn/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the vcalearn database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail with its rounds")
	target := flag.String("target", "", "also count cached membership answers for this target")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/vcalearn.db [--last N] [--run id] [--target ref] [--json]")
		os.Exit(2)
	}

	s, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if *target != "" {
		if err := countAnswers(s, *target); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if *runID != "" {
		err = runDetailMode(s, *runID, *jsonOut)
	} else {
		err = runListMode(s, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func countAnswers(s *store.Store, ref string) error {
	def, err := model.Resolve(ref)
	if err != nil {
		return err
	}
	scope, err := def.CacheScope(ref)
	if err != nil {
		return err
	}
	n, err := s.CountQueries(scope)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%d cached answers for %s\n", n, scope)
	return nil
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string `json:"run_id"`
	Target    string `json:"target"`
	Status    string `json:"status"`
	Threshold int    `json:"threshold"`
	Rounds    int    `json:"rounds"`
	StartedAt string `json:"started_at"`
	Duration  string `json:"duration,omitempty"`
}

func runListMode(s *store.Store, last int, jsonOut bool) error {
	runs, err := s.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns DESC, reverse for chronological.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		lr := listRow{
			RunID:     r.RunID,
			Target:    r.Target,
			Status:    r.Status,
			Threshold: r.Threshold,
			Rounds:    r.Rounds,
			StartedAt: r.StartedAt.Format("2006-01-02T15:04:05Z"),
		}
		if !r.FinishedAt.IsZero() {
			lr.Duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		rows[len(runs)-1-i] = lr
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-10s  %-22s  %-16s  %9s  %6s  %10s  %s\n",
		"Run", "Target", "Status", "Threshold", "Rounds", "Duration", "Started")
	fmt.Printf("%-10s+-%-22s+-%-16s+-%9s+-%6s+-%10s+-%s\n",
		"----------", "----------------------", "----------------", "---------", "------", "----------", "--------------------")
	for _, r := range rows {
		dur := "-"
		if r.Duration != "" {
			dur = r.Duration
		}
		fmt.Printf("%-10s  %-22s  %-16s  %9d  %6d  %10s  %s\n",
			shortID(r.RunID), clip(r.Target, 22), r.Status, r.Threshold, r.Rounds, dur, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type roundRow struct {
	Round          int                  `json:"round"`
	Threshold      int                  `json:"threshold"`
	Candidate      string               `json:"candidate"`
	Locations      int                  `json:"locations"`
	Outcome        string               `json:"outcome"`
	Counterexample string               `json:"counterexample,omitempty"`
	Table          *logging.TableRecord `json:"table,omitempty"`
}

type detailOutput struct {
	RunID      string          `json:"run_id"`
	Target     string          `json:"target"`
	Status     string          `json:"status"`
	Threshold  int             `json:"threshold"`
	StartedAt  string          `json:"started_at"`
	Hypothesis json.RawMessage `json:"hypothesis,omitempty"`
	Rounds     []roundRow      `json:"rounds"`
}

func runDetailMode(s *store.Store, runID string, jsonOut bool) error {
	run, err := s.GetRun(runID)
	if err != nil {
		return err
	}
	entries, err := logging.ListRounds(s.DB(), runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:     run.RunID,
		Target:    run.Target,
		Status:    run.Status,
		Threshold: run.Threshold,
		StartedAt: run.StartedAt.Format("2006-01-02T15:04:05Z"),
	}
	if run.HypothesisJSON != "" {
		out.Hypothesis = json.RawMessage(run.HypothesisJSON)
	}
	for _, e := range entries {
		out.Rounds = append(out.Rounds, roundRow{
			Round:          e.Round,
			Threshold:      e.Threshold,
			Candidate:      e.Candidate,
			Locations:      e.Locations,
			Outcome:        e.Outcome,
			Counterexample: e.Counterexample,
			Table:          parseTableRecord(e.TableJSON),
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:       %s\n", out.RunID)
	fmt.Printf("Target:    %s\n", out.Target)
	fmt.Printf("Status:    %s\n", out.Status)
	fmt.Printf("Threshold: %d\n", out.Threshold)
	fmt.Printf("Started:   %s\n", out.StartedAt)

	fmt.Printf("\n%5s  %9s  %-11s  %9s  %7s  %6s  %-14s  %s\n",
		"Round", "Threshold", "Candidate", "Locations", "Queries", "Short", "Outcome", "Counterexample")
	for _, r := range out.Rounds {
		queries, short := "-", "-"
		if r.Table != nil {
			queries = fmt.Sprintf("%d", r.Table.Queries)
			short = fmt.Sprintf("%d", r.Table.ShortRows)
		}
		fmt.Printf("%5d  %9d  %-11s  %9d  %7s  %6s  %-14s  %s\n",
			r.Round, r.Threshold, r.Candidate, r.Locations, queries, short, r.Outcome, r.Counterexample)
	}
	return nil
}

// #endregion detail-mode

// #region output

func parseTableRecord(tableJSON string) *logging.TableRecord {
	if tableJSON == "" {
		return nil
	}
	var tr logging.TableRecord
	if err := json.Unmarshal([]byte(tableJSON), &tr); err != nil {
		return nil
	}
	return &tr
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "~"
	}
	return s
}

// #endregion output
