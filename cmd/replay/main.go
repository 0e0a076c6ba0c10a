package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/vcalearn/internal/learner"
	"github.com/danielpatrickdp/vcalearn/internal/logging"
	"github.com/danielpatrickdp/vcalearn/internal/model"
	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/store"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region main

// replay re-checks a finished run: the stored hypothesis must classify
// every journaled counterexample the way the target does, and must still
// be equivalent to the target.
func main() {
	dbPath := flag.String("db", "", "path to the vcalearn database")
	runID := flag.String("run", "", "run to replay")
	targetRef := flag.String("target", "", "target definition (defaults to the run's target)")
	flag.Parse()

	if *dbPath == "" || *runID == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/vcalearn.db --run id [--target ref]")
		os.Exit(2)
	}
	os.Exit(runReplay(*dbPath, *runID, *targetRef))
}

// #endregion main

// #region replay

func runReplay(dbPath, runID, targetRef string) int {
	s, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer s.Close()

	run, err := s.GetRun(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get run: %v\n", err)
		return 2
	}
	if run.Status != store.StatusLearned {
		fmt.Fprintf(os.Stderr, "run %s has status %s, nothing to replay\n", runID, run.Status)
		return 2
	}
	if targetRef == "" {
		targetRef = run.Target
	}

	rec, err := learner.DecodeHypothesis(run.HypothesisJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	hyp, err := rec.Definition.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build hypothesis: %v\n", err)
		return 2
	}
	def, err := model.Resolve(targetRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load target: %v\n", err)
		return 2
	}
	target, err := def.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build target: %v\n", err)
		return 2
	}

	rounds, err := logging.ListRounds(s.DB(), runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list rounds: %v\n", err)
		return 2
	}

	fmt.Printf("%-6s| %-30s| %-9s| %-11s| %s\n", "Round", "Counterexample", "Target", "Hypothesis", "Match")
	fmt.Printf("%-6s+%-31s+%-10s+%-12s+%s\n", "------", "-------------------------------", "----------", "------------", "------")
	total, matches := 0, 0
	for _, r := range rounds {
		if r.Counterexample == "" {
			continue
		}
		w, err := target.Alphabet().ParseWord(r.Counterexample)
		if err != nil {
			fmt.Fprintf(os.Stderr, "round %d: %v\n", r.Round, err)
			return 2
		}
		want, got := target.Accepts(w), hyp.Accepts(w)
		match := "DIFF"
		if want == got {
			match = "OK"
			matches++
		}
		total++
		fmt.Printf("%-6d| %-30s| %-9v| %-11v| %s\n", r.Round, r.Counterexample, want, got, match)
	}

	ce, found, err := oracle.NewEquivalenceVCAOracle(target).FindCounterExample(context.Background(), hyp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "equivalence: %v\n", err)
		return 2
	}
	fmt.Printf("\nSummary: %d counterexamples, %d match, %d diverge\n", total, matches, total-matches)
	fmt.Printf("Hypothesis: %s candidate at threshold %d, %d locations\n", rec.Kind, rec.Threshold, hyp.NumLocations())
	if found {
		fmt.Printf("Equivalence: DIFF on %s\n", describe(target, hyp, ce))
		return 1
	}
	fmt.Println("Equivalence: OK")
	if total != matches {
		return 1
	}
	return 0
}

func describe(target, hyp *vca.VCA, w vca.Word) string {
	return fmt.Sprintf("%s (target %v, hypothesis %v)", w, target.Accepts(w), hyp.Accepts(w))
}

// #endregion replay
