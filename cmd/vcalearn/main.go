package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/danielpatrickdp/vcalearn/internal/learner"
	"github.com/danielpatrickdp/vcalearn/internal/model"
	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/remote"
	"github.com/danielpatrickdp/vcalearn/internal/store"
)

// #region main

func main() {
	defaults := learner.DefaultConfig()
	targetRef := flag.String("target", envOr("VCALEARN_TARGET", "builtin:anbn"), "target definition: builtin:<name> or a YAML/JSON file")
	dbPath := flag.String("db", envOr("VCALEARN_DB", ""), "SQLite database for the query cache and run journal (optional)")
	oracleAddr := flag.String("oracle", envOr("VCALEARN_ORACLE", ""), "address of a remote membership service (optional)")
	maxRounds := flag.Int("max-rounds", envInt("VCALEARN_MAX_ROUNDS", defaults.MaxRounds), "equivalence query budget")
	step := flag.Int("threshold-step", defaults.ThresholdStep, "minimum threshold raise per escalation")
	maxDesc := flag.Int("max-descriptions", defaults.MaxDescriptions, "periodic descriptions tried per threshold")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall time limit")
	outPath := flag.String("out", "", "write the learned automaton here instead of stdout")
	showTable := flag.Bool("table", false, "print the final observation table as JSON on stderr")
	list := flag.Bool("list", false, "list builtin targets and exit")
	flag.Parse()

	if *list {
		for _, name := range model.BuiltinNames() {
			fmt.Println("builtin:" + name)
		}
		return
	}

	def, err := model.Resolve(*targetRef)
	if err != nil {
		log.Fatalf("load target: %v", err)
	}
	target, err := def.Build()
	if err != nil {
		log.Fatalf("build target: %v", err)
	}

	// Membership answers come from the remote service when one is given,
	// otherwise from the target itself.
	var membership oracle.MembershipOracle = oracle.NewAutomatonOracle(target)
	if *oracleAddr != "" {
		client, err := remote.NewClient(*oracleAddr)
		if err != nil {
			log.Fatalf("connect to oracle at %s: %v", *oracleAddr, err)
		}
		defer client.Close()
		membership = client
	}

	var cache store.QueryCache = store.NewMemoryCache()
	var db *store.Store
	if *dbPath != "" {
		db, err = store.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer db.Close()
		cache = db
	}
	scope, err := def.CacheScope(*targetRef)
	if err != nil {
		log.Fatalf("cache scope: %v", err)
	}
	cached := oracle.NewCachedOracle(membership, cache, scope)

	cfg := defaults
	cfg.MaxRounds = *maxRounds
	cfg.ThresholdStep = *step
	cfg.MaxDescriptions = *maxDesc
	l, err := learner.New(target.Alphabet(), cached, oracle.NewPartialEquivalenceOracle(target), cfg)
	if err != nil {
		log.Fatalf("learner: %v", err)
	}
	exp := learner.NewExperiment(l, oracle.NewEquivalenceVCAOracle(target))
	if db != nil {
		exp = exp.WithStore(db, *targetRef)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stderr, "Learning %s (%d locations, threshold %d)\n", *targetRef, target.NumLocations(), target.Threshold())
	runErr := exp.Run(ctx)

	hits, misses := cached.Stats()
	fmt.Fprintf(os.Stderr, "[%s] rounds=%d threshold=%d cache hits=%d misses=%d\n",
		shortID(exp.RunID()), exp.Rounds(), l.Threshold(), hits, misses)
	if *showTable && l.Table() != nil {
		if err := printJSON(os.Stderr, l.Table().Snapshot()); err != nil {
			log.Printf("table: %v", err)
		}
	}
	if runErr != nil {
		log.Fatalf("run %s: %v", exp.RunID(), runErr)
	}

	final, err := exp.FinalHypothesis()
	if err != nil {
		log.Fatalf("final hypothesis: %v", err)
	}
	if d := final.Description; d != nil {
		fmt.Fprintf(os.Stderr, "Learned from a periodic description: offset=%d period=%d width=%d\n", d.Offset(), d.Period(), d.Width())
	}
	data, err := model.FromVCA(def.Name+"-learned", final.VCA).Marshal()
	if err != nil {
		log.Fatalf("encode hypothesis: %v", err)
	}
	if *outPath == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", *outPath)
}

// #endregion main

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("%s=%q is not a number, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func printJSON(f *os.File, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(f, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
