package table

import (
	"context"
	"errors"
	"testing"

	"github.com/danielpatrickdp/vcalearn/internal/model"
	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region helpers

// anbnOracle answers for {aⁿbⁿ | n>0} over calls a, returns b, internals c.
func anbnOracle(t *testing.T) *oracle.AutomatonOracle {
	t.Helper()
	d, err := model.Builtin("anbn")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	v, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return oracle.NewAutomatonOracle(v)
}

func newTable(t *testing.T, o *oracle.AutomatonOracle, maxLevel int) *Table {
	t.Helper()
	tb, err := New(o.Target().Alphabet(), maxLevel)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tb.Initialize(context.Background(), nil, nil, o); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return tb
}

func mustRow(t *testing.T, tb *Table, prefix string) *Row {
	t.Helper()
	r, ok := tb.Row(vca.ParseWord(prefix))
	if !ok {
		t.Fatalf("row %q missing", prefix)
	}
	return r
}

// #endregion helpers

// #region initialize-tests

func TestInitialize_LevelZeroIsClosedAndConsistent(t *testing.T) {
	o := anbnOracle(t)
	tb := newTable(t, o, 0)

	if r, sym, ok := tb.FindUnclosedRow(); ok {
		t.Errorf("unexpected unclosed row %s on %s", r, sym)
	}
	if inc, ok := tb.FindInconsistency(); ok {
		t.Errorf("unexpected inconsistency %s/%s", inc.First, inc.Second)
	}
	st := tb.Stats()
	if st.ShortRows != 1 || st.LongRows != 1 || st.Suffixes != 1 || st.Queries != 2 {
		t.Errorf("unexpected stats %+v", st)
	}
	// Calls leave level 0 only when the horizon allows it.
	if _, ok := tb.Row(vca.ParseWord("a")); ok {
		t.Error("call extension created above the horizon")
	}
	if _, ok := tb.Row(vca.ParseWord("b")); ok {
		t.Error("return extension created below level 0")
	}

	h, err := tb.ToVCA()
	if err != nil {
		t.Fatalf("ToVCA: %v", err)
	}
	if h.NumLocations() != 1 || h.Accepts(vca.Word{}) || h.Accepts(vca.ParseWord("c c")) {
		t.Errorf("unexpected hypothesis with %d locations", h.NumLocations())
	}
}

func TestInitialize_Twice(t *testing.T) {
	o := anbnOracle(t)
	tb := newTable(t, o, 0)
	if _, err := tb.Initialize(context.Background(), nil, nil, o); !errors.Is(err, vca.ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

func TestNotInitialized(t *testing.T) {
	o := anbnOracle(t)
	tb, err := New(o.Target().Alphabet(), 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := tb.AddSuffixes(ctx, []vca.Word{{}}, []int{0}, o); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("AddSuffixes: %v", err)
	}
	if _, err := tb.AddShortPrefixes(ctx, []vca.Word{{}}, o); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("AddShortPrefixes: %v", err)
	}
	if _, err := tb.IncreaseLevel(ctx, 2, o); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("IncreaseLevel: %v", err)
	}
	if _, err := tb.ToVCA(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ToVCA: %v", err)
	}
	if _, _, ok := tb.FindUnclosedRow(); ok {
		t.Error("uninitialized table reported an unclosed row")
	}
	if _, err := New(o.Target().Alphabet(), -1); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("New(-1): %v", err)
	}
}

// #endregion initialize-tests

// #region growth-tests

func TestIncreaseLevel_ExtendsTopRowsAndKeepsAnswers(t *testing.T) {
	ctx := context.Background()
	o := anbnOracle(t)
	tb := newTable(t, o, 0)
	before := o.Queries()

	groups, err := tb.IncreaseLevel(ctx, 1, o)
	if err != nil {
		t.Fatalf("IncreaseLevel: %v", err)
	}
	if tb.MaxLevel() != 1 {
		t.Fatalf("MaxLevel = %d, want 1", tb.MaxLevel())
	}
	if o.Queries()-before != 1 {
		t.Errorf("raising the level asked %d queries, want 1", o.Queries()-before)
	}
	if len(groups) != 1 || groups[0].Level != 1 {
		t.Fatalf("unexpected unclosed groups %+v", groups)
	}
	// "a" reads like ε but lives at another level, so it gets its own id.
	if a, eps := mustRow(t, tb, "a"), mustRow(t, tb, ""); a.ContentID() == eps.ContentID() {
		t.Error("rows at different levels share a content id")
	}
	if tb.Stats().Forks != 1 {
		t.Errorf("Forks = %d, want 1", tb.Stats().Forks)
	}
	r, sym, ok := tb.FindUnclosedRow()
	if !ok || len(r.Prefix()) != 0 || sym != "a" {
		t.Errorf("expected ε unclosed on a, got %v %s %v", r, sym, ok)
	}
	if r2, sym2, ok2 := tb.FindUnclosedRow(); r2 != r || sym2 != sym || ok2 != ok {
		t.Error("FindUnclosedRow is not stable on an unchanged table")
	}

	if _, err := tb.IncreaseLevel(ctx, 0, o); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("lowering the level: %v", err)
	}
}

func TestAddShortPrefixes_BuildsHypothesis(t *testing.T) {
	ctx := context.Background()
	o := anbnOracle(t)
	tb := newTable(t, o, 0)
	if _, err := tb.IncreaseLevel(ctx, 1, o); err != nil {
		t.Fatalf("IncreaseLevel: %v", err)
	}
	groups, err := tb.AddShortPrefixes(ctx, []vca.Word{vca.ParseWord("a b")}, o)
	if err != nil {
		t.Fatalf("AddShortPrefixes: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("unexpected unclosed groups %+v", groups)
	}
	if !mustRow(t, tb, "a").IsShort() || !mustRow(t, tb, "a b").IsShort() {
		t.Error("prefixes of a b not promoted")
	}
	if _, ok := tb.FindInconsistency(); ok {
		t.Error("unexpected inconsistency")
	}

	h, err := tb.ToVCA()
	if err != nil {
		t.Fatalf("ToVCA: %v", err)
	}
	if h.NumLocations() != 3 {
		t.Errorf("hypothesis has %d locations, want 3", h.NumLocations())
	}
	if !h.Accepts(vca.ParseWord("a b")) || h.Accepts(vca.ParseWord("a a b b")) {
		t.Error("hypothesis should accept exactly a b among aⁿbⁿ up to level 1")
	}

	if _, err := tb.AddShortPrefixes(ctx, []vca.Word{vca.ParseWord("a a")}, o); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("prefix above horizon: %v", err)
	}
	if _, err := tb.AddShortPrefixes(ctx, []vca.Word{vca.ParseWord("b")}, o); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("prefix below zero: %v", err)
	}
}

// #endregion growth-tests

// #region suffix-tests

func TestInconsistency_ResolvedByDistinguishingSuffix(t *testing.T) {
	ctx := context.Background()
	o := anbnOracle(t)
	tb := newTable(t, o, 0)
	if _, err := tb.IncreaseLevel(ctx, 1, o); err != nil {
		t.Fatalf("IncreaseLevel: %v", err)
	}
	if _, err := tb.AddShortPrefixes(ctx, []vca.Word{vca.ParseWord("a b"), vca.ParseWord("c")}, o); err != nil {
		t.Fatalf("AddShortPrefixes: %v", err)
	}
	// "b" at level 1 separates a from c a, but ε and c still look alike.
	if _, err := tb.AddSuffixes(ctx, []vca.Word{vca.ParseWord("b")}, []int{1}, o); err != nil {
		t.Fatalf("AddSuffixes: %v", err)
	}
	inc, ok := tb.FindInconsistency()
	if !ok {
		t.Fatal("expected an inconsistency between ε and c")
	}
	if inc.Symbol != "a" {
		t.Errorf("inconsistent on %s, want a", inc.Symbol)
	}
	s, level, ok := tb.DistinguishingSuffix(inc)
	if !ok || s.String() != "a b" || level != 0 {
		t.Fatalf("DistinguishingSuffix = %s at %d (%v), want a b at 0", s, level, ok)
	}
	if _, err := tb.AddSuffixes(ctx, []vca.Word{s}, []int{level}, o); err != nil {
		t.Fatalf("AddSuffixes: %v", err)
	}
	if inc, ok := tb.FindInconsistency(); ok {
		t.Errorf("still inconsistent: %s/%s on %s", inc.First, inc.Second, inc.Symbol)
	}
	if mustRow(t, tb, "").ContentID() == mustRow(t, tb, "c").ContentID() {
		t.Error("ε and c should now differ")
	}
}

func TestAddSuffixes_Idempotent(t *testing.T) {
	ctx := context.Background()
	o := anbnOracle(t)
	tb := newTable(t, o, 1)
	if _, err := tb.AddSuffixes(ctx, []vca.Word{vca.ParseWord("a b")}, []int{0}, o); err != nil {
		t.Fatalf("AddSuffixes: %v", err)
	}
	before := tb.Stats()
	ids := map[string]int{}
	for _, r := range tb.LongRows() {
		ids[r.Prefix().Key()] = r.ContentID()
	}

	if _, err := tb.AddSuffixes(ctx, []vca.Word{vca.ParseWord("a b"), {}}, []int{0, 1}, o); err != nil {
		t.Fatalf("AddSuffixes: %v", err)
	}
	if after := tb.Stats(); after != before {
		t.Errorf("stats changed: %+v -> %+v", before, after)
	}
	for _, r := range tb.LongRows() {
		if ids[r.Prefix().Key()] != r.ContentID() {
			t.Errorf("content id of %s changed", r)
		}
	}
}

func TestAddSuffixes_Validation(t *testing.T) {
	ctx := context.Background()
	o := anbnOracle(t)
	tb := newTable(t, o, 1)
	if _, err := tb.AddSuffixes(ctx, []vca.Word{{}}, nil, o); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("length mismatch: %v", err)
	}
	if _, err := tb.AddSuffixes(ctx, []vca.Word{{}}, []int{2}, o); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("level above horizon: %v", err)
	}
	if _, err := tb.AddSuffixes(ctx, []vca.Word{vca.ParseWord("z")}, []int{0}, o); !errors.Is(err, vca.ErrInvalidParameter) {
		t.Errorf("unknown symbol: %v", err)
	}
}

// #endregion suffix-tests

// #region snapshot-tests

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	o := anbnOracle(t)
	tb := newTable(t, o, 1)
	if _, err := tb.AddSuffixes(ctx, []vca.Word{vca.ParseWord("b")}, []int{1}, o); err != nil {
		t.Fatalf("AddSuffixes: %v", err)
	}
	snap := tb.Snapshot()
	if snap.MaxLevel != 1 || len(snap.Short) != 2 || len(snap.Suffixes) != 2 {
		t.Fatalf("unexpected snapshot shape %+v", snap)
	}
	if got := snap.Suffixes[1]; len(got) != 2 || got[0] != vca.Epsilon || got[1] != "b" {
		t.Errorf("level 1 suffixes = %v", got)
	}
	if len(snap.Short[0]) != 1 || snap.Short[0][0].Prefix != vca.Epsilon {
		t.Errorf("level 0 short rows = %+v", snap.Short[0])
	}
	for _, r := range snap.Long {
		if r.Short {
			t.Errorf("long row %s marked short", r.Prefix)
		}
		if r.Prefix == "a" && (len(r.Contents) != 2 || r.Contents[0] || !r.Contents[1]) {
			t.Errorf("row a contents = %v, want [false true]", r.Contents)
		}
	}
}

// #endregion snapshot-tests
