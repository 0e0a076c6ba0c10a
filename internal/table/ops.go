package table

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/danielpatrickdp/vcalearn/internal/oracle"
	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region initialize

// Initialize seeds level 0 with the given suffixes (the empty suffix is
// always present) and promotes the given prefixes, prefix-closed and
// including ε, to short rows. It returns the unclosed groups.
func (t *Table) Initialize(ctx context.Context, shortPrefixes, suffixes []vca.Word, o oracle.MembershipOracle) ([]Group, error) {
	if t.initialized {
		return nil, fmt.Errorf("initialize: table already initialized: %w", vca.ErrPrecondition)
	}
	for _, s := range suffixes {
		if err := t.checkSuffix(s); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
	}
	for _, p := range shortPrefixes {
		if err := t.checkPrefix(p); err != nil {
			return nil, fmt.Errorf("initialize: %w", err)
		}
	}

	for _, s := range suffixes {
		t.addSuffix(0, s)
	}
	t.promoteAll(append([]vca.Word{{}}, shortPrefixes...))
	t.initialized = true

	if err := t.fill(ctx, o, nil); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	groups := t.unclosed()
	log.Printf("[TABLE] initialized: level=%d short=%d long=%d suffixes=%d unclosed=%d",
		t.maxLevel, t.numShort(), len(t.longRows), len(t.suffixes[0]), len(groups))
	return groups, nil
}

// #endregion initialize

// #region add-suffixes

// AddSuffixes adds suffixes[i] to the suffix set of levels[i]. Suffixes
// already present are ignored; when nothing is new the table is unchanged
// and no query is issued.
func (t *Table) AddSuffixes(ctx context.Context, suffixes []vca.Word, levels []int, o oracle.MembershipOracle) ([]Group, error) {
	if !t.initialized {
		return nil, ErrNotInitialized
	}
	if len(suffixes) != len(levels) {
		return nil, fmt.Errorf("add suffixes: %d suffixes for %d levels: %w",
			len(suffixes), len(levels), vca.ErrInvalidParameter)
	}
	for i, s := range suffixes {
		if levels[i] < 0 || levels[i] > t.maxLevel {
			return nil, fmt.Errorf("add suffixes: level %d outside [0,%d]: %w", levels[i], t.maxLevel, vca.ErrInvalidParameter)
		}
		if err := t.checkSuffix(s); err != nil {
			return nil, fmt.Errorf("add suffixes: %w", err)
		}
	}

	changed := make(map[int]bool)
	for i, s := range suffixes {
		if t.addSuffix(levels[i], s) {
			changed[levels[i]] = true
		}
	}
	if len(changed) == 0 {
		return t.unclosed(), nil
	}
	if err := t.fill(ctx, o, changed); err != nil {
		return nil, fmt.Errorf("add suffixes: %w", err)
	}
	return t.unclosed(), nil
}

func (t *Table) checkSuffix(s vca.Word) error {
	for _, sym := range s {
		if !t.alphabet.Contains(sym) {
			return fmt.Errorf("suffix %s: unknown symbol %q: %w", s, sym, vca.ErrInvalidParameter)
		}
	}
	return nil
}

func (t *Table) addSuffix(level int, s vca.Word) bool {
	key := s.Key()
	if t.suffixIndex[level][key] {
		return false
	}
	t.suffixIndex[level][key] = true
	t.suffixes[level] = append(t.suffixes[level], append(vca.Word(nil), s...))
	return true
}

// #endregion add-suffixes

// #region add-short-prefixes

// AddShortPrefixes promotes the given prefixes and all their prefixes to
// short rows. Rows that are already short are skipped.
func (t *Table) AddShortPrefixes(ctx context.Context, prefixes []vca.Word, o oracle.MembershipOracle) ([]Group, error) {
	if !t.initialized {
		return nil, ErrNotInitialized
	}
	for _, p := range prefixes {
		if err := t.checkPrefix(p); err != nil {
			return nil, fmt.Errorf("add short prefixes: %w", err)
		}
	}
	if t.promoteAll(prefixes) == 0 {
		return t.unclosed(), nil
	}
	if err := t.fill(ctx, o, nil); err != nil {
		return nil, fmt.Errorf("add short prefixes: %w", err)
	}
	return t.unclosed(), nil
}

// promoteAll promotes every prefix of every word and reports how many rows
// became short.
func (t *Table) promoteAll(words []vca.Word) int {
	n := 0
	for _, w := range words {
		for _, p := range w.Prefixes() {
			if t.promote(t.row(p)) {
				n++
			}
		}
	}
	return n
}

// #endregion add-short-prefixes

// #region increase-level

// IncreaseLevel raises the committed horizon to level. New levels start
// with the empty suffix; short rows at the old top gain their call
// extensions. Previously answered queries stay valid.
func (t *Table) IncreaseLevel(ctx context.Context, level int, o oracle.MembershipOracle) ([]Group, error) {
	if !t.initialized {
		return nil, ErrNotInitialized
	}
	if level < t.maxLevel {
		return nil, fmt.Errorf("increase level: %d below current %d: %w", level, t.maxLevel, vca.ErrInvalidParameter)
	}
	if level == t.maxLevel {
		return t.unclosed(), nil
	}
	old := t.maxLevel
	t.growTo(level)
	for _, r := range t.shortRows[old] {
		t.extend(r)
	}
	if err := t.fill(ctx, o, nil); err != nil {
		return nil, fmt.Errorf("increase level: %w", err)
	}
	log.Printf("[TABLE] level raised %d -> %d", old, level)
	return t.unclosed(), nil
}

// #endregion increase-level

// #region fill

// fill issues one batch for every missing cell and assigns content ids.
// Levels in reset had their suffix sets extended, so their ids are
// recomputed from scratch.
func (t *Table) fill(ctx context.Context, o oracle.MembershipOracle, reset map[int]bool) error {
	var queries []oracle.Query
	var targets []*Row
	for level := 0; level <= t.maxLevel; level++ {
		sfx := t.suffixes[level]
		for _, r := range t.rowsByLevel[level] {
			for j := len(r.contents); j < len(sfx); j++ {
				queries = append(queries, oracle.Query{Prefix: r.prefix, Suffix: sfx[j]})
				targets = append(targets, r)
			}
		}
	}
	if len(queries) > 0 {
		answers, err := o.Answer(ctx, queries)
		if err != nil {
			return fmt.Errorf("membership batch of %d: %w", len(queries), err)
		}
		if len(answers) != len(queries) {
			return fmt.Errorf("oracle answered %d of %d queries: %w", len(answers), len(queries), vca.ErrPrecondition)
		}
		for i, r := range targets {
			r.contents = append(r.contents, answers[i])
		}
		t.queries += len(queries)
	}

	for level := range reset {
		t.canon.reset(level)
		for _, r := range t.rowsByLevel[level] {
			r.contentID = -1
		}
	}
	for level := 0; level <= t.maxLevel; level++ {
		for _, r := range t.rowsByLevel[level] {
			if r.contentID < 0 {
				r.contentID = t.canon.id(level, r.vector())
			}
		}
	}
	return nil
}

// #endregion fill

// #region closedness

func (t *Table) shortIDs(level int) map[int]bool {
	ids := make(map[int]bool, len(t.shortRows[level]))
	for _, r := range t.shortRows[level] {
		ids[r.contentID] = true
	}
	return ids
}

// unclosed groups the long rows whose content id no short row at their
// level shares, ordered by level and content id.
func (t *Table) unclosed() []Group {
	var out []Group
	for level := 0; level <= t.maxLevel; level++ {
		ids := t.shortIDs(level)
		byID := make(map[int]int)
		start := len(out)
		for _, r := range t.rowsByLevel[level] {
			if r.short || ids[r.contentID] {
				continue
			}
			i, ok := byID[r.contentID]
			if !ok {
				i = len(out)
				byID[r.contentID] = i
				out = append(out, Group{Level: level, ContentID: r.contentID})
			}
			out[i].Rows = append(out[i].Rows, r)
		}
		sort.Slice(out[start:], func(i, j int) bool {
			return out[start+i].ContentID < out[start+j].ContentID
		})
	}
	return out
}

// FindUnclosedRow returns the first short row, scanning levels, then short
// rows, then symbols, whose successor has no short counterpart at the
// successor's level.
func (t *Table) FindUnclosedRow() (*Row, vca.Symbol, bool) {
	if !t.initialized {
		return nil, "", false
	}
	ids := make([]map[int]bool, t.maxLevel+1)
	for level := range ids {
		ids[level] = t.shortIDs(level)
	}
	for level := 0; level <= t.maxLevel; level++ {
		for _, r := range t.shortRows[level] {
			for i, sym := range t.alphabet.Symbols() {
				typ, _ := t.alphabet.Type(sym)
				if !t.allowed(level, typ) {
					continue
				}
				s := r.successors[i]
				if s == nil || !ids[s.level][s.contentID] {
					return r, sym, true
				}
			}
		}
	}
	return nil, "", false
}

// #endregion closedness

// #region consistency

// Inconsistency is a pair of short rows that share a content id at one
// level but whose successors on Symbol differ.
type Inconsistency struct {
	First, Second *Row
	Symbol        vca.Symbol
}

// FindInconsistency returns the first inconsistent pair, if any.
func (t *Table) FindInconsistency() (Inconsistency, bool) {
	if !t.initialized {
		return Inconsistency{}, false
	}
	for level := 0; level <= t.maxLevel; level++ {
		rows := t.shortRows[level]
		for i := 0; i < len(rows); i++ {
			for j := i + 1; j < len(rows); j++ {
				a, b := rows[i], rows[j]
				if a.contentID != b.contentID {
					continue
				}
				for k, sym := range t.alphabet.Symbols() {
					sa, sb := a.successors[k], b.successors[k]
					if (sa == nil) != (sb == nil) || (sa != nil && sa.contentID != sb.contentID) {
						return Inconsistency{First: a, Second: b, Symbol: sym}, true
					}
				}
			}
		}
	}
	return Inconsistency{}, false
}

// DistinguishingSuffix returns a suffix, to be added at the level of the
// inconsistent rows, that separates them: the symbol followed by a suffix
// on which their successors disagree.
func (t *Table) DistinguishingSuffix(inc Inconsistency) (vca.Word, int, bool) {
	i, ok := t.alphabet.Index(inc.Symbol)
	if !ok || !inc.First.short || !inc.Second.short {
		return nil, 0, false
	}
	sa, sb := inc.First.successors[i], inc.Second.successors[i]
	if sa == nil || sb == nil {
		return nil, 0, false
	}
	for j, s := range t.suffixes[sa.level] {
		if j < len(sa.contents) && j < len(sb.contents) && sa.contents[j] != sb.contents[j] {
			return vca.Concat(vca.Word{inc.Symbol}, s), inc.First.level, true
		}
	}
	return nil, 0, false
}

// #endregion consistency
