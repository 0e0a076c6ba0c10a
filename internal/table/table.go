// Package table implements the stratified observation table: rows are
// grouped by the counter value of their prefix, and every level keeps its
// own suffix set.
package table

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// ErrNotInitialized is returned by operations that need Initialize first.
var ErrNotInitialized = errors.New("table not initialized")

// #region row

// Row is one labelled prefix. Short rows carry successors, one per symbol.
type Row struct {
	prefix     vca.Word
	level      int
	contents   []bool
	contentID  int
	successors []*Row
	short      bool
}

func (r *Row) Prefix() vca.Word { return append(vca.Word(nil), r.prefix...) }
func (r *Row) Level() int       { return r.level }
func (r *Row) ContentID() int   { return r.contentID }
func (r *Row) IsShort() bool    { return r.short }

// Contents returns a copy of the row's cells, in suffix order.
func (r *Row) Contents() []bool { return append([]bool(nil), r.contents...) }

// Accepting is the cell at the empty suffix.
func (r *Row) Accepting() bool { return len(r.contents) > 0 && r.contents[0] }

func (r *Row) vector() string {
	var b strings.Builder
	for _, c := range r.contents {
		if c {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (r *Row) String() string {
	return fmt.Sprintf("%s@%d#%d", r.prefix, r.level, r.contentID)
}

// #endregion row

// #region group

// Group is a set of long rows at one level sharing a content id that no
// short row at that level has.
type Group struct {
	Level     int
	ContentID int
	Rows      []*Row
}

// #endregion group

// #region table

// Table is the stratified observation table. It grows monotonically: rows,
// suffixes and levels are only ever added.
type Table struct {
	alphabet    *vca.Alphabet
	maxLevel    int
	initialized bool

	rows        map[string]*Row
	rowsByLevel [][]*Row
	shortRows   [][]*Row
	longRows    []*Row

	suffixes    [][]vca.Word
	suffixIndex []map[string]bool

	canon   *canonicalizer
	queries int
}

// New creates an empty table whose committed horizon is maxLevel.
func New(alphabet *vca.Alphabet, maxLevel int) (*Table, error) {
	if maxLevel < 0 {
		return nil, fmt.Errorf("max level %d: %w", maxLevel, vca.ErrInvalidParameter)
	}
	t := &Table{
		alphabet: alphabet,
		rows:     make(map[string]*Row),
		canon:    newCanonicalizer(),
		maxLevel: -1,
	}
	t.growTo(maxLevel)
	return t, nil
}

func (t *Table) Alphabet() *vca.Alphabet { return t.alphabet }
func (t *Table) MaxLevel() int           { return t.maxLevel }
func (t *Table) Initialized() bool       { return t.initialized }

// Suffixes returns a copy of the suffix set at level.
func (t *Table) Suffixes(level int) []vca.Word {
	if level < 0 || level > t.maxLevel {
		return nil
	}
	out := make([]vca.Word, len(t.suffixes[level]))
	copy(out, t.suffixes[level])
	return out
}

// ShortRows returns the short rows at level in promotion order.
func (t *Table) ShortRows(level int) []*Row {
	if level < 0 || level > t.maxLevel {
		return nil
	}
	return append([]*Row(nil), t.shortRows[level]...)
}

// LongRows returns every long row in creation order.
func (t *Table) LongRows() []*Row { return append([]*Row(nil), t.longRows...) }

// Row looks a prefix up.
func (t *Table) Row(prefix vca.Word) (*Row, bool) {
	r, ok := t.rows[prefix.Key()]
	return r, ok
}

// Successor returns the successor of a short row on sym, if the row has one.
func (t *Table) Successor(r *Row, sym vca.Symbol) (*Row, bool) {
	i, ok := t.alphabet.Index(sym)
	if !ok || !r.short || r.successors[i] == nil {
		return nil, false
	}
	return r.successors[i], true
}

// growTo adds empty levels up to level. Every new level starts with the
// empty suffix only.
func (t *Table) growTo(level int) {
	for l := t.maxLevel + 1; l <= level; l++ {
		t.rowsByLevel = append(t.rowsByLevel, nil)
		t.shortRows = append(t.shortRows, nil)
		t.suffixes = append(t.suffixes, []vca.Word{{}})
		t.suffixIndex = append(t.suffixIndex, map[string]bool{"": true})
		t.canon.grow(l)
	}
	if level > t.maxLevel {
		t.maxLevel = level
	}
}

// #endregion table

// #region rows

// checkPrefix validates a prefix against the alphabet and the horizon.
func (t *Table) checkPrefix(w vca.Word) error {
	for _, s := range w {
		if !t.alphabet.Contains(s) {
			return fmt.Errorf("prefix %s: unknown symbol %q: %w", w, s, vca.ErrInvalidParameter)
		}
	}
	h := t.alphabet.Height(w)
	if h < 0 {
		return fmt.Errorf("prefix %s: counter drops below zero: %w", w, vca.ErrInvalidParameter)
	}
	if h > t.maxLevel {
		return fmt.Errorf("prefix %s: height %d exceeds level %d: %w", w, h, t.maxLevel, vca.ErrInvalidParameter)
	}
	return nil
}

// row returns the row for prefix, creating a long row on first reference.
func (t *Table) row(prefix vca.Word) *Row {
	key := prefix.Key()
	if r, ok := t.rows[key]; ok {
		return r
	}
	level := int(t.alphabet.CounterValue(prefix))
	r := &Row{prefix: append(vca.Word(nil), prefix...), level: level, contentID: -1}
	t.rows[key] = r
	t.rowsByLevel[level] = append(t.rowsByLevel[level], r)
	t.longRows = append(t.longRows, r)
	return r
}

// promote turns r into a short row and instantiates its extensions.
func (t *Table) promote(r *Row) bool {
	if r.short {
		return false
	}
	r.short = true
	r.successors = make([]*Row, t.alphabet.Size())
	for i, l := range t.longRows {
		if l == r {
			t.longRows = append(t.longRows[:i], t.longRows[i+1:]...)
			break
		}
	}
	t.shortRows[r.level] = append(t.shortRows[r.level], r)
	t.extend(r)
	return true
}

// extend creates the one-symbol extensions of a short row that lie inside
// the table's domain. Returns never leave level 0 and calls never leave
// the top level.
func (t *Table) extend(r *Row) {
	for i, sym := range t.alphabet.Symbols() {
		if r.successors[i] != nil {
			continue
		}
		typ, _ := t.alphabet.Type(sym)
		if !t.allowed(r.level, typ) {
			continue
		}
		r.successors[i] = t.row(r.prefix.Append(sym))
	}
}

func (t *Table) allowed(level int, typ vca.SymbolType) bool {
	switch typ {
	case vca.Return:
		return level > 0
	case vca.Call:
		return level < t.maxLevel
	default:
		return true
	}
}

// #endregion rows
