package table

import (
	"fmt"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region to-vca

type groupKey struct{ level, id int }

// ToVCA reads a hypothesis off the table: one location per (level, content
// id) group of short rows, represented by the group's first row. Successors
// whose group has no short row are left undefined, so the table should be
// closed first.
func (t *Table) ToVCA() (*vca.VCA, error) {
	if !t.initialized {
		return nil, ErrNotInitialized
	}
	v := vca.New(t.alphabet, t.maxLevel)
	locs := make(map[groupKey]vca.Location)
	var reps []*Row

	eps, ok := t.rows[""]
	if !ok || !eps.short {
		return nil, fmt.Errorf("to vca: empty prefix is not a short row: %w", vca.ErrPrecondition)
	}
	add := func(r *Row) {
		k := groupKey{r.level, r.contentID}
		if _, ok := locs[k]; ok {
			return
		}
		locs[k] = v.AddLocation(r.Accepting())
		reps = append(reps, r)
	}
	add(eps)
	for level := 0; level <= t.maxLevel; level++ {
		for _, r := range t.shortRows[level] {
			add(r)
		}
	}

	for _, r := range reps {
		from := locs[groupKey{r.level, r.contentID}]
		for i, sym := range t.alphabet.Symbols() {
			s := r.successors[i]
			if s == nil {
				continue
			}
			to, ok := locs[groupKey{s.level, s.contentID}]
			if !ok {
				continue
			}
			if err := v.SetSuccessor(from, vca.CounterValue(r.level), sym, to); err != nil {
				return nil, fmt.Errorf("to vca: %w", err)
			}
		}
	}
	return v, nil
}

// #endregion to-vca

// #region snapshot

// RowView is a read-only copy of a row.
type RowView struct {
	Prefix    string
	Level     int
	ContentID int
	Contents  []bool
	Short     bool
}

// Snapshot is a read-only copy of the table for renderers and storage.
type Snapshot struct {
	MaxLevel int
	Suffixes [][]string
	Short    [][]RowView
	Long     []RowView
}

func view(r *Row) RowView {
	return RowView{
		Prefix:    r.prefix.String(),
		Level:     r.level,
		ContentID: r.contentID,
		Contents:  r.Contents(),
		Short:     r.short,
	}
}

func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		MaxLevel: t.maxLevel,
		Suffixes: make([][]string, t.maxLevel+1),
		Short:    make([][]RowView, t.maxLevel+1),
	}
	for level := 0; level <= t.maxLevel; level++ {
		for _, w := range t.suffixes[level] {
			s.Suffixes[level] = append(s.Suffixes[level], w.String())
		}
		for _, r := range t.shortRows[level] {
			s.Short[level] = append(s.Short[level], view(r))
		}
	}
	for _, r := range t.longRows {
		s.Long = append(s.Long, view(r))
	}
	return s
}

// #endregion snapshot

// #region stats

// Stats summarises the size of the table.
type Stats struct {
	MaxLevel  int
	ShortRows int
	LongRows  int
	Suffixes  int
	Queries   int
	Forks     int
}

func (t *Table) numShort() int {
	n := 0
	for _, rows := range t.shortRows {
		n += len(rows)
	}
	return n
}

func (t *Table) Stats() Stats {
	st := Stats{
		MaxLevel:  t.maxLevel,
		ShortRows: t.numShort(),
		LongRows:  len(t.longRows),
		Queries:   t.queries,
		Forks:     t.canon.forks,
	}
	for _, s := range t.suffixes {
		st.Suffixes += len(s)
	}
	return st
}

// #endregion stats
