package behavior

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region window

// window is the part of a bounded graph reachable from its initial node
// without climbing above limit.
type window struct {
	g      *BoundedGraph
	limit  int
	levels [][]StateBG
	in     map[StateBG]bool
}

func newWindow(g *BoundedGraph, limit int) *window {
	w := &window{g: g, limit: limit, levels: make([][]StateBG, limit+1), in: make(map[StateBG]bool)}
	start := g.Initial()
	w.in[start] = true
	w.levels[start.Index] = append(w.levels[start.Index], start)
	queue := []StateBG{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, sym := range g.Alphabet().Symbols() {
			t, ok := w.step(n, sym)
			if !ok || w.in[t] {
				continue
			}
			w.in[t] = true
			w.levels[t.Index] = append(w.levels[t.Index], t)
			queue = append(queue, t)
		}
	}
	return w
}

func (w *window) step(n StateBG, sym vca.Symbol) (StateBG, bool) {
	t, ok := w.g.Transition(n, sym, vca.CounterValue(n.Index))
	if !ok || t.Index > w.limit {
		return StateBG{}, false
	}
	return t, true
}

// #endregion window

// #region frames

// frameNode is a node seen from one of the two frames of an alignment: the
// upper frame spans [offset+period, limit], the lower frame
// [offset, limit-period].
type frameNode struct {
	n     StateBG
	upper bool
}

// frameColors refines nodes of both frames until the coloring is stable.
// Two nodes share a color only when they sit at the same height in their
// frames and read the same symbols along every path that stays inside the
// frames, so an upper node can only be aligned with a lower node of its
// own color.
func (w *window) frameColors(offset, period int) map[frameNode]int {
	top := offset + period
	floor := func(f frameNode) int {
		if f.upper {
			return top
		}
		return offset
	}
	ceil := func(f frameNode) int { return floor(f) + w.limit - top }

	var nodes []frameNode
	for level := top; level <= w.limit; level++ {
		for _, n := range w.levels[level] {
			nodes = append(nodes, frameNode{n, true})
		}
	}
	for level := offset; level <= w.limit-period; level++ {
		for _, n := range w.levels[level] {
			nodes = append(nodes, frameNode{n, false})
		}
	}

	alphabet := w.g.Alphabet()
	readable := func(f frameNode, sym vca.Symbol) (StateBG, bool) {
		if t, _ := alphabet.Type(sym); t == vca.Call && f.n.Index == ceil(f) {
			return StateBG{}, false
		}
		return w.step(f.n, sym)
	}

	colors := make(map[frameNode]int, len(nodes))
	distinct := 0
	for round := 0; ; round++ {
		ids := make(map[string]int)
		next := make(map[frameNode]int, len(nodes))
		for _, f := range nodes {
			var b strings.Builder
			fmt.Fprintf(&b, "h=%d c=%d", f.n.Index-floor(f), colors[f])
			for _, sym := range alphabet.Symbols() {
				t, ok := readable(f, sym)
				switch {
				case !ok:
					continue
				case t.Index < floor(f):
					fmt.Fprintf(&b, " %s:*", sym)
				case round == 0:
					fmt.Fprintf(&b, " %s", sym)
				default:
					fmt.Fprintf(&b, " %s:%d", sym, colors[frameNode{t, f.upper}])
				}
			}
			key := b.String()
			id, seen := ids[key]
			if !seen {
				id = len(ids) + 1
				ids[key] = id
			}
			next[f] = id
		}
		colors = next
		if len(ids) == distinct {
			return colors
		}
		distinct = len(ids)
	}
}

// #endregion frames

// #region alignment

// alignment maps every node at or above offset+period onto the node one
// period below it, and ties together base nodes that must share a class.
type alignment struct {
	w      *window
	offset int
	period int
	phi    map[StateBG]StateBG
	imaged map[StateBG]bool
	parent map[StateBG]StateBG
}

func newAlignment(w *window, offset, period int) *alignment {
	return &alignment{
		w:      w,
		offset: offset,
		period: period,
		phi:    make(map[StateBG]StateBG),
		imaged: make(map[StateBG]bool),
		parent: make(map[StateBG]StateBG),
	}
}

func (a *alignment) top() int { return a.offset + a.period }

func (a *alignment) clone() *alignment {
	b := newAlignment(a.w, a.offset, a.period)
	for k, v := range a.phi {
		b.phi[k] = v
	}
	for k := range a.imaged {
		b.imaged[k] = true
	}
	for k, v := range a.parent {
		b.parent[k] = v
	}
	return b
}

func (a *alignment) find(n StateBG) StateBG {
	for {
		p, ok := a.parent[n]
		if !ok || p == n {
			return n
		}
		if gp, ok := a.parent[p]; ok {
			a.parent[n] = gp
		}
		n = p
	}
}

func (a *alignment) union(x, y StateBG) {
	rx, ry := a.find(x), a.find(y)
	if rx != ry {
		a.parent[ry] = rx
	}
}

// assign maps u onto v and extends the map along matching transitions. It
// fails as soon as an upper node and its image disagree on what they can
// read, or two upper nodes would share an image.
func (a *alignment) assign(u, v StateBG) bool {
	if img, ok := a.phi[u]; ok {
		return img == v
	}
	if a.imaged[v] {
		return false
	}
	a.phi[u] = v
	a.imaged[v] = true
	queue := []StateBG{u}
	alphabet := a.w.g.Alphabet()
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		img := a.phi[u]
		for _, sym := range alphabet.Symbols() {
			if t, _ := alphabet.Type(sym); t == vca.Call && u.Index == a.w.limit {
				continue
			}
			tu, ok := a.w.step(u, sym)
			ti, iok := a.w.step(img, sym)
			if ok != iok {
				return false
			}
			if !ok {
				continue
			}
			if tu.Index < a.top() {
				a.union(tu, ti)
				continue
			}
			if prev, seen := a.phi[tu]; seen {
				if prev != ti {
					return false
				}
				continue
			}
			if a.imaged[ti] {
				return false
			}
			a.phi[tu] = ti
			a.imaged[ti] = true
			queue = append(queue, tu)
		}
	}
	return true
}

// complete reports whether every upper node has an image.
func (a *alignment) complete() bool {
	for level := a.top(); level <= a.w.limit; level++ {
		for _, n := range a.w.levels[level] {
			if _, ok := a.phi[n]; !ok {
				return false
			}
		}
	}
	return true
}

// search assigns the unmapped nodes of the top level one at a time,
// trying every lower node of the same color, and calls visit on each
// complete alignment until visit returns false.
func (a *alignment) search(colors map[frameNode]int, visit func(*alignment) bool) bool {
	for _, u := range a.w.levels[a.top()] {
		if _, ok := a.phi[u]; ok {
			continue
		}
		cu := colors[frameNode{u, true}]
		for _, v := range a.w.levels[a.offset] {
			if a.imaged[v] || colors[frameNode{v, false}] != cu {
				continue
			}
			b := a.clone()
			if !b.assign(u, v) {
				continue
			}
			if !b.search(colors, visit) {
				return false
			}
		}
		return true
	}
	if !a.complete() {
		return true
	}
	return visit(a)
}

// base follows the alignment down into the base levels.
func (a *alignment) base(n StateBG) StateBG {
	for n.Index >= a.top() {
		n = a.phi[n]
	}
	return n
}

// labels assigns local classes to base nodes. Groups tied by the alignment
// are labelled first, then every level takes the smallest free labels.
func (a *alignment) labels() (map[StateBG]int, int, bool) {
	members := make(map[StateBG][]StateBG)
	var roots []StateBG
	for level := 0; level < a.top(); level++ {
		for _, n := range a.w.levels[level] {
			r := a.find(n)
			if _, ok := members[r]; !ok {
				roots = append(roots, r)
			}
			members[r] = append(members[r], n)
		}
	}

	label := make(map[StateBG]int)
	used := make([]map[int]bool, a.top())
	for i := range used {
		used[i] = make(map[int]bool)
	}
	width := 0
	next := 1
	for _, r := range roots {
		group := members[r]
		if len(group) < 2 {
			continue
		}
		for _, n := range group {
			if used[n.Index][next] {
				return nil, 0, false
			}
			used[n.Index][next] = true
			label[n] = next
		}
		width = next
		next++
	}
	for level := 0; level < a.top(); level++ {
		c := 1
		for _, n := range a.w.levels[level] {
			if _, ok := label[n]; ok {
				continue
			}
			for used[level][c] {
				c++
			}
			used[level][c] = true
			label[n] = c
			if c > width {
				width = c
			}
		}
	}
	return label, width, true
}

func (a *alignment) describe() (*Description, bool) {
	label, width, ok := a.labels()
	if !ok || width == 0 {
		return nil, false
	}
	labelOf := func(n StateBG) int { return label[a.base(n)] }

	g := a.w.g
	d, err := NewDescription(g.Alphabet(), a.offset, a.period, width)
	if err != nil {
		return nil, false
	}
	if err := d.SetInitial(labelOf(g.Initial())); err != nil {
		return nil, false
	}
	for level := 0; level < a.top(); level++ {
		for _, n := range a.w.levels[level] {
			if level == 0 && g.IsAccepting(n, 0) {
				if err := d.SetAccepting(0, label[n]); err != nil {
					return nil, false
				}
			}
			for _, sym := range g.Alphabet().Symbols() {
				t, ok := a.w.step(n, sym)
				if !ok {
					continue
				}
				if err := d.Tau(level).AddTransition(label[n], sym, labelOf(t)); err != nil {
					return nil, false
				}
			}
		}
	}
	return d, true
}

// #endregion alignment

// #region find-descriptions

type periodCandidate struct{ offset, period int }

// periodCandidates lists (offset, period) pairs that leave at least one full
// repetition inside the limit, smallest offset+period first.
func periodCandidates(limit int) []periodCandidate {
	var out []periodCandidate
	for sum := 2; sum <= limit; sum++ {
		for offset := 1; offset < sum; offset++ {
			period := sum - offset
			if offset+2*period > limit {
				continue
			}
			out = append(out, periodCandidate{offset, period})
		}
	}
	return out
}

// FindDescriptions searches for periodic descriptions whose behavior graph
// agrees with g on every word whose counter stays within [0, limit]. At most
// maxResults distinct descriptions are returned, smallest offset+period first.
func FindDescriptions(g *BoundedGraph, limit, maxResults int) []*Description {
	return FindDescriptionsFunc(g, limit, maxResults, nil)
}

// FindDescriptionsFunc is FindDescriptions with a filter: descriptions for
// which keep returns false are skipped and do not count towards maxResults.
func FindDescriptionsFunc(g *BoundedGraph, limit, maxResults int, keep func(*Description) bool) []*Description {
	if limit > g.Threshold() {
		limit = g.Threshold()
	}
	if maxResults <= 0 || limit < 3 {
		return nil
	}
	w := newWindow(g, limit)
	seen := make(map[string]bool)
	var out []*Description

	for _, c := range periodCandidates(limit) {
		if len(w.levels[c.offset+c.period]) > len(w.levels[c.offset]) {
			continue
		}
		colors := w.frameColors(c.offset, c.period)
		newAlignment(w, c.offset, c.period).search(colors, func(a *alignment) bool {
			d, ok := a.describe()
			if !ok {
				return true
			}
			if _, mismatch := Compare(g, NewBehaviorGraph(d), limit); mismatch {
				return true
			}
			if key := d.Key(); !seen[key] {
				seen[key] = true
				if keep == nil || keep(d) {
					out = append(out, d)
				}
			}
			return len(out) < maxResults
		})
		if len(out) >= maxResults {
			break
		}
	}
	return out
}

// #endregion find-descriptions
