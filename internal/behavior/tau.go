package behavior

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/vcalearn/internal/vca"
)

// #region tau-mapping

type tauKey struct {
	class int
	sym   vca.Symbol
}

// TauMapping is a partial function from (local class, symbol) to a local
// class, with classes numbered 1..K. It describes one level of a behavior
// graph.
type TauMapping struct {
	width int
	next  map[tauKey]int
}

func NewTauMapping(width int) *TauMapping {
	return &TauMapping{width: width, next: make(map[tauKey]int)}
}

func (t *TauMapping) Width() int { return t.width }

// AddTransition sets τ(start, input) = target.
func (t *TauMapping) AddTransition(start int, input vca.Symbol, target int) error {
	if start < 1 || start > t.width || target < 1 || target > t.width {
		return fmt.Errorf("tau transition %d -%s-> %d outside [1,%d]: %w",
			start, input, target, t.width, vca.ErrInvalidParameter)
	}
	t.next[tauKey{start, input}] = target
	return nil
}

func (t *TauMapping) HasTransition(start int, input vca.Symbol) bool {
	_, ok := t.next[tauKey{start, input}]
	return ok
}

// Transition returns τ(start, input).
func (t *TauMapping) Transition(start int, input vca.Symbol) (int, error) {
	if start < 1 || start > t.width {
		return 0, fmt.Errorf("tau class %d outside [1,%d]: %w", start, t.width, vca.ErrInvalidParameter)
	}
	target, ok := t.next[tauKey{start, input}]
	if !ok {
		return 0, fmt.Errorf("tau transition %d -%s-> undefined: %w", start, input, vca.ErrInvalidParameter)
	}
	return target, nil
}

func (t *TauMapping) lookup(start int, input vca.Symbol) (int, bool) {
	target, ok := t.next[tauKey{start, input}]
	return target, ok
}

// Len counts the defined transitions.
func (t *TauMapping) Len() int { return len(t.next) }

// String renders the mapping deterministically.
func (t *TauMapping) String() string {
	keys := make([]tauKey, 0, len(t.next))
	for k := range t.next {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].class != keys[j].class {
			return keys[i].class < keys[j].class
		}
		return keys[i].sym < keys[j].sym
	})
	s := "{"
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d-%s->%d", k.class, k.sym, t.next[k])
	}
	return s + "}"
}

// #endregion tau-mapping
