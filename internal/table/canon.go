package table

import "log"

// #region canonicalizer

// canonicalizer hands out content ids per level. The claims map remembers
// which levels use a vector so that a vector reappearing at another level
// gets a fresh id instead of the other level's.
type canonicalizer struct {
	byLevel []map[string]int
	claims  map[string][]int
	nextID  int
	forks   int
}

func newCanonicalizer() *canonicalizer {
	return &canonicalizer{claims: make(map[string][]int)}
}

func (c *canonicalizer) grow(level int) {
	for len(c.byLevel) <= level {
		c.byLevel = append(c.byLevel, make(map[string]int))
	}
}

// id returns the content id of vector at level.
func (c *canonicalizer) id(level int, vector string) int {
	if id, ok := c.byLevel[level][vector]; ok {
		return id
	}
	id := c.nextID
	c.nextID++
	if others := c.claims[vector]; len(others) > 0 {
		c.forks++
		log.Printf("[TABLE] content %q at level %d already claimed by levels %v, forked id %d", vector, level, others, id)
	}
	c.byLevel[level][vector] = id
	c.claims[vector] = append(c.claims[vector], level)
	return id
}

// reset drops every id handed out at level.
func (c *canonicalizer) reset(level int) {
	for vector := range c.byLevel[level] {
		levels := c.claims[vector]
		kept := levels[:0]
		for _, l := range levels {
			if l != level {
				kept = append(kept, l)
			}
		}
		if len(kept) == 0 {
			delete(c.claims, vector)
		} else {
			c.claims[vector] = kept
		}
	}
	c.byLevel[level] = make(map[string]int)
}

// #endregion canonicalizer
