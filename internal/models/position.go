package models

// Position is the mutable assessment cursor. Both indexes are zero-based and
// must be clamped against the current graph before use: persisted positions
// can be stale after the configuration shrank.
type Position struct {
	Domain   int
	Question int
}

// Clamp returns the position constrained to the bounds of g. A position that
// was valid stays unchanged; an out-of-range one is pulled back to the nearest
// valid index.
func (p Position) Clamp(g *Graph) Position {
	p.Domain = clamp(p.Domain, 0, len(g.Domains)-1)
	p.Question = clamp(p.Question, 0, g.QuestionsIn(p.Domain)-1)
	return p
}

// Before reports whether p comes before other in traversal order.
func (p Position) Before(other Position) bool {
	if p.Domain != other.Domain {
		return p.Domain < other.Domain
	}
	return p.Question < other.Question
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
