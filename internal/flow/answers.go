package flow

import "fmt"

// AnswerSet holds every recorded score for one (user, project) session,
// keyed by domain key then question id. This is the unit of persistence.
type AnswerSet map[string]map[string]int

// DomainKey returns the persistence key for a domain index.
func DomainKey(domainIndex int) string {
	return fmt.Sprintf("domain_%d", domainIndex)
}

// Set records a score for a question. An existing score is overwritten.
func (a AnswerSet) Set(domainIndex int, questionID string, score int) {
	key := DomainKey(domainIndex)
	if a[key] == nil {
		a[key] = make(map[string]int)
	}
	a[key][questionID] = score
}

// Get returns the recorded score for a question, if any.
func (a AnswerSet) Get(domainIndex int, questionID string) (int, bool) {
	score, ok := a[DomainKey(domainIndex)][questionID]
	return score, ok
}

// Has reports whether the question has been answered.
func (a AnswerSet) Has(domainIndex int, questionID string) bool {
	_, ok := a[DomainKey(domainIndex)][questionID]
	return ok
}

// Clone returns a deep copy. Used to take the last-saved snapshot the dirty
// diff is computed against.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for key, byQuestion := range a {
		inner := make(map[string]int, len(byQuestion))
		for qid, score := range byQuestion {
			inner[qid] = score
		}
		out[key] = inner
	}
	return out
}

// Equal reports whether two answer sets record exactly the same scores.
// Empty per-domain maps count the same as absent ones.
func (a AnswerSet) Equal(other AnswerSet) bool {
	return a.contains(other) && other.contains(a)
}

func (a AnswerSet) contains(other AnswerSet) bool {
	for key, byQuestion := range other {
		for qid, score := range byQuestion {
			got, ok := a[key][qid]
			if !ok || got != score {
				return false
			}
		}
	}
	return true
}

// Count returns the total number of recorded answers.
func (a AnswerSet) Count() int {
	n := 0
	for _, byQuestion := range a {
		n += len(byQuestion)
	}
	return n
}
