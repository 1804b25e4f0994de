package models

import (
	"errors"
	"fmt"
)

// NavigationMode controls how a participant may move through the assessment.
type NavigationMode string

const (
	// NavigationFree allows backward movement and tree jumps to visited questions
	NavigationFree NavigationMode = "free"
	// NavigationSequential is forward-only
	NavigationSequential NavigationMode = "sequential"
)

// SortOrder controls how selected questions are ordered within a domain.
type SortOrder string

const (
	// SortNatural keeps the order questions appear in the orchestration file
	SortNatural SortOrder = "natural"
	// SortByID re-sorts questions by the numeric component of their id
	SortByID SortOrder = "id"
)

// DefaultScale is the maturity scale used when the configured one is invalid.
var DefaultScale = []int{0, 1, 2, 3, 4, 5}

// Graph is the fully resolved assessment configuration for one project.
// It is built once at session start and never mutated afterwards.
type Graph struct {
	Domains        []Domain
	NavigationMode NavigationMode
	SortOrder      SortOrder
	Scale          []int // maturity scale, sorted ascending, deduplicated
}

// Validate checks the structural invariants the flow engine relies on.
func (g *Graph) Validate() error {
	if len(g.Domains) == 0 {
		return errors.New("graph has no domains")
	}
	for i := range g.Domains {
		if err := g.Domains[i].Validate(); err != nil {
			return fmt.Errorf("domain %d: %w", i, err)
		}
	}
	if len(g.Scale) == 0 {
		return errors.New("graph has an empty maturity scale")
	}
	return nil
}

// ScaleContains reports whether score is a member of the maturity scale.
func (g *Graph) ScaleContains(score int) bool {
	for _, s := range g.Scale {
		if s == score {
			return true
		}
	}
	return false
}

// TotalQuestions returns the number of questions across all domains.
func (g *Graph) TotalQuestions() int {
	n := 0
	for i := range g.Domains {
		n += len(g.Domains[i].Questions)
	}
	return n
}

// QuestionsIn returns the question count of the domain at index, or 0 when
// the index is out of range.
func (g *Graph) QuestionsIn(domainIndex int) int {
	if domainIndex < 0 || domainIndex >= len(g.Domains) {
		return 0
	}
	return len(g.Domains[domainIndex].Questions)
}
