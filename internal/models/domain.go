package models

import (
	"errors"
	"fmt"
	"strings"
)

// Requirement is the tri-state "mandatory" field as it appears in the
// orchestration file. The raw value is resolved into a plain bool exactly
// once, when the graph is loaded.
type Requirement int

const (
	// RequirementUnspecified means the field was absent; treated as mandatory
	RequirementUnspecified Requirement = iota
	// RequirementMandatory corresponds to "Yes"
	RequirementMandatory
	// RequirementOptional corresponds to "No"
	RequirementOptional
)

// ParseRequirement maps the raw Yes/No field onto a Requirement.
// Anything other than a recognizable yes or no is Unspecified.
func ParseRequirement(raw string) Requirement {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return RequirementUnspecified
	case "yes", "true", "1":
		return RequirementMandatory
	case "no", "false", "0":
		return RequirementOptional
	}
	return RequirementUnspecified
}

// Mandatory resolves the tri-state into the boolean the engine uses.
// Unspecified defaults to mandatory.
func (r Requirement) Mandatory() bool {
	return r != RequirementOptional
}

// QuestionPlan is one question's placement within a domain's execution plan.
type QuestionPlan struct {
	// ID is the question identifier; matched case-insensitively against the
	// domain's decision tree
	ID string

	// Mandatory is the resolved tri-state mandatory flag
	Mandatory bool

	// Procedures restricts which catalog procedures are shown for the
	// resolved action. Empty means no procedures are shown.
	Procedures []int
}

// AllowsProcedure reports whether the catalog procedure number is permitted
// for this question.
func (p *QuestionPlan) AllowsProcedure(number int) bool {
	for _, n := range p.Procedures {
		if n == number {
			return true
		}
	}
	return false
}

// Domain represents one assessment section: its metadata from the flow
// definition plus the selected questions and the decision tree / action
// catalog documents loaded for it.
type Domain struct {
	ID         string   // external domain identifier from the flow definition
	Acronym    string   // short label shown in navigation
	Name       string   // display name
	Dependence []string // ids of domains that should logically precede this one (advisory)

	// Questions is the ordered execution plan for this domain
	Questions []QuestionPlan

	// Tree maps lowercased question id to its decision tree node
	Tree map[string]Question

	// Catalog maps action code to prescriptive guidance
	Catalog map[string]Action
}

// Validate checks the invariants established at load time.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("domain id is required")
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("domain %s has no selected questions", d.ID)
	}
	for _, q := range d.Questions {
		if _, ok := d.Tree[strings.ToLower(q.ID)]; !ok {
			return fmt.Errorf("question %s not found in decision tree of domain %s", q.ID, d.ID)
		}
	}
	return nil
}

// Question looks up the decision tree node for a plan entry.
func (d *Domain) Question(id string) (Question, bool) {
	q, ok := d.Tree[strings.ToLower(id)]
	return q, ok
}

// Label returns the acronym when present, otherwise the display name,
// otherwise the raw id. Used in user-facing messages.
func (d *Domain) Label() string {
	if s := strings.TrimSpace(d.Acronym); s != "" {
		return s
	}
	if s := strings.TrimSpace(d.Name); s != "" {
		return s
	}
	return d.ID
}
