package flow

import (
	"fmt"

	"github.com/harrison/dommx/internal/models"
)

// Recommendation is the prescriptive guidance resolved for an answered
// question: the action code, its catalog title, and the procedures permitted
// for that question.
type Recommendation struct {
	Code       string
	Title      string
	Procedures []models.Procedure
}

// MissingMappingError reports a score the decision tree has no action for.
// This is a configuration gap, not a participant error: the answer is still
// recorded and the assessment continues without an action block.
type MissingMappingError struct {
	QuestionID string
	Score      int
}

func (e *MissingMappingError) Error() string {
	return fmt.Sprintf("Missing score_action_mapping for score %d in question %s.", e.Score, e.QuestionID)
}

// Resolve maps (domain, question, score) to a recommendation. A missing
// score→action mapping returns a MissingMappingError. A missing catalog entry
// degrades silently to an empty title with no procedures: the decision tree
// and the catalog are edited independently, and a dangling code must not
// block the assessment.
func Resolve(dom *models.Domain, plan *models.QuestionPlan, score int) (*Recommendation, error) {
	question, ok := dom.Question(plan.ID)
	if !ok {
		return nil, fmt.Errorf("question %s not found in decision tree of domain %s", plan.ID, dom.ID)
	}

	code, ok := question.ActionFor(score)
	if !ok {
		return nil, &MissingMappingError{QuestionID: plan.ID, Score: score}
	}

	rec := &Recommendation{Code: code}

	action, ok := dom.Catalog[code]
	if !ok {
		return rec, nil
	}

	rec.Title = action.Title
	for _, proc := range action.Procedures {
		if plan.AllowsProcedure(proc.Number) {
			rec.Procedures = append(rec.Procedures, proc)
		}
	}
	return rec, nil
}
