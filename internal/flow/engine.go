package flow

import (
	"github.com/harrison/dommx/internal/models"
)

// Engine tracks the assessment cursor and applies the navigation rules:
// mandatory gating on forward movement, domain rollover, jump bounds, and the
// free/sequential mode distinction. It never touches persistence and never
// writes messages; outcomes are returned to the controller.
type Engine struct {
	graph *models.Graph
	pos   models.Position
}

// NewEngine creates an engine positioned at start. Out-of-range start
// positions (stale persisted state) are clamped.
func NewEngine(graph *models.Graph, start models.Position) *Engine {
	return &Engine{graph: graph, pos: start.Clamp(graph)}
}

// Position returns the cursor, clamped against the current graph.
func (e *Engine) Position() models.Position {
	e.pos = e.pos.Clamp(e.graph)
	return e.pos
}

// CurrentDomain returns the domain under the cursor.
func (e *Engine) CurrentDomain() *models.Domain {
	return &e.graph.Domains[e.Position().Domain]
}

// CurrentPlan returns the question plan under the cursor.
func (e *Engine) CurrentPlan() *models.QuestionPlan {
	pos := e.Position()
	return &e.graph.Domains[pos.Domain].Questions[pos.Question]
}

// AtStart reports whether the cursor is on the very first question of the
// very first domain.
func (e *Engine) AtStart() bool {
	pos := e.Position()
	return pos.Domain == 0 && pos.Question == 0
}

// AtEnd reports whether the cursor is on the last question of the last
// domain.
func (e *Engine) AtEnd() bool {
	pos := e.Position()
	return pos.Domain == len(e.graph.Domains)-1 &&
		pos.Question == e.graph.QuestionsIn(pos.Domain)-1
}

// NextOutcome describes what Next did.
type NextOutcome int

const (
	// NextMoved means the cursor advanced to the following question
	NextMoved NextOutcome = iota
	// NextBlocked means the current question is mandatory and unanswered
	NextBlocked
	// NextAtEnd means the cursor is on the final question; advancing from
	// here is the submission path, not a move
	NextAtEnd
)

// Next advances the cursor. The mandatory check is re-validated here even
// though callers disable the affordance for unanswered mandatory questions.
// On the final question the outcome is always NextAtEnd: submission runs the
// full completeness check across every domain, which subsumes the
// single-question gate.
func (e *Engine) Next(answers AnswerSet) NextOutcome {
	if e.AtEnd() {
		return NextAtEnd
	}

	pos := e.Position()
	plan := e.CurrentPlan()

	if plan.Mandatory && !answers.Has(pos.Domain, plan.ID) {
		return NextBlocked
	}

	if pos.Question < e.graph.QuestionsIn(pos.Domain)-1 {
		e.pos = models.Position{Domain: pos.Domain, Question: pos.Question + 1}
		return NextMoved
	}
	e.pos = models.Position{Domain: pos.Domain + 1, Question: 0}
	return NextMoved
}

// Previous moves the cursor back one question, rolling over to the previous
// domain's last question. There is no mandatory check going backward.
// Returns false at the very first question, and always in sequential mode.
func (e *Engine) Previous() bool {
	if e.graph.NavigationMode == models.NavigationSequential {
		return false
	}
	pos := e.Position()
	if pos.Question > 0 {
		e.pos = models.Position{Domain: pos.Domain, Question: pos.Question - 1}
		return true
	}
	if pos.Domain > 0 {
		prev := pos.Domain - 1
		e.pos = models.Position{Domain: prev, Question: e.graph.QuestionsIn(prev) - 1}
		return true
	}
	return false
}

// LastAnswered returns the furthest position, in traversal order, for which
// an answer exists anywhere in the question list. ok is false when nothing
// has been answered yet.
func (e *Engine) LastAnswered(answers AnswerSet) (last models.Position, ok bool) {
	for d := range e.graph.Domains {
		for q, plan := range e.graph.Domains[d].Questions {
			if answers.Has(d, plan.ID) {
				last = models.Position{Domain: d, Question: q}
				ok = true
			}
		}
	}
	return last, ok
}

// Jump moves the cursor to target, which must be at or before the position
// one question past the last answered one. Returns false (no move) for
// targets in unanswered future territory, and for backward targets in
// sequential mode.
func (e *Engine) Jump(target models.Position, answers AnswerSet) bool {
	clamped := target.Clamp(e.graph)
	if clamped != target {
		return false
	}

	if e.graph.NavigationMode == models.NavigationSequential && target.Before(e.Position()) {
		return false
	}

	frontier := models.Position{Domain: 0, Question: 0}
	if last, ok := e.LastAnswered(answers); ok {
		frontier = e.successor(last)
	}
	if frontier.Before(target) {
		return false
	}

	e.pos = target
	return true
}

// successor returns the position one question past p in traversal order,
// staying on p when it is the final question.
func (e *Engine) successor(p models.Position) models.Position {
	if p.Question < e.graph.QuestionsIn(p.Domain)-1 {
		return models.Position{Domain: p.Domain, Question: p.Question + 1}
	}
	if p.Domain < len(e.graph.Domains)-1 {
		return models.Position{Domain: p.Domain + 1, Question: 0}
	}
	return p
}

// MissingAnswer identifies one unanswered mandatory question.
type MissingAnswer struct {
	DomainLabel string
	QuestionID  string
}

// MissingMandatory scans every domain for mandatory questions without an
// answer. Submission requires this to be empty.
func (e *Engine) MissingMandatory(answers AnswerSet) []MissingAnswer {
	var missing []MissingAnswer
	for d := range e.graph.Domains {
		dom := &e.graph.Domains[d]
		for _, plan := range dom.Questions {
			if plan.Mandatory && !answers.Has(d, plan.ID) {
				missing = append(missing, MissingAnswer{
					DomainLabel: dom.Label(),
					QuestionID:  plan.ID,
				})
			}
		}
	}
	return missing
}
