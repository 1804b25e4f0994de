package models

// Question is one decision tree node: the text shown to the participant and
// the mapping from each selectable score to an action code.
type Question struct {
	Text        string // the question itself
	Description string // longer explanation, may contain markdown
	Objective   string // what answering this question establishes

	// ScoreActions maps a maturity score to the action code resolved for it.
	// The graph loader does not require the mapping to cover the full scale;
	// a gap is reported at answer time and the assessment continues.
	ScoreActions map[int]string
}

// ActionFor returns the action code mapped to score, if any.
func (q *Question) ActionFor(score int) (string, bool) {
	code, ok := q.ScoreActions[score]
	return code, ok
}

// Action is one catalog entry: prescriptive guidance for an action code.
type Action struct {
	Title      string
	Procedures []Procedure
}

// Procedure is a single prescriptive step within an action.
type Procedure struct {
	Number          int
	Name            string
	Prerequisite    string
	Deliverable     string
	Recommendations []string
	Notes           []string
}
