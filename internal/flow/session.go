package flow

import (
	"time"

	"github.com/google/uuid"

	"github.com/harrison/dommx/internal/models"
)

// Phase is the submission state machine.
type Phase int

const (
	// PhaseInProgress is the normal answering state
	PhaseInProgress Phase = iota
	// PhaseSubmitConfirm awaits the participant's final confirmation
	PhaseSubmitConfirm
	// PhaseFinished is terminal for the session; no further answer mutation
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseSubmitConfirm:
		return "submit_confirm"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Session is the explicit per-(user, project) state the controller operates
// on. It is constructed at login and torn down at logout; nothing here is
// shared between sessions.
type Session struct {
	ID        string
	UserID    string
	ProjectID string

	Graph   *models.Graph
	Answers AnswerSet
	Log     *Log

	engine     *Engine
	snapshot   AnswerSet
	lastSaveAt time.Time
	phase      Phase
	finishedAt time.Time
	halted     bool

	now func() time.Time
}

// NewSession builds a session from previously persisted state. answers may be
// nil for a first visit; completed restores a finished assessment straight
// into the terminal phase. The cursor resumes one question past the last
// answered position.
func NewSession(userID, projectID string, graph *models.Graph, answers AnswerSet, completed bool) *Session {
	if answers == nil {
		answers = make(AnswerSet)
	}

	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProjectID: projectID,
		Graph:     graph,
		Answers:   answers,
		Log:       NewLog(),
		snapshot:  answers.Clone(),
		now:       time.Now,
	}
	s.lastSaveAt = s.now()

	s.engine = NewEngine(graph, models.Position{})
	if last, ok := s.engine.LastAnswered(answers); ok {
		s.engine.pos = s.engine.successor(last)
	}

	if completed {
		s.phase = PhaseFinished
		s.finishedAt = s.now()
	}
	return s
}

// Phase returns the current submission phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Dirty reports whether the answers differ from the last persisted snapshot.
func (s *Session) Dirty() bool {
	return !s.Answers.Equal(s.snapshot)
}

// Finished reports whether the session reached the terminal phase.
func (s *Session) Finished() bool {
	return s.phase == PhaseFinished
}

// FinishedAt returns when the terminal phase was entered; zero otherwise.
func (s *Session) FinishedAt() time.Time {
	return s.finishedAt
}

// Halted reports whether a configuration failure stopped the session.
func (s *Session) Halted() bool {
	return s.halted
}

// Position returns the clamped cursor.
func (s *Session) Position() models.Position {
	return s.engine.Position()
}
