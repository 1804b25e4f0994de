package flow

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrison/dommx/internal/models"
)

// Store is the persistence collaborator the controller saves through. The
// backend must guarantee last-writer-wins per (user, project); the controller
// does not attempt conflict detection.
type Store interface {
	SaveResults(userID, projectID string, answers AnswerSet) error
	MarkFinished(userID, projectID string) error
	SaveLogSnapshot(userID, projectID string, messages []models.Message) error
}

// Action is the closed set of user intents the controller reduces over.
type Action interface{ isAction() }

// AnswerSelected records a maturity score for a question of the current
// domain. It never advances the cursor.
type AnswerSelected struct {
	QuestionID string
	Score      int
}

// Advance moves to the next question, or starts submission at the final one.
type Advance struct{}

// Retreat moves to the previous question.
type Retreat struct{}

// Jump moves directly to a question selected from the navigation tree.
type Jump struct {
	Domain   int
	Question int
}

// Save persists the current answers.
type Save struct{}

// SubmitConfirm finalizes the assessment from the confirmation state.
type SubmitConfirm struct{}

// SubmitCancel returns from the confirmation state without side effects.
type SubmitCancel struct{}

func (AnswerSelected) isAction() {}
func (Advance) isAction()        {}
func (Retreat) isAction()        {}
func (Jump) isAction()           {}
func (Save) isAction()           {}
func (SubmitConfirm) isAction()  {}
func (SubmitCancel) isAction()   {}

// QuestionView is the current question as the presentation layer needs it.
type QuestionView struct {
	ID          string
	Text        string
	Description string
	Objective   string
	Mandatory   bool
	Answer      *int
}

// DomainView is the current domain's header information.
type DomainView struct {
	Index   int
	Total   int
	ID      string
	Acronym string
	Name    string
}

// RenderState is the bundle returned after every action: everything the
// presentation layer renders, nothing it mutates.
type RenderState struct {
	Position       models.Position
	Domain         DomainView
	Question       QuestionView
	Recommendation *Recommendation
	Messages       []models.Message
	Scale          []int
	Dirty          bool
	Phase          Phase
	Finished       bool
	Halted         bool
	CanRetreat     bool
	AtFinalStep    bool
}

// Controller orchestrates one session: it validates each action, delegates
// movement to the engine, resolves recommendations, and owns the save/dirty
// bookkeeping. All error conditions become message panel entries; nothing
// escapes as a panic.
type Controller struct {
	sess       *Session
	store      Store
	staleAfter time.Duration
}

// NewController wires a session to its persistence backend. staleAfter is
// how long unsaved changes may sit before the panel starts warning; zero
// disables the warning.
func NewController(sess *Session, store Store, staleAfter time.Duration) *Controller {
	return &Controller{sess: sess, store: store, staleAfter: staleAfter}
}

// Session exposes the underlying session.
func (c *Controller) Session() *Session {
	return c.sess
}

// Apply reduces one action into the next render state.
func (c *Controller) Apply(action Action) RenderState {
	s := c.sess

	if !s.halted {
		switch a := action.(type) {
		case AnswerSelected:
			c.applyAnswer(a)
		case Advance:
			c.applyAdvance()
		case Retreat:
			if s.phase == PhaseInProgress {
				s.engine.Previous()
			}
		case Jump:
			c.applyJump(a)
		case Save:
			c.applySave()
		case SubmitConfirm:
			c.applySubmitConfirm()
		case SubmitCancel:
			if s.phase == PhaseSubmitConfirm {
				s.phase = PhaseInProgress
			}
		}
	}

	c.checkStaleSave()
	return c.Render()
}

func (c *Controller) applyAnswer(a AnswerSelected) {
	s := c.sess
	if s.phase == PhaseFinished {
		return
	}

	if !s.Graph.ScaleContains(a.Score) {
		s.Log.Error(fmt.Sprintf("Score %d is not in the maturity scale.", a.Score))
		return
	}

	pos := s.Position()
	s.Answers.Set(pos.Domain, a.QuestionID, a.Score)

	// Resolve eagerly so a configuration gap is reported the moment the
	// score is selected, not on a later render.
	dom := s.engine.CurrentDomain()
	plan := s.engine.CurrentPlan()
	if strings.EqualFold(plan.ID, a.QuestionID) {
		if _, err := Resolve(dom, plan, a.Score); err != nil {
			s.Log.Error(err.Error())
		}
	}
}

func (c *Controller) applyAdvance() {
	s := c.sess
	if s.phase != PhaseInProgress {
		return
	}

	switch s.engine.Next(s.Answers) {
	case NextMoved:
		// position change only; navigation produces no messages
	case NextBlocked:
		dom := s.engine.CurrentDomain()
		plan := s.engine.CurrentPlan()
		s.Log.Error(fmt.Sprintf("Mandatory question not answered: %s / %s.", dom.Label(), plan.ID))
	case NextAtEnd:
		missing := s.engine.MissingMandatory(s.Answers)
		if len(missing) > 0 {
			s.Log.Error(missingMandatoryText(missing))
			return
		}
		s.phase = PhaseSubmitConfirm
	}
}

func missingMandatoryText(missing []MissingAnswer) string {
	pairs := make([]string, 0, len(missing))
	for _, m := range missing {
		pairs = append(pairs, fmt.Sprintf("%s / %s", m.DomainLabel, m.QuestionID))
	}
	sort.Strings(pairs)
	return "There are mandatory questions not answered: " + strings.Join(pairs, ", ") + ". Please complete them before submitting."
}

func (c *Controller) applyJump(a Jump) {
	s := c.sess
	if s.phase != PhaseInProgress {
		return
	}
	target := models.Position{Domain: a.Domain, Question: a.Question}
	if !s.engine.Jump(target, s.Answers) {
		s.Log.Warning("You cannot navigate to unanswered future questions.")
	}
}

// applySave persists the answers. It is idempotent: a clean session saves
// nothing and appends nothing.
func (c *Controller) applySave() {
	s := c.sess
	if !s.Dirty() {
		return
	}

	if err := c.store.SaveResults(s.UserID, s.ProjectID, s.Answers); err != nil {
		s.Log.Error(fmt.Sprintf("Failed to save progress: %v.", err))
		return
	}

	s.snapshot = s.Answers.Clone()
	s.lastSaveAt = s.now()
	s.Log.DropPrefix(StaleSavePrefix)
	s.Log.Success("Progress saved successfully.")

	// Log snapshots are best-effort; a failure must not disturb the save.
	if err := c.store.SaveLogSnapshot(s.UserID, s.ProjectID, s.Log.List()); err != nil {
		s.Log.Warning(fmt.Sprintf("Failed to store log snapshot: %v.", err))
	}
}

func (c *Controller) applySubmitConfirm() {
	s := c.sess
	if s.phase != PhaseSubmitConfirm {
		return
	}

	if err := c.store.MarkFinished(s.UserID, s.ProjectID); err != nil {
		s.Log.Error(fmt.Sprintf("Failed to finalize assessment: %v.", err))
		return
	}

	s.phase = PhaseFinished
	s.finishedAt = s.now()
	s.Log.Success("Assessment completed successfully.")

	if err := c.store.SaveLogSnapshot(s.UserID, s.ProjectID, s.Log.List()); err != nil {
		s.Log.Warning(fmt.Sprintf("Failed to store log snapshot: %v.", err))
	}
}

// checkStaleSave emits the deduplicated unsaved-changes warning once the
// session has been dirty past the threshold.
func (c *Controller) checkStaleSave() {
	s := c.sess
	if c.staleAfter <= 0 || s.phase != PhaseInProgress || !s.Dirty() {
		return
	}
	elapsed := s.now().Sub(s.lastSaveAt)
	if elapsed <= c.staleAfter {
		return
	}
	if s.Log.HasPrefix(StaleSavePrefix) {
		return
	}
	s.Log.Warning(fmt.Sprintf("%s %d seconds ago. You have unsaved changes.", StaleSavePrefix, int(elapsed.Seconds())))
}

// Render assembles the state bundle for the current position without
// applying an action. A lookup failure here is a configuration error: it is
// logged and the session is halted rather than crashed.
func (c *Controller) Render() RenderState {
	s := c.sess

	state := RenderState{
		Position:   s.Position(),
		Messages:   s.Log.List(),
		Scale:      s.Graph.Scale,
		Dirty:      s.Dirty(),
		Phase:      s.phase,
		Finished:   s.phase == PhaseFinished,
		Halted:     s.halted,
		CanRetreat: s.Graph.NavigationMode == models.NavigationFree && !s.engine.AtStart(),
	}
	if s.halted {
		return state
	}

	dom := s.engine.CurrentDomain()
	plan := s.engine.CurrentPlan()

	state.Domain = DomainView{
		Index:   state.Position.Domain,
		Total:   len(s.Graph.Domains),
		ID:      dom.ID,
		Acronym: dom.Acronym,
		Name:    dom.Name,
	}
	state.AtFinalStep = s.engine.AtEnd()

	question, ok := dom.Question(plan.ID)
	if !ok {
		s.halted = true
		s.Log.Error(fmt.Sprintf("Question %s not found in decision tree of domain %s.", plan.ID, dom.ID))
		state.Halted = true
		state.Messages = s.Log.List()
		return state
	}

	state.Question = QuestionView{
		ID:          plan.ID,
		Text:        question.Text,
		Description: question.Description,
		Objective:   question.Objective,
		Mandatory:   plan.Mandatory,
	}

	if score, answered := s.Answers.Get(state.Position.Domain, plan.ID); answered {
		state.Question.Answer = &score

		rec, err := Resolve(dom, plan, score)
		if err == nil {
			state.Recommendation = rec
		}
	}

	return state
}
