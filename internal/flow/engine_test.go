package flow

import (
	"testing"

	"github.com/harrison/dommx/internal/models"
)

func TestEngine_ClampsStalePosition(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{Domain: 10, Question: 10})

	pos := e.Position()
	if pos.Domain != 1 || pos.Question != 4 {
		t.Errorf("stale position not clamped: %v", pos)
	}
}

func TestEngine_NextBlockedByMandatory(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{})
	answers := make(AnswerSet)

	if got := e.Next(answers); got != NextBlocked {
		t.Fatalf("Next on unanswered mandatory = %v, want NextBlocked", got)
	}
	if pos := e.Position(); pos != (models.Position{}) {
		t.Errorf("blocked Next must not move, pos = %v", pos)
	}

	answers.Set(0, "A1", 2)
	if got := e.Next(answers); got != NextMoved {
		t.Fatalf("Next after answering = %v, want NextMoved", got)
	}
	if pos := e.Position(); pos.Question != 1 {
		t.Errorf("pos = %v", pos)
	}
}

func TestEngine_NextSkipsOptionalAndRollsOver(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{Domain: 0, Question: 1})
	answers := make(AnswerSet)

	// A2 is optional: advancing without an answer is allowed
	if got := e.Next(answers); got != NextMoved {
		t.Fatalf("optional question should not gate: %v", got)
	}

	// A3 is mandatory; answer it and roll over into the next domain
	answers.Set(0, "A3", 1)
	if got := e.Next(answers); got != NextMoved {
		t.Fatalf("Next = %v", got)
	}
	if pos := e.Position(); pos.Domain != 1 || pos.Question != 0 {
		t.Errorf("rollover pos = %v", pos)
	}
}

func TestEngine_NextAtEnd(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{Domain: 1, Question: 4})
	answers := make(AnswerSet)

	if got := e.Next(answers); got != NextAtEnd {
		t.Fatalf("Next at final question = %v, want NextAtEnd", got)
	}
	if pos := e.Position(); pos.Domain != 1 || pos.Question != 4 {
		t.Errorf("NextAtEnd must not move, pos = %v", pos)
	}
}

func TestEngine_Previous(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{Domain: 1, Question: 0})

	if !e.Previous() {
		t.Fatal("Previous should move")
	}
	if pos := e.Position(); pos.Domain != 0 || pos.Question != 2 {
		t.Errorf("should land on previous domain's last question, pos = %v", pos)
	}

	e = NewEngine(graph, models.Position{})
	if e.Previous() {
		t.Error("Previous at origin must refuse")
	}
}

func TestEngine_PreviousRefusedInSequentialMode(t *testing.T) {
	graph := twoDomainGraph()
	graph.NavigationMode = models.NavigationSequential
	e := NewEngine(graph, models.Position{Domain: 0, Question: 2})

	if e.Previous() {
		t.Error("sequential mode must be forward-only")
	}
}

func TestEngine_LastAnswered(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{})
	answers := make(AnswerSet)

	if _, ok := e.LastAnswered(answers); ok {
		t.Error("nothing answered yet")
	}

	answers.Set(0, "A1", 1)
	answers.Set(1, "B3", 2)

	last, ok := e.LastAnswered(answers)
	if !ok || last.Domain != 1 || last.Question != 2 {
		t.Errorf("LastAnswered = %v, %v", last, ok)
	}
}

func TestEngine_JumpGuard(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{})
	answers := make(AnswerSet)

	// last answered position is (1, 2)
	answers.Set(0, "A1", 1)
	answers.Set(1, "B3", 2)

	tests := []struct {
		name   string
		target models.Position
		want   bool
	}{
		{"exactly one past the frontier", models.Position{Domain: 1, Question: 3}, true},
		{"two past the frontier", models.Position{Domain: 1, Question: 4}, false},
		{"backward to visited", models.Position{Domain: 0, Question: 0}, true},
		{"out of range", models.Position{Domain: 5, Question: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.pos = models.Position{Domain: 1, Question: 2}
			before := e.Position()
			got := e.Jump(tt.target, answers)
			if got != tt.want {
				t.Fatalf("Jump(%v) = %v, want %v", tt.target, got, tt.want)
			}
			if !got && e.Position() != before {
				t.Errorf("refused jump must not move, pos = %v", e.Position())
			}
			if got && e.Position() != tt.target {
				t.Errorf("accepted jump must land on target, pos = %v", e.Position())
			}
		})
	}
}

func TestEngine_JumpWithNoAnswers(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{})
	answers := make(AnswerSet)

	if !e.Jump(models.Position{Domain: 0, Question: 0}, answers) {
		t.Error("jump to the first question is always allowed")
	}
	if e.Jump(models.Position{Domain: 0, Question: 1}, answers) {
		t.Error("jump past the frontier with no answers must refuse")
	}
}

func TestEngine_JumpBackwardRefusedInSequentialMode(t *testing.T) {
	graph := twoDomainGraph()
	graph.NavigationMode = models.NavigationSequential
	e := NewEngine(graph, models.Position{Domain: 0, Question: 2})
	answers := make(AnswerSet)
	answers.Set(0, "A1", 1)
	answers.Set(0, "A2", 1)
	answers.Set(0, "A3", 1)

	if e.Jump(models.Position{Domain: 0, Question: 0}, answers) {
		t.Error("sequential mode must refuse backward jumps")
	}
}

func TestEngine_MissingMandatory(t *testing.T) {
	graph := twoDomainGraph()
	e := NewEngine(graph, models.Position{})
	answers := make(AnswerSet)
	answers.Set(0, "A1", 2)

	missing := e.MissingMandatory(answers)
	if len(missing) != 1 {
		t.Fatalf("missing = %v", missing)
	}
	if missing[0].DomainLabel != "GOV" || missing[0].QuestionID != "A3" {
		t.Errorf("missing = %v", missing)
	}

	answers.Set(0, "A3", 0)
	if got := e.MissingMandatory(answers); len(got) != 0 {
		t.Errorf("expected none missing, got %v", got)
	}
}
