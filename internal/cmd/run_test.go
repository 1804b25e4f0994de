package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/dommx/internal/flow"
	"github.com/harrison/dommx/internal/models"
)

// recordingStore counts persistence calls for loop tests.
type recordingStore struct {
	saves    int
	finishes int
}

func (r *recordingStore) SaveResults(userID, projectID string, answers flow.AnswerSet) error {
	r.saves++
	return nil
}

func (r *recordingStore) MarkFinished(userID, projectID string) error {
	r.finishes++
	return nil
}

func (r *recordingStore) SaveLogSnapshot(userID, projectID string, messages []models.Message) error {
	return nil
}

func sessionGraph() *models.Graph {
	return &models.Graph{
		NavigationMode: models.NavigationFree,
		SortOrder:      models.SortNatural,
		Scale:          []int{0, 1, 2, 3},
		Domains: []models.Domain{
			{
				ID:      "1",
				Acronym: "GOV",
				Name:    "Governance",
				Questions: []models.QuestionPlan{
					{ID: "Q1", Mandatory: true},
					{ID: "Q2", Mandatory: false},
				},
				Tree: map[string]models.Question{
					"q1": {
						Text:         "Is there a policy?",
						ScoreActions: map[int]string{0: "A-1", 1: "A-1", 2: "A-1", 3: "A-1"},
					},
					"q2": {
						Text:         "Is it reviewed?",
						ScoreActions: map[int]string{0: "A-1", 1: "A-1", 2: "A-1", 3: "A-1"},
					},
				},
				Catalog: map[string]models.Action{
					"A-1": {Title: "Establish a policy"},
				},
			},
		},
	}
}

// newTestUI wires a sessionUI over buffers with color disabled.
func newTestUI(t *testing.T, input string) (*sessionUI, *bytes.Buffer, *recordingStore) {
	t.Helper()
	color.NoColor = true

	st := &recordingStore{}
	sess := flow.NewSession("alice", "p1", sessionGraph(), nil, false)
	ctrl := flow.NewController(sess, st, 3*time.Minute)

	var out bytes.Buffer
	ui := &sessionUI{
		in:          strings.NewReader(input),
		out:         &out,
		ctrl:        ctrl,
		logoutDelay: 5 * time.Second,
		sleep:       func(time.Duration) {},
		interactive: false,
	}
	return ui, &out, st
}

func TestSessionUIParse(t *testing.T) {
	ui, _, _ := newTestUI(t, "")
	state := ui.ctrl.Render()

	tests := []struct {
		input   string
		want    flow.Action
		wantErr bool
	}{
		{input: "2", want: flow.AnswerSelected{QuestionID: "Q1", Score: 2}},
		{input: "", want: flow.Advance{}},
		{input: "n", want: flow.Advance{}},
		{input: "p", want: flow.Retreat{}},
		{input: "s", want: flow.Save{}},
		{input: "g 1 2", want: flow.Jump{Domain: 0, Question: 1}},
		{input: "g 1", wantErr: true},
		{input: "g x y", wantErr: true},
		{input: "g 0 1", wantErr: true},
		{input: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		action, quit, err := ui.parse(tt.input, state)
		if quit {
			t.Errorf("parse(%q) requested quit", tt.input)
		}
		if tt.wantErr {
			if err == nil {
				t.Errorf("parse(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parse(%q) error = %v", tt.input, err)
			continue
		}
		if action != tt.want {
			t.Errorf("parse(%q) = %#v, want %#v", tt.input, action, tt.want)
		}
	}
}

func TestSessionUIParseQuit(t *testing.T) {
	ui, _, _ := newTestUI(t, "")
	state := ui.ctrl.Render()

	_, quit, err := ui.parse("q", state)
	if err != nil || !quit {
		t.Errorf("parse(q) = quit %v, err %v; want quit", quit, err)
	}
}

func TestSessionUILoopAnswerAndSave(t *testing.T) {
	ui, out, st := newTestUI(t, "2\ns\nq\n")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if st.saves != 1 {
		t.Errorf("saves = %d, want 1", st.saves)
	}
	if !strings.Contains(out.String(), "Progress saved successfully.") {
		t.Errorf("output missing save confirmation:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Session closed.") {
		t.Errorf("output missing close message:\n%s", out.String())
	}
}

func TestSessionUILoopQuitWithUnsavedChanges(t *testing.T) {
	ui, out, st := newTestUI(t, "2\nq\n")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if st.saves != 0 {
		t.Errorf("saves = %d, want 0", st.saves)
	}
	if !strings.Contains(out.String(), "Unsaved changes") {
		t.Errorf("output missing unsaved warning:\n%s", out.String())
	}
}

func TestSessionUILoopCompleteAssessment(t *testing.T) {
	// answer Q1, advance, answer Q2, advance past the end, confirm
	ui, out, st := newTestUI(t, "2\nn\n1\nn\ny\n")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if st.finishes != 1 {
		t.Errorf("finishes = %d, want 1", st.finishes)
	}
	if !strings.Contains(out.String(), "Assessment completed.") {
		t.Errorf("output missing completion:\n%s", out.String())
	}
}

func TestSessionUILoopSubmitCancel(t *testing.T) {
	ui, out, st := newTestUI(t, "2\nn\n1\nn\nc\nq\n")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if st.finishes != 0 {
		t.Errorf("finishes = %d, want 0", st.finishes)
	}
	if !strings.Contains(out.String(), "Submit the assessment?") {
		t.Errorf("output missing confirmation prompt:\n%s", out.String())
	}
}

func TestSessionUILoopMandatoryGate(t *testing.T) {
	// advancing without answering the mandatory Q1 is refused
	ui, out, _ := newTestUI(t, "n\nq\n")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if !strings.Contains(out.String(), "Mandatory question not answered: GOV / Q1.") {
		t.Errorf("output missing mandatory gate message:\n%s", out.String())
	}
}

func TestSessionUILoopOverview(t *testing.T) {
	ui, out, _ := newTestUI(t, "2\no\nq\n")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if !strings.Contains(out.String(), "> GOV") {
		t.Errorf("output missing domain overview:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1/2 answered") {
		t.Errorf("output missing progress bar:\n%s", out.String())
	}
}

func TestSessionUILoopEOF(t *testing.T) {
	ui, out, _ := newTestUI(t, "")

	if err := ui.loop(); err != nil {
		t.Fatalf("loop() error = %v", err)
	}
	if !strings.Contains(out.String(), "Session closed.") {
		t.Errorf("output missing close message:\n%s", out.String())
	}
}
