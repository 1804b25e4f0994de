package flow

import (
	"fmt"
	"strings"

	"github.com/harrison/dommx/internal/models"
)

// twoDomainGraph builds a graph with two domains: GOV with three questions
// (A1 mandatory, A2 optional, A3 mandatory) and OPS with five optional
// questions B1..B5. Every question maps scores 0..3 to an action code.
func twoDomainGraph() *models.Graph {
	scale := []int{0, 1, 2, 3}

	makeTree := func(ids ...string) map[string]models.Question {
		tree := make(map[string]models.Question)
		for _, id := range ids {
			actions := make(map[int]string)
			for _, s := range scale {
				actions[s] = "A-1"
			}
			tree[strings.ToLower(id)] = models.Question{
				Text:         "Question " + id,
				ScoreActions: actions,
			}
		}
		return tree
	}

	catalog := map[string]models.Action{
		"A-1": {
			Title: "Establish basics",
			Procedures: []models.Procedure{
				{Number: 1, Name: "First step"},
				{Number: 2, Name: "Second step"},
				{Number: 3, Name: "Third step"},
			},
		},
	}

	gov := models.Domain{
		ID:      "1",
		Acronym: "GOV",
		Name:    "Governance",
		Questions: []models.QuestionPlan{
			{ID: "A1", Mandatory: true, Procedures: []int{1, 2}},
			{ID: "A2", Mandatory: false, Procedures: []int{1}},
			{ID: "A3", Mandatory: true},
		},
		Tree:    makeTree("A1", "A2", "A3"),
		Catalog: catalog,
	}

	var opsPlans []models.QuestionPlan
	var opsIDs []string
	for i := 1; i <= 5; i++ {
		id := fmt.Sprintf("B%d", i)
		opsPlans = append(opsPlans, models.QuestionPlan{ID: id, Procedures: []int{1}})
		opsIDs = append(opsIDs, id)
	}
	ops := models.Domain{
		ID:        "2",
		Acronym:   "OPS",
		Name:      "Operations",
		Questions: opsPlans,
		Tree:      makeTree(opsIDs...),
		Catalog:   catalog,
	}

	return &models.Graph{
		Domains:        []models.Domain{gov, ops},
		NavigationMode: models.NavigationFree,
		SortOrder:      models.SortNatural,
		Scale:          scale,
	}
}

// fakeStore records persistence calls and can be told to fail.
type fakeStore struct {
	saves        int
	finishes     int
	snapshots    int
	lastAnswers  AnswerSet
	failSave     bool
	failFinish   bool
	failSnapshot bool
}

func (f *fakeStore) SaveResults(userID, projectID string, answers AnswerSet) error {
	if f.failSave {
		return fmt.Errorf("backend unavailable")
	}
	f.saves++
	f.lastAnswers = answers.Clone()
	return nil
}

func (f *fakeStore) MarkFinished(userID, projectID string) error {
	if f.failFinish {
		return fmt.Errorf("backend unavailable")
	}
	f.finishes++
	return nil
}

func (f *fakeStore) SaveLogSnapshot(userID, projectID string, messages []models.Message) error {
	if f.failSnapshot {
		return fmt.Errorf("backend unavailable")
	}
	f.snapshots++
	return nil
}

func newTestController(graph *models.Graph) (*Controller, *fakeStore) {
	store := &fakeStore{}
	sess := NewSession("u1", "p1", graph, nil, false)
	return NewController(sess, store, 0), store
}
