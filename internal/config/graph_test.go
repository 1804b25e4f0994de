package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/dommx/internal/models"
)

const testFlow = `
Domain_flow:
  - domain_id: 1
    acronym: DG
    name: Data Governance
    dependence: []
    files:
      decision_tree: dg_tree.yaml
      action_catalog: dg_catalog.yaml
`

const testOrchestration = `
execution_request:
  - domain: 1
    selected_questions:
      - id: Q1
        mandatory: "Yes"
        procedures: [1, 2]
      - id: Q2
        mandatory: "No"
navigation_mode: free
sort_order: natural
maturity_scale: [0, 1, 2, 3]
`

const testTree = `
questions:
  Q1:
    text: Is data ownership defined?
    explanation: Whether owners exist for critical data sets.
    objective: Establish accountability.
    score_action_mapping:
      0: {action_code: A-1}
      1: {action_code: A-1}
      2: {action_code: A-2}
      3: {action_code: A-3}
  Q2:
    question: Is there a data quality process?
    score_action_mapping:
      0: {action_code: A-1}
      1: {action_code: A-2}
      2: {action_code: A-2}
      3: {action_code: A-3}
`

const testCatalog = `
action_catalog:
  A-1:
    title: Establish governance basics
    procedures:
      - number: 1
        name: Name data owners
        prerequisite: Executive sponsorship
        deliverable: Ownership matrix
        recommendations:
          - Start with critical data sets
        note: Review quarterly
      - number: 2
        name: Publish a charter
        deliverable: Governance charter
  A-2:
    title: Formalize stewardship
  A-3:
    title: Optimize governance
`

// writeProject lays out a minimal project data directory under a temp dir.
func writeProject(t *testing.T, flow, orch string) string {
	t.Helper()
	root := t.TempDir()

	domainsDir := filepath.Join(root, "Domains", "en")
	if err := os.MkdirAll(domainsDir, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(root, "flow.yaml"):             flow,
		filepath.Join(root, "orchestration.yaml"):    orch,
		filepath.Join(domainsDir, "dg_tree.yaml"):    testTree,
		filepath.Join(domainsDir, "dg_catalog.yaml"): testCatalog,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLoadGraph_HappyPath(t *testing.T) {
	root := writeProject(t, testFlow, testOrchestration)

	graph, issues, err := LoadGraph(GraphOptions{Root: root, Locale: "en"})
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}

	if graph.NavigationMode != models.NavigationFree {
		t.Errorf("navigation mode = %v", graph.NavigationMode)
	}
	if graph.SortOrder != models.SortNatural {
		t.Errorf("sort order = %v", graph.SortOrder)
	}
	if len(graph.Scale) != 4 || graph.Scale[3] != 3 {
		t.Errorf("scale = %v", graph.Scale)
	}

	if len(graph.Domains) != 1 {
		t.Fatalf("expected 1 domain, got %d", len(graph.Domains))
	}
	dom := graph.Domains[0]
	if dom.ID != "1" || dom.Acronym != "DG" {
		t.Errorf("domain meta = %+v", dom)
	}

	if len(dom.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(dom.Questions))
	}
	if !dom.Questions[0].Mandatory {
		t.Error("Q1 should be mandatory")
	}
	if dom.Questions[1].Mandatory {
		t.Error("Q2 should be optional")
	}
	if !dom.Questions[0].AllowsProcedure(2) {
		t.Error("Q1 should allow procedure 2")
	}

	q1, ok := dom.Question("q1")
	if !ok {
		t.Fatal("q1 lookup failed")
	}
	if q1.Text != "Is data ownership defined?" {
		t.Errorf("q1 text = %q", q1.Text)
	}
	if code, _ := q1.ActionFor(2); code != "A-2" {
		t.Errorf("q1 score 2 action = %q", code)
	}

	a1 := dom.Catalog["A-1"]
	if len(a1.Procedures) != 2 {
		t.Fatalf("A-1 procedures = %d", len(a1.Procedures))
	}
	if len(a1.Procedures[0].Notes) != 1 || a1.Procedures[0].Notes[0] != "Review quarterly" {
		t.Errorf("single note not folded into notes: %v", a1.Procedures[0].Notes)
	}
}

func TestLoadGraph_MandatoryDefaultsWhenUnspecified(t *testing.T) {
	orch := strings.Replace(testOrchestration, "        mandatory: \"No\"\n", "", 1)
	root := writeProject(t, testFlow, orch)

	graph, _, err := LoadGraph(GraphOptions{Root: root})
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if !graph.Domains[0].Questions[1].Mandatory {
		t.Error("unspecified mandatory should default to true")
	}
}

func TestLoadGraph_SortByID(t *testing.T) {
	orch := `
execution_request:
  - domain: 1
    selected_questions:
      - id: Q10
      - id: Q2
      - id: Q1
sort_order: id
maturity_scale: [0, 1, 2, 3]
`
	tree := `
questions:
  Q1:
    text: one
  Q2:
    text: two
  Q10:
    text: ten
`
	root := writeProject(t, testFlow, orch)
	if err := os.WriteFile(filepath.Join(root, "Domains", "en", "dg_tree.yaml"), []byte(tree), 0644); err != nil {
		t.Fatal(err)
	}

	graph, _, err := LoadGraph(GraphOptions{Root: root})
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	got := []string{}
	for _, q := range graph.Domains[0].Questions {
		got = append(got, q.ID)
	}
	want := []string{"Q1", "Q2", "Q10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}

func TestNaturalKey_Ordering(t *testing.T) {
	plans := []models.QuestionPlan{
		{ID: "intro"}, {ID: "D1.Q2"}, {ID: "Q10"}, {ID: "Q2"},
	}
	sortPlansByID(plans)

	want := []string{"D1.Q2", "Q2", "Q10", "intro"}
	for i := range want {
		if plans[i].ID != want[i] {
			t.Fatalf("order = %v, want %v", plans, want)
		}
	}

	// idempotent: sorting the sorted list changes nothing
	sortPlansByID(plans)
	for i := range want {
		if plans[i].ID != want[i] {
			t.Fatalf("re-sort changed order: %v", plans)
		}
	}
}

func TestValidateScale(t *testing.T) {
	tests := []struct {
		name      string
		raw       []any
		want      []int
		wantIssue bool
	}{
		{"nil uses default silently", nil, models.DefaultScale, false},
		{"empty array is an error", []any{}, models.DefaultScale, true},
		{"valid subset", []any{0, 2, 4}, []int{0, 2, 4}, false},
		{"dedupe and sort", []any{3, 1, 3, 0}, []int{0, 1, 3}, false},
		{"numeric strings accepted", []any{"0", "1"}, []int{0, 1}, false},
		{"non-integer is an error", []any{0, "high"}, models.DefaultScale, true},
		{"out of range is an error", []any{0, 6}, models.DefaultScale, true},
		{"negative is an error", []any{-1, 0}, models.DefaultScale, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, issues := validateScale(tt.raw)
			if (len(issues) > 0) != tt.wantIssue {
				t.Errorf("issues = %v, wantIssue %v", issues, tt.wantIssue)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("scale = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("scale = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLoadGraph_UnknownModeAndOrderWarn(t *testing.T) {
	orch := strings.Replace(testOrchestration, "navigation_mode: free", "navigation_mode: chaotic", 1)
	orch = strings.Replace(orch, "sort_order: natural", "sort_order: shuffled", 1)
	root := writeProject(t, testFlow, orch)

	graph, issues, err := LoadGraph(GraphOptions{Root: root})
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if graph.NavigationMode != models.NavigationFree {
		t.Errorf("should fall back to free, got %v", graph.NavigationMode)
	}
	if graph.SortOrder != models.SortNatural {
		t.Errorf("should fall back to natural, got %v", graph.SortOrder)
	}
	if len(issues) != 2 {
		t.Errorf("expected 2 warnings, got %v", issues)
	}
	for _, issue := range issues {
		if issue.Level != models.LevelWarning {
			t.Errorf("fallbacks should warn, got %v", issue.Level)
		}
	}
}

func TestLoadGraph_FailFast(t *testing.T) {
	tests := []struct {
		name string
		orch string
	}{
		{"zero domains", "execution_request: []\n"},
		{
			"unknown domain id",
			"execution_request:\n  - domain: 99\n    selected_questions:\n      - id: Q1\n",
		},
		{
			"zero questions",
			"execution_request:\n  - domain: 1\n    selected_questions: []\n",
		},
		{
			"question missing from tree",
			"execution_request:\n  - domain: 1\n    selected_questions:\n      - id: Q99\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeProject(t, testFlow, tt.orch)
			if _, _, err := LoadGraph(GraphOptions{Root: root}); err == nil {
				t.Error("expected a blocking error")
			}
		})
	}
}

func TestLoadGraph_LocaleFallback(t *testing.T) {
	root := writeProject(t, testFlow, testOrchestration)

	// pt documents do not exist; the loader must fall back to en
	graph, _, err := LoadGraph(GraphOptions{Root: root, Locale: "pt", DefaultLocale: "en"})
	if err != nil {
		t.Fatalf("LoadGraph with locale fallback: %v", err)
	}
	if _, ok := graph.Domains[0].Question("Q1"); !ok {
		t.Error("fallback tree not loaded")
	}
}

func TestLoadGraph_CaseInsensitiveQuestionIDs(t *testing.T) {
	orch := strings.Replace(testOrchestration, "id: Q1", "id: q1", 1)
	root := writeProject(t, testFlow, orch)

	graph, _, err := LoadGraph(GraphOptions{Root: root})
	if err != nil {
		t.Fatalf("lowercase plan id should resolve: %v", err)
	}
	if _, ok := graph.Domains[0].Question("Q1"); !ok {
		t.Error("case-insensitive lookup failed")
	}
}
