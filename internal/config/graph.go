package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/dommx/internal/models"
)

// Issue is a non-fatal problem found while loading the assessment graph.
// Issues are surfaced to the session message panel by the caller; they never
// stop the load.
type Issue struct {
	Level models.Level
	Text  string
}

// GraphOptions locates the configuration documents for one project.
type GraphOptions struct {
	// Root is the project data directory
	Root string

	// FlowFile and OrchestrationFile are relative to Root. Empty values use
	// flow.yaml and orchestration.yaml.
	FlowFile          string
	OrchestrationFile string

	// Locale selects Domains/<Locale>; DefaultLocale is the fallback when a
	// domain document does not exist for Locale
	Locale        string
	DefaultLocale string
}

// scalarString decodes any YAML scalar (string, int, bool) into its raw text.
// Domain ids are written as bare integers in some projects and as strings in
// others; the mandatory field is Yes/No in some files and true/false in
// others.
type scalarString string

func (s *scalarString) UnmarshalYAML(value *yaml.Node) error {
	*s = scalarString(strings.TrimSpace(value.Value))
	return nil
}

// flowFile mirrors flow.yaml
type flowFile struct {
	DomainFlow []flowDomain `yaml:"Domain_flow"`
}

type flowDomain struct {
	DomainID   string       `yaml:"-"`
	RawID      scalarString `yaml:"domain_id"`
	Acronym    string       `yaml:"acronym"`
	Name       string       `yaml:"name"`
	Dependence []scalarString `yaml:"dependence"`
	Files      struct {
		DecisionTree  string `yaml:"decision_tree"`
		ActionCatalog string `yaml:"action_catalog"`
	} `yaml:"files"`
}

// orchestrationFile mirrors orchestration.yaml
type orchestrationFile struct {
	ExecutionRequest []executionRequest `yaml:"execution_request"`
	NavigationMode   string             `yaml:"navigation_mode"`
	SortOrder        string             `yaml:"sort_order"`
	MaturityScale    []any              `yaml:"maturity_scale"`
}

type executionRequest struct {
	Domain            scalarString       `yaml:"domain"`
	SelectedQuestions []selectedQuestion `yaml:"selected_questions"`
}

type selectedQuestion struct {
	ID         string       `yaml:"id"`
	Mandatory  scalarString `yaml:"mandatory"`
	Procedures []int        `yaml:"procedures"`
}

// treeFile mirrors a per-domain decision tree document
type treeFile struct {
	Questions map[string]treeQuestion `yaml:"questions"`
}

type treeQuestion struct {
	Question    string `yaml:"question"`
	Text        string `yaml:"text"`
	Description string `yaml:"description"`
	Explanation string `yaml:"explanation"`
	Objective   string `yaml:"objective"`

	ScoreActionMapping map[int]struct {
		ActionCode string `yaml:"action_code"`
	} `yaml:"score_action_mapping"`
}

// catalogFile mirrors a per-domain action catalog document
type catalogFile struct {
	ActionCatalog map[string]catalogAction `yaml:"action_catalog"`
}

type catalogAction struct {
	Title      string `yaml:"title"`
	Procedures []struct {
		Number          int      `yaml:"number"`
		Name            string   `yaml:"name"`
		Prerequisite    string   `yaml:"prerequisite"`
		Deliverable     string   `yaml:"deliverable"`
		Recommendations []string `yaml:"recommendations"`
		Note            string   `yaml:"note"`
		Notes           []string `yaml:"notes"`
	} `yaml:"procedures"`
}

// LoadGraph loads and validates the full assessment graph for one project.
// It returns the immutable graph plus any recoverable issues (bad navigation
// mode, bad maturity scale). Structural problems that make the assessment
// unrenderable are returned as an error.
func LoadGraph(opts GraphOptions) (*models.Graph, []Issue, error) {
	if opts.FlowFile == "" {
		opts.FlowFile = "flow.yaml"
	}
	if opts.OrchestrationFile == "" {
		opts.OrchestrationFile = "orchestration.yaml"
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = "en"
	}
	if opts.Locale == "" {
		opts.Locale = opts.DefaultLocale
	}

	var flow flowFile
	if err := loadYAML(filepath.Join(opts.Root, opts.FlowFile), &flow); err != nil {
		return nil, nil, fmt.Errorf("load flow definition: %w", err)
	}

	var orch orchestrationFile
	if err := loadYAML(filepath.Join(opts.Root, opts.OrchestrationFile), &orch); err != nil {
		return nil, nil, fmt.Errorf("load orchestration definition: %w", err)
	}

	if len(orch.ExecutionRequest) == 0 {
		return nil, nil, fmt.Errorf("no execution_request found in %s", opts.OrchestrationFile)
	}

	var issues []Issue

	mode, ok := parseNavigationMode(orch.NavigationMode)
	if !ok {
		issues = append(issues, Issue{
			Level: models.LevelWarning,
			Text:  fmt.Sprintf("Unrecognized navigation_mode %q, falling back to free.", orch.NavigationMode),
		})
	}

	order, ok := parseSortOrder(orch.SortOrder)
	if !ok {
		issues = append(issues, Issue{
			Level: models.LevelWarning,
			Text:  fmt.Sprintf("Unrecognized sort_order %q, falling back to natural.", orch.SortOrder),
		})
	}

	scale, scaleIssues := validateScale(orch.MaturityScale)
	issues = append(issues, scaleIssues...)

	// Index flow metadata by domain id for the execution request to resolve
	flowByID := make(map[string]flowDomain, len(flow.DomainFlow))
	for _, fd := range flow.DomainFlow {
		fd.DomainID = string(fd.RawID)
		flowByID[fd.DomainID] = fd
	}

	graph := &models.Graph{
		NavigationMode: mode,
		SortOrder:      order,
		Scale:          scale,
	}

	for _, req := range orch.ExecutionRequest {
		domID := string(req.Domain)

		meta, ok := flowByID[domID]
		if !ok {
			return nil, issues, fmt.Errorf("domain metadata not found in %s for domain_id=%s", opts.FlowFile, domID)
		}

		if len(req.SelectedQuestions) == 0 {
			return nil, issues, fmt.Errorf("no selected_questions for domain %s", domID)
		}

		tree, err := loadTree(opts, meta.Files.DecisionTree)
		if err != nil {
			return nil, issues, fmt.Errorf("domain %s: %w", domID, err)
		}

		catalog, err := loadCatalog(opts, meta.Files.ActionCatalog)
		if err != nil {
			return nil, issues, fmt.Errorf("domain %s: %w", domID, err)
		}

		plans := make([]models.QuestionPlan, 0, len(req.SelectedQuestions))
		for _, sq := range req.SelectedQuestions {
			id := strings.TrimSpace(sq.ID)
			if id == "" {
				return nil, issues, fmt.Errorf("domain %s has a selected question without an id", domID)
			}
			if _, ok := tree[strings.ToLower(id)]; !ok {
				return nil, issues, fmt.Errorf("question %s not found in decision tree of domain %s", id, domID)
			}
			plans = append(plans, models.QuestionPlan{
				ID:         id,
				Mandatory:  models.ParseRequirement(string(sq.Mandatory)).Mandatory(),
				Procedures: sq.Procedures,
			})
		}

		if order == models.SortByID {
			sortPlansByID(plans)
		}

		deps := make([]string, 0, len(meta.Dependence))
		for _, d := range meta.Dependence {
			deps = append(deps, string(d))
		}

		graph.Domains = append(graph.Domains, models.Domain{
			ID:         domID,
			Acronym:    meta.Acronym,
			Name:       meta.Name,
			Dependence: deps,
			Questions:  plans,
			Tree:       tree,
			Catalog:    catalog,
		})
	}

	if err := graph.Validate(); err != nil {
		return nil, issues, err
	}

	return graph, issues, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// domainDocPath resolves a domain document under Domains/<locale>, falling
// back to the default locale when the localized file does not exist.
func domainDocPath(opts GraphOptions, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("domain document file name is empty")
	}
	localized := filepath.Join(opts.Root, "Domains", opts.Locale, name)
	if _, err := os.Stat(localized); err == nil {
		return localized, nil
	}
	fallback := filepath.Join(opts.Root, "Domains", opts.DefaultLocale, name)
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}
	return "", fmt.Errorf("domain document %s not found for locale %s or %s", name, opts.Locale, opts.DefaultLocale)
}

func loadTree(opts GraphOptions, name string) (map[string]models.Question, error) {
	path, err := domainDocPath(opts, name)
	if err != nil {
		return nil, err
	}

	var doc treeFile
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	tree := make(map[string]models.Question, len(doc.Questions))
	for id, tq := range doc.Questions {
		text := tq.Question
		if text == "" {
			text = tq.Text
		}
		desc := tq.Description
		if desc == "" {
			desc = tq.Explanation
		}

		actions := make(map[int]string, len(tq.ScoreActionMapping))
		for score, m := range tq.ScoreActionMapping {
			actions[score] = m.ActionCode
		}

		tree[strings.ToLower(strings.TrimSpace(id))] = models.Question{
			Text:         strings.TrimSpace(text),
			Description:  strings.TrimSpace(desc),
			Objective:    strings.TrimSpace(tq.Objective),
			ScoreActions: actions,
		}
	}
	return tree, nil
}

func loadCatalog(opts GraphOptions, name string) (map[string]models.Action, error) {
	path, err := domainDocPath(opts, name)
	if err != nil {
		return nil, err
	}

	var doc catalogFile
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	catalog := make(map[string]models.Action, len(doc.ActionCatalog))
	for code, ca := range doc.ActionCatalog {
		action := models.Action{Title: ca.Title}
		for _, p := range ca.Procedures {
			notes := p.Notes
			if len(notes) == 0 && p.Note != "" {
				notes = []string{p.Note}
			}
			action.Procedures = append(action.Procedures, models.Procedure{
				Number:          p.Number,
				Name:            p.Name,
				Prerequisite:    p.Prerequisite,
				Deliverable:     p.Deliverable,
				Recommendations: p.Recommendations,
				Notes:           notes,
			})
		}
		catalog[code] = action
	}
	return catalog, nil
}

func parseNavigationMode(raw string) (models.NavigationMode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "free":
		return models.NavigationFree, true
	case "sequential", "seq":
		return models.NavigationSequential, true
	}
	return models.NavigationFree, false
}

func parseSortOrder(raw string) (models.SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "natural", "priority":
		return models.SortNatural, true
	case "id", "sequential":
		return models.SortByID, true
	}
	return models.SortNatural, false
}

// validateScale checks the configured maturity scale. Any violation reports
// an error issue and falls back to the default 0..5 scale; a valid scale is
// returned deduplicated and sorted.
func validateScale(raw []any) ([]int, []Issue) {
	fallback := append([]int(nil), models.DefaultScale...)

	if raw == nil {
		return fallback, nil
	}
	if len(raw) == 0 {
		return fallback, []Issue{{
			Level: models.LevelError,
			Text:  "Invalid maturity_scale: must be a non-empty array. Falling back to default [0..5].",
		}}
	}

	seen := make(map[int]bool)
	var out []int
	for _, v := range raw {
		n, ok := scaleValue(v)
		if !ok {
			return fallback, []Issue{{
				Level: models.LevelError,
				Text:  fmt.Sprintf("Invalid maturity_scale value '%v': must be integer. Falling back to default [0..5].", v),
			}}
		}
		if n < 0 || n > 5 {
			return fallback, []Issue{{
				Level: models.LevelError,
				Text:  fmt.Sprintf("Invalid maturity_scale value %d out of range 0..5. Falling back to default [0..5].", n),
			}}
		}
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out, nil
}

func scaleValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

var digitRun = regexp.MustCompile(`\d+`)

// naturalKey extracts the sort key used for sort_order=id: the first run of
// digits in the question id, with digitless ids ordered after all numeric
// ones and ties broken lexicographically case-insensitively.
func naturalKey(id string) (int, string) {
	lower := strings.ToLower(id)
	digits := digitRun.FindString(id)
	if digits == "" {
		return int(^uint(0) >> 1), lower // max int
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// digit run too long for an int; treat as digitless
		return int(^uint(0) >> 1), lower
	}
	return n, lower
}

func sortPlansByID(plans []models.QuestionPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		ni, si := naturalKey(plans[i].ID)
		nj, sj := naturalKey(plans[j].ID)
		if ni != nj {
			return ni < nj
		}
		return si < sj
	})
}
