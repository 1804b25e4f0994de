package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"

	"github.com/harrison/dommx/internal/filelock"
	"github.com/harrison/dommx/internal/flow"
	"github.com/harrison/dommx/internal/models"
)

// Report is the rendered view of one assessment, ready for the HTML template.
type Report struct {
	UserID      string
	ProjectID   string
	Finished    bool
	GeneratedAt time.Time
	Domains     []ReportDomain
}

// ReportDomain is one domain section of the report.
type ReportDomain struct {
	Label     string
	Name      string
	Questions []ReportQuestion
}

// ReportQuestion is one question row: the answer given, if any, and the
// guidance resolved for it.
type ReportQuestion struct {
	ID          string
	Text        string
	Description template.HTML
	Mandatory   bool
	Answered    bool
	Score       int
	Guidance    *ReportGuidance
}

// ReportGuidance is the catalog action resolved for an answered question.
type ReportGuidance struct {
	Title      string
	Procedures []models.Procedure
}

// BuildReport assembles the report for one (user, project) assessment from
// the loaded graph and its stored answers. Markdown in question descriptions
// is rendered to HTML. Score values with no catalog mapping are reported as
// answered but without guidance rather than failing the whole report.
func BuildReport(g *models.Graph, userID, projectID string, answers flow.AnswerSet, finished bool) (*Report, error) {
	md := goldmark.New()

	rep := &Report{
		UserID:      userID,
		ProjectID:   projectID,
		Finished:    finished,
		GeneratedAt: time.Now(),
	}

	for di := range g.Domains {
		dom := &g.Domains[di]
		rd := ReportDomain{Label: dom.Label(), Name: dom.Name}

		for qi := range dom.Questions {
			plan := &dom.Questions[qi]
			q, ok := dom.Question(plan.ID)
			if !ok {
				return nil, fmt.Errorf("domain %s: question %s missing from decision tree", dom.Label(), plan.ID)
			}

			rq := ReportQuestion{
				ID:        plan.ID,
				Text:      q.Text,
				Mandatory: plan.Mandatory,
			}
			if q.Description != "" {
				var buf bytes.Buffer
				if err := md.Convert([]byte(q.Description), &buf); err != nil {
					return nil, fmt.Errorf("render description for %s/%s: %w", dom.Label(), plan.ID, err)
				}
				rq.Description = template.HTML(buf.String())
			}

			if score, ok := answers.Get(di, plan.ID); ok {
				rq.Answered = true
				rq.Score = score
				if rec, err := flow.Resolve(dom, plan, score); err == nil {
					rq.Guidance = &ReportGuidance{
						Title:      rec.Title,
						Procedures: rec.Procedures,
					}
				}
			}
			rd.Questions = append(rd.Questions, rq)
		}
		rep.Domains = append(rep.Domains, rd)
	}
	return rep, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Assessment report: {{.UserID}} / {{.ProjectID}}</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
h2 { border-bottom: 1px solid #ccc; padding-bottom: .25rem; }
.question { margin: 1rem 0; padding: .75rem; border: 1px solid #ddd; border-radius: 4px; }
.unanswered { color: #888; }
.score { font-weight: bold; }
.mandatory { color: #a00; font-size: .8em; }
.procedure { margin-left: 1rem; }
footer { margin-top: 2rem; color: #888; font-size: .8em; }
</style>
</head>
<body>
<h1>Assessment report</h1>
<p>Participant <strong>{{.UserID}}</strong>, project <strong>{{.ProjectID}}</strong>
{{- if .Finished}} (completed){{else}} (in progress){{end}}</p>
{{range .Domains}}
<h2>{{.Label}}{{if .Name}} &mdash; {{.Name}}{{end}}</h2>
{{range .Questions}}
<div class="question">
<p><strong>{{.ID}}</strong>{{if .Mandatory}} <span class="mandatory">mandatory</span>{{end}}: {{.Text}}</p>
{{if .Description}}<div>{{.Description}}</div>{{end}}
{{if .Answered}}
<p class="score">Score: {{.Score}}</p>
{{if .Guidance}}
<p>{{.Guidance.Title}}</p>
{{range .Guidance.Procedures}}
<div class="procedure">
<p>{{.Number}}. {{.Name}}</p>
{{if .Prerequisite}}<p>Prerequisite: {{.Prerequisite}}</p>{{end}}
{{if .Deliverable}}<p>Deliverable: {{.Deliverable}}</p>{{end}}
{{range .Recommendations}}<p>&bull; {{.}}</p>{{end}}
</div>
{{end}}
{{end}}
{{else}}
<p class="unanswered">Not answered</p>
{{end}}
</div>
{{end}}
{{end}}
<footer>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</footer>
</body>
</html>
`))

// EncodeHTML renders the report to a standalone HTML page.
func EncodeHTML(rep *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, rep); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the report and writes it to path atomically.
func WriteHTML(path string, rep *Report) error {
	data, err := EncodeHTML(rep)
	if err != nil {
		return err
	}
	return filelock.LockAndWrite(path, data)
}
