package printing

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
)

var titleCaser = cases.Title(language.English)

// humanize turns enum values such as "full_time" into "Full Time"
func humanize(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("January 2, 2006")
}

const jobPostingTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2933; font-size: 12pt; line-height: 1.5; }
header { border-bottom: 2px solid #3b82f6; margin-bottom: 16px; padding-bottom: 8px; }
.org { color: #52606d; font-size: 10pt; text-transform: uppercase; letter-spacing: 0.08em; }
h1 { font-size: 22pt; margin: 4px 0 0; }
dl.facts { display: grid; grid-template-columns: max-content 1fr; gap: 4px 16px; margin: 0 0 20px; }
dl.facts dt { color: #52606d; }
dl.facts dd { margin: 0; }
.description h1, .description h2, .description h3, .description h4 { margin-top: 16px; }
footer { margin-top: 24px; color: #9aa5b1; font-size: 9pt; }
</style>
</head>
<body>
<header>
{{if .OrganizationName}}<div class="org">{{.OrganizationName}}</div>{{end}}
<h1>{{.Title}}</h1>
</header>
<dl class="facts">
{{if .Department}}<dt>Department</dt><dd>{{.Department}}</dd>{{end}}
{{if .Location}}<dt>Location</dt><dd>{{.Location}}</dd>{{end}}
<dt>Employment</dt><dd>{{humanize .EmploymentType}}</dd>
<dt>Work mode</dt><dd>{{humanize .WorkMode}}</dd>
<dt>Openings</dt><dd>{{.Openings}}</dd>
{{if .Experience}}<dt>Experience</dt><dd>{{.Experience}}</dd>{{end}}
{{if .Salary}}<dt>Salary</dt><dd>{{.Salary}}</dd>{{end}}
</dl>
<section class="description">{{.Description}}</section>
{{with formatDate .PublishedAt}}<footer>Published {{.}}</footer>{{end}}
</body>
</html>`

// postingView exposes the already sanitized description as trusted HTML
type postingView struct {
	recruitingapp.JobPosting
	Description template.HTML
}

// JobPostingRenderer prints job postings. Descriptions must arrive sanitized.
type JobPostingRenderer struct {
	pdf  PDFRenderer
	tmpl *template.Template
}

// NewJobPostingRenderer creates a renderer on top of pdf
func NewJobPostingRenderer(pdf PDFRenderer) *JobPostingRenderer {
	tmpl := template.Must(template.New("job_posting").Funcs(template.FuncMap{
		"humanize":   humanize,
		"formatDate": formatDate,
	}).Parse(jobPostingTemplate))
	return &JobPostingRenderer{pdf: pdf, tmpl: tmpl}
}

// RenderHTML executes the posting template
func (r *JobPostingRenderer) RenderHTML(posting recruitingapp.JobPosting) (string, error) {
	var buf bytes.Buffer
	view := postingView{JobPosting: posting, Description: template.HTML(posting.DescriptionHTML)} // #nosec G203 -- sanitized on write
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render job posting", err)
	}
	return buf.String(), nil
}

// RenderJobPDF renders the posting and prints it
func (r *JobPostingRenderer) RenderJobPDF(ctx context.Context, posting recruitingapp.JobPosting) ([]byte, error) {
	doc, err := r.RenderHTML(posting)
	if err != nil {
		return nil, err
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{HTML: doc, Title: posting.Title})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

var _ recruitingapp.JobRenderer = (*JobPostingRenderer)(nil)
