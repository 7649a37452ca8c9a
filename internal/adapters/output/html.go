// internal/adapters/output/html.go
package output

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"time"

	"falcon/internal/core/domain"
)

// HTMLSink exporta el informe como una página HTML autocontenida.
type HTMLSink struct {
	w io.Writer
}

// NewHTMLSink crea un sink HTML sobre w.
func NewHTMLSink(w io.Writer) *HTMLSink {
	return &HTMLSink{w: w}
}

// Name implementa ports.ReportSink.
func (s *HTMLSink) Name() string { return "html" }

// Write implementa ports.ReportSink.
func (s *HTMLSink) Write(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return errNilReport
	}
	if err := reportTemplate.Execute(s.w, report); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"flatten": func(f *domain.Fields) [][2]string { return f.Flatten() },
	"ms":      func(d time.Duration) int64 { return d.Milliseconds() },
	"stamp":   formatTime,
}).Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Falcon report: {{.Subject.Value}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; vertical-align: top; }
th { background: #f0f0f0; }
.found { color: #1a7f37; }
.not_found { color: #57606a; }
.failure { color: #cf222e; }
ul { margin: 0; padding-left: 1.2em; }
</style>
</head>
<body>
<h1>Falcon report: {{.Subject.Value}}</h1>
<p>
Kind: <strong>{{.Subject.Kind}}</strong> &middot;
Category: <strong>{{.Category}}</strong> &middot;
Run: <code>{{.ID}}</code><br>
Started: {{stamp .StartedAt}} &middot; Finished: {{stamp .FinishedAt}} &middot; Duration: {{.Duration}}
</p>

<h2>Summary</h2>
<table>
<tr><th>Total</th><th>Succeeded</th><th>Found</th><th>Not found</th><th>Failed</th><th>Timed out</th></tr>
<tr><td>{{.Summary.Total}}</td><td>{{.Summary.Succeeded}}</td><td>{{.Summary.Found}}</td><td>{{.Summary.NotFound}}</td><td>{{.Summary.Failed}}</td><td>{{.Summary.TimedOut}}</td></tr>
</table>

<h2>Sources</h2>
<table>
<tr><th>Source</th><th>Outcome</th><th>Latency (ms)</th><th>Details</th></tr>
{{- range .Entries}}
<tr>
<td>{{.Source}}</td>
{{- if .Failure}}
<td class="failure">{{.Failure.Kind}}</td><td></td><td>{{.Failure.Message}}</td>
{{- else if .Result}}
<td class="{{.Result.Status}}">{{.Result.Status}}</td><td>{{ms .Result.Latency}}</td>
<td>{{with flatten .Result.Fields}}<ul>{{range .}}<li><strong>{{index . 0}}</strong>: {{index . 1}}</li>{{end}}</ul>{{end}}</td>
{{- end}}
</tr>
{{- end}}
</table>
{{- if .Correlations}}

<h2>Correlations</h2>
<table>
<tr><th>Field</th><th>Value</th><th>Sources</th></tr>
{{- range .Correlations}}
<tr><td>{{.Field}}</td><td>{{.Value}}</td><td>{{range $i, $s := .Sources}}{{if $i}}, {{end}}{{$s}}{{end}}</td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`
