// internal/adapters/output/table.go
package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"falcon/internal/core/domain"
)

// maxDetailFields campos mostrados por fila en la tabla de terminal.
const maxDetailFields = 4

// TableSink imprime una tabla legible en terminal.
type TableSink struct {
	w io.Writer
}

// NewTableSink crea un sink de tabla sobre w.
func NewTableSink(w io.Writer) *TableSink {
	return &TableSink{w: w}
}

// Name implementa ports.ReportSink.
func (s *TableSink) Name() string { return "table" }

// Write implementa ports.ReportSink.
func (s *TableSink) Write(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return errNilReport
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Falcon Report ===\n")
	fmt.Fprintf(&b, "Subject:   %s (%s)\n", report.Subject.Value, report.Subject.Kind)
	fmt.Fprintf(&b, "Category:  %s\n", report.Category)
	fmt.Fprintf(&b, "Duration:  %s\n\n", report.Duration)

	if len(report.Entries) == 0 {
		b.WriteString("No probes ran.\n")
	} else {
		data := pterm.TableData{{"Source", "Outcome", "Latency", "Details"}}
		for _, e := range report.Entries {
			data = append(data, []string{e.Source, e.Label(), latencyOf(e), detailsOf(e)})
		}
		rendered, err := pterm.DefaultTable.
			WithHasHeader().
			WithBoxed().
			WithData(data).
			Srender()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
		b.WriteString(rendered)
		b.WriteString("\n")
	}

	sum := report.Summary
	fmt.Fprintf(&b, "\nTotal: %d  Succeeded: %d  Found: %d  Not found: %d  Failed: %d  Timed out: %d\n",
		sum.Total, sum.Succeeded, sum.Found, sum.NotFound, sum.Failed, sum.TimedOut)

	if len(report.Correlations) > 0 {
		fmt.Fprintf(&b, "\nCorrelations (%d):\n", len(report.Correlations))
		for _, c := range report.Correlations {
			fmt.Fprintf(&b, "  - %s = %q [%s]\n", c.Field, c.Value, strings.Join(c.Sources, ", "))
		}
	}
	b.WriteString("\n")

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func latencyOf(e domain.Outcome) string {
	if e.Result == nil {
		return "-"
	}
	return e.Result.Latency.String()
}

func detailsOf(e domain.Outcome) string {
	if e.Failure != nil {
		return e.Failure.Message
	}
	if e.Result == nil {
		return ""
	}

	pairs := e.Result.Fields.Flatten()
	parts := make([]string, 0, maxDetailFields+1)
	for i, kv := range pairs {
		if i == maxDetailFields {
			parts = append(parts, fmt.Sprintf("(+%d more)", len(pairs)-maxDetailFields))
			break
		}
		parts = append(parts, kv[0]+"="+kv[1])
	}
	return strings.Join(parts, ", ")
}
