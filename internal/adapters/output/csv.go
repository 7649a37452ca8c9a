// internal/adapters/output/csv.go
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"falcon/internal/core/domain"
)

// csvFixedColumns columnas presentes en toda fila; los campos de cada
// fuente se añaden a continuación con claves punteadas (links.blog).
var csvFixedColumns = []string{"source", "category", "outcome", "message", "latency_ms", "fetched_at"}

// CSVSink exporta una fila por entrada del informe.
type CSVSink struct {
	w io.Writer
}

// NewCSVSink crea un sink CSV sobre w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

// Name implementa ports.ReportSink.
func (s *CSVSink) Name() string { return "csv" }

// Write implementa ports.ReportSink.
func (s *CSVSink) Write(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return errNilReport
	}

	// Columnas de campos en orden de primera aparición
	var fieldColumns []string
	seen := make(map[string]bool)
	flattened := make([]map[string]string, len(report.Entries))
	for i, entry := range report.Entries {
		flattened[i] = make(map[string]string)
		if entry.Result == nil {
			continue
		}
		for _, kv := range entry.Result.Fields.Flatten() {
			flattened[i][kv[0]] = kv[1]
			if !seen[kv[0]] {
				seen[kv[0]] = true
				fieldColumns = append(fieldColumns, kv[0])
			}
		}
	}

	cw := csv.NewWriter(s.w)
	header := append(append([]string{}, csvFixedColumns...), fieldColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, entry := range report.Entries {
		row := make([]string, 0, len(header))
		row = append(row, entry.Source, string(entry.Category), entry.Label())

		switch {
		case entry.Failure != nil:
			row = append(row, entry.Failure.Message, "", "")
		case entry.Result != nil:
			row = append(row, "",
				strconv.FormatInt(entry.Result.Latency.Milliseconds(), 10),
				formatTime(entry.Result.FetchedAt))
		default:
			row = append(row, "", "", "")
		}

		for _, col := range fieldColumns {
			row = append(row, flattened[i][col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", entry.Source, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
