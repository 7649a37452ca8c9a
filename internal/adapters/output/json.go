// internal/adapters/output/json.go
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"falcon/internal/core/domain"
)

// JSONSink exporta el informe en formato JSON.
type JSONSink struct {
	w      io.Writer
	pretty bool
}

// NewJSONSink crea un sink JSON sobre w. Con pretty el JSON se indenta.
func NewJSONSink(w io.Writer, pretty bool) *JSONSink {
	return &JSONSink{w: w, pretty: pretty}
}

// Name implementa ports.ReportSink.
func (s *JSONSink) Name() string { return "json" }

// Write implementa ports.ReportSink.
func (s *JSONSink) Write(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return errNilReport
	}

	enc := json.NewEncoder(s.w)
	if s.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
