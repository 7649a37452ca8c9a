// internal/adapters/output/yaml.go
package output

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"falcon/internal/core/domain"
)

// YAMLSink exporta el informe en formato YAML.
// Los campos conservan el orden en que cada fuente los reportó.
type YAMLSink struct {
	w io.Writer
}

// NewYAMLSink crea un sink YAML sobre w.
func NewYAMLSink(w io.Writer) *YAMLSink {
	return &YAMLSink{w: w}
}

// Name implementa ports.ReportSink.
func (s *YAMLSink) Name() string { return "yaml" }

// Write implementa ports.ReportSink.
func (s *YAMLSink) Write(_ context.Context, report *domain.RunReport) error {
	if report == nil {
		return errNilReport
	}

	enc := yaml.NewEncoder(s.w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}
	return nil
}
