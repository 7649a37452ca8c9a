// internal/adapters/output/directory.go
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
)

// NewFileSink crea el sink de un formato de archivo (json, yaml, csv, html).
func NewFileSink(format string, w io.Writer) (ports.ReportSink, error) {
	switch format {
	case "json":
		return NewJSONSink(w, true), nil
	case "yaml":
		return NewYAMLSink(w), nil
	case "csv":
		return NewCSVSink(w), nil
	case "html":
		return NewHTMLSink(w), nil
	default:
		return nil, domain.NewConfigurationError("output.formats", fmt.Sprintf("unsupported format %q", format))
	}
}

// DirectorySink escribe cada formato pedido en <dir>/<subject>_<timestamp>/.
type DirectorySink struct {
	dir     string
	formats []string
}

// NewDirectorySinks valida los formatos y prepara el sink de directorio.
func NewDirectorySinks(dir string, formats []string) (*DirectorySink, error) {
	if dir == "" {
		dir = "."
	}
	for _, f := range formats {
		if _, err := NewFileSink(f, io.Discard); err != nil {
			return nil, err
		}
	}
	return &DirectorySink{dir: dir, formats: append([]string(nil), formats...)}, nil
}

// Name implementa ports.ReportSink.
func (d *DirectorySink) Name() string { return "directory" }

// RunDir retorna el directorio donde se escribe el informe.
func (d *DirectorySink) RunDir(report *domain.RunReport) string {
	stamp := report.StartedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	name := fmt.Sprintf("%s_%s", sanitizeName(report.Subject.Value), stamp.UTC().Format("20060102_150405"))
	return filepath.Join(d.dir, name)
}

// Write implementa ports.ReportSink.
func (d *DirectorySink) Write(ctx context.Context, report *domain.RunReport) error {
	if report == nil {
		return errNilReport
	}
	if len(d.formats) == 0 {
		return nil
	}

	runDir := d.RunDir(report)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var errs []error
	for _, format := range d.formats {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		path := filepath.Join(runDir, "report."+format)
		if err := writeReportFile(ctx, path, format, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeReportFile(ctx context.Context, path, format string, report *domain.RunReport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	sink, err := NewFileSink(format, f)
	if err != nil {
		return err
	}
	return sink.Write(ctx, report)
}

// sanitizeName convierte un sujeto en un nombre de carpeta válido.
// Ejemplo: "example.com" -> "example_com"
func sanitizeName(value string) string {
	if value == "" {
		return "subject"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, value)
}
