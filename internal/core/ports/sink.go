// internal/core/ports/sink.go
package ports

import (
	"context"

	"falcon/internal/core/domain"
)

// ReportSink consume el informe final y lo exporta (archivo, terminal, red).
// Ninguna lógica del núcleo depende del formato.
type ReportSink interface {
	// Name retorna el nombre del sink (ej: "json", "yaml", "table")
	Name() string

	// Write exporta el informe
	Write(ctx context.Context, report *domain.RunReport) error
}
