// internal/platform/ui/presenter.go
package ui

import (
	"time"
)

// UIMode define el modo de visualización
type UIMode string

const (
	UIModePretty UIMode = "pretty" // Header, barra de progreso y líneas por probe (default)
	UIModeRaw    UIMode = "raw"    // Una línea de log por evento
	UIModeQuiet  UIMode = "quiet"  // Sin UI visual
)

// Presenter define la interfaz para presentar el progreso de un run.
type Presenter interface {
	// Start inicia la presentación con información del run
	Start(info RunInfo)

	// FinishProbe notifica que un probe produjo su outcome
	FinishProbe(line ProbeLine)

	// Info muestra un mensaje informativo
	Info(msg string)

	// Warning muestra una advertencia
	Warning(msg string)

	// Error muestra un error
	Error(msg string)

	// Finish finaliza la presentación con estadísticas finales
	Finish(stats RunStats)

	// Close limpia recursos del presenter
	Close() error
}

// RunInfo contiene información inicial del run
type RunInfo struct {
	Subject        string
	Kind           string
	Category       string
	Probes         int
	Concurrency    int
	TimeoutSeconds int
}

// ProbeLine describe el outcome de un probe
type ProbeLine struct {
	Source   string
	Status   Status
	Label    string
	Duration time.Duration
	Fields   int
	Message  string
}

// RunStats contiene estadísticas finales del run
type RunStats struct {
	ID           string
	Duration     time.Duration
	Total        int
	Succeeded    int
	Failed       int
	TimedOut     int
	Found        int
	Correlations int
}

// NewPresenter crea el presenter para un modo.
func NewPresenter(mode UIMode) Presenter {
	switch mode {
	case UIModeQuiet:
		return NewNoopPresenter()
	case UIModeRaw:
		return NewRawPresenter(LogFormatText)
	default:
		return NewPTermPresenter()
	}
}
