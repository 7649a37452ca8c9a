// internal/platform/ui/symbols.go
package ui

import (
	"github.com/pterm/pterm"

	"falcon/internal/core/domain"
)

// Status representa el estado visual de un probe
type Status int

const (
	StatusPending Status = iota
	StatusFound
	StatusNotFound
	StatusWarning
	StatusError
)

// StatusFor traduce un outcome a su estado visual.
// Timeouts y rate limits se muestran como advertencia; el resto de fallos
// y resultados con estado error, como error.
func StatusFor(o domain.Outcome) Status {
	switch {
	case o.Result != nil && o.Result.Status == domain.StatusFound:
		return StatusFound
	case o.Result != nil && o.Result.Status == domain.StatusNotFound:
		return StatusNotFound
	case o.Failure != nil && (o.Failure.Kind == domain.FailureTimeout || o.Failure.Kind == domain.FailureRateLimited):
		return StatusWarning
	case o.Result != nil || o.Failure != nil:
		return StatusError
	default:
		return StatusPending
	}
}

// String convierte el status a string
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Symbol retorna el símbolo Unicode para cada estado
func (s Status) Symbol() string {
	switch s {
	case StatusPending:
		return "⏸"
	case StatusFound:
		return "✓"
	case StatusNotFound:
		return "⊘"
	case StatusWarning:
		return "⚠"
	case StatusError:
		return "✗"
	default:
		return "?"
	}
}

// Color retorna el color pterm para cada estado
func (s Status) Color() pterm.Color {
	switch s {
	case StatusPending, StatusNotFound:
		return pterm.FgGray
	case StatusFound:
		return pterm.FgGreen
	case StatusWarning:
		return pterm.FgYellow
	case StatusError:
		return pterm.FgRed
	default:
		return pterm.FgDefault
	}
}

// Style retorna un pterm.Style configurado para el estado
func (s Status) Style() *pterm.Style {
	return pterm.NewStyle(s.Color())
}

// Icons globales para diferentes elementos de la UI
var (
	IconSubject  = "🎯"
	IconCategory = "🗂"
	IconInfo     = "ℹ"
	IconStats    = "📊"
	IconTime     = "⏱"
	IconProbes   = "🔌"
	IconWorkers  = "⚙️"
	IconLink     = "🔗"
)

// Separadores y bordes
var (
	SeparatorHeavy = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"
	SeparatorLight = "────────────────────────────────────────────"
)
