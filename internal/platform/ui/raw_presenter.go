// internal/platform/ui/raw_presenter.go
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogFormat define el formato de salida para el modo raw
type LogFormat string

const (
	LogFormatText LogFormat = "text" // Formato logfmt (default)
	LogFormatJSON LogFormat = "json" // Formato JSON estructurado
)

// RawPresenter implementa el Presenter para modo raw (logs sin formato visual)
type RawPresenter struct {
	format LogFormat
	out    io.Writer
	mu     sync.Mutex
	now    func() time.Time
}

// NewRawPresenter crea un nuevo RawPresenter que escribe a stdout
func NewRawPresenter(format LogFormat) *RawPresenter {
	return NewRawPresenterTo(os.Stdout, format)
}

// NewRawPresenterTo crea un RawPresenter que escribe a out
func NewRawPresenterTo(out io.Writer, format LogFormat) *RawPresenter {
	return &RawPresenter{format: format, out: out, now: time.Now}
}

// log escribe un log en el formato configurado
func (r *RawPresenter) log(level, message string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now().UTC().Format(time.RFC3339)

	if r.format == LogFormatJSON {
		r.logJSON(timestamp, level, message, fields)
	} else {
		r.logText(timestamp, level, message, fields)
	}
}

// logText escribe en formato logfmt con claves ordenadas:
// timestamp LEVEL message key=value key2=value2
func (r *RawPresenter) logText(timestamp, level, message string, fields map[string]interface{}) {
	parts := []string{timestamp, fmt.Sprintf("%-5s", level), message}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, r.formatValue(fields[k])))
	}

	fmt.Fprintln(r.out, strings.Join(parts, " "))
}

// logJSON escribe en formato JSON estructurado
func (r *RawPresenter) logJSON(timestamp, level, message string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"message":   message,
	}
	if len(fields) > 0 {
		data := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			if d, ok := v.(time.Duration); ok {
				v = d.String()
			}
			data[k] = v
		}
		entry["data"] = data
	}

	jsonBytes, _ := json.Marshal(entry)
	fmt.Fprintln(r.out, string(jsonBytes))
}

// formatValue formatea valores para logfmt (entrecomilla strings con espacios)
func (r *RawPresenter) formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " =\"") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return formatDuration(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Start inicia la presentación
func (r *RawPresenter) Start(info RunInfo) {
	r.log("INFO", "run_started", map[string]interface{}{
		"subject":     info.Subject,
		"kind":        info.Kind,
		"category":    info.Category,
		"probes":      info.Probes,
		"concurrency": info.Concurrency,
		"timeout":     fmt.Sprintf("%ds", info.TimeoutSeconds),
	})
}

// FinishProbe notifica el outcome de un probe
func (r *RawPresenter) FinishProbe(line ProbeLine) {
	fields := map[string]interface{}{
		"source":  line.Source,
		"outcome": line.Label,
	}
	if line.Duration > 0 {
		fields["duration"] = line.Duration
	}
	if line.Fields > 0 {
		fields["fields"] = line.Fields
	}
	if line.Message != "" {
		fields["message"] = line.Message
	}

	level := "INFO"
	switch line.Status {
	case StatusWarning:
		level = "WARN"
	case StatusError:
		level = "ERROR"
	}
	r.log(level, "probe_completed", fields)
}

// Info muestra un mensaje informativo
func (r *RawPresenter) Info(msg string) {
	r.log("INFO", msg, nil)
}

// Warning muestra una advertencia
func (r *RawPresenter) Warning(msg string) {
	r.log("WARN", msg, nil)
}

// Error muestra un error
func (r *RawPresenter) Error(msg string) {
	r.log("ERROR", msg, nil)
}

// Finish finaliza la presentación con estadísticas finales
func (r *RawPresenter) Finish(stats RunStats) {
	r.log("INFO", "run_completed", map[string]interface{}{
		"id":           stats.ID,
		"duration":     stats.Duration,
		"total":        stats.Total,
		"succeeded":    stats.Succeeded,
		"failed":       stats.Failed,
		"timed_out":    stats.TimedOut,
		"found":        stats.Found,
		"correlations": stats.Correlations,
	})
}

// Close limpia recursos
func (r *RawPresenter) Close() error {
	return nil
}
