// internal/platform/ui/pterm_presenter.go
package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"
)

// PTermPresenter implementa Presenter usando la biblioteca pterm
// para renderizar la barra de progreso, colores y símbolos en la terminal.
type PTermPresenter struct {
	mu sync.Mutex

	info      RunInfo
	startTime time.Time
	finished  int

	progress *pterm.ProgressbarPrinter
}

// NewPTermPresenter crea una nueva instancia del presenter con pterm
func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{}
}

// Start muestra el banner, la configuración del run y arranca la barra
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info = info
	p.startTime = time.Now()
	p.finished = 0

	pterm.Println(StylePrimary.Sprint(FalconBanner))

	infoPanel := pterm.DefaultBox.
		WithTitle("Run Configuration").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan))

	content := fmt.Sprintf("%s Subject: %s (%s)\n", IconSubject, pterm.Cyan(info.Subject), info.Kind)
	content += fmt.Sprintf("%s Category: %s\n", IconCategory, pterm.Yellow(info.Category))
	content += fmt.Sprintf("%s Probes: %d\n", IconProbes, info.Probes)
	content += fmt.Sprintf("%s Concurrency: %d\n", IconWorkers, info.Concurrency)
	content += fmt.Sprintf("%s Probe timeout: %ds", IconTime, info.TimeoutSeconds)
	infoPanel.Println(content)
	pterm.Println()

	if info.Probes > 0 {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(info.Probes).
			WithTitle("Probing").
			WithRemoveWhenDone(true).
			Start()
		if err == nil {
			p.progress = bar
		}
	}
}

// FinishProbe imprime una línea por probe y avanza la barra
func (p *PTermPresenter) FinishProbe(line ProbeLine) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finished++
	p.renderProbeLine(line)
	if p.progress != nil {
		p.progress.Increment()
	}
}

func (p *PTermPresenter) renderProbeLine(line ProbeLine) {
	symbol := line.Status.Style().Sprint(line.Status.Symbol())
	detail := line.Label
	switch {
	case line.Status == StatusFound && line.Fields > 0:
		detail = fmt.Sprintf("%s, %d fields", line.Label, line.Fields)
	case line.Message != "":
		detail = fmt.Sprintf("%s: %s", line.Label, line.Message)
	}

	pterm.Printfln("  %s %-14s %s %s",
		symbol,
		line.Source,
		line.Status.Style().Sprint(detail),
		StyleSecondary.Sprint(formatDuration(line.Duration)),
	)
}

// Info muestra un mensaje informativo
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Info.Println(msg)
}

// Warning muestra una advertencia
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Warning.Println(msg)
}

// Error muestra un error
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pterm.Error.Println(msg)
}

// Finish detiene la barra y muestra el resumen del run
func (p *PTermPresenter) Finish(stats RunStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopProgress()

	pterm.Println()
	pterm.Println(pterm.LightBlue(SeparatorHeavy))
	pterm.Println()

	statsPanel := pterm.DefaultBox.
		WithTitle("Run Summary").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgGreen))

	content := fmt.Sprintf("%s Duration: %s\n", IconTime, pterm.Green(formatDuration(stats.Duration)))
	content += fmt.Sprintf("%s Probes: %d (%s found, %s failed, %d timed out)\n",
		IconStats,
		stats.Total,
		StyleSuccess.Sprint(stats.Found),
		StyleError.Sprint(stats.Failed),
		stats.TimedOut,
	)
	content += fmt.Sprintf("%s Correlations: %d\n", IconLink, stats.Correlations)
	content += fmt.Sprintf("%s Report: %s", IconInfo, StyleSecondary.Sprint(stats.ID))
	statsPanel.Println(content)
	pterm.Println()
}

// Close detiene la barra si sigue activa
func (p *PTermPresenter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopProgress()
	return nil
}

func (p *PTermPresenter) stopProgress() {
	if p.progress != nil {
		_, _ = p.progress.Stop()
		p.progress = nil
	}
}
