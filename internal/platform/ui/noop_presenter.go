// internal/platform/ui/noop_presenter.go
package ui

// NoopPresenter es una implementación vacía del Presenter
// que no produce ninguna salida. Útil para modo quiet o headless.
type NoopPresenter struct{}

// NewNoopPresenter crea una instancia del presenter sin salida
func NewNoopPresenter() *NoopPresenter {
	return &NoopPresenter{}
}

func (n *NoopPresenter) Start(info RunInfo)         {}
func (n *NoopPresenter) FinishProbe(line ProbeLine) {}
func (n *NoopPresenter) Info(msg string)            {}
func (n *NoopPresenter) Warning(msg string)         {}
func (n *NoopPresenter) Error(msg string)           {}
func (n *NoopPresenter) Finish(stats RunStats)      {}
func (n *NoopPresenter) Close() error               { return nil }
