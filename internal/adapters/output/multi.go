// internal/adapters/output/multi.go
package output

import (
	"context"
	"fmt"

	"falcon/internal/core/domain"
	"falcon/internal/core/ports"
	"falcon/internal/platform/errors"
)

var errNilReport = errors.New("nil report")

// Multi reparte un informe entre varios sinks. Un sink que falla no impide
// que los demás escriban; los errores se combinan.
type Multi []ports.ReportSink

// Name implementa ports.ReportSink.
func (m Multi) Name() string { return "multi" }

// Write implementa ports.ReportSink.
func (m Multi) Write(ctx context.Context, report *domain.RunReport) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Write(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
