package ports

import "context"

// Receives the percentage of orders completed, in [0,100] and never decreasing.
// Reporting is advisory: implementations must not block the solver for long
// and have no way to fail a run.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, percent float64)
}

// ProgressFunc adapts a plain function to ProgressReporter.
type ProgressFunc func(ctx context.Context, percent float64)

func (f ProgressFunc) ReportProgress(ctx context.Context, percent float64) { f(ctx, percent) }
