package progress

import (
	"context"
	"log"
	"math"

	"freight-route-optimizer/internal/platform/obs"
	"freight-route-optimizer/internal/ports"
)

var _ ports.ProgressReporter = (*LogReporter)(nil)

// LogReporter logs progress whenever it crosses another Step percent.
type LogReporter struct {
	Logger *log.Logger
	Step   float64
	next   float64
}

func NewLogReporter(logger *log.Logger, step float64) *LogReporter {
	if step <= 0 {
		step = 10
	}
	return &LogReporter{Logger: logger, Step: step}
}

// ReportProgress is called serially by the optimizer, so no locking is needed.
func (r *LogReporter) ReportProgress(ctx context.Context, percent float64) {
	if percent < r.next {
		return
	}
	r.next = (math.Floor(percent/r.Step) + 1) * r.Step

	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("req_id=%s op=optimize progress=%.1f%%", obs.RequestID(ctx), percent)
}

// Multi fans one progress stream out to several reporters.
type Multi []ports.ProgressReporter

func (m Multi) ReportProgress(ctx context.Context, percent float64) {
	for _, r := range m {
		if r != nil {
			r.ReportProgress(ctx, percent)
		}
	}
}
