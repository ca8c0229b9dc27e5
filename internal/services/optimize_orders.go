package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/platform/metrics"
	"freight-route-optimizer/internal/platform/obs"
	"freight-route-optimizer/internal/ports"

	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// Optimizer routes a batch of orders over one leg catalogue.
// The zero value is usable: it runs DefaultWorkers solves at a time without
// memoization, metrics or progress reporting.
type Optimizer struct {
	Workers  int
	Progress ports.ProgressReporter
	Metrics  *metrics.Metrics
	// NewEdgeCache creates the edge memo for one run. Nil disables memoization.
	NewEdgeCache func() ports.EdgeCache
}

// OptimizeCatalog loads orders and legs from repo and optimizes them.
func (o *Optimizer) OptimizeCatalog(ctx context.Context, repo ports.CatalogRepository) (*domain.OptimizationResult, error) {
	orders, err := repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("optimize catalog: list orders: %w", err)
	}

	legs, err := repo.ListRouteLegs(ctx)
	if err != nil {
		return nil, fmt.Errorf("optimize catalog: list route legs: %w", err)
	}

	return o.Optimize(ctx, orders, legs)
}

// Optimize solves every order independently on a bounded worker pool and
// aggregates the outcomes.
//
// Input problems fail the whole run with domain.ErrMalformedInput before any
// solving starts. Infeasible orders are reported in the result, not as errors.
// Cancellation is cooperative: ctx is checked before each order starts, in-flight
// solves run to completion and the run then returns ctx's error without a result.
func (o *Optimizer) Optimize(ctx context.Context, orders []domain.Order, legs []domain.RouteLeg) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimize")(&err)

	begin := time.Now()
	defer func() { o.Metrics.ObserveRun(runStatus(err), time.Since(begin)) }()

	if err := ValidateInput(orders, legs); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	progress := &progressTracker{ctx: ctx, reporter: o.Progress, total: len(orders)}
	progress.report(0)

	var opts []BuilderOption
	if o.NewEdgeCache != nil {
		opts = append(opts, WithEdgeCache(o.NewEdgeCache()))
	}
	opts = append(opts, WithBuilderMetrics(o.Metrics))

	network, err := NewNetworkBuilder(legs, PlanningHorizon(orders, legs), opts...)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	workers := o.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	outcomes := make([]OrderOutcome, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range orders {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			oc, err := o.solveOne(orders[i], network)
			if err != nil {
				return err
			}
			outcomes[i] = oc
			progress.advance()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}

	res := AggregateResults(outcomes)
	progress.report(100)

	return &res, nil
}

func (o *Optimizer) solveOne(order domain.Order, network EdgeSource) (OrderOutcome, error) {
	start := time.Now()

	path, err := SolvePath(order, network)

	var infeasible *domain.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		o.Metrics.ObserveOrder(metrics.OutcomeInfeasible, time.Since(start))
		return OrderOutcome{Order: order, Reason: infeasible.Reason}, nil
	case err != nil:
		o.Metrics.ObserveOrder(metrics.OutcomeFailed, time.Since(start))
		return OrderOutcome{}, fmt.Errorf("solve order %s: %w", order.ID, err)
	}

	o.Metrics.ObserveOrder(metrics.OutcomeRouted, time.Since(start))
	return OrderOutcome{Order: order, Path: path}, nil
}

// ValidateInput checks every record and rejects duplicate order ids.
// Rows are 1-based positions in the given slices.
func ValidateInput(orders []domain.Order, legs []domain.RouteLeg) error {
	seen := make(map[string]int, len(orders))
	for i, o := range orders {
		if err := o.Validate("orders", i+1); err != nil {
			return err
		}
		if first, dup := seen[o.ID]; dup {
			return &domain.InputError{
				Source: "orders", Row: i + 1, Field: "Order Number",
				Msg: fmt.Sprintf("duplicate order id %q (first at row %d)", o.ID, first),
			}
		}
		seen[o.ID] = i + 1
	}

	for i, l := range legs {
		if err := l.Validate("route legs", i+1); err != nil {
			return err
		}
	}

	return nil
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, domain.ErrMalformedInput):
		return metrics.StatusRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusCanceled
	default:
		return metrics.StatusFailed
	}
}

// progressTracker serializes reports so the percentage never goes down.
type progressTracker struct {
	mu       sync.Mutex
	ctx      context.Context
	reporter ports.ProgressReporter
	total    int
	done     int
	last     float64
}

func (p *progressTracker) advance() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.emitLocked(float64(p.done) * 100 / float64(p.total))
}

func (p *progressTracker) report(pct float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.emitLocked(pct)
}

func (p *progressTracker) emitLocked(pct float64) {
	if p.reporter == nil {
		return
	}
	pct = min(max(pct, p.last), 100)
	p.last = pct
	p.reporter.ReportProgress(p.ctx, pct)
}
