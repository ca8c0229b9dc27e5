package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/platform/metrics"
	"freight-route-optimizer/internal/ports"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedProgress struct {
	mu     sync.Mutex
	values []float64
}

func (r *recordedProgress) ReportProgress(_ context.Context, pct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, pct)
}

func batch(n int) []domain.Order {
	orders := make([]domain.Order, 0, n)
	for i := 0; i < n; i++ {
		o := testOrder(fmt.Sprintf("O-%03d", i+1), "Hub", "Market", monday.AddDays(i%5), 1+i%4)
		o.Value = dec(fmt.Sprintf("%d", 100+i))
		o.TaxPercentage = dec("0.2")
		orders = append(orders, o)
	}
	// One order nobody can serve.
	orders = append(orders, testOrder("O-LOST", "Hub", "Atlantis", monday, 3))
	return orders
}

func TestOptimizeDeterministicAcrossWorkerCounts(t *testing.T) {
	orders := batch(40)
	legs := sharedCatalogue()

	var reference string
	for _, workers := range []int{1, 2, 8, 64} {
		opt := &Optimizer{Workers: workers, NewEdgeCache: newMemoryCache}

		res, err := opt.Optimize(context.Background(), orders, legs)
		require.NoError(t, err)

		text := SolutionText(*res)
		if reference == "" {
			reference = text
			continue
		}
		assert.Equal(t, reference, text, "workers=%d", workers)
	}

	opt := &Optimizer{}
	res, err := opt.Optimize(context.Background(), orders, legs)
	require.NoError(t, err)
	assert.Equal(t, reference, SolutionText(*res), "uncached run")

	require.Len(t, res.Goods, 40)
	require.Len(t, res.Infeasible, 1)
	assert.Equal(t, "O-LOST", res.Infeasible[0].OrderID)
	for i, g := range res.Goods {
		assert.Equal(t, orders[i].ID, g.ID, "goods keep input order")
	}
	assert.True(t, res.TransportationCost.Add(res.WarehouseCost).Add(res.TaxCost).Equal(res.TotalCost))
}

func TestOptimizeReportsMonotonicProgress(t *testing.T) {
	rec := &recordedProgress{}
	opt := &Optimizer{Workers: 4, Progress: rec, NewEdgeCache: newMemoryCache}

	_, err := opt.Optimize(context.Background(), batch(25), sharedCatalogue())
	require.NoError(t, err)

	require.NotEmpty(t, rec.values)
	assert.Equal(t, 0.0, rec.values[0])
	assert.Equal(t, 100.0, rec.values[len(rec.values)-1])
	for i := 1; i < len(rec.values); i++ {
		assert.GreaterOrEqual(t, rec.values[i], rec.values[i-1])
		assert.LessOrEqual(t, rec.values[i], 100.0)
	}
}

func TestOptimizeEmptyBatch(t *testing.T) {
	rec := &recordedProgress{}
	opt := &Optimizer{Progress: rec}

	res, err := opt.Optimize(context.Background(), nil, sharedCatalogue())
	require.NoError(t, err)
	assert.Empty(t, res.Goods)
	assert.Equal(t, []float64{0, 100}, rec.values)
}

func TestOptimizeRejectsMalformedInput(t *testing.T) {
	m := metrics.New("test")
	rec := &recordedProgress{}
	opt := &Optimizer{Progress: rec, Metrics: m}

	orders := batch(3)
	orders[2].ID = orders[0].ID

	_, err := opt.Optimize(context.Background(), orders, sharedCatalogue())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
	assert.Contains(t, err.Error(), "duplicate order id")
	assert.Empty(t, rec.values, "no solving starts on malformed input")

	legs := sharedCatalogue()
	legs[1].TransitDays = -1
	_, err = opt.Optimize(context.Background(), batch(3), legs)
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Runs.WithLabelValues(metrics.StatusRejected)))
}

func TestOptimizeStopsBeforeNextOrderWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New("test")
	opt := &Optimizer{
		Workers: 1,
		Metrics: m,
		Progress: ports.ProgressFunc(func(_ context.Context, pct float64) {
			if pct > 0 {
				cancel()
			}
		}),
	}

	res, err := opt.Optimize(ctx, batch(20), sharedCatalogue())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))

	solved := testutil.ToFloat64(m.OrdersSolved.WithLabelValues(metrics.OutcomeRouted))
	assert.Less(t, solved, 20.0, "remaining orders must not start after cancellation")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(metrics.StatusCanceled)))
}

func TestOptimizeCountsOutcomes(t *testing.T) {
	m := metrics.New("test")
	opt := &Optimizer{Workers: 3, Metrics: m, NewEdgeCache: newMemoryCache}

	_, err := opt.Optimize(context.Background(), batch(9), sharedCatalogue())
	require.NoError(t, err)

	assert.Equal(t, 9.0, testutil.ToFloat64(m.OrdersSolved.WithLabelValues(metrics.OutcomeRouted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersSolved.WithLabelValues(metrics.OutcomeInfeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(metrics.StatusOK)))
	assert.Greater(t, testutil.ToFloat64(m.EdgeCacheLookups.WithLabelValues("hit")), 0.0)
}

type staticCatalog struct {
	orders []domain.Order
	legs   []domain.RouteLeg
	err    error
}

func (s staticCatalog) ListOrders(context.Context) ([]domain.Order, error) { return s.orders, s.err }

func (s staticCatalog) ListRouteLegs(context.Context) ([]domain.RouteLeg, error) { return s.legs, nil }

func TestOptimizeCatalog(t *testing.T) {
	opt := &Optimizer{NewEdgeCache: newMemoryCache}

	res, err := opt.OptimizeCatalog(context.Background(), staticCatalog{orders: batch(2), legs: sharedCatalogue()})
	require.NoError(t, err)
	assert.Len(t, res.Goods, 2)

	boom := errors.New("boom")
	_, err = opt.OptimizeCatalog(context.Background(), staticCatalog{err: boom})
	assert.ErrorIs(t, err, boom)
}
