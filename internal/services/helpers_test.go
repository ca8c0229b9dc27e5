package services

import (
	"testing"

	"freight-route-optimizer/internal/adapters/cache"
	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/ports"

	"github.com/stretchr/testify/require"
)

// monday is 2024-01-15.
var monday = domain.NewDay(2024, 1, 15)

func testLeg(src, dst, mode, fixed, variable string, days int) domain.RouteLeg {
	return domain.RouteLeg{
		Source:           src,
		Destination:      dst,
		Mode:             mode,
		ContainerSize:    "40ft",
		FixedFreightCost: dec(fixed),
		VariableCost:     dec(variable),
		TransitDays:      days,
		WarehouseCost:    dec("0"),
		TransitDuty:      dec("0"),
		Feasible:         true,
		Weekdays:         domain.EveryDay,
	}
}

func testOrder(id, from, to string, start domain.Day, window int) domain.Order {
	return domain.Order{
		ID:                   id,
		Category:             "General",
		OrderDate:            start,
		RequiredDeliveryDate: start.AddDays(window),
		ShipFrom:             from,
		ShipTo:               to,
		Volume:               dec("1"),
		Value:                dec("0"),
		TaxPercentage:        dec("0"),
	}
}

func testNetwork(t *testing.T, orders []domain.Order, legs []domain.RouteLeg) *NetworkBuilder {
	t.Helper()

	b, err := NewNetworkBuilder(legs, PlanningHorizon(orders, legs), WithEdgeCache(cache.NewMemoryEdgeCache()))
	require.NoError(t, err)
	return b
}

func newMemoryCache() ports.EdgeCache { return cache.NewMemoryEdgeCache() }

func solveOne(t *testing.T, o domain.Order, legs []domain.RouteLeg) (*domain.Path, error) {
	t.Helper()
	return SolvePath(o, testNetwork(t, []domain.Order{o}, legs))
}

func routeOf(p *domain.Path) []string {
	out := make([]string, 0, len(p.Edges))
	for _, e := range p.Edges {
		out = append(out, e.From.Location+">"+e.To.Location+":"+e.Leg.Mode+"@"+e.From.Day.String())
	}
	return out
}
