package services

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolvePathSameLocationZeroDurationLeg(t *testing.T) {
	o := testOrder("A-1", "Depot", "Depot", monday, 3)
	legs := []domain.RouteLeg{testLeg("Depot", "Depot", "Truck", "30", "12.5", 0)}

	p, err := solveOne(t, o, legs)
	require.NoError(t, err)

	require.Len(t, p.Edges, 1)
	assert.True(t, p.Cost().Total().Equal(dec("42.5")), "cost = %s", p.Cost().Total())
	assert.Equal(t, monday, p.StartDay())
	assert.Equal(t, monday, p.ArrivalDay())
}

func TestSolvePathDeadlineBeforeFastestArrival(t *testing.T) {
	o := testOrder("B-1", "A", "B", monday, 2)
	legs := []domain.RouteLeg{
		testLeg("A", "B", "Plane", "500", "0", 3),
		testLeg("A", "B", "Ship", "50", "0", 9),
	}

	p, err := solveOne(t, o, legs)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, domain.ErrInfeasible))

	var inf *domain.InfeasibleError
	require.True(t, errors.As(err, &inf))
	assert.Equal(t, "B-1", inf.OrderID)
	assert.Contains(t, inf.Reason, "arrives after the required delivery date 2024-01-17")
}

func TestSolvePathCheaperLegOnlyOnTuesday(t *testing.T) {
	cheap := testLeg("A", "B", "Ship", "10", "0", 2)
	cheap.Weekdays = domain.WeekdaysOf(time.Tuesday)
	pricey := testLeg("A", "B", "Truck", "80", "0", 2)

	o := testOrder("C-1", "A", "B", monday, 2)

	p, err := solveOne(t, o, []domain.RouteLeg{cheap, pricey})
	require.NoError(t, err)
	assert.Equal(t, []string{"A>B:Truck@2024-01-15"}, routeOf(p))
	assert.True(t, p.Cost().Total().Equal(dec("80")))

	// With a looser deadline the Tuesday sailing wins.
	o = testOrder("C-2", "A", "B", monday, 3)
	p, err = solveOne(t, o, []domain.RouteLeg{cheap, pricey})
	require.NoError(t, err)
	assert.Equal(t, []string{"A>B:Ship@2024-01-16"}, routeOf(p))
	assert.Equal(t, monday.AddDays(1), p.StartDay())
}

func TestSolvePathPrefersCheaperMultiHop(t *testing.T) {
	legs := []domain.RouteLeg{
		testLeg("Shanghai", "Rotterdam", "Plane", "900", "100", 1),
		testLeg("Shanghai", "Singapore", "Ship", "200", "50", 2),
		testLeg("Singapore", "Rotterdam", "Ship", "300", "50", 3),
	}
	o := testOrder("M-1", "Shanghai", "Rotterdam", monday, 6)

	p, err := solveOne(t, o, legs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Shanghai>Singapore:Ship@2024-01-15",
		"Singapore>Rotterdam:Ship@2024-01-17",
	}, routeOf(p))
	assert.True(t, p.Cost().Total().Equal(dec("600")))
	assert.Equal(t, monday.AddDays(5), p.ArrivalDay())
}

func TestSolvePathTieBreaks(t *testing.T) {
	// Equal cost: the earlier arrival wins.
	legs := []domain.RouteLeg{
		testLeg("A", "B", "Ship", "10", "0", 3),
		testLeg("A", "B", "Truck", "10", "0", 1),
	}
	p, err := solveOne(t, testOrder("T-1", "A", "B", monday, 5), legs)
	require.NoError(t, err)
	assert.Equal(t, []string{"A>B:Truck@2024-01-15"}, routeOf(p))

	// Equal cost and arrival: the smaller location-mode signature wins.
	legs = []domain.RouteLeg{
		testLeg("A", "B", "Truck", "10", "0", 1),
		testLeg("A", "B", "Rail", "10", "0", 1),
	}
	for i := 0; i < 5; i++ {
		p, err = solveOne(t, testOrder("T-2", "A", "B", monday, 5), legs)
		require.NoError(t, err)
		assert.Equal(t, []string{"A>B:Rail@2024-01-15"}, routeOf(p))
	}
}

func TestSolvePathNoFreeWaitAtTransitPoints(t *testing.T) {
	toHub := testLeg("A", "Hub", "Truck", "10", "0", 0)
	onward := testLeg("Hub", "B", "Ship", "10", "0", 1)
	onward.Weekdays = domain.WeekdaysOf(time.Wednesday)

	o := testOrder("W-1", "A", "B", monday, 4)
	o.OrderDate = monday
	// Truck only runs Monday, so the shipment would have to sit at Hub.
	toHub.Weekdays = domain.WeekdaysOf(time.Monday)

	_, err := solveOne(t, o, []domain.RouteLeg{toHub, onward})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInfeasible))

	dwell := testLeg("Hub", "Hub", "Warehouse", "0", "0", 1)
	dwell.WarehouseCost = dec("4")

	p, err := solveOne(t, o, []domain.RouteLeg{toHub, onward, dwell})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"A>Hub:Truck@2024-01-15",
		"Hub>Hub:Warehouse@2024-01-15",
		"Hub>Hub:Warehouse@2024-01-16",
		"Hub>B:Ship@2024-01-17",
	}, routeOf(p))
	assert.True(t, p.Cost().Warehouse.Equal(dec("8")))
	assert.True(t, p.Cost().Total().Equal(dec("28")))
}

func TestSolvePathInfeasibleReasons(t *testing.T) {
	legs := []domain.RouteLeg{testLeg("A", "B", "Truck", "1", "0", 1)}

	_, err := solveOne(t, testOrder("R-1", "X", "B", monday, 3), legs)
	var inf *domain.InfeasibleError
	require.True(t, errors.As(err, &inf))
	assert.Contains(t, inf.Reason, "no feasible leg departs X")

	_, err = solveOne(t, testOrder("R-2", "A", "Z", monday, 3), legs)
	require.True(t, errors.As(err, &inf))
	assert.Contains(t, inf.Reason, "no route from A to Z")
}

type stubEdges map[domain.TimeNode][]domain.TimeEdge

func (s stubEdges) OutgoingEdges(n domain.TimeNode) []domain.TimeEdge { return s[n] }

func TestSolvePathRejectsBrokenEdges(t *testing.T) {
	leg := &domain.RouteLeg{Source: "A", Destination: "B", Mode: "Truck"}
	from := domain.TimeNode{Location: "A", Day: monday}

	negative := stubEdges{from: {{
		Leg: leg, From: from, To: domain.TimeNode{Location: "B", Day: monday},
		Cost: domain.EdgeCost{Transport: dec("-1")},
	}}}
	_, err := SolvePath(testOrder("I-1", "A", "B", monday, 2), negative)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation), "got %v", err)

	backwards := stubEdges{from: {{
		Leg: leg, From: from, To: domain.TimeNode{Location: "B", Day: monday - 1},
	}}}
	_, err = SolvePath(testOrder("I-2", "A", "B", monday, 2), backwards)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation), "got %v", err)
}

// The solver must match exhaustive enumeration on small random networks.
func TestSolvePathMatchesExhaustiveSearch(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	locations := []string{"A", "B", "C", "D", "E"}
	modes := []string{"Truck", "Ship", "Plane", "Rail"}

	for round := 0; round < 60; round++ {
		var legs []domain.RouteLeg
		for i := 0; i < 4+rng.IntN(8); i++ {
			src := locations[rng.IntN(len(locations))]
			dst := locations[rng.IntN(len(locations))]
			l := testLeg(src, dst, modes[rng.IntN(len(modes))],
				strconv.Itoa(rng.IntN(50)), strconv.Itoa(rng.IntN(20))+".25", 1+rng.IntN(3))
			l.TransitDuty = dec(strconv.Itoa(rng.IntN(5)))
			l.Feasible = rng.IntN(6) != 0
			if rng.IntN(3) == 0 {
				l.Weekdays = domain.WeekdaysOf(time.Weekday(rng.IntN(7)), time.Weekday(rng.IntN(7)))
			}
			legs = append(legs, l)
		}

		o := testOrder("P-"+strconv.Itoa(round), "A", locations[1+rng.IntN(4)], monday.AddDays(rng.IntN(7)), 1+rng.IntN(6))
		network := testNetwork(t, []domain.Order{o}, legs)

		want, ok := exhaustiveMinCost(o, network)
		p, err := SolvePath(o, network)

		if !ok {
			require.ErrorIs(t, err, domain.ErrInfeasible, "round %d", round)
			continue
		}
		require.NoError(t, err, "round %d", round)
		assert.True(t, p.Cost().Total().Equal(want), "round %d: solver %s, exhaustive %s", round, p.Cost().Total(), want)
		assertWellFormed(t, o, p)
	}
}

func exhaustiveMinCost(o domain.Order, network EdgeSource) (decimal.Decimal, bool) {
	var best decimal.Decimal
	found := false

	var walk func(n domain.TimeNode, departed bool, cost decimal.Decimal)
	walk = func(n domain.TimeNode, departed bool, cost decimal.Decimal) {
		if departed && n.Location == o.ShipTo {
			if !found || cost.LessThan(best) {
				best, found = cost, true
			}
			return
		}
		if !departed && n.Day < o.RequiredDeliveryDate {
			walk(domain.TimeNode{Location: n.Location, Day: n.Day + 1}, false, cost)
		}
		for _, e := range network.OutgoingEdges(n) {
			if e.To.Day > o.RequiredDeliveryDate {
				continue
			}
			walk(e.To, true, cost.Add(e.Cost.Total()))
		}
	}
	walk(domain.TimeNode{Location: o.ShipFrom, Day: o.OrderDate}, false, decimal.Zero)

	return best, found
}

func assertWellFormed(t *testing.T, o domain.Order, p *domain.Path) {
	t.Helper()

	require.NotEmpty(t, p.Edges)
	assert.Equal(t, o.ShipFrom, p.Edges[0].From.Location)
	assert.Equal(t, o.ShipTo, p.Edges[len(p.Edges)-1].To.Location)
	assert.GreaterOrEqual(t, int(p.StartDay()), int(o.OrderDate))
	assert.LessOrEqual(t, int(p.ArrivalDay()), int(o.RequiredDeliveryDate))
	for i := 1; i < len(p.Edges); i++ {
		assert.Equal(t, p.Edges[i-1].To, p.Edges[i].From)
	}
}
