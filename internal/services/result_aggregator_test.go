package services

import (
	"fmt"
	"testing"

	"freight-route-optimizer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedCatalogue() []domain.RouteLeg {
	hub := testLeg("Hub", "Hub", "Warehouse", "0", "0", 1)
	hub.WarehouseCost = dec("3.33")

	toPort := testLeg("Hub", "Port", "Truck", "12.10", "0.07", 1)
	toPort.TransitDuty = dec("1.01")

	sea := testLeg("Port", "Market", "Ship", "99.99", "10.01", 2)
	sea.TransitDuty = dec("7.77")

	air := testLeg("Hub", "Market", "Plane", "450", "0.5", 1)

	return []domain.RouteLeg{hub, toPort, sea, air}
}

func TestAggregateTenOrdersSharingLegs(t *testing.T) {
	legs := sharedCatalogue()

	orders := make([]domain.Order, 0, 10)
	for i := 0; i < 10; i++ {
		o := testOrder(fmt.Sprintf("D-%02d", i+1), "Hub", "Market", monday.AddDays(i%3), 2+i%4)
		o.Value = dec(fmt.Sprintf("%d.37", 1000+i*113))
		o.TaxPercentage = dec("0.075")
		orders = append(orders, o)
	}

	network := testNetwork(t, orders, legs)
	outcomes := make([]OrderOutcome, 0, len(orders))
	for _, o := range orders {
		p, err := SolvePath(o, network)
		require.NoError(t, err)
		outcomes = append(outcomes, OrderOutcome{Order: o, Path: p})
	}

	res := AggregateResults(outcomes)
	require.Len(t, res.Goods, 10)
	assert.Empty(t, res.Infeasible)

	sum := res.TransportationCost.Add(res.WarehouseCost).Add(res.TaxCost)
	assert.True(t, sum.Equal(res.TotalCost), "total %s != sum %s", res.TotalCost, sum)

	var perOrder = dec("0")
	for _, g := range res.Goods {
		perOrder = perOrder.Add(g.TotalCost())
	}
	assert.True(t, perOrder.Equal(res.TotalCost))
}

func TestAggregateIsIdempotent(t *testing.T) {
	legs := sharedCatalogue()
	o := testOrder("I-1", "Hub", "Market", monday, 4)
	o.Value = dec("200")
	o.TaxPercentage = dec("0.1")

	p, err := solveOne(t, o, legs)
	require.NoError(t, err)

	outcomes := []OrderOutcome{{Order: o, Path: p}, {Order: testOrder("I-2", "Hub", "Nowhere", monday, 2), Reason: "unreachable"}}

	first := AggregateResults(outcomes)
	second := AggregateResults(outcomes)

	assert.Equal(t, SolutionText(first), SolutionText(second))
	assert.True(t, first.TotalCost.Equal(second.TotalCost))
}

func TestAggregateBuckets(t *testing.T) {
	legs := sharedCatalogue()
	o := testOrder("B-1", "Hub", "Market", monday, 3)
	o.Value = dec("1000")
	o.TaxPercentage = dec("0.05")

	p, err := solveOne(t, o, legs)
	require.NoError(t, err)
	// Hub->Port (12.17 + duty 1.01) then Port->Market (110.00 + duty 7.77) beats the plane.
	require.Equal(t, []string{"Hub>Port:Truck@2024-01-15", "Port>Market:Ship@2024-01-16"}, routeOf(p))

	infeasible := testOrder("B-2", "Hub", "Moon", monday, 3)
	infeasible.Value = dec("999")
	infeasible.TaxPercentage = dec("0.5")

	res := AggregateResults([]OrderOutcome{
		{Order: o, Path: p},
		{Order: infeasible, Reason: "no route"},
	})

	assert.True(t, res.TransportationCost.Equal(dec("122.17")), "transport %s", res.TransportationCost)
	assert.True(t, res.WarehouseCost.IsZero())
	// 8.78 duty + 50 order tax + 499.5 tax of the unrouted order.
	assert.True(t, res.TaxCost.Equal(dec("558.28")), "tax %s", res.TaxCost)
	assert.True(t, res.TotalCost.Equal(dec("680.45")), "total %s", res.TotalCost)

	require.Len(t, res.Goods, 1)
	g := res.Goods[0]
	assert.Equal(t, "B-1", g.ID)
	assert.Equal(t, monday, g.StartDate)
	assert.Equal(t, monday.AddDays(3), g.ArrivalDate)
	assert.Equal(t, domain.RouteStep{Date: monday.AddDays(1), From: "Port", To: "Market", Mode: "Ship"}, g.Routes[1])

	require.Len(t, res.Infeasible, 1)
	inf := res.Infeasible[0]
	assert.Equal(t, "B-2", inf.OrderID)
	assert.Equal(t, "General", inf.Category)
	assert.Equal(t, "no route", inf.Reason)
	assert.True(t, inf.TaxCost.Equal(dec("499.5")), "infeasible tax %s", inf.TaxCost)
}

func TestAggregateTaxesUnroutedOrders(t *testing.T) {
	o := testOrder("U-1", "Hub", "Moon", monday, 3)
	o.Value = dec("1000")
	o.TaxPercentage = dec("0.1")

	res := AggregateResults([]OrderOutcome{{Order: o, Reason: "no route"}})

	assert.Empty(t, res.Goods)
	assert.True(t, res.TaxCost.Equal(dec("100")), "tax %s", res.TaxCost)
	assert.True(t, res.TotalCost.Equal(dec("100")), "total %s", res.TotalCost)
	assert.True(t, res.TransportationCost.IsZero())
}

func TestAggregateEmpty(t *testing.T) {
	res := AggregateResults(nil)

	assert.True(t, res.TotalCost.IsZero())
	assert.Empty(t, res.Goods)
	assert.Empty(t, res.Infeasible)
}
