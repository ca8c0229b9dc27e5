package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Vertex of the time-expanded network.
type TimeNode struct {
	Location string
	Day      Day
}

func (n TimeNode) String() string { return fmt.Sprintf("%s@%s", n.Location, n.Day) }

// Realized cost of one dated leg traversal, split by result bucket.
type EdgeCost struct {
	Transport decimal.Decimal
	Warehouse decimal.Decimal
	Duty      decimal.Decimal
}

func (c EdgeCost) Total() decimal.Decimal {
	return c.Transport.Add(c.Warehouse).Add(c.Duty)
}

func (c EdgeCost) Add(o EdgeCost) EdgeCost {
	return EdgeCost{
		Transport: c.Transport.Add(o.Transport),
		Warehouse: c.Warehouse.Add(o.Warehouse),
		Duty:      c.Duty.Add(o.Duty),
	}
}

// A dated traversal of one RouteLeg. Leg points into the network builder's
// private copy of the catalogue and must be treated as read-only.
type TimeEdge struct {
	Leg  *RouteLeg
	From TimeNode
	To   TimeNode
	Cost EdgeCost
}

func (e TimeEdge) Mode() string { return e.Leg.Mode }

// Path is the solver's answer for one order.
type Path struct {
	OrderID string
	Edges   []TimeEdge
}

// StartDay is the departure day of the first edge.
func (p Path) StartDay() Day {
	if len(p.Edges) == 0 {
		return 0
	}
	return p.Edges[0].From.Day
}

// ArrivalDay is the arrival day of the last edge.
func (p Path) ArrivalDay() Day {
	if len(p.Edges) == 0 {
		return 0
	}
	return p.Edges[len(p.Edges)-1].To.Day
}

// Cost sums the realized edge costs.
func (p Path) Cost() EdgeCost {
	var total EdgeCost
	for _, e := range p.Edges {
		total = total.Add(e.Cost)
	}
	return total
}
