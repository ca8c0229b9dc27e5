package services

import (
	"container/heap"
	"fmt"
	"slices"

	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
)

// EdgeSource yields the outgoing dated edges of a time-expanded node.
// NetworkBuilder is the production implementation.
type EdgeSource interface {
	OutgoingEdges(node domain.TimeNode) []domain.TimeEdge
}

// departed is false only while the shipment still sits at its origin before
// the first leg, so an order whose origin equals its destination must still
// travel at least one leg.
type solverState struct {
	node     domain.TimeNode
	departed bool
}

type label struct {
	state solverState
	cost  decimal.Decimal
	// sig is the location-mode signature of the path so far; ties on cost and
	// arrival day go to the lexicographically smaller signature.
	sig  string
	edge *domain.TimeEdge
	prev *label
}

func labelLess(a, b *label) bool {
	if c := a.cost.Cmp(b.cost); c != 0 {
		return c < 0
	}
	if a.state.node.Day != b.state.node.Day {
		return a.state.node.Day < b.state.node.Day
	}
	return a.sig < b.sig
}

type frontier []*label

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return labelLess(f[i], f[j]) }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(*label)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	l := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return l
}

// SolvePath finds the minimum-cost path for order through the time-expanded network.
//
// Departure days are bounded below by the order date and arrivals above by the
// required delivery date. The shipment may wait at its origin for free; waiting
// anywhere else needs an explicit warehouse leg. When no path exists the error is a
// *domain.InfeasibleError. Negative or day-decreasing edges yield an error wrapping
// domain.ErrInvariantViolation.
func SolvePath(order domain.Order, network EdgeSource) (*domain.Path, error) {
	deadline := order.RequiredDeliveryDate

	start := &label{
		state: solverState{node: domain.TimeNode{Location: order.ShipFrom, Day: order.OrderDate}},
		cost:  decimal.Zero,
		sig:   order.ShipFrom,
	}

	best := map[solverState]*label{start.state: start}
	settled := make(map[solverState]struct{})
	pq := &frontier{start}

	relax := func(l *label) {
		if _, done := settled[l.state]; done {
			return
		}
		if cur, ok := best[l.state]; ok && !labelLess(l, cur) {
			return
		}
		best[l.state] = l
		heap.Push(pq, l)
	}

	var leftOrigin, missedDeadline bool

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*label)
		if _, done := settled[cur.state]; done {
			continue
		}
		settled[cur.state] = struct{}{}

		if cur.state.departed && cur.state.node.Location == order.ShipTo {
			return buildPath(order.ID, cur), nil
		}

		if !cur.state.departed && cur.state.node.Day < deadline {
			relax(&label{
				state: solverState{node: domain.TimeNode{Location: cur.state.node.Location, Day: cur.state.node.Day + 1}},
				cost:  cur.cost,
				sig:   cur.sig,
				prev:  cur,
			})
		}

		edges := network.OutgoingEdges(cur.state.node)
		for i := range edges {
			e := &edges[i]

			if e.To.Day < e.From.Day {
				return nil, domain.Invariantf("edge %s -> %s goes back in time", e.From, e.To)
			}
			edgeCost := e.Cost.Total()
			if edgeCost.IsNegative() {
				return nil, domain.Invariantf("edge %s -> %s has negative cost %s", e.From, e.To, edgeCost)
			}

			if !cur.state.departed {
				leftOrigin = true
			}
			if e.To.Day > deadline {
				if e.To.Location == order.ShipTo {
					missedDeadline = true
				}
				continue
			}

			relax(&label{
				state: solverState{node: e.To, departed: true},
				cost:  cur.cost.Add(edgeCost),
				sig:   cur.sig + fmt.Sprintf(" %s/%s>%s", e.From.Day, e.Leg.Mode, e.To.Location),
				edge:  e,
				prev:  cur,
			})
		}
	}

	return nil, &domain.InfeasibleError{OrderID: order.ID, Reason: infeasibleReason(order, leftOrigin, missedDeadline)}
}

func infeasibleReason(order domain.Order, leftOrigin, missedDeadline bool) string {
	switch {
	case !leftOrigin:
		return fmt.Sprintf("no feasible leg departs %s between %s and %s",
			order.ShipFrom, order.OrderDate, order.RequiredDeliveryDate)
	case missedDeadline:
		return fmt.Sprintf("every route to %s arrives after the required delivery date %s",
			order.ShipTo, order.RequiredDeliveryDate)
	default:
		return fmt.Sprintf("no route from %s to %s between %s and %s",
			order.ShipFrom, order.ShipTo, order.OrderDate, order.RequiredDeliveryDate)
	}
}

func buildPath(orderID string, last *label) *domain.Path {
	var edges []domain.TimeEdge
	for l := last; l != nil; l = l.prev {
		if l.edge != nil {
			edges = append(edges, *l.edge)
		}
	}
	slices.Reverse(edges)

	return &domain.Path{OrderID: orderID, Edges: edges}
}
