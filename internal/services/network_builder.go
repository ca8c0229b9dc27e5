package services

import (
	"cmp"
	"fmt"
	"slices"

	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/platform/metrics"
	"freight-route-optimizer/internal/ports"
)

// Inclusive range of calendar days the network is expanded over.
type Horizon struct {
	Start domain.Day
	End   domain.Day
}

func (h Horizon) Contains(d domain.Day) bool { return d >= h.Start && d <= h.End }

func (h Horizon) String() string { return fmt.Sprintf("[%s, %s]", h.Start, h.End) }

// PlanningHorizon spans from the earliest order date to the latest required
// delivery date plus the longest transit duration in the catalogue.
func PlanningHorizon(orders []domain.Order, legs []domain.RouteLeg) Horizon {
	if len(orders) == 0 {
		return Horizon{}
	}

	h := Horizon{Start: orders[0].OrderDate, End: orders[0].RequiredDeliveryDate}
	for _, o := range orders[1:] {
		h.Start = min(h.Start, o.OrderDate)
		h.End = max(h.End, o.RequiredDeliveryDate)
	}

	longest := 0
	for _, l := range legs {
		longest = max(longest, min(l.TransitDays, domain.MaxTransitDays))
	}
	h.End = h.End.AddDays(longest)

	return h
}

// NetworkBuilder expands route legs into the time-expanded network on demand.
//
// It owns a private copy of the catalogue and never mutates it, so a single
// builder may serve any number of concurrent solves. Expansions are memoized
// in the injected EdgeCache when one is configured.
type NetworkBuilder struct {
	legs     []domain.RouteLeg
	costs    []domain.EdgeCost
	bySource map[string][]int
	horizon  Horizon
	cache    ports.EdgeCache
	metrics  *metrics.Metrics
}

type BuilderOption func(*NetworkBuilder)

// WithEdgeCache memoizes expansions in c. The cache must only ever be used with
// one catalogue and horizon.
func WithEdgeCache(c ports.EdgeCache) BuilderOption {
	return func(b *NetworkBuilder) { b.cache = c }
}

func WithBuilderMetrics(m *metrics.Metrics) BuilderOption {
	return func(b *NetworkBuilder) { b.metrics = m }
}

// NewNetworkBuilder prices every leg up front; a leg with a negative cost
// portion fails with domain.ErrInvariantViolation.
func NewNetworkBuilder(legs []domain.RouteLeg, horizon Horizon, opts ...BuilderOption) (*NetworkBuilder, error) {
	b := &NetworkBuilder{
		legs:     slices.Clone(legs),
		costs:    make([]domain.EdgeCost, len(legs)),
		bySource: make(map[string][]int),
		horizon:  horizon,
	}
	for _, opt := range opts {
		opt(b)
	}

	for i := range b.legs {
		if d := b.legs[i].TransitDays; d < 0 || d > domain.MaxTransitDays {
			return nil, fmt.Errorf("build network: leg #%d: %w", i+1,
				domain.Invariantf("transit duration %d outside [0, %d]", d, domain.MaxTransitDays))
		}
		c, err := EdgeCost(&b.legs[i])
		if err != nil {
			return nil, fmt.Errorf("build network: leg #%d: %w", i+1, err)
		}
		b.costs[i] = c
		b.bySource[b.legs[i].Source] = append(b.bySource[b.legs[i].Source], i)
	}

	// Stable expansion order regardless of catalogue order quirks.
	for _, idx := range b.bySource {
		slices.SortStableFunc(idx, func(x, y int) int {
			lx, ly := &b.legs[x], &b.legs[y]
			return cmp.Or(
				cmp.Compare(lx.Destination, ly.Destination),
				cmp.Compare(lx.Mode, ly.Mode),
				cmp.Compare(lx.ContainerSize, ly.ContainerSize),
				cmp.Compare(x, y),
			)
		})
	}

	return b, nil
}

func (b *NetworkBuilder) Horizon() Horizon { return b.horizon }

// OutgoingEdges returns the dated traversals leaving node. The returned slice
// may be shared with other callers and must not be modified.
func (b *NetworkBuilder) OutgoingEdges(node domain.TimeNode) []domain.TimeEdge {
	if b.cache == nil {
		return b.expand(node)
	}

	if edges, ok := b.cache.Load(node); ok {
		b.metrics.ObserveCacheLookup(true)
		return edges
	}
	b.metrics.ObserveCacheLookup(false)

	return b.cache.LoadOrStore(node, b.expand(node))
}

func (b *NetworkBuilder) expand(node domain.TimeNode) []domain.TimeEdge {
	if !b.horizon.Contains(node.Day) {
		return nil
	}

	var edges []domain.TimeEdge
	for _, i := range b.bySource[node.Location] {
		leg := &b.legs[i]
		if !leg.DepartsOn(node.Day) {
			continue
		}

		arrive := node.Day.AddDays(leg.TransitDays)
		if arrive > b.horizon.End {
			continue
		}

		edges = append(edges, domain.TimeEdge{
			Leg:  leg,
			From: node,
			To:   domain.TimeNode{Location: leg.Destination, Day: arrive},
			Cost: b.costs[i],
		})
	}

	return edges
}
