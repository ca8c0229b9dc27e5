package services

import (
	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
)

// EdgeCost computes the realized cost of traversing leg once.
//
// Transport is fixed freight plus variable cost, warehouse cost only counts on
// storage legs, and transit duty goes to the tax bucket. The result depends on
// the leg alone, so every dated instance of a leg costs the same.
func EdgeCost(leg *domain.RouteLeg) (domain.EdgeCost, error) {
	c := domain.EdgeCost{
		Transport: leg.FixedFreightCost.Add(leg.VariableCost),
		Warehouse: decimal.Zero,
		Duty:      leg.TransitDuty,
	}
	if leg.IsStorage() {
		c.Warehouse = leg.WarehouseCost
	}

	if c.Transport.IsNegative() || c.Warehouse.IsNegative() || c.Duty.IsNegative() {
		return domain.EdgeCost{}, domain.Invariantf(
			"negative cost on leg %s->%s by %s (transport=%s warehouse=%s duty=%s)",
			leg.Source, leg.Destination, leg.Mode, c.Transport, c.Warehouse, c.Duty,
		)
	}

	return c, nil
}
