package services

import (
	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
)

// OrderOutcome is the solver verdict for one order: a Path, or a Reason when
// the order is infeasible.
type OrderOutcome struct {
	Order  domain.Order
	Path   *domain.Path
	Reason string
}

// AggregateResults folds per-order outcomes into an OptimizationResult.
//
// Goods and infeasible orders keep the order of outcomes. The order-level tax
// (value x tax percentage) is charged once per order whether or not it could be
// routed. Duty of traversed legs is reported under tax as well.
func AggregateResults(outcomes []OrderOutcome) domain.OptimizationResult {
	res := domain.OptimizationResult{
		TotalCost:          decimal.Zero,
		TransportationCost: decimal.Zero,
		WarehouseCost:      decimal.Zero,
		TaxCost:            decimal.Zero,
		Goods:              make([]domain.GoodsResult, 0, len(outcomes)),
		Infeasible:         []domain.InfeasibleOrder{},
	}

	for _, oc := range outcomes {
		if oc.Path == nil {
			res.Infeasible = append(res.Infeasible, domain.InfeasibleOrder{
				OrderID:  oc.Order.ID,
				Category: oc.Order.Category,
				Reason:   oc.Reason,
				TaxCost:  oc.Order.Tax(),
			})
			res.TaxCost = res.TaxCost.Add(oc.Order.Tax())
			continue
		}

		g := goodsResult(oc.Order, oc.Path)
		res.Goods = append(res.Goods, g)

		res.TransportationCost = res.TransportationCost.Add(g.TransportationCost)
		res.WarehouseCost = res.WarehouseCost.Add(g.WarehouseCost)
		res.TaxCost = res.TaxCost.Add(g.TaxCost)
	}

	res.TotalCost = res.TransportationCost.Add(res.WarehouseCost).Add(res.TaxCost)

	return res
}

func goodsResult(order domain.Order, path *domain.Path) domain.GoodsResult {
	cost := path.Cost()

	steps := make([]domain.RouteStep, 0, len(path.Edges))
	for _, e := range path.Edges {
		steps = append(steps, domain.RouteStep{
			Date: e.From.Day,
			From: e.From.Location,
			To:   e.To.Location,
			Mode: e.Leg.Mode,
		})
	}

	return domain.GoodsResult{
		ID:                 order.ID,
		Category:           order.Category,
		StartDate:          path.StartDay(),
		ArrivalDate:        path.ArrivalDay(),
		Routes:             steps,
		TransportationCost: cost.Transport,
		WarehouseCost:      cost.Warehouse,
		TaxCost:            cost.Duty.Add(order.Tax()),
	}
}
