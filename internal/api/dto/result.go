package dto

import (
	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
)

type RouteStepResponse struct {
	Date domain.Day `json:"date"`
	From string     `json:"from"`
	To   string     `json:"to"`
	Mode string     `json:"mode"`
}

type GoodsResponse struct {
	ID                 string              `json:"id"`
	Category           string              `json:"category"`
	StartDate          domain.Day          `json:"start_date"`
	ArrivalDate        domain.Day          `json:"arrival_date"`
	TransportationCost decimal.Decimal     `json:"transportation_cost"`
	WarehouseCost      decimal.Decimal     `json:"warehouse_cost"`
	TaxCost            decimal.Decimal     `json:"tax_cost"`
	Routes             []RouteStepResponse `json:"routes"`
}

type InfeasibleResponse struct {
	OrderID  string          `json:"order_id"`
	Category string          `json:"category"`
	Reason   string          `json:"reason"`
	TaxCost  decimal.Decimal `json:"tax_cost"`
}

type OptimizationResponse struct {
	RunID              string               `json:"run_id,omitempty"`
	TotalCost          decimal.Decimal      `json:"total_cost"`
	TransportationCost decimal.Decimal      `json:"transportation_cost"`
	WarehouseCost      decimal.Decimal      `json:"warehouse_cost"`
	TaxCost            decimal.Decimal      `json:"tax_cost"`
	Goods              []GoodsResponse      `json:"goods"`
	Infeasible         []InfeasibleResponse `json:"infeasible"`
}

// FromResult maps an OptimizationResult onto its JSON form.
func FromResult(runID string, res domain.OptimizationResult) OptimizationResponse {
	out := OptimizationResponse{
		RunID:              runID,
		TotalCost:          res.TotalCost,
		TransportationCost: res.TransportationCost,
		WarehouseCost:      res.WarehouseCost,
		TaxCost:            res.TaxCost,
		Goods:              make([]GoodsResponse, 0, len(res.Goods)),
		Infeasible:         make([]InfeasibleResponse, 0, len(res.Infeasible)),
	}

	for _, g := range res.Goods {
		steps := make([]RouteStepResponse, 0, len(g.Routes))
		for _, r := range g.Routes {
			steps = append(steps, RouteStepResponse{Date: r.Date, From: r.From, To: r.To, Mode: r.Mode})
		}

		out.Goods = append(out.Goods, GoodsResponse{
			ID:                 g.ID,
			Category:           g.Category,
			StartDate:          g.StartDate,
			ArrivalDate:        g.ArrivalDate,
			TransportationCost: g.TransportationCost,
			WarehouseCost:      g.WarehouseCost,
			TaxCost:            g.TaxCost,
			Routes:             steps,
		})
	}

	for _, o := range res.Infeasible {
		out.Infeasible = append(out.Infeasible, InfeasibleResponse{
			OrderID:  o.OrderID,
			Category: o.Category,
			Reason:   o.Reason,
			TaxCost:  o.TaxCost,
		})
	}

	return out
}
