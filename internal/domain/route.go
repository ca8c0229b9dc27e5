package domain

import "github.com/shopspring/decimal"

// Represents one leg of a delivered route as shown to the user.
type RouteStep struct {
	Date Day
	From string
	To   string
	Mode string
}

// Represents the routed outcome of a single order.
// Routes are ordered by travel sequence; StartDate and ArrivalDate are the first
// departure and last arrival days of the chosen path.
type GoodsResult struct {
	ID                 string
	Category           string
	StartDate          Day
	ArrivalDate        Day
	Routes             []RouteStep
	TransportationCost decimal.Decimal
	WarehouseCost      decimal.Decimal
	TaxCost            decimal.Decimal
}

// TotalCost is the order's share of the run total.
func (g GoodsResult) TotalCost() decimal.Decimal {
	return g.TransportationCost.Add(g.WarehouseCost).Add(g.TaxCost)
}

// An order for which no deadline-respecting route exists.
type InfeasibleOrder struct {
	OrderID  string
	Category string
	Reason   string
	// TaxCost is the order-level tax, charged even though nothing ships.
	TaxCost decimal.Decimal
}

// Represents the finished result of one optimization run.
// It is built once by the result aggregator and is immutable afterwards.
// TotalCost always equals TransportationCost + WarehouseCost + TaxCost.
type OptimizationResult struct {
	TotalCost          decimal.Decimal
	TransportationCost decimal.Decimal
	WarehouseCost      decimal.Decimal
	TaxCost            decimal.Decimal
	Goods              []GoodsResult
	Infeasible         []InfeasibleOrder
}
