package ports

import (
	"context"
	"freight-route-optimizer/internal/domain"
)

// Port: a boundary for retrieving the orders and route legs of one optimization run.
// Implementations return records in source order and report malformed records
// as errors wrapping domain.ErrMalformedInput.
type CatalogRepository interface {
	// Retrieve all orders to be routed.
	ListOrders(ctx context.Context) ([]domain.Order, error)
	// Retrieve all candidate route legs.
	ListRouteLegs(ctx context.Context) ([]domain.RouteLeg, error)
}
