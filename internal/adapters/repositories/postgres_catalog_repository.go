package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/platform/obs"
	"freight-route-optimizer/internal/ports"

	"github.com/shopspring/decimal"
)

var _ ports.CatalogRepository = (*PostgresCatalogRepository)(nil)

// Postgres-backed implementation of the CatalogRepository port.
// The engine only reads from it; tables are populated by cmd/dbtool.
type PostgresCatalogRepository struct{ DB *sql.DB }

func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{DB: db}
}

// Return all orders in insertion order.
func (s *PostgresCatalogRepository) ListOrders(ctx context.Context) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "catalog.ListOrders")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres catalog repository: DB is nil")
	}

	query := `
	SELECT
		order_number,
		commodity,
		order_date,
		required_delivery_date,
		ship_from,
		ship_to,
		volume::text,
		order_value::text,
		tax_percentage::text,
		journey_type
	FROM orders
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for row := 1; rows.Next(); row++ {
		var (
			o                     domain.Order
			orderDate, dueBy      time.Time
			volume, value, taxPct decimal.Decimal
		)
		err := rows.Scan(&o.ID, &o.Category, &orderDate, &dueBy, &o.ShipFrom, &o.ShipTo,
			&volume, &value, &taxPct, &o.JourneyType)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}

		o.OrderDate = domain.DayOf(orderDate)
		o.RequiredDeliveryDate = domain.DayOf(dueBy)
		o.Volume, o.Value, o.TaxPercentage = volume, value, taxPct

		if err := o.Validate("orders table", row); err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

// Return all route legs in insertion order.
func (s *PostgresCatalogRepository) ListRouteLegs(ctx context.Context) (_ []domain.RouteLeg, err error) {
	defer obs.Time(ctx, "catalog.ListRouteLegs")(&err)

	if s.DB == nil {
		return nil, errors.New("postgres catalog repository: DB is nil")
	}

	query := `
	SELECT
		source,
		destination,
		travel_mode,
		container_size,
		fixed_freight_cost::text,
		cost::text,
		transit_days,
		warehouse_cost::text,
		transit_duty::text,
		feasibility,
		weekday
	FROM route_legs
	ORDER BY leg_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list route legs: query route_legs table: %w", err)
	}
	defer rows.Close()

	legs := make([]domain.RouteLeg, 0, 128)
	for row := 1; rows.Next(); row++ {
		var (
			l           domain.RouteLeg
			feasibility int
			weekday     string
		)
		err := rows.Scan(&l.Source, &l.Destination, &l.Mode, &l.ContainerSize,
			&l.FixedFreightCost, &l.VariableCost, &l.TransitDays, &l.WarehouseCost, &l.TransitDuty,
			&feasibility, &weekday)
		if err != nil {
			return nil, fmt.Errorf("list route legs: scan row: %w", err)
		}

		l.Feasible = feasibility != 0
		l.Weekdays, err = domain.ParseWeekdays(weekday)
		if err != nil {
			return nil, fmt.Errorf("list route legs: %w",
				&domain.InputError{Source: "route_legs table", Row: row, Field: "weekday", Msg: err.Error()})
		}

		if err := l.Validate("route_legs table", row); err != nil {
			return nil, fmt.Errorf("list route legs: %w", err)
		}
		legs = append(legs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list route legs: row iteration: %w", err)
	}

	return legs, nil
}
