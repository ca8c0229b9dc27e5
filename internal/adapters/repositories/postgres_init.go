package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"freight-route-optimizer/internal/domain"
)

// Initialize the Postgres catalogue schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		seq BIGSERIAL UNIQUE,
		order_number TEXT PRIMARY KEY,
		commodity TEXT NOT NULL DEFAULT '',
		order_date DATE NOT NULL,
		required_delivery_date DATE NOT NULL,
		ship_from TEXT NOT NULL,
		ship_to TEXT NOT NULL,
		volume NUMERIC NOT NULL DEFAULT 0,
		order_value NUMERIC NOT NULL DEFAULT 0,
		tax_percentage NUMERIC NOT NULL DEFAULT 0,
		journey_type TEXT NOT NULL DEFAULT ''
	);
	`

	createRouteLegsQuery := `
	CREATE TABLE IF NOT EXISTS route_legs (
		leg_id BIGSERIAL PRIMARY KEY,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		travel_mode TEXT NOT NULL,
		container_size TEXT NOT NULL DEFAULT '',
		fixed_freight_cost NUMERIC NOT NULL DEFAULT 0,
		cost NUMERIC NOT NULL DEFAULT 0,
		transit_days INTEGER NOT NULL DEFAULT 0,
		warehouse_cost NUMERIC NOT NULL DEFAULT 0,
		transit_duty NUMERIC NOT NULL DEFAULT 0,
		feasibility INTEGER NOT NULL DEFAULT 1,
		weekday TEXT NOT NULL DEFAULT ''
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_legs_source
	ON route_legs(source, destination);
	`

	statements := []string{
		createOrdersQuery,
		createRouteLegsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the catalogue tables from a JSON catalogue file.
// Orders are upserted by order number; route legs replace the existing set.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	catalog := NewJSONCatalogRepository(jsonPath)

	orders, err := catalog.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}
	legs, err := catalog.ListRouteLegs(ctx)
	if err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed catalogue: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertOrders(ctx, tx, orders); err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}
	if err := insertRouteLegs(ctx, tx, legs); err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed catalogue: commit tx: %w", err)
	}

	return nil
}

func insertOrders(ctx context.Context, tx *sql.Tx, orders []domain.Order) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO orders (
		order_number, commodity, order_date, required_delivery_date, ship_from, ship_to,
		volume, order_value, tax_percentage, journey_type
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (order_number) DO UPDATE
	SET commodity = EXCLUDED.commodity,
		order_date = EXCLUDED.order_date,
		required_delivery_date = EXCLUDED.required_delivery_date,
		ship_from = EXCLUDED.ship_from,
		ship_to = EXCLUDED.ship_to,
		volume = EXCLUDED.volume,
		order_value = EXCLUDED.order_value,
		tax_percentage = EXCLUDED.tax_percentage,
		journey_type = EXCLUDED.journey_type;
	`)
	if err != nil {
		return fmt.Errorf("insert orders: prepare: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		_, err := stmt.ExecContext(ctx,
			o.ID, o.Category, o.OrderDate.Time(), o.RequiredDeliveryDate.Time(), o.ShipFrom, o.ShipTo,
			o.Volume.String(), o.Value.String(), o.TaxPercentage.String(), o.JourneyType,
		)
		if err != nil {
			return fmt.Errorf("insert orders: order_number=%s: %w", o.ID, err)
		}
	}

	return nil
}

func insertRouteLegs(ctx context.Context, tx *sql.Tx, legs []domain.RouteLeg) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM route_legs;`); err != nil {
		return fmt.Errorf("insert route legs: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO route_legs (
		source, destination, travel_mode, container_size, fixed_freight_cost, cost,
		transit_days, warehouse_cost, transit_duty, feasibility, weekday
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`)
	if err != nil {
		return fmt.Errorf("insert route legs: prepare: %w", err)
	}
	defer stmt.Close()

	for i, l := range legs {
		feasibility := 0
		if l.Feasible {
			feasibility = 1
		}

		_, err := stmt.ExecContext(ctx,
			l.Source, l.Destination, l.Mode, l.ContainerSize, l.FixedFreightCost.String(), l.VariableCost.String(),
			l.TransitDays, l.WarehouseCost.String(), l.TransitDuty.String(), feasibility, weekdayColumn(l.Weekdays),
		)
		if err != nil {
			return fmt.Errorf("insert route legs: leg #%d %s->%s: %w", i+1, l.Source, l.Destination, err)
		}
	}

	return nil
}

// weekdayColumn renders a set in a form domain.ParseWeekdays reads back.
func weekdayColumn(s domain.WeekdaySet) string {
	if s.IsEmpty() {
		return "never"
	}
	return s.String()
}
