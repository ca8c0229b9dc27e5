// Package workbook reads order and route catalogues from spreadsheet exports.
//
// A workbook has an "Order Information" sheet and a "Route Information" sheet,
// each with a header row naming its columns. The same layouts are accepted as
// a pair of CSV files.
package workbook

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"freight-route-optimizer/internal/domain"
	"freight-route-optimizer/internal/ports"

	"github.com/xuri/excelize/v2"
)

const (
	OrderSheet = "Order Information"
	RouteSheet = "Route Information"
)

var orderColumns = []string{
	"Order Number", "Commodity", "Order Date", "Required Delivery Date", "Ship From",
	"Ship To", "Volume", "Order Value", "Tax Percentage", "Journey Type",
}

var routeColumns = []string{
	"Source", "Destination", "Travel Mode", "Container Size", "Fixed Freight Cost",
	"Cost", "Time", "Warehouse Cost", "Transit Duty", "Feasibility", "Weekday",
}

var _ ports.CatalogRepository = (*Catalog)(nil)

// Catalog is a parsed workbook. It is fully validated on construction, so its
// list methods never fail.
type Catalog struct {
	orders []domain.Order
	legs   []domain.RouteLeg
}

func (c *Catalog) ListOrders(context.Context) ([]domain.Order, error) { return c.orders, nil }

func (c *Catalog) ListRouteLegs(context.Context) ([]domain.RouteLeg, error) { return c.legs, nil }

// OpenXLSX reads the workbook at path. A file that exists but is not a valid
// workbook is malformed input; failing to open it at all is not.
func OpenXLSX(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer file.Close()

	return readXLSX(file, path)
}

// ReadXLSX reads a workbook from r.
func ReadXLSX(r io.Reader) (*Catalog, error) {
	return readXLSX(r, "workbook")
}

func readXLSX(r io.Reader, source string) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &domain.InputError{Source: source, Msg: "not a readable xlsx file: " + err.Error()}
	}
	defer f.Close()

	return fromFile(f)
}

// ReadCSV reads the two sheets from separate CSV documents.
func ReadCSV(orders, routes io.Reader) (*Catalog, error) {
	orderRows, err := readCSV(orders, OrderSheet)
	if err != nil {
		return nil, err
	}
	routeRows, err := readCSV(routes, RouteSheet)
	if err != nil {
		return nil, err
	}

	return parse(orderRows, routeRows)
}

func readCSV(r io.Reader, sheet string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &domain.InputError{Source: sheet, Msg: "invalid csv: " + err.Error()}
	}
	return rows, nil
}

func fromFile(f *excelize.File) (*Catalog, error) {
	orderRows, err := sheetRows(f, OrderSheet)
	if err != nil {
		return nil, err
	}
	routeRows, err := sheetRows(f, RouteSheet)
	if err != nil {
		return nil, err
	}

	return parse(orderRows, routeRows)
}

// sheetRows finds a sheet by name, ignoring case and surrounding spaces.
func sheetRows(f *excelize.File, want string) ([][]string, error) {
	for _, name := range f.GetSheetList() {
		if !strings.EqualFold(strings.TrimSpace(name), want) {
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		return rows, nil
	}

	return nil, &domain.InputError{Source: want, Msg: "required sheet is missing"}
}

func parse(orderRows, routeRows [][]string) (*Catalog, error) {
	orders, err := parseOrders(orderRows)
	if err != nil {
		return nil, err
	}
	legs, err := parseRouteLegs(routeRows)
	if err != nil {
		return nil, err
	}

	return &Catalog{orders: orders, legs: legs}, nil
}

func parseOrders(rows [][]string) ([]domain.Order, error) {
	t, err := newTable(OrderSheet, rows, orderColumns)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for t.next() {
		o := domain.Order{
			ID:          t.text("Order Number"),
			Category:    t.text("Commodity"),
			OrderDate:   t.day("Order Date"),
			ShipFrom:    t.text("Ship From"),
			ShipTo:      t.text("Ship To"),
			Volume:      t.decimal("Volume"),
			Value:       t.decimal("Order Value"),
			JourneyType: t.text("Journey Type"),
		}
		o.RequiredDeliveryDate = t.day("Required Delivery Date")
		o.TaxPercentage = t.percentage("Tax Percentage")

		if t.err != nil {
			return nil, t.err
		}
		if err := o.Validate(OrderSheet, t.rowNumber()); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func parseRouteLegs(rows [][]string) ([]domain.RouteLeg, error) {
	t, err := newTable(RouteSheet, rows, routeColumns)
	if err != nil {
		return nil, err
	}

	legs := make([]domain.RouteLeg, 0, len(rows))
	for t.next() {
		l := domain.RouteLeg{
			Source:           t.text("Source"),
			Destination:      t.text("Destination"),
			Mode:             t.text("Travel Mode"),
			ContainerSize:    t.text("Container Size"),
			FixedFreightCost: t.decimal("Fixed Freight Cost"),
			VariableCost:     t.decimal("Cost"),
			TransitDays:      t.integer("Time"),
			WarehouseCost:    t.decimal("Warehouse Cost"),
			TransitDuty:      t.decimal("Transit Duty"),
			Feasible:         t.flag("Feasibility"),
			Weekdays:         t.weekdays("Weekday"),
		}

		if t.err != nil {
			return nil, t.err
		}
		if err := l.Validate(RouteSheet, t.rowNumber()); err != nil {
			return nil, err
		}
		legs = append(legs, l)
	}

	return legs, nil
}
