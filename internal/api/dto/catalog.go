package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
)

// Catalog is the JSON form of one optimization input: the body of
// POST /optimizations and the layout of catalogue seed files.
type Catalog struct {
	Orders    []OrderPayload    `json:"orders"`
	RouteLegs []RouteLegPayload `json:"route_legs"`
}

type OrderPayload struct {
	OrderNumber          string          `json:"order_number"`
	Commodity            string          `json:"commodity"`
	OrderDate            *domain.Day     `json:"order_date"`
	RequiredDeliveryDate *domain.Day     `json:"required_delivery_date"`
	ShipFrom             string          `json:"ship_from"`
	ShipTo               string          `json:"ship_to"`
	Volume               decimal.Decimal `json:"volume"`
	OrderValue           decimal.Decimal `json:"order_value"`
	TaxPercentage        decimal.Decimal `json:"tax_percentage"`
	JourneyType          string          `json:"journey_type"`
}

type RouteLegPayload struct {
	Source           string          `json:"source"`
	Destination      string          `json:"destination"`
	TravelMode       string          `json:"travel_mode"`
	ContainerSize    string          `json:"container_size"`
	FixedFreightCost decimal.Decimal `json:"fixed_freight_cost"`
	Cost             decimal.Decimal `json:"cost"`
	Time             int             `json:"time"`
	WarehouseCost    decimal.Decimal `json:"warehouse_cost"`
	TransitDuty      decimal.Decimal `json:"transit_duty"`
	Feasibility      int             `json:"feasibility"`
	Weekday          Weekday         `json:"weekday"`
}

// Weekday accepts either a JSON number or a string; see domain.ParseWeekdays.
type Weekday string

func (w *Weekday) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*w = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = Weekday(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("weekday must be a number or a string: %w", err)
	}
	*w = Weekday(n.String())
	return nil
}

// ToDomain converts and validates the payload. row is 1-based.
func (p OrderPayload) ToDomain(source string, row int) (domain.Order, error) {
	if p.OrderDate == nil {
		return domain.Order{}, &domain.InputError{Source: source, Row: row, Field: "Order Date", Msg: "order date is required"}
	}
	if p.RequiredDeliveryDate == nil {
		return domain.Order{}, &domain.InputError{Source: source, Row: row, Field: "Required Delivery Date", Msg: "required delivery date is required"}
	}

	o := domain.Order{
		ID:                   strings.TrimSpace(p.OrderNumber),
		Category:             strings.TrimSpace(p.Commodity),
		OrderDate:            *p.OrderDate,
		RequiredDeliveryDate: *p.RequiredDeliveryDate,
		ShipFrom:             strings.TrimSpace(p.ShipFrom),
		ShipTo:               strings.TrimSpace(p.ShipTo),
		Volume:               p.Volume,
		Value:                p.OrderValue,
		TaxPercentage:        p.TaxPercentage,
		JourneyType:          strings.TrimSpace(p.JourneyType),
	}
	if err := o.Validate(source, row); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ToDomain converts and validates the payload. row is 1-based.
func (p RouteLegPayload) ToDomain(source string, row int) (domain.RouteLeg, error) {
	weekdays, err := domain.ParseWeekdays(string(p.Weekday))
	if err != nil {
		return domain.RouteLeg{}, &domain.InputError{Source: source, Row: row, Field: "Weekday", Msg: err.Error()}
	}

	l := domain.RouteLeg{
		Source:           strings.TrimSpace(p.Source),
		Destination:      strings.TrimSpace(p.Destination),
		Mode:             strings.TrimSpace(p.TravelMode),
		ContainerSize:    strings.TrimSpace(p.ContainerSize),
		FixedFreightCost: p.FixedFreightCost,
		VariableCost:     p.Cost,
		TransitDays:      p.Time,
		WarehouseCost:    p.WarehouseCost,
		TransitDuty:      p.TransitDuty,
		Feasible:         p.Feasibility != 0,
		Weekdays:         weekdays,
	}
	if err := l.Validate(source, row); err != nil {
		return domain.RouteLeg{}, err
	}
	return l, nil
}

// DomainOrders converts every order payload, stopping at the first malformed one.
func (c Catalog) DomainOrders() ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(c.Orders))
	for i, p := range c.Orders {
		o, err := p.ToDomain("orders", i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// DomainRouteLegs converts every leg payload, stopping at the first malformed one.
func (c Catalog) DomainRouteLegs() ([]domain.RouteLeg, error) {
	out := make([]domain.RouteLeg, 0, len(c.RouteLegs))
	for i, p := range c.RouteLegs {
		l, err := p.ToDomain("route_legs", i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
