package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Represents a single shipment to be routed.
// An Order is created from an ingested row and never modified afterwards.
type Order struct {
	ID                   string
	Category             string
	OrderDate            Day
	RequiredDeliveryDate Day
	ShipFrom             string
	ShipTo               string
	Volume               decimal.Decimal
	Value                decimal.Decimal
	// TaxPercentage is a fraction: 0.05 means five percent of Value.
	TaxPercentage decimal.Decimal
	JourneyType   string
}

// Tax is the order-level surcharge applied once when the order is routed.
func (o Order) Tax() decimal.Decimal {
	return o.Value.Mul(o.TaxPercentage)
}

// Validate checks the record invariants. row is used for error locations only.
func (o Order) Validate(source string, row int) error {
	fail := func(field, msg string) error {
		return &InputError{Source: source, Row: row, Field: field, Msg: msg}
	}

	if strings.TrimSpace(o.ID) == "" {
		return fail("Order Number", "order id must not be empty")
	}
	if strings.TrimSpace(o.ShipFrom) == "" {
		return fail("Ship From", "origin must not be empty")
	}
	if strings.TrimSpace(o.ShipTo) == "" {
		return fail("Ship To", "destination must not be empty")
	}
	if o.RequiredDeliveryDate <= o.OrderDate {
		return fail("Required Delivery Date", "required delivery date "+o.RequiredDeliveryDate.String()+
			" must be after order date "+o.OrderDate.String())
	}
	if o.Volume.IsNegative() {
		return fail("Volume", "volume must not be negative")
	}
	if o.Value.IsNegative() {
		return fail("Order Value", "order value must not be negative")
	}
	if o.TaxPercentage.IsNegative() {
		return fail("Tax Percentage", "tax percentage must not be negative")
	}

	return nil
}
