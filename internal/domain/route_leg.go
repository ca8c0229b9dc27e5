package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Represents a directed, mode-specific transport offering between two locations.
// A RouteLeg is a template: the network builder instantiates it once per permitted
// departure day as a TimeEdge.
type RouteLeg struct {
	Source           string
	Destination      string
	Mode             string
	ContainerSize    string
	FixedFreightCost decimal.Decimal
	VariableCost     decimal.Decimal
	TransitDays      int
	WarehouseCost    decimal.Decimal
	TransitDuty      decimal.Decimal
	Feasible         bool
	Weekdays         WeekdaySet
}

var storageModes = map[string]struct{}{
	"warehouse": {},
	"storage":   {},
	"transfer":  {},
}

// IsStorage reports whether the leg is a warehouse dwell or transfer leg.
// Only storage legs contribute their warehouse cost.
func (l RouteLeg) IsStorage() bool {
	_, ok := storageModes[strings.ToLower(strings.TrimSpace(l.Mode))]
	return ok
}

// DepartsOn reports whether the leg may be traversed starting on day.
func (l RouteLeg) DepartsOn(day Day) bool {
	return l.Feasible && l.Weekdays.Contains(day.Weekday())
}

// Validate checks the record invariants. row is used for error locations only.
// MaxTransitDays bounds a single leg's duration (one hundred years).
const MaxTransitDays = 36500

func (l RouteLeg) Validate(source string, row int) error {
	fail := func(field, msg string) error {
		return &InputError{Source: source, Row: row, Field: field, Msg: msg}
	}

	if strings.TrimSpace(l.Source) == "" {
		return fail("Source", "source must not be empty")
	}
	if strings.TrimSpace(l.Destination) == "" {
		return fail("Destination", "destination must not be empty")
	}
	if strings.TrimSpace(l.Mode) == "" {
		return fail("Travel Mode", "travel mode must not be empty")
	}
	if l.TransitDays < 0 {
		return fail("Time", "transit duration must not be negative")
	}
	if l.TransitDays > MaxTransitDays {
		return fail("Time", fmt.Sprintf("transit duration %d exceeds %d days", l.TransitDays, MaxTransitDays))
	}

	money := []struct {
		field string
		v     decimal.Decimal
	}{
		{"Fixed Freight Cost", l.FixedFreightCost},
		{"Cost", l.VariableCost},
		{"Warehouse Cost", l.WarehouseCost},
		{"Transit Duty", l.TransitDuty},
	}
	for _, m := range money {
		if m.v.IsNegative() {
			return fail(m.field, "cost must not be negative")
		}
	}

	return nil
}
