package services

import (
	"fmt"
	"io"
	"strings"

	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
)

const goodsSeparator = "------------------------------------"

// SolutionText renders result as the downloadable plain-text report.
// The output depends only on result, so identical results give identical bytes.
func SolutionText(result domain.OptimizationResult) string {
	var b strings.Builder

	b.WriteString("Solution\n")
	fmt.Fprintf(&b, "Number of goods: %d\n", len(result.Goods))
	fmt.Fprintf(&b, "Total cost: %s\n", money(result.TotalCost))
	fmt.Fprintf(&b, "Transportation cost: %s\n", money(result.TransportationCost))
	fmt.Fprintf(&b, "Warehouse cost: %s\n", money(result.WarehouseCost))
	fmt.Fprintf(&b, "Tax cost: %s\n", money(result.TaxCost))

	for _, g := range result.Goods {
		b.WriteString("\n" + goodsSeparator + "\n")
		fmt.Fprintf(&b, "Goods-%s  Category: %s\n", g.ID, g.Category)
		fmt.Fprintf(&b, "Start date: %s\n", g.StartDate)
		fmt.Fprintf(&b, "Arrival date: %s\n", g.ArrivalDate)
		b.WriteString("Route:\n")

		for i, r := range g.Routes {
			fmt.Fprintf(&b, "(%d)Date: %s  From: %s  To: %s  By: %s\n", i+1, r.Date, r.From, r.To, r.Mode)
		}
	}

	if len(result.Infeasible) > 0 {
		b.WriteString("\n" + goodsSeparator + "\n")
		fmt.Fprintf(&b, "Infeasible orders: %d\n", len(result.Infeasible))
		for _, o := range result.Infeasible {
			fmt.Fprintf(&b, "Order %s: %s\n", o.OrderID, o.Reason)
		}
	}

	return b.String()
}

// WriteSolutionText writes SolutionText(result) to w.
func WriteSolutionText(w io.Writer, result domain.OptimizationResult) error {
	if _, err := io.WriteString(w, SolutionText(result)); err != nil {
		return fmt.Errorf("write solution text: %w", err)
	}
	return nil
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
