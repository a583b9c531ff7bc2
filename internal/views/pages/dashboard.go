package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"gelateria/internal/reports"
	"gelateria/internal/views/layout"
)

// DashboardData carries everything the dashboard page renders.
type DashboardData struct {
	Summary    reports.Summary
	SalesByDay []reports.DayRow
	Currency   string
}

// FormatMoney renders a decimal amount with the operator's display glyph.
func FormatMoney(currency string, amount decimal.Decimal) string {
	if currency == "" {
		currency = "$"
	}
	return fmt.Sprintf("%s%s", currency, amount.StringFixed(2))
}

// Dashboard renders the full dashboard page inside the application shell.
func Dashboard(data DashboardData) templ.Component {
	return layout.Page("Gelateria Dashboard", DashboardPartial(data))
}

// DashboardPartial renders only the dashboard panels, for HTMX refreshes.
func DashboardPartial(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="dashboard">`); err != nil {
			return err
		}
		if err := renderSummary(w, data); err != nil {
			return err
		}
		if err := renderLowStock(w, data); err != nil {
			return err
		}
		if err := renderSalesByDay(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>`)
		return err
	})
}

func renderSummary(w io.Writer, data DashboardData) error {
	_, err := fmt.Fprintf(w,
		`<section class="summary"><h1>Shop overview</h1>`+
			`<dl><dt>Revenue</dt><dd>%s</dd>`+
			`<dt>Sales</dt><dd>%d</dd>`+
			`<dt>Units sold</dt><dd>%d</dd></dl></section>`,
		templ.EscapeString(FormatMoney(data.Currency, data.Summary.Revenue)),
		data.Summary.SalesCount,
		data.Summary.TotalTubs,
	)
	return err
}

func renderLowStock(w io.Writer, data DashboardData) error {
	if _, err := io.WriteString(w, `<section class="low-stock"><h2>Low stock</h2>`); err != nil {
		return err
	}
	if len(data.Summary.LowStock) == 0 {
		if _, err := io.WriteString(w, `<p>All ingredients above reorder level.</p></section>`); err != nil {
			return err
		}
		return nil
	}
	if _, err := io.WriteString(w, `<ul>`); err != nil {
		return err
	}
	for _, ingredient := range data.Summary.LowStock {
		if _, err := fmt.Fprintf(w, `<li>%s: %.2f %s on hand, reorder at %.2f</li>`,
			templ.EscapeString(ingredient.Name),
			ingredient.CurrentStock,
			templ.EscapeString(ingredient.Unit),
			ingredient.ReorderLevel,
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ul></section>`)
	return err
}

func renderSalesByDay(w io.Writer, data DashboardData) error {
	if _, err := io.WriteString(w, `<section class="sales-by-day"><h2>Last 30 days</h2>`); err != nil {
		return err
	}
	if len(data.SalesByDay) == 0 {
		_, err := io.WriteString(w, `<p>No sales recorded yet.</p></section>`)
		return err
	}
	if _, err := io.WriteString(w, `<table><thead><tr><th>Day</th><th>Revenue</th><th>Units</th></tr></thead><tbody>`); err != nil {
		return err
	}
	for _, row := range data.SalesByDay {
		if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%d</td></tr>`,
			templ.EscapeString(row.Day),
			templ.EscapeString(FormatMoney(data.Currency, row.Revenue)),
			row.Tubs,
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</tbody></table></section>`)
	return err
}
