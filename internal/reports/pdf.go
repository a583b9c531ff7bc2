package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"gelateria/models"
)

// ErrInvalidMonth is returned when the month filter is not formatted YYYY-MM.
var ErrInvalidMonth = errors.New("reports: month must be formatted YYYY-MM")

type monthlyReportData struct {
	Title      string
	Generated  time.Time
	Revenue    decimal.Decimal
	SalesCount int
	TotalTubs  int64
	Products   []productTotal
	LowStock   []models.Ingredient
}

type productTotal struct {
	Name    string
	Units   int64
	Revenue decimal.Decimal
}

// MonthlyPDF renders the sales report as a PDF document. An empty month
// covers all recorded history; otherwise month must be "YYYY-MM".
func (a *Aggregator) MonthlyPDF(ctx context.Context, month string) ([]byte, error) {
	data, err := a.buildMonthlyReportData(ctx, month)
	if err != nil {
		return nil, err
	}
	return renderMonthlyPDF(data)
}

func (a *Aggregator) buildMonthlyReportData(ctx context.Context, month string) (monthlyReportData, error) {
	query := a.db.WithContext(ctx).Preload("Product")

	title := "Sales Report - All Time"
	if trimmed := strings.TrimSpace(month); trimmed != "" {
		start, err := time.Parse("2006-01", trimmed)
		if err != nil {
			return monthlyReportData{}, ErrInvalidMonth
		}
		end := start.AddDate(0, 1, 0)
		query = query.Where("sold_at >= ? AND sold_at < ?", start, end)
		title = fmt.Sprintf("Sales Report %s", trimmed)
	}

	var sales []models.Sale
	if err := query.Find(&sales).Error; err != nil {
		return monthlyReportData{}, fmt.Errorf("load sales for report: %w", err)
	}

	data := monthlyReportData{
		Title:     title,
		Generated: a.nowFunc().UTC(),
		Revenue:   decimal.Zero,
	}

	totals := make(map[uint]*productTotal)
	for _, sale := range sales {
		data.Revenue = data.Revenue.Add(sale.TotalPrice)
		data.SalesCount++
		data.TotalTubs += int64(sale.Qty)

		total, ok := totals[sale.ProductID]
		if !ok {
			name := fmt.Sprintf("Product %d", sale.ProductID)
			if sale.Product != nil {
				name = sale.Product.Name
			}
			total = &productTotal{Name: name, Revenue: decimal.Zero}
			totals[sale.ProductID] = total
		}
		total.Units += int64(sale.Qty)
		total.Revenue = total.Revenue.Add(sale.TotalPrice)
	}

	for _, total := range totals {
		data.Products = append(data.Products, *total)
	}
	sort.Slice(data.Products, func(i, j int) bool {
		return data.Products[i].Name < data.Products[j].Name
	})

	lowStock, err := a.ledger.LowStock(ctx)
	if err != nil {
		return monthlyReportData{}, err
	}
	data.LowStock = lowStock

	return data, nil
}

func renderMonthlyPDF(data monthlyReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(data.Title, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, data.Title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", data.Generated.Format("2006-01-02 15:04 MST")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Revenue: %s", data.Revenue.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Sales: %d", data.SalesCount))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Units sold: %d", data.TotalTubs))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Sales by product")
	pdf.Ln(8)
	if len(data.Products) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 6, "No sales in this period.")
		pdf.Ln(10)
	} else {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(90, 7, "Product", "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, "Units", "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, "Revenue", "1", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, product := range data.Products {
			pdf.CellFormat(90, 7, product.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", product.Units), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 7, product.Revenue.StringFixed(2), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Low stock")
	pdf.Ln(8)
	if len(data.LowStock) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 6, "All ingredients above reorder level.")
		pdf.Ln(6)
	} else {
		pdf.SetFont("Helvetica", "", 10)
		for _, ingredient := range data.LowStock {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %.2f %s on hand, reorder at %.2f",
				ingredient.Name, ingredient.CurrentStock, ingredient.Unit, ingredient.ReorderLevel))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
