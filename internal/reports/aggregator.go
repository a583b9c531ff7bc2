package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gelateria/internal/inventory"
	"gelateria/models"
)

// Aggregator is the read-side projection over sales and stock. It never
// mutates anything.
type Aggregator struct {
	db     *gorm.DB
	ledger *inventory.Ledger

	nowFunc func() time.Time
}

// NewAggregator binds an aggregator to a database handle and ledger.
func NewAggregator(db *gorm.DB, ledger *inventory.Ledger) *Aggregator {
	return &Aggregator{
		db:      db,
		ledger:  ledger,
		nowFunc: time.Now,
	}
}

// Summary holds the headline dashboard figures.
type Summary struct {
	Revenue    decimal.Decimal     `json:"revenue"`
	SalesCount int64               `json:"sales_count"`
	TotalTubs  int64               `json:"total_tubs"`
	LowStock   []models.Ingredient `json:"low_stock"`
}

// DayRow is one day of the trailing sales window.
type DayRow struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Tubs    int64           `json:"tubs"`
}

// Summary totals all recorded sales and lists low-stock ingredients. Money
// sums are computed in Go with decimal so the sqlite storage representation
// of numeric columns cannot skew the result.
func (a *Aggregator) Summary(ctx context.Context) (Summary, error) {
	var sales []models.Sale
	if err := a.db.WithContext(ctx).Find(&sales).Error; err != nil {
		return Summary{}, fmt.Errorf("load sales: %w", err)
	}

	summary := Summary{Revenue: decimal.Zero}
	for _, sale := range sales {
		summary.Revenue = summary.Revenue.Add(sale.TotalPrice)
		summary.SalesCount++
		summary.TotalTubs += int64(sale.Qty)
	}

	lowStock, err := a.ledger.LowStock(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.LowStock = lowStock

	return summary, nil
}

// SalesByDay groups the trailing window of sales by calendar day (UTC),
// ascending. Days with no sales produce no row.
func (a *Aggregator) SalesByDay(ctx context.Context, days int) ([]DayRow, error) {
	if days <= 0 {
		days = 30
	}

	cutoff := a.nowFunc().UTC().AddDate(0, 0, -days)
	var sales []models.Sale
	if err := a.db.WithContext(ctx).Where("sold_at >= ?", cutoff).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("load sales window: %w", err)
	}

	byDay := make(map[string]*DayRow)
	for _, sale := range sales {
		day := sale.SoldAt.UTC().Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &DayRow{Day: day, Revenue: decimal.Zero}
			byDay[day] = row
		}
		row.Revenue = row.Revenue.Add(sale.TotalPrice)
		row.Tubs += int64(sale.Qty)
	}

	rows := make([]DayRow, 0, len(byDay))
	for _, row := range byDay {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Day < rows[j].Day
	})

	return rows, nil
}
