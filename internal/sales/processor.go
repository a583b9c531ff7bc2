package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gelateria/internal/inventory"
	applog "gelateria/internal/log"
	"gelateria/models"
)

// Receipt is the successful result of a recorded sale.
type Receipt struct {
	SaleID     uint
	TotalPrice decimal.Decimal
}

// Processor enforces the check-then-commit protocol for consuming
// ingredients on a sale. A sale either deducts every recipe line and records
// the transaction, or changes nothing at all.
type Processor struct {
	db     *gorm.DB
	ledger *inventory.Ledger

	// mu serializes RecordSale end to end so no other sale's commit can
	// interleave between this sale's feasibility check and its own commit.
	// The transaction below covers the storage side of the same guarantee.
	mu sync.Mutex

	nowFunc func() time.Time
}

// NewProcessor binds a processor to a database handle and ledger.
func NewProcessor(db *gorm.DB, ledger *inventory.Ledger) *Processor {
	return &Processor{
		db:      db,
		ledger:  ledger,
		nowFunc: time.Now,
	}
}

// RecordSale sells qty units of the given product. It resolves the recipe,
// verifies every line against current stock, and only then deducts each
// ingredient and appends the sale row, all inside one transaction.
//
// Stock comparisons are direct float comparisons with no epsilon tolerance.
func (p *Processor) RecordSale(ctx context.Context, productID uint, qty int) (Receipt, error) {
	if qty <= 0 {
		return Receipt{}, ErrInvalidQuantity
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var receipt Receipt
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.
			Preload("Recipe", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
			First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("load product %d: %w", productID, err)
		}

		ledger := p.ledger.WithTx(tx)

		// Feasibility pass: every line is checked against a fresh read of
		// its ingredient before anything is deducted. The reads take row
		// locks held until the transaction ends, so a manual adjust cannot
		// slip in between this check and the deduction below.
		for _, line := range product.Recipe {
			ingredient, err := ledger.IngredientForUpdate(ctx, line.IngredientID)
			if err != nil {
				if errors.Is(err, inventory.ErrIngredientNotFound) {
					return &IngredientMissingError{IngredientID: line.IngredientID}
				}
				return err
			}

			required := line.QuantityPerUnit * float64(qty)
			if required > ingredient.CurrentStock {
				return &InsufficientStockError{Ingredient: ingredient.Name}
			}
		}

		// Commit pass: only reached once every line proved affordable.
		for _, line := range product.Recipe {
			required := line.QuantityPerUnit * float64(qty)
			if _, err := ledger.Adjust(ctx, line.IngredientID, -required, fmt.Sprintf("Sale of %s", product.Name)); err != nil {
				return err
			}
		}

		sale := models.Sale{
			ProductID:  product.ID,
			Qty:        qty,
			TotalPrice: product.Price.Mul(decimal.NewFromInt(int64(qty))),
			SoldAt:     p.nowFunc().UTC(),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("record sale: %w", err)
		}

		receipt = Receipt{SaleID: sale.ID, TotalPrice: sale.TotalPrice}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	applog.Info(ctx, "sale recorded",
		"productID", productID,
		"qty", qty,
		"totalPrice", receipt.TotalPrice.String(),
	)
	return receipt, nil
}
