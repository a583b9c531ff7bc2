package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "gelateria/internal/log"
	"gelateria/models"
)

// Ledger is the single source of truth for ingredient stock. Every stock
// change goes through Adjust, which writes the new level and appends exactly
// one audit row in the same transaction.
type Ledger struct {
	db *gorm.DB
}

// NewLedger binds a ledger to a database handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger bound to the given transaction handle, letting the
// sale processor run its check and commit passes against one consistent view.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// Ingredient loads the current state of one ingredient.
func (l *Ledger) Ingredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	return loadIngredient(l.db.WithContext(ctx), id)
}

// IngredientForUpdate loads an ingredient under a row lock that is held for
// the remainder of the surrounding transaction, so a concurrent writer cannot
// change the row between this read and the caller's write. The sqlite driver
// drops the locking clause; postgres takes a real FOR UPDATE lock.
func (l *Ledger) IngredientForUpdate(ctx context.Context, id uint) (*models.Ingredient, error) {
	return loadIngredient(l.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func loadIngredient(db *gorm.DB, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := db.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("load ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

// Adjust applies a signed delta to an ingredient's stock and appends one
// audit row, returning the resulting stock level. No feasibility check is
// performed here: callers driving consumption must validate sufficiency
// first, while manual corrections are allowed to take stock negative.
func (l *Ledger) Adjust(ctx context.Context, id uint, delta float64, reason string) (float64, error) {
	var newStock float64

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock keeps a concurrent adjust or sale from reading the
		// same stock level and overwriting this delta.
		ingredient, err := loadIngredient(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}

		newStock = ingredient.CurrentStock + delta
		if err := tx.Model(ingredient).Update("current_stock", newStock).Error; err != nil {
			return fmt.Errorf("update stock for ingredient %d: %w", id, err)
		}

		entry := models.InventoryLogEntry{
			IngredientID: ingredient.ID,
			Change:       delta,
			Reason:       strings.TrimSpace(reason),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append inventory log for ingredient %d: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	applog.Debug(ctx, "stock adjusted", "ingredientID", id, "delta", delta, "newStock", newStock)
	return newStock, nil
}

// LowStock returns every ingredient at or below its reorder level, ascending
// by id (insertion order under the auto-incrementing key).
func (l *Ledger) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := l.db.WithContext(ctx).
		Where("current_stock <= reorder_level").
		Order("id asc").
		Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return ingredients, nil
}

// List returns all ingredients ascending by id.
func (l *Ledger) List(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if err := l.db.WithContext(ctx).Order("id asc").Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

// Create persists a new ingredient record.
func (l *Ledger) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if err := l.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

// Log returns the audit trail for one ingredient, oldest first.
func (l *Ledger) Log(ctx context.Context, ingredientID uint) ([]models.InventoryLogEntry, error) {
	var entries []models.InventoryLogEntry
	if err := l.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("id asc").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load inventory log for ingredient %d: %w", ingredientID, err)
	}
	return entries, nil
}
