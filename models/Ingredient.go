package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a raw stock item consumed by product recipes. CurrentStock is
// only ever mutated through the inventory ledger so every change leaves an
// audit row behind.
type Ingredient struct {
	gorm.Model
	Name         string          `gorm:"uniqueIndex;not null" json:"name"`
	Unit         string          `gorm:"not null" json:"unit"`
	CurrentStock float64         `gorm:"not null;default:0" json:"current_stock"`
	ReorderLevel float64         `gorm:"not null;default:0" json:"reorder_level"`
	UnitCost     decimal.Decimal `gorm:"type:numeric" json:"unit_cost"`
}

// LowOnStock reports whether the ingredient has dropped to or below its
// reorder threshold. Equal counts as low.
func (i Ingredient) LowOnStock() bool {
	return i.CurrentStock <= i.ReorderLevel
}
