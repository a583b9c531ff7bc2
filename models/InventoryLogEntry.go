package models

import (
	"gorm.io/gorm"
)

// InventoryLogEntry is one row of the append-only stock audit trail. Change
// is negative for consumption and positive for restocks; entries are never
// updated or deleted.
type InventoryLogEntry struct {
	gorm.Model
	IngredientID uint    `gorm:"not null;index" json:"ingredient_id"`
	Change       float64 `gorm:"not null" json:"change"`
	Reason       string  `gorm:"type:text" json:"reason"`
}
