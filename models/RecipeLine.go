package models

import (
	"gorm.io/gorm"
)

// RecipeLine ties one ingredient to its parent product with the quantity a
// single sold unit consumes. Position preserves the order the recipe was
// authored in.
type RecipeLine struct {
	gorm.Model
	ProductID       uint    `gorm:"not null;index" json:"product_id"`
	IngredientID    uint    `gorm:"not null" json:"ingredient_id"`
	QuantityPerUnit float64 `gorm:"not null" json:"qty"`
	Position        int     `gorm:"not null" json:"position"`

	// Preloadable so consumers can show ingredient names without a second query.
	Ingredient *Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}
