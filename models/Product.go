package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item. Its recipe is an ordered list of ingredient
// draws per unit sold; once a sale references the product the recipe is
// treated as frozen (no versioning).
type Product struct {
	gorm.Model
	Name   string          `gorm:"uniqueIndex;not null" json:"name"`
	Price  decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Recipe []RecipeLine    `gorm:"foreignKey:ProductID" json:"recipe"`
}
