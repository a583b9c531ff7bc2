package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale records one committed transaction. TotalPrice is computed from the
// product price at sale time and never recomputed, so later price edits do
// not rewrite history.
type Sale struct {
	gorm.Model
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Qty        int             `gorm:"not null" json:"qty"`
	TotalPrice decimal.Decimal `gorm:"type:numeric;not null" json:"total_price"`
	SoldAt     time.Time       `gorm:"not null;index" json:"sold_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
