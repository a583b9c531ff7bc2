package sales

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when the product id does not resolve.
	ErrProductNotFound = errors.New("sales: product not found")
	// ErrInvalidQuantity is returned for a zero or negative quantity. There
	// is no silent default: callers must send an explicit positive count.
	ErrInvalidQuantity = errors.New("sales: quantity must be a positive integer")
)

// InsufficientStockError reports the first ingredient whose stock cannot
// cover the requested sale. The name is carried so the response can tell the
// operator exactly what ran out.
type InsufficientStockError struct {
	Ingredient string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("sales: insufficient stock of %s", e.Ingredient)
}

// IngredientMissingError reports a recipe line referencing an ingredient that
// no longer exists.
type IngredientMissingError struct {
	IngredientID uint
}

func (e *IngredientMissingError) Error() string {
	return fmt.Sprintf("sales: recipe references missing ingredient %d", e.IngredientID)
}
