package inventory

import "errors"

// ErrIngredientNotFound is returned when an ingredient id does not resolve,
// so HTTP handlers can respond with 404.
var ErrIngredientNotFound = errors.New("inventory: ingredient not found")
