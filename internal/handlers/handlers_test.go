package handlers

import (
	"context"
	"strconv"
	"testing"

	"gorm.io/gorm"

	"gelateria/internal/db/mock"
	"gelateria/models"
)

func jsonUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// setupHandlers wires the package globals to a fresh seeded database. Handler
// tests share package state, so none of them run in parallel.
func setupHandlers(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock database: %v", err)
	}
	Configure(nil, db)
	t.Cleanup(func() { Configure(nil, nil) })
	return db
}

func seededProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	var product models.Product
	if err := db.Preload("Recipe").Where("name = ?", name).First(&product).Error; err != nil {
		t.Fatalf("load seeded product %q: %v", name, err)
	}
	return &product
}

func seededIngredient(t *testing.T, db *gorm.DB, name string) *models.Ingredient {
	t.Helper()

	var ingredient models.Ingredient
	if err := db.Where("name = ?", name).First(&ingredient).Error; err != nil {
		t.Fatalf("load seeded ingredient %q: %v", name, err)
	}
	return &ingredient
}
