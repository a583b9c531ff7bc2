package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gelateria/models"
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(&models.Ingredient{}, &models.InventoryLogEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewLedger(db), db
}

func createIngredient(t *testing.T, db *gorm.DB, name string, stock, reorder float64) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, Unit: "g", CurrentStock: stock, ReorderLevel: reorder}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("create ingredient %q: %v", name, err)
	}
	return ingredient
}

func TestAdjustRoundTripAppendsTwoLogEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, db := newTestLedger(t)
	ingredient := createIngredient(t, db, "Cane Sugar", 50, 10)

	after, err := ledger.Adjust(ctx, ingredient.ID, 10, "restock")
	if err != nil {
		t.Fatalf("adjust +10: %v", err)
	}
	if after != 60 {
		t.Fatalf("stock after restock = %v, want 60", after)
	}

	after, err = ledger.Adjust(ctx, ingredient.ID, -10, "correction")
	if err != nil {
		t.Fatalf("adjust -10: %v", err)
	}
	if after != 50 {
		t.Fatalf("stock after correction = %v, want original 50", after)
	}

	entries, err := ledger.Log(ctx, ingredient.ID)
	if err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want exactly 2", len(entries))
	}
	if entries[0].Change != 10 || entries[0].Reason != "restock" {
		t.Fatalf("first entry = %+v, want change 10 reason restock", entries[0])
	}
	if entries[1].Change != -10 || entries[1].Reason != "correction" {
		t.Fatalf("second entry = %+v, want change -10 reason correction", entries[1])
	}
}

func TestAdjustUnknownIngredient(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)

	if _, err := ledger.Adjust(context.Background(), 9999, 5, "restock"); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("adjust unknown ingredient returned %v, want ErrIngredientNotFound", err)
	}
}

func TestAdjustAllowsNegativeStockOnManualCorrection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, db := newTestLedger(t)
	ingredient := createIngredient(t, db, "Pistachio Paste", 5, 0)

	after, err := ledger.Adjust(ctx, ingredient.ID, -8, "stocktake correction")
	if err != nil {
		t.Fatalf("adjust below zero: %v", err)
	}
	if after != -3 {
		t.Fatalf("stock after correction = %v, want -3", after)
	}
}

func TestIngredientNotFound(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)

	if _, err := ledger.Ingredient(context.Background(), 42); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("lookup returned %v, want ErrIngredientNotFound", err)
	}
}

func TestLowStockBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, db := newTestLedger(t)

	cases := []struct {
		name    string
		stock   float64
		reorder float64
		low     bool
	}{
		{"well stocked", 100, 10, false},
		{"exactly at threshold", 10, 10, true},
		{"below threshold", 3, 10, true},
		{"zero threshold zero stock", 0, 0, true},
		{"just above threshold", 10.01, 10, false},
	}

	want := map[string]bool{}
	for _, tc := range cases {
		createIngredient(t, db, tc.name, tc.stock, tc.reorder)
		if tc.low {
			want[tc.name] = true
		}
	}

	low, err := ledger.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}

	got := map[string]bool{}
	for _, ingredient := range low {
		got[ingredient.Name] = true
	}

	if len(got) != len(want) {
		t.Fatalf("low stock set = %v, want %v", got, want)
	}
	for name := range want {
		if !got[name] {
			t.Fatalf("expected %q in low stock set %v", name, got)
		}
	}
}

func TestLowStockOrderedByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, db := newTestLedger(t)

	createIngredient(t, db, "Waffle Cones", 2, 20)
	createIngredient(t, db, "Cotton Candy Syrup", 5, 100)

	low, err := ledger.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("low stock count = %d, want 2", len(low))
	}
	if low[0].ID > low[1].ID {
		t.Fatalf("low stock not ascending by id: %d then %d", low[0].ID, low[1].ID)
	}
}

func TestIngredientForUpdate(t *testing.T) {
	t.Parallel()

	ledger, db := newTestLedger(t)
	seeded := createIngredient(t, db, "Pistachio Paste", 800, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		bound := ledger.WithTx(tx)
		ingredient, err := bound.IngredientForUpdate(context.Background(), seeded.ID)
		if err != nil {
			return err
		}
		if ingredient.CurrentStock != 800 {
			t.Fatalf("expected stock 800, got %v", ingredient.CurrentStock)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("locked read failed: %v", err)
	}

	if _, err := ledger.IngredientForUpdate(context.Background(), 4242); !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got %v", err)
	}
}
