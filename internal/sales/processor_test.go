package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gelateria/internal/inventory"
	"gelateria/models"
)

func newTestProcessor(t *testing.T) (*Processor, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:sales-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Product{},
		&models.RecipeLine{},
		&models.Sale{},
		&models.InventoryLogEntry{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewProcessor(db, inventory.NewLedger(db)), db
}

func createIngredient(t *testing.T, db *gorm.DB, name string, stock float64) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, Unit: "g", CurrentStock: stock}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("create ingredient %q: %v", name, err)
	}
	return ingredient
}

func createProduct(t *testing.T, db *gorm.DB, name string, price decimal.Decimal, lines ...models.RecipeLine) *models.Product {
	t.Helper()

	for i := range lines {
		lines[i].Position = i
	}
	product := &models.Product{Name: name, Price: price, Recipe: lines}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product %q: %v", name, err)
	}
	return product
}

func currentStock(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()

	var ingredient models.Ingredient
	if err := db.First(&ingredient, id).Error; err != nil {
		t.Fatalf("reload ingredient %d: %v", id, err)
	}
	return ingredient.CurrentStock
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func TestRecordSaleDeductsEveryRecipeLine(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	milk := createIngredient(t, db, "Whole Milk", 10)
	sugar := createIngredient(t, db, "Cane Sugar", 4)
	product := createProduct(t, db, "Vanilla Scoop", decimal.RequireFromString("4.50"),
		models.RecipeLine{IngredientID: milk.ID, QuantityPerUnit: 0.5},
		models.RecipeLine{IngredientID: sugar.ID, QuantityPerUnit: 0.25},
	)

	receipt, err := processor.RecordSale(ctx, product.ID, 4)
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if want := decimal.NewFromInt(18); !receipt.TotalPrice.Equal(want) {
		t.Fatalf("total price = %s, want %s", receipt.TotalPrice, want)
	}
	if got := currentStock(t, db, milk.ID); got != 8 {
		t.Fatalf("milk stock = %v, want 8", got)
	}
	if got := currentStock(t, db, sugar.ID); got != 3 {
		t.Fatalf("sugar stock = %v, want 3", got)
	}

	var entries []models.InventoryLogEntry
	if err := db.Order("id asc").Find(&entries).Error; err != nil {
		t.Fatalf("load log entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want exactly one per recipe line", len(entries))
	}
	if entries[0].IngredientID != milk.ID || entries[0].Change != -2 {
		t.Fatalf("milk entry = %+v, want change -2", entries[0])
	}
	if entries[1].IngredientID != sugar.ID || entries[1].Change != -1 {
		t.Fatalf("sugar entry = %+v, want change -1", entries[1])
	}
	for _, entry := range entries {
		if entry.Reason != "Sale of Vanilla Scoop" {
			t.Fatalf("log reason = %q, want sale reason with product name", entry.Reason)
		}
	}

	var sale models.Sale
	if err := db.First(&sale).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if sale.Qty != 4 || !sale.TotalPrice.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("sale row = qty %d total %s, want qty 4 total 18", sale.Qty, sale.TotalPrice)
	}
	if sale.SoldAt.IsZero() {
		t.Fatal("sale timestamp not set")
	}
}

func TestRecordSaleTotalPriceFrozenAtSaleTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300))

	receipt, err := processor.RecordSale(ctx, product.ID, 3)
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if want := decimal.NewFromInt(900); !receipt.TotalPrice.Equal(want) {
		t.Fatalf("total price = %s, want %s", receipt.TotalPrice, want)
	}

	if err := db.Model(product).Update("price", decimal.NewFromInt(999)).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	var sale models.Sale
	if err := db.First(&sale).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if sale.Qty != 3 || !sale.TotalPrice.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("sale row = qty %d total %s, want qty 3 total 900 despite reprice", sale.Qty, sale.TotalPrice)
	}
	if got := countRows(t, db, &models.Sale{}); got != 1 {
		t.Fatalf("sale rows = %d, want exactly 1", got)
	}
}

func TestRecordSaleCottonCandyScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	syrup := createIngredient(t, db, "CottonCandy", 25)
	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300),
		models.RecipeLine{IngredientID: syrup.ID, QuantityPerUnit: 20},
	)

	// qty=2 needs 40g against 25g in stock: the sale must fail untouched.
	_, err := processor.RecordSale(ctx, product.ID, 2)
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("record sale qty=2 returned %v, want InsufficientStockError", err)
	}
	if insufficient.Ingredient != "CottonCandy" {
		t.Fatalf("error names %q, want CottonCandy", insufficient.Ingredient)
	}
	if got := currentStock(t, db, syrup.ID); got != 25 {
		t.Fatalf("stock after failed sale = %v, want untouched 25", got)
	}

	// qty=1 needs 20g and succeeds, leaving 5g.
	if _, err := processor.RecordSale(ctx, product.ID, 1); err != nil {
		t.Fatalf("record sale qty=1: %v", err)
	}
	if got := currentStock(t, db, syrup.ID); got != 5 {
		t.Fatalf("stock after sale = %v, want 5", got)
	}
}

func TestRecordSaleAtomicUnderPartialInfeasibility(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	milk := createIngredient(t, db, "Whole Milk", 100)
	syrup := createIngredient(t, db, "Cotton Candy Syrup", 5)
	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300),
		models.RecipeLine{IngredientID: milk.ID, QuantityPerUnit: 1},
		models.RecipeLine{IngredientID: syrup.ID, QuantityPerUnit: 20},
	)

	_, err := processor.RecordSale(ctx, product.ID, 1)
	var insufficient *InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("record sale returned %v, want InsufficientStockError", err)
	}
	if insufficient.Ingredient != "Cotton Candy Syrup" {
		t.Fatalf("error names %q, want the blocking ingredient", insufficient.Ingredient)
	}

	// The feasible milk line must not have been deducted.
	if got := currentStock(t, db, milk.ID); got != 100 {
		t.Fatalf("milk stock = %v, want untouched 100", got)
	}
	if got := currentStock(t, db, syrup.ID); got != 5 {
		t.Fatalf("syrup stock = %v, want untouched 5", got)
	}
	if got := countRows(t, db, &models.Sale{}); got != 0 {
		t.Fatalf("sale rows = %d, want none after failed sale", got)
	}
	if got := countRows(t, db, &models.InventoryLogEntry{}); got != 0 {
		t.Fatalf("log rows = %d, want none after failed sale", got)
	}
}

func TestRecordSaleFailureIsRepeatable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	syrup := createIngredient(t, db, "Cotton Candy Syrup", 5)
	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300),
		models.RecipeLine{IngredientID: syrup.ID, QuantityPerUnit: 20},
	)

	for attempt := 1; attempt <= 2; attempt++ {
		_, err := processor.RecordSale(ctx, product.ID, 1)
		var insufficient *InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("attempt %d returned %v, want InsufficientStockError", attempt, err)
		}
	}

	if got := currentStock(t, db, syrup.ID); got != 5 {
		t.Fatalf("stock = %v, want unchanged 5 after repeated failures", got)
	}
	if got := countRows(t, db, &models.InventoryLogEntry{}); got != 0 {
		t.Fatalf("log rows = %d, want no cumulative side effects", got)
	}
}

func TestRecordSaleExactStockSucceeds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	syrup := createIngredient(t, db, "Cotton Candy Syrup", 40)
	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300),
		models.RecipeLine{IngredientID: syrup.ID, QuantityPerUnit: 20},
	)

	if _, err := processor.RecordSale(ctx, product.ID, 2); err != nil {
		t.Fatalf("record sale at exact stock: %v", err)
	}
	if got := currentStock(t, db, syrup.ID); got != 0 {
		t.Fatalf("stock = %v, want 0", got)
	}
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	syrup := createIngredient(t, db, "Cotton Candy Syrup", 100)
	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300),
		models.RecipeLine{IngredientID: syrup.ID, QuantityPerUnit: 20},
	)

	for _, qty := range []int{0, -1, -10} {
		if _, err := processor.RecordSale(ctx, product.ID, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d returned %v, want ErrInvalidQuantity", qty, err)
		}
	}

	if got := currentStock(t, db, syrup.ID); got != 100 {
		t.Fatalf("stock = %v, want untouched 100", got)
	}
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	t.Parallel()

	processor, _ := newTestProcessor(t)

	if _, err := processor.RecordSale(context.Background(), 9999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("unknown product returned %v, want ErrProductNotFound", err)
	}
}

func TestRecordSaleMissingIngredient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	milk := createIngredient(t, db, "Whole Milk", 100)
	product := createProduct(t, db, "Broken Recipe", decimal.NewFromInt(5),
		models.RecipeLine{IngredientID: milk.ID, QuantityPerUnit: 1},
		models.RecipeLine{IngredientID: 4242, QuantityPerUnit: 1},
	)

	_, err := processor.RecordSale(ctx, product.ID, 1)
	var missing *IngredientMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("record sale returned %v, want IngredientMissingError", err)
	}
	if missing.IngredientID != 4242 {
		t.Fatalf("error carries ingredient %d, want 4242", missing.IngredientID)
	}
	if got := currentStock(t, db, milk.ID); got != 100 {
		t.Fatalf("milk stock = %v, want untouched 100", got)
	}
}

func TestRecordSaleEmptyRecipe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	processor, db := newTestProcessor(t)

	product := createProduct(t, db, "Gift Card", decimal.NewFromInt(25))

	receipt, err := processor.RecordSale(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("record sale with empty recipe: %v", err)
	}
	if want := decimal.NewFromInt(50); !receipt.TotalPrice.Equal(want) {
		t.Fatalf("total price = %s, want %s", receipt.TotalPrice, want)
	}
	if got := countRows(t, db, &models.Sale{}); got != 1 {
		t.Fatalf("sale rows = %d, want 1", got)
	}
	if got := countRows(t, db, &models.InventoryLogEntry{}); got != 0 {
		t.Fatalf("log rows = %d, want none for empty recipe", got)
	}
}

func TestRecordSaleConcurrentSalesNeverOverdraw(t *testing.T) {
	t.Parallel()

	processor, db := newTestProcessor(t)
	syrup := createIngredient(t, db, "Cotton Candy Syrup", 30)
	product := createProduct(t, db, "Cotton Candy Tub", decimal.NewFromInt(300),
		models.RecipeLine{IngredientID: syrup.ID, QuantityPerUnit: 10},
	)

	// Stock covers exactly 3 of the 8 attempts.
	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = processor.RecordSale(context.Background(), product.ID, 1)
		}(i)
	}
	wg.Wait()

	var succeeded, refused int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if stockErr.Ingredient != "Cotton Candy Syrup" {
			t.Fatalf("expected failure to name Cotton Candy Syrup, got %q", stockErr.Ingredient)
		}
		refused++
	}

	if succeeded != 3 {
		t.Fatalf("expected exactly 3 sales to succeed, got %d", succeeded)
	}
	if refused != attempts-3 {
		t.Fatalf("expected %d refused sales, got %d", attempts-3, refused)
	}
	if stock := currentStock(t, db, syrup.ID); stock != 0 {
		t.Fatalf("expected stock to land exactly at 0, got %v", stock)
	}
	if count := countRows(t, db, &models.Sale{}); count != 3 {
		t.Fatalf("expected 3 sale rows, got %d", count)
	}
	if count := countRows(t, db, &models.InventoryLogEntry{}); count != 3 {
		t.Fatalf("expected 3 log rows, got %d", count)
	}
}
