package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "gelateria/internal/log"
	"gelateria/models"
)

// New returns an in-memory sqlite database seeded with representative shop
// data. Each call opens a distinct database so parallel tests never share
// state.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:gelateria-mock-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Ingredient{},
		&models.Product{},
		&models.RecipeLine{},
		&models.Sale{},
		&models.InventoryLogEntry{},
	); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	milk := models.Ingredient{Name: "Whole Milk", Unit: "l", CurrentStock: 40, ReorderLevel: 10, UnitCost: decimal.RequireFromString("1.20")}
	cream := models.Ingredient{Name: "Heavy Cream", Unit: "l", CurrentStock: 25, ReorderLevel: 8, UnitCost: decimal.RequireFromString("2.80")}
	sugar := models.Ingredient{Name: "Cane Sugar", Unit: "kg", CurrentStock: 12, ReorderLevel: 4, UnitCost: decimal.RequireFromString("0.95")}
	syrup := models.Ingredient{Name: "Cotton Candy Syrup", Unit: "g", CurrentStock: 500, ReorderLevel: 100, UnitCost: decimal.RequireFromString("0.04")}
	pistachio := models.Ingredient{Name: "Pistachio Paste", Unit: "g", CurrentStock: 800, ReorderLevel: 250, UnitCost: decimal.RequireFromString("0.11")}
	cones := models.Ingredient{Name: "Waffle Cones", Unit: "pcs", CurrentStock: 12, ReorderLevel: 24, UnitCost: decimal.RequireFromString("0.35")}

	ingredients := []*models.Ingredient{&milk, &cream, &sugar, &syrup, &pistachio, &cones}
	for _, ingredient := range ingredients {
		if err := db.WithContext(ctx).Create(ingredient).Error; err != nil {
			return err
		}
	}

	cottonTub := models.Product{
		Name:  "Cotton Candy Tub",
		Price: decimal.NewFromInt(300),
		Recipe: []models.RecipeLine{
			{IngredientID: syrup.ID, QuantityPerUnit: 20, Position: 0},
			{IngredientID: milk.ID, QuantityPerUnit: 0.5, Position: 1},
			{IngredientID: cream.ID, QuantityPerUnit: 0.3, Position: 2},
			{IngredientID: sugar.ID, QuantityPerUnit: 0.15, Position: 3},
		},
	}
	pistachioTub := models.Product{
		Name:  "Pistachio Tub",
		Price: decimal.NewFromInt(350),
		Recipe: []models.RecipeLine{
			{IngredientID: pistachio.ID, QuantityPerUnit: 40, Position: 0},
			{IngredientID: milk.ID, QuantityPerUnit: 0.5, Position: 1},
			{IngredientID: cream.ID, QuantityPerUnit: 0.35, Position: 2},
			{IngredientID: sugar.ID, QuantityPerUnit: 0.12, Position: 3},
		},
	}
	vanillaCone := models.Product{
		Name:  "Vanilla Cone",
		Price: decimal.RequireFromString("4.50"),
		Recipe: []models.RecipeLine{
			{IngredientID: milk.ID, QuantityPerUnit: 0.08, Position: 0},
			{IngredientID: cream.ID, QuantityPerUnit: 0.05, Position: 1},
			{IngredientID: sugar.ID, QuantityPerUnit: 0.02, Position: 2},
			{IngredientID: cones.ID, QuantityPerUnit: 1, Position: 3},
		},
	}

	products := []*models.Product{&cottonTub, &pistachioTub, &vanillaCone}
	for _, product := range products {
		if err := db.WithContext(ctx).Create(product).Error; err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	sales := []models.Sale{
		{ProductID: cottonTub.ID, Qty: 1, TotalPrice: decimal.NewFromInt(300), SoldAt: now.Add(-2 * time.Hour)},
		{ProductID: pistachioTub.ID, Qty: 2, TotalPrice: decimal.NewFromInt(700), SoldAt: now.Add(-26 * time.Hour)},
		{ProductID: vanillaCone.ID, Qty: 4, TotalPrice: decimal.NewFromInt(18), SoldAt: now.Add(-72 * time.Hour)},
		{ProductID: cottonTub.ID, Qty: 2, TotalPrice: decimal.NewFromInt(600), SoldAt: now.Add(-40 * 24 * time.Hour)},
	}
	for i := range sales {
		if err := db.WithContext(ctx).Create(&sales[i]).Error; err != nil {
			return err
		}
	}

	restocks := []models.InventoryLogEntry{
		{IngredientID: milk.ID, Change: 20, Reason: "Weekly dairy delivery"},
		{IngredientID: syrup.ID, Change: 250, Reason: "Restock"},
	}
	for i := range restocks {
		if err := db.WithContext(ctx).Create(&restocks[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
