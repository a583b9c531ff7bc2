package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gelateria/internal/inventory"
	applog "gelateria/internal/log"
	"gelateria/models"
)

type recipeLineRequest struct {
	IngredientID uint    `json:"ingredientId"`
	Qty          float64 `json:"qty"`
}

type productCreateRequest struct {
	Name   string              `json:"name"`
	Price  decimal.Decimal     `json:"price"`
	Recipe []recipeLineRequest `json:"recipe"`
}

// ProductResource handles listing and creating sellable products.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "product request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		listProducts(w, r)
	case http.MethodPost:
		createProduct(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var products []models.Product
	if err := database.WithContext(ctx).
		Preload("Recipe", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Recipe.Ingredient").
		Order("id asc").
		Find(&products).Error; err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload productCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid product payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	if payload.Price.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	lines := make([]models.RecipeLine, 0, len(payload.Recipe))
	for position, line := range payload.Recipe {
		if line.Qty <= 0 {
			writeJSONError(w, http.StatusBadRequest, "recipe quantities must be positive")
			return
		}
		if _, err := ledger.Ingredient(ctx, line.IngredientID); err != nil {
			if errors.Is(err, inventory.ErrIngredientNotFound) {
				writeJSONError(w, http.StatusBadRequest, "recipe references unknown ingredient")
				return
			}
			applog.Error(ctx, "failed to resolve recipe ingredient", "error", err, "ingredientID", line.IngredientID)
			writeJSONError(w, http.StatusInternalServerError, "unable to validate recipe")
			return
		}
		lines = append(lines, models.RecipeLine{
			IngredientID:    line.IngredientID,
			QuantityPerUnit: line.Qty,
			Position:        position,
		})
	}

	product := models.Product{Name: name, Price: payload.Price, Recipe: lines}
	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		applog.Error(ctx, "failed to create product", "error", err, "name", name)
		writeJSONError(w, http.StatusBadRequest, "unable to create product")
		return
	}

	applog.Info(ctx, "product created", "id", product.ID, "name", name, "recipeLines", len(lines))
	writeJSON(w, http.StatusCreated, product)
}
