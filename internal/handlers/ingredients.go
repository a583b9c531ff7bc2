package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gelateria/internal/inventory"
	applog "gelateria/internal/log"
	"gelateria/models"
)

type ingredientCreateRequest struct {
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock float64         `json:"current_stock"`
	ReorderLevel float64         `json:"reorder_level"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

type adjustRequest struct {
	Change float64 `json:"change"`
	Reason string  `json:"reason"`
}

type adjustResponse struct {
	IngredientID uint    `json:"ingredient_id"`
	NewStock     float64 `json:"new_stock"`
}

// IngredientResource handles REST-style interactions for ingredient records
// and their stock adjustments.
func IngredientResource(w http.ResponseWriter, r *http.Request) {
	if ledger == nil {
		applog.Debug(r.Context(), "ingredient request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/ingredients")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listIngredients(w, r)
		case http.MethodPost:
			createIngredient(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	segments := strings.Split(path, "/")
	idValue, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil {
		applog.Debug(r.Context(), "invalid ingredient identifier", "identifier", segments[0], "error", err)
		http.NotFound(w, r)
		return
	}
	ingredientID := uint(idValue)

	if len(segments) > 1 {
		switch segments[1] {
		case "adjust":
			if r.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			adjustIngredient(w, r, ingredientID)
		case "log":
			if r.Method != http.MethodGet {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			showIngredientLog(w, r, ingredientID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	showIngredient(w, r, ingredientID)
}

func listIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ingredients, err := ledger.List(ctx)
	if err != nil {
		applog.Error(ctx, "failed to list ingredients", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredients")
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

func createIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload ingredientCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid ingredient payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	unit := strings.TrimSpace(payload.Unit)
	if unit == "" {
		writeJSONError(w, http.StatusBadRequest, "unit is required")
		return
	}
	if payload.CurrentStock < 0 {
		writeJSONError(w, http.StatusBadRequest, "current_stock must not be negative")
		return
	}
	if payload.ReorderLevel < 0 {
		writeJSONError(w, http.StatusBadRequest, "reorder_level must not be negative")
		return
	}
	if payload.UnitCost.IsNegative() {
		writeJSONError(w, http.StatusBadRequest, "unit_cost must not be negative")
		return
	}

	ingredient := models.Ingredient{
		Name:         name,
		Unit:         unit,
		CurrentStock: payload.CurrentStock,
		ReorderLevel: payload.ReorderLevel,
		UnitCost:     payload.UnitCost,
	}
	if err := ledger.Create(ctx, &ingredient); err != nil {
		applog.Error(ctx, "failed to create ingredient", "error", err, "name", name)
		writeJSONError(w, http.StatusBadRequest, "unable to create ingredient")
		return
	}

	applog.Info(ctx, "ingredient created", "id", ingredient.ID, "name", name)
	writeJSON(w, http.StatusCreated, ingredient)
}

func showIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	ingredient, err := ledger.Ingredient(ctx, id)
	if err != nil {
		if errors.Is(err, inventory.ErrIngredientNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

func showIngredientLog(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	if _, err := ledger.Ingredient(ctx, id); err != nil {
		if errors.Is(err, inventory.ErrIngredientNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load ingredient", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load ingredient")
		return
	}

	entries, err := ledger.Log(ctx, id)
	if err != nil {
		applog.Error(ctx, "failed to load inventory log", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to load inventory log")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func adjustIngredient(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()

	var payload adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid adjust payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	newStock, err := ledger.Adjust(ctx, id, payload.Change, payload.Reason)
	if err != nil {
		if errors.Is(err, inventory.ErrIngredientNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to adjust stock", "error", err, "id", id)
		writeJSONError(w, http.StatusInternalServerError, "unable to adjust stock")
		return
	}

	writeJSON(w, http.StatusOK, adjustResponse{IngredientID: id, NewStock: newStock})
}
