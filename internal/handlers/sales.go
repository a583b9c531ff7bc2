package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	applog "gelateria/internal/log"
	"gelateria/internal/sales"
)

type saleRequest struct {
	ProductID uint        `json:"product_id"`
	Qty       json.Number `json:"qty"`
}

type saleResponse struct {
	Success    bool            `json:"success"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type saleErrorResponse struct {
	Error      string `json:"error"`
	Ingredient string `json:"ingredient,omitempty"`
}

// RecordSale handles POST /api/sales: it validates the quantity at the
// boundary, runs the sale workflow, and maps domain failures onto the wire.
func RecordSale(w http.ResponseWriter, r *http.Request) {
	if processor == nil {
		applog.Debug(r.Context(), "sale request without database")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var payload saleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		applog.Debug(ctx, "invalid sale payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	// qty arrives as a loosely-typed JSON number; only positive integers
	// reach the processor.
	qty, err := payload.Qty.Int64()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, saleErrorResponse{Error: "qty must be a positive integer"})
		return
	}

	receipt, err := processor.RecordSale(ctx, payload.ProductID, int(qty))
	if err != nil {
		var insufficient *sales.InsufficientStockError
		var missing *sales.IngredientMissingError
		switch {
		case errors.Is(err, sales.ErrProductNotFound):
			writeJSON(w, http.StatusNotFound, saleErrorResponse{Error: "product not found"})
		case errors.Is(err, sales.ErrInvalidQuantity):
			writeJSON(w, http.StatusBadRequest, saleErrorResponse{Error: "qty must be a positive integer"})
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusBadRequest, saleErrorResponse{
				Error:      "insufficient stock",
				Ingredient: insufficient.Ingredient,
			})
		case errors.As(err, &missing):
			writeJSON(w, http.StatusBadRequest, saleErrorResponse{
				Error:      "recipe references missing ingredient",
				Ingredient: fmt.Sprintf("%d", missing.IngredientID),
			})
		default:
			applog.Error(ctx, "sale failed", "error", err, "productID", payload.ProductID)
			writeJSONError(w, http.StatusInternalServerError, "unable to record sale")
		}
		return
	}

	writeJSON(w, http.StatusOK, saleResponse{Success: true, TotalPrice: receipt.TotalPrice})
}
