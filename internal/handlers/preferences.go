package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	applog "gelateria/internal/log"
)

const sessionCurrencyKey = "prefs:currency"

// DefaultCurrency is the display glyph used until the operator picks one.
const DefaultCurrency = "$"

var supportedCurrencies = map[string]bool{
	"$":  true,
	"€":  true,
	"£":  true,
	"Rs": true,
	"¥":  true,
}

type preferencesResponse struct {
	Currency string `json:"currency"`
}

// UpdatePreferences stores the dashboard display currency in the session.
// This is a display preference only; recorded totals are unit-less.
func UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		applog.Debug(r.Context(), "preferences update with unsupported method", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sessionManager == nil {
		applog.Debug(r.Context(), "preferences update without session manager")
		http.Error(w, "preferences not available", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseForm(); err != nil {
		applog.Error(r.Context(), "failed to parse preferences form", "error", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	currency := strings.TrimSpace(r.FormValue("currency"))
	if !supportedCurrencies[currency] {
		applog.Debug(r.Context(), "received invalid currency selection", "value", currency)
		http.Error(w, "invalid currency selection", http.StatusBadRequest)
		return
	}

	sessionManager.Put(r.Context(), sessionCurrencyKey, currency)

	response := preferencesResponse{Currency: currency}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		applog.Error(r.Context(), "failed to encode preferences response", "error", err)
	}
}

func currentCurrency(r *http.Request) string {
	if sessionManager == nil {
		return DefaultCurrency
	}
	if value := sessionManager.GetString(r.Context(), sessionCurrencyKey); value != "" {
		return value
	}
	return DefaultCurrency
}
