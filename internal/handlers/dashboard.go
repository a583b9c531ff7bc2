package handlers

import (
	"net/http"

	applog "gelateria/internal/log"
	"gelateria/internal/views/pages"
)

const trailingSalesWindowDays = 30

// DashboardSummary serves the headline figures for the dashboard.
func DashboardSummary(w http.ResponseWriter, r *http.Request) {
	if aggregator == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	summary, err := aggregator.Summary(ctx)
	if err != nil {
		applog.Error(ctx, "failed to build dashboard summary", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// DashboardSalesByDay serves the trailing 30-day sales rows.
func DashboardSalesByDay(w http.ResponseWriter, r *http.Request) {
	if aggregator == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	rows, err := aggregator.SalesByDay(ctx, trailingSalesWindowDays)
	if err != nil {
		applog.Error(ctx, "failed to build sales by day", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to build sales by day")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Dashboard renders the server-side dashboard page.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	data := pages.DashboardData{Currency: currentCurrency(r)}

	if aggregator != nil {
		summary, err := aggregator.Summary(ctx)
		if err != nil {
			applog.Error(ctx, "failed to load dashboard data", "error", err)
			http.Error(w, "unable to load dashboard", http.StatusInternalServerError)
			return
		}
		rows, err := aggregator.SalesByDay(ctx, trailingSalesWindowDays)
		if err != nil {
			applog.Error(ctx, "failed to load dashboard sales window", "error", err)
			http.Error(w, "unable to load dashboard", http.StatusInternalServerError)
			return
		}
		data.Summary = summary
		data.SalesByDay = rows
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	component := pages.Dashboard(data)
	if isHTMX(r) {
		component = pages.DashboardPartial(data)
	}
	if err := component.Render(ctx, w); err != nil {
		applog.Error(ctx, "failed to render dashboard", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
