package server

import (
	"net/http"

	"github.com/google/uuid"

	"gelateria/internal/handlers"
	applog "gelateria/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/api/ingredients", handlers.IngredientResource)
	mux.HandleFunc("/api/ingredients/", handlers.IngredientResource)
	mux.HandleFunc("/api/products", handlers.ProductResource)
	mux.HandleFunc("/api/sales", handlers.RecordSale)
	mux.HandleFunc("/api/dashboard/summary", handlers.DashboardSummary)
	mux.HandleFunc("/api/dashboard/sales-by-day", handlers.DashboardSalesByDay)
	mux.HandleFunc("/api/reports/monthly-pdf", handlers.MonthlyReportPDF)
	mux.HandleFunc("/preferences/update", handlers.UpdatePreferences)
	mux.HandleFunc("/", handlers.Dashboard)
	return mux
}

// withRequestID tags every request with an identifier so log lines from one
// request can be correlated.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		applog.Debug(r.Context(), "request received",
			"requestID", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		next.ServeHTTP(w, r)
	})
}
