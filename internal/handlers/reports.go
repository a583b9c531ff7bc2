package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	applog "gelateria/internal/log"
	"gelateria/internal/reports"
)

// MonthlyReportPDF serves the generated sales report as a PDF download,
// optionally filtered to a single month via ?month=YYYY-MM.
func MonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	if aggregator == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	month := strings.TrimSpace(r.URL.Query().Get("month"))

	data, err := aggregator.MonthlyPDF(ctx, month)
	if err != nil {
		if errors.Is(err, reports.ErrInvalidMonth) {
			writeJSONError(w, http.StatusBadRequest, "month must be formatted YYYY-MM")
			return
		}
		applog.Error(ctx, "failed to generate monthly report", "error", err, "month", month)
		writeJSONError(w, http.StatusInternalServerError, "unable to generate report")
		return
	}

	filename := "sales-report.pdf"
	if month != "" {
		filename = fmt.Sprintf("sales-report-%s.pdf", month)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		applog.Error(ctx, "failed to write report response", "error", err)
	}
}
