package handlers

import (
	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"gelateria/internal/inventory"
	"gelateria/internal/reports"
	"gelateria/internal/sales"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
	ledger         *inventory.Ledger
	processor      *sales.Processor
	aggregator     *reports.Aggregator
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db

	if db == nil {
		ledger = nil
		processor = nil
		aggregator = nil
		return
	}

	ledger = inventory.NewLedger(db)
	processor = sales.NewProcessor(db, ledger)
	aggregator = reports.NewAggregator(db, ledger)
}
