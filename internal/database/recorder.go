package database

import (
	"context"

	"github.com/trogers1052/stock-dashboard/internal/models"
)

// Recorder persists every refresh: the audit record plus the resulting collection
type Recorder struct {
	db *DB
}

// NewRecorder creates a Recorder backed by db
func NewRecorder(db *DB) *Recorder {
	return &Recorder{db: db}
}

// OnRefresh records run and snapshots stocks
func (r *Recorder) OnRefresh(_ context.Context, run models.RefreshRun, stocks []models.Stock) error {
	if err := r.db.CreateRefreshRun(&run); err != nil {
		return err
	}
	return r.db.ReplaceStockQuotes(run.ID, stocks)
}
