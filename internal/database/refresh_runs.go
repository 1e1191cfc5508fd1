package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/stock-dashboard/internal/models"
)

// DefaultHistoryLimit is used when a non-positive limit is requested
const DefaultHistoryLimit = 20

// CreateRefreshRun inserts a refresh audit record
func (db *DB) CreateRefreshRun(r *models.RefreshRun) error {
	query := `
		INSERT INTO refresh_runs (
			source, requested_source, stock_count, fallback, error, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}

	err := db.conn.QueryRow(query,
		r.Source, r.RequestedSource, r.StockCount, r.Fallback, errText, r.StartedAt, r.FinishedAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to create refresh run: %w", err)
	}
	return nil
}

// GetRecentRefreshRuns returns the newest refresh runs first
func (db *DB) GetRecentRefreshRuns(limit int) ([]*models.RefreshRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, source, requested_source, stock_count, fallback, error, started_at, finished_at
		FROM refresh_runs
		ORDER BY finished_at DESC, id DESC
		LIMIT $1
	`
	rows, err := db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.RefreshRun{}
	for rows.Next() {
		var r models.RefreshRun
		var errText sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Source, &r.RequestedSource, &r.StockCount, &r.Fallback, &errText, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan refresh run: %w", err)
		}
		if errText.Valid {
			r.Error = errText.String
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh runs: %w", err)
	}
	return runs, nil
}
