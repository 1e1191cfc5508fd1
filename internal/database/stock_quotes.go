package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

// ReplaceStockQuotes swaps the persisted collection for stocks in one transaction.
// runID links the rows to the refresh that produced them; zero leaves it unset.
func (db *DB) ReplaceStockQuotes(runID int, stocks []models.Stock) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM stock_quotes`); err != nil {
		return fmt.Errorf("failed to clear stock quotes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO stock_quotes (
			id, symbol, name, price, change, change_percent, volume, market_cap, sector,
			recommendation, high_52_week, low_52_week, pe_ratio, dividend_yield,
			target_price, last_updated, refresh_run_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var run sql.NullInt64
	if runID > 0 {
		run = sql.NullInt64{Int64: int64(runID), Valid: true}
	}

	for _, s := range stocks {
		var sector sql.NullString
		if s.Sector != "" {
			sector = sql.NullString{String: string(s.Sector), Valid: true}
		}
		_, err := stmt.Exec(
			s.ID, s.Symbol, s.Name, s.Price, s.Change, s.ChangePercent, s.Volume, s.MarketCap, sector,
			string(s.Recommendation), s.High52Week, s.Low52Week, s.PERatio, s.DividendYield,
			s.TargetPrice, s.LastUpdated, run,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stock quote for %s: %w", s.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetStockQuotes returns the persisted collection ordered by id
func (db *DB) GetStockQuotes() ([]models.Stock, error) {
	query := `
		SELECT id, symbol, name, price, change, change_percent, volume, market_cap, sector,
		       recommendation, high_52_week, low_52_week, pe_ratio, dividend_yield,
		       target_price, last_updated
		FROM stock_quotes
		ORDER BY id
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock quotes: %w", err)
	}
	defer rows.Close()

	var stocks []models.Stock
	for rows.Next() {
		var s models.Stock
		var sector sql.NullString
		var recommendation string
		var high, low, pe, dividend, target decimal.NullDecimal

		if err := rows.Scan(
			&s.ID, &s.Symbol, &s.Name, &s.Price, &s.Change, &s.ChangePercent, &s.Volume, &s.MarketCap, &sector,
			&recommendation, &high, &low, &pe, &dividend, &target, &s.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock quote: %w", err)
		}

		if sector.Valid {
			s.Sector = models.Sector(sector.String)
		}
		s.Recommendation = models.Recommendation(recommendation)
		s.High52Week, s.Low52Week, s.PERatio, s.DividendYield, s.TargetPrice = high, low, pe, dividend, target
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stock quotes: %w", err)
	}
	return stocks, nil
}
