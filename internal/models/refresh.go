package models

import "time"

// Refresh source names
const (
	SourcePolygon    = "polygon"
	SourceSimulation = "simulation"
	SourceFallback   = "fallback"
)

// EventTypeStocksRefreshed is published after every completed refresh
const EventTypeStocksRefreshed = "STOCKS_REFRESHED"

// RefreshRun is an audit record of a single refresh cycle
type RefreshRun struct {
	ID              int       `json:"id"`
	Source          string    `json:"source"`
	RequestedSource string    `json:"requestedSource"`
	StockCount      int       `json:"stockCount"`
	Fallback        bool      `json:"fallback"`
	Error           string    `json:"error,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

// Duration returns how long the refresh took
func (r *RefreshRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// StockEvent represents a Kafka event for stock collection changes
type StockEvent struct {
	EventType string     `json:"event_type"`
	Source    string     `json:"source"`
	Fallback  bool       `json:"fallback"`
	Symbols   []string   `json:"symbols"`
	Stats     StockStats `json:"stats"`
	Timestamp time.Time  `json:"timestamp"`
}
