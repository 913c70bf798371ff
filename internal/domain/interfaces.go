package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SnapshotProvider fetches the current BTC market snapshot from one
// upstream. Providers are interchangeable strategy variants behind this
// interface; production wires exactly one.
type SnapshotProvider interface {
	Name() string
	FetchSnapshot(ctx context.Context) (MarketSnapshot, error)
}

// TradeProvider fetches the most recent trades for the configured pair,
// newest first, in provider order.
type TradeProvider interface {
	FetchRecentTrades(ctx context.Context) ([]TradeRecord, error)
}

// AltcoinProvider fetches the coin market listing.
type AltcoinProvider interface {
	FetchAltcoins(ctx context.Context) ([]AltcoinMarket, error)
}

// HistoryProvider fetches the historical market chart as raw JSON,
// passed through to clients unchanged.
type HistoryProvider interface {
	FetchHistory(ctx context.Context) (json.RawMessage, error)
}

// SentimentProvider fetches the fear & greed index.
type SentimentProvider interface {
	FetchFearGreed(ctx context.Context) (FearGreed, error)
}

// SnapshotRecord is one persisted snapshot-history row.
type SnapshotRecord struct {
	ID        int64          `json:"id"`
	Snapshot  MarketSnapshot `json:"snapshot"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}

// SnapshotRepository stores polled snapshots and reads them back
// newest-first.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snap MarketSnapshot, source string, at time.Time) error
	RecentSnapshots(ctx context.Context, limit int) ([]*SnapshotRecord, error)
}
