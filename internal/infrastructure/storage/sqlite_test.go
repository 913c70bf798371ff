package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vitos/bitcoin_resonance/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to init sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSaveAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	snaps := []domain.MarketSnapshot{
		{Price: 67000, Volume: 3.1e10, Change: -1.0},
		{Price: 67100, Volume: 3.2e10, Change: -0.5},
		{Price: 67200, Volume: 3.3e10, Change: 0.1},
	}
	for i, snap := range snaps {
		if err := store.SaveSnapshot(ctx, snap, "coingecko", base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
	}

	records, err := store.RecentSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("RecentSnapshots failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Newest first.
	if records[0].Snapshot.Price != 67200 || records[1].Snapshot.Price != 67100 {
		t.Errorf("unexpected order: %f, %f", records[0].Snapshot.Price, records[1].Snapshot.Price)
	}
	if records[0].Source != "coingecko" {
		t.Errorf("expected source coingecko, got %q", records[0].Source)
	}
}

func TestSQLiteStoreRecentEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.RecentSnapshots(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentSnapshots failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
