package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/bitcoin_resonance/internal/domain"
)

// SQLiteStore persists polled market snapshots so the dashboard can
// show recent local history without re-hitting the upstream chart API.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			price REAL NOT NULL,
			volume REAL NOT NULL,
			change_pct REAL NOT NULL,
			source TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap domain.MarketSnapshot, source string, at time.Time) error {
	query := `INSERT INTO snapshots (price, volume, change_pct, source, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, snap.Price, snap.Volume, snap.Change, source, at)
	return err
}

// RecentSnapshots returns up to limit rows, newest first.
func (s *SQLiteStore) RecentSnapshots(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error) {
	query := `SELECT id, price, volume, change_pct, source, created_at FROM snapshots ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.SnapshotRecord
	for rows.Next() {
		var r domain.SnapshotRecord
		if err := rows.Scan(&r.ID, &r.Snapshot.Price, &r.Snapshot.Volume, &r.Snapshot.Change, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
