// Package index builds the queryable product index store. A rebuild
// derives the full index from scratch on every run and publishes it with
// an atomic rename, so the live store is never observed half written.
package index

import (
	"context"
	"database/sql"
	"fmt"
)

// Table names of the published schema.
const (
	tableProducts  = "products"
	tableChangelog = "changelog"
	tableSummary   = "changelog_summary"
)

// createTableSQL defines the three index tables. Timestamps are REAL
// (unix seconds, fractional) to stay bit-compatible with the read side.
var createTableSQL = []string{
	`CREATE TABLE IF NOT EXISTS products (
		product_id INTEGER,
		title TEXT,
		image_logo TEXT,
		product_type TEXT,
		comp_systems TEXT,
		sale_rank INTEGER,
		search_title TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS changelog (
		product_id INTEGER,
		product_title TEXT,
		timestamp REAL,
		action TEXT,
		category TEXT,
		dl_type TEXT,
		bonus_type TEXT,
		property_name TEXT,
		serialized_record TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS changelog_summary (
		product_id INTEGER,
		product_title TEXT,
		timestamp REAL,
		categories TEXT
	)`,
}

// createIndexSQL defines the lookup indexes backing the browse table and
// the changelog timelines.
var createIndexSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_products_sale_rank ON products (sale_rank)`,
	`CREATE INDEX IF NOT EXISTS idx_changelog_timestamp ON changelog (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_summary_timestamp ON changelog_summary (timestamp)`,
}

// initSchema creates the tables and indexes if absent. Safe against an
// empty staging store; the coordinator clears any pre-existing rows
// itself.
func initSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range createTableSQL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, stmt := range createIndexSQL {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// countRows returns the row count of one of the index tables.
func countRows(ctx context.Context, db *sql.DB, table string) (int64, error) {
	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}
