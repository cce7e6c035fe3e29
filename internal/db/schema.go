package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

const dropSQL = `DROP TABLE IF EXISTS feed_tags, feeds, bubble_tags, bubbles, users`

// EnsureSchema creates any missing table or index. Existing data is kept.
func (db *DB) EnsureSchema(ctx context.Context) error {
	// No arguments, so pgx sends this over the simple protocol and the
	// multi-statement script runs as one batch.
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ResetSchema drops every table and recreates the schema empty.
func (db *DB) ResetSchema(ctx context.Context) error {
	db.logger.Warn("dropping and recreating schema")
	if _, err := db.pool.Exec(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return db.EnsureSchema(ctx)
}
