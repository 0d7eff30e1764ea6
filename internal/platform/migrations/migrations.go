// Package migrations applies the embedded schema statements on startup.
// Statements are idempotent (CREATE TABLE IF NOT EXISTS) so Apply can run on
// every boot.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS directory_companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		website TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL DEFAULT 'basic',
		coverage_radius INTEGER,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		union_affiliated BOOLEAN NOT NULL DEFAULT FALSE,
		specialties TEXT NOT NULL DEFAULT '',
		images JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directory_disposal_facilities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		hours TEXT NOT NULL DEFAULT '',
		materials_accepted TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directory_state_pages (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL UNIQUE,
		header TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		logo_url TEXT NOT NULL DEFAULT '',
		images JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directory_pricing_tiers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		monthly BIGINT NOT NULL DEFAULT 0,
		annual BIGINT NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directory_homepage (
		id TEXT PRIMARY KEY,
		hero_title TEXT NOT NULL DEFAULT '',
		hero_subtitle TEXT NOT NULL DEFAULT '',
		main_image TEXT NOT NULL DEFAULT '',
		slideshow_enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directory_slideshow_images (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS directory_disposal_slides (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		image_url TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Apply executes every schema statement in order against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
