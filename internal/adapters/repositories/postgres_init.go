package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema for sample rides and search history.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSampleRidesQuery := `
	CREATE TABLE IF NOT EXISTS sample_rides (
		id SERIAL PRIMARY KEY,
		label TEXT NOT NULL UNIQUE,
		pickup TEXT NOT NULL,
		drop_address TEXT NOT NULL
	);
	`

	createSearchesQuery := `
	CREATE TABLE IF NOT EXISTS searches (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		pickup TEXT NOT NULL,
		drop_address TEXT NOT NULL,
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lon DOUBLE PRECISION NOT NULL,
		drop_lat DOUBLE PRECISION NOT NULL,
		drop_lon DOUBLE PRECISION NOT NULL,
		estimate_count INTEGER NOT NULL,
		cheapest_service TEXT NOT NULL DEFAULT '',
		cheapest_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_searches_session_created_at
	ON searches(session_id, created_at DESC);
	`

	statements := []string{
		createSampleRidesQuery,
		createSearchesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type SampleRideSeed struct {
	Label  string `json:"label"`
	Pickup string `json:"pickup"`
	Drop   string `json:"drop"`
}

// ParseSampleRides validates seed data; every field must be non-blank and
// labels must be unique.
func ParseSampleRides(data []byte) ([]SampleRideSeed, error) {
	var items []SampleRideSeed
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	rows := make([]SampleRideSeed, 0, len(items))
	for i, item := range items {
		label := strings.TrimSpace(item.Label)
		pickup := strings.TrimSpace(item.Pickup)
		drop := strings.TrimSpace(item.Drop)

		if label == "" || pickup == "" || drop == "" {
			return nil, fmt.Errorf("item at index %d: label, pickup and drop are required", i+1)
		}
		if _, ok := seen[label]; ok {
			return nil, fmt.Errorf("item at index %d: duplicate label %q", i+1, label)
		}
		seen[label] = struct{}{}

		rows = append(rows, SampleRideSeed{Label: label, Pickup: pickup, Drop: drop})
	}

	return rows, nil
}

// Populate sample_rides from a JSON file, upserting by label.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed sample rides: read %q: %w", jsonPath, err)
	}

	rows, err := ParseSampleRides(bytes)
	if err != nil {
		return fmt.Errorf("seed sample rides: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed sample rides: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO sample_rides (label, pickup, drop_address)
	VALUES ($1, $2, $3)
	ON CONFLICT (label) DO UPDATE
	SET pickup = EXCLUDED.pickup,
		drop_address = EXCLUDED.drop_address;
	`)
	if err != nil {
		return fmt.Errorf("seed sample rides: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Label, r.Pickup, r.Drop); err != nil {
			return fmt.Errorf("seed sample rides: insert label=%q: %w", r.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed sample rides: commit tx: %w", err)
	}

	return nil
}
