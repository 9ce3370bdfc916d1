package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"
	"time"

	"go.uber.org/zap"
)

const maxRecentSearches = 100

// Postgres-backed implementation of the RideRepository port.
type PostgresRideRepository struct {
	DB  *sql.DB
	log *zap.Logger
}

func NewPostgresRideRepository(db *sql.DB, log *zap.Logger) *PostgresRideRepository {
	return &PostgresRideRepository{DB: db, log: log}
}

// Return all sample rides ordered by label.
func (p *PostgresRideRepository) ListSampleRides(ctx context.Context) (_ []domain.SampleRide, err error) {
	defer obs.Time(ctx, p.log, "rides.ListSampleRides")(&err)

	if p.DB == nil {
		return nil, errors.New("ride repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `
	SELECT id, label, pickup, drop_address
	FROM sample_rides
	ORDER BY label;
	`)
	if err != nil {
		return nil, fmt.Errorf("list sample rides: query sample_rides table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SampleRide, 0, 16)
	for rows.Next() {
		var r domain.SampleRide
		if err := rows.Scan(&r.ID, &r.Label, &r.Pickup, &r.Dropoff); err != nil {
			return nil, fmt.Errorf("list sample rides: scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sample rides: row iteration: %w", err)
	}

	return out, nil
}

// Store one completed search.
func (p *PostgresRideRepository) RecordSearch(ctx context.Context, rec domain.SearchRecord) (err error) {
	defer obs.Time(ctx, p.log, "rides.RecordSearch")(&err)

	if p.DB == nil {
		return errors.New("ride repository: DB is nil")
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = p.DB.ExecContext(ctx, `
	INSERT INTO searches (
		session_id, pickup, drop_address,
		pickup_lat, pickup_lon, drop_lat, drop_lon,
		estimate_count, cheapest_service, cheapest_price, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`,
		rec.SessionID, rec.Pickup, rec.Dropoff,
		rec.PickupCoords.Lat, rec.PickupCoords.Lon,
		rec.DropoffCoords.Lat, rec.DropoffCoords.Lon,
		rec.EstimateCount, rec.CheapestService, rec.CheapestPrice, createdAt,
	)
	if err != nil {
		return fmt.Errorf("record search: insert searches row: %w", err)
	}

	return nil
}

// Return up to limit recent searches made by sessionID, newest first.
func (p *PostgresRideRepository) ListRecentSearches(ctx context.Context, sessionID string, limit int) (_ []domain.SearchRecord, err error) {
	defer obs.Time(ctx, p.log, "rides.ListRecentSearches")(&err)

	if p.DB == nil {
		return nil, errors.New("ride repository: DB is nil")
	}
	if limit <= 0 || sessionID == "" {
		return []domain.SearchRecord{}, nil
	}
	if limit > maxRecentSearches {
		limit = maxRecentSearches
	}

	rows, err := p.DB.QueryContext(ctx, `
	SELECT session_id, pickup, drop_address,
		pickup_lat, pickup_lon, drop_lat, drop_lon,
		estimate_count, cheapest_service, cheapest_price, created_at
	FROM searches
	WHERE session_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2;
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent searches: query searches table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SearchRecord, 0, limit)
	for rows.Next() {
		var r domain.SearchRecord
		err := rows.Scan(
			&r.SessionID, &r.Pickup, &r.Dropoff,
			&r.PickupCoords.Lat, &r.PickupCoords.Lon,
			&r.DropoffCoords.Lat, &r.DropoffCoords.Lon,
			&r.EstimateCount, &r.CheapestService, &r.CheapestPrice, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list recent searches: scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent searches: row iteration: %w", err)
	}

	return out, nil
}
