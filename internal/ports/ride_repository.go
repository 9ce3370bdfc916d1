package ports

import (
	"context"
	"ride-fare-service/internal/domain"
)

// Sink for completed fare comparisons.
type SearchRecorder interface {
	RecordSearch(ctx context.Context, rec domain.SearchRecord) error
}

// Port: persistent storage for sample rides and search history.
type RideRepository interface {
	SearchRecorder

	// Retrieve all sample rides ordered by label.
	ListSampleRides(ctx context.Context) ([]domain.SampleRide, error)

	// Retrieve the most recent searches of one session, newest first.
	ListRecentSearches(ctx context.Context, sessionID string, limit int) ([]domain.SearchRecord, error)
}
