package ports

import (
	"context"
	"encoding/json"
	"ride-fare-service/internal/domain"
)

// Contract for resolving a free-text address into coordinates.
type Geocoder interface {
	// Return the coordinates of the best match, or a *domain.GeocodeError.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Optional extension used by address autocomplete.
type AddressSuggester interface {
	// Return at most limit raw suggestions, unmodified from the upstream service.
	Suggest(ctx context.Context, query string, limit int) ([]json.RawMessage, error)
}
