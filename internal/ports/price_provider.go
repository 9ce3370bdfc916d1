package ports

import (
	"context"
	"ride-fare-service/internal/domain"
)

// Contract implemented by every ride-hailing provider adapter.
type PriceProvider interface {
	// Display name, also used as the credential key in the session store.
	Name() string

	// Whether FetchPrices needs a per-user access token.
	RequiresUserAuth() bool

	// Return the provider's estimates for the trip, in provider order.
	// credential is the user's access token; providers with a static
	// partner token ignore it.
	FetchPrices(ctx context.Context, pickup, dropoff domain.Coordinates, credential string) ([]domain.PriceEstimate, error)
}
