package rides

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"
	"time"

	"go.uber.org/zap"
)

const OlaName = "Ola"

type olaEstimate struct {
	Category            string   `json:"category"`
	AmountMin           *float64 `json:"amount_min"`
	AmountMax           *float64 `json:"amount_max"`
	Distance            *float64 `json:"distance"`
	TravelTimeInMinutes *float64 `json:"travel_time_in_minutes"`
	Currency            string   `json:"currency"`
}

type olaProductsResponse struct {
	RideEstimate []olaEstimate `json:"ride_estimate"`
}

// OlaProvider implements PriceProvider against the Ola products API using a
// static partner token; no per-user authorization is involved.
type OlaProvider struct {
	api          *apiClient
	partnerToken string
	log          *zap.Logger
}

func NewOlaProvider(partnerToken, baseURL string, timeout time.Duration, log *zap.Logger) (*OlaProvider, error) {
	if partnerToken == "" {
		return nil, errors.New("ola partner token is empty")
	}
	if baseURL == "" {
		return nil, errors.New("ola api base url is empty")
	}

	return &OlaProvider{
		api:          newAPIClient(OlaName, baseURL, timeout),
		partnerToken: partnerToken,
		log:          log,
	}, nil
}

func (o *OlaProvider) Name() string { return OlaName }

func (o *OlaProvider) RequiresUserAuth() bool { return false }

// FetchPrices ignores credential; the partner token authenticates every call.
func (o *OlaProvider) FetchPrices(
	ctx context.Context,
	pickup domain.Coordinates,
	dropoff domain.Coordinates,
	_ string,
) (_ []domain.PriceEstimate, err error) {
	defer obs.Time(ctx, o.log, "ola.FetchPrices")(&err)

	params := url.Values{}
	params.Set("pickup_lat", formatFloat(pickup.Lat))
	params.Set("pickup_lng", formatFloat(pickup.Lon))
	params.Set("drop_lat", formatFloat(dropoff.Lat))
	params.Set("drop_lng", formatFloat(dropoff.Lon))

	var decoded olaProductsResponse
	if err := o.api.getJSON(ctx, "/v1/products", params, o.partnerToken, &decoded); err != nil {
		return nil, err
	}

	out := make([]domain.PriceEstimate, 0, len(decoded.RideEstimate))
	for _, r := range decoded.RideEstimate {
		duration := domain.Unavailable
		if r.TravelTimeInMinutes != nil {
			duration = fmt.Sprintf("%d min", int(math.Round(*r.TravelTimeInMinutes)))
		}
		distance := domain.Unavailable
		if r.Distance != nil {
			distance = formatFloat(*r.Distance) + " km"
		}

		out = append(out, domain.PriceEstimate{
			Provider: OlaName,
			Service:  "Ola " + r.Category,
			PriceMin: valueOrZero(r.AmountMin),
			PriceMax: valueOrZero(r.AmountMax),
			Currency: r.Currency,
			Duration: duration,
			Distance: distance,
			Deeplink: deeplinkOla(pickup, dropoff, r.Category),
		})
	}

	return out, nil
}

func deeplinkOla(pickup, dropoff domain.Coordinates, category string) string {
	return fmt.Sprintf(
		"olacabs://app/launch?lat=%s&lng=%s&drop_lat=%s&drop_lng=%s&category=%s",
		formatFloat(pickup.Lat), formatFloat(pickup.Lon),
		formatFloat(dropoff.Lat), formatFloat(dropoff.Lon),
		url.QueryEscape(category),
	)
}
