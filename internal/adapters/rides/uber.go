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

const UberName = "Uber"

type uberPrice struct {
	ProductID    string   `json:"product_id"`
	DisplayName  string   `json:"display_name"`
	LowEstimate  *float64 `json:"low_estimate"`
	HighEstimate *float64 `json:"high_estimate"`
	Duration     *float64 `json:"duration"`
	Distance     *float64 `json:"distance"`
	CurrencyCode string   `json:"currency_code"`
}

type uberPriceResponse struct {
	Prices []uberPrice `json:"prices"`
}

// UberProvider implements PriceProvider against the Uber price estimate API.
// Every call needs the user's OAuth access token.
type UberProvider struct {
	api      *apiClient
	clientID string
	log      *zap.Logger
}

func NewUberProvider(clientID, baseURL string, timeout time.Duration, log *zap.Logger) (*UberProvider, error) {
	if clientID == "" {
		return nil, errors.New("uber client id is empty")
	}
	if baseURL == "" {
		return nil, errors.New("uber api base url is empty")
	}

	return &UberProvider{
		api:      newAPIClient(UberName, baseURL, timeout),
		clientID: clientID,
		log:      log,
	}, nil
}

func (u *UberProvider) Name() string { return UberName }

func (u *UberProvider) RequiresUserAuth() bool { return true }

func (u *UberProvider) FetchPrices(
	ctx context.Context,
	pickup domain.Coordinates,
	dropoff domain.Coordinates,
	credential string,
) (_ []domain.PriceEstimate, err error) {
	defer obs.Time(ctx, u.log, "uber.FetchPrices")(&err)

	if credential == "" {
		return nil, &domain.AuthRequiredError{Provider: UberName}
	}

	params := url.Values{}
	params.Set("start_latitude", formatFloat(pickup.Lat))
	params.Set("start_longitude", formatFloat(pickup.Lon))
	params.Set("end_latitude", formatFloat(dropoff.Lat))
	params.Set("end_longitude", formatFloat(dropoff.Lon))

	var decoded uberPriceResponse
	if err := u.api.getJSON(ctx, "/v1.2/estimates/price", params, credential, &decoded); err != nil {
		return nil, err
	}

	out := make([]domain.PriceEstimate, 0, len(decoded.Prices))
	for _, p := range decoded.Prices {
		duration := domain.Unavailable
		if p.Duration != nil {
			duration = fmt.Sprintf("%d min", int(math.Round(*p.Duration/60)))
		}
		distance := domain.Unavailable
		if p.Distance != nil {
			distance = formatFloat(*p.Distance) + " km"
		}

		out = append(out, domain.PriceEstimate{
			Provider: UberName,
			Service:  "Uber " + p.DisplayName,
			PriceMin: valueOrZero(p.LowEstimate),
			PriceMax: valueOrZero(p.HighEstimate),
			Currency: p.CurrencyCode,
			Duration: duration,
			Distance: distance,
			Deeplink: u.deeplink(pickup, dropoff, p.ProductID),
		})
	}

	return out, nil
}

// deeplink opens the Uber app (or m.uber.com) with the trip pre-filled.
func (u *UberProvider) deeplink(pickup, dropoff domain.Coordinates, productID string) string {
	return fmt.Sprintf(
		"https://m.uber.com/ul/?action=setPickup&client_id=%s"+
			"&pickup[latitude]=%s&pickup[longitude]=%s"+
			"&dropoff[latitude]=%s&dropoff[longitude]=%s"+
			"&product_id=%s",
		url.QueryEscape(u.clientID),
		formatFloat(pickup.Lat), formatFloat(pickup.Lon),
		formatFloat(dropoff.Lat), formatFloat(dropoff.Lon),
		url.QueryEscape(productID),
	)
}
