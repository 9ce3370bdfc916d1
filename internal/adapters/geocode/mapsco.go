package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// place is the subset of a maps.co (Nominatim-compatible) search result we read.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// MapsCoGeocoder implements Geocoder and AddressSuggester using geocode.maps.co.
//
// Every call is a single attempt: no retries and no caching, so geocoding the
// same address twice queries the service twice.
//
// The geocoder is safe for concurrent use.
type MapsCoGeocoder struct {
	session *http.Client
	apiKey  string
	baseURL string
	log     *zap.Logger
}

func NewMapsCoGeocoder(apiKey, baseURL string, timeout time.Duration, log *zap.Logger) (*MapsCoGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("maps.co api key is empty")
	}
	if baseURL == "" {
		return nil, errors.New("maps.co base url is empty")
	}

	return &MapsCoGeocoder{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}, nil
}

// normalize collapses whitespace so equivalent inputs produce the same query.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves address to the coordinates of the first search result.
func (g *MapsCoGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, g.log, "mapsco.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, &domain.GeocodeError{Address: address, Reason: "address must be non-empty"}
	}

	var places []place
	if err := g.search(ctx, norm, &places); err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Address: norm, Reason: "geocoding request failed", Err: err}
	}

	if len(places) == 0 {
		return domain.Coordinates{}, &domain.GeocodeError{Address: norm, Reason: fmt.Sprintf("no results found for %q", norm)}
	}

	first := places[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(first.Lat), 64)
	if err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Address: norm, Reason: "invalid latitude in response", Err: err}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(first.Lon), 64)
	if err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Address: norm, Reason: "invalid longitude in response", Err: err}
	}

	coords, err := domain.NewCoordinates(lat, lon)
	if err != nil {
		return domain.Coordinates{}, &domain.GeocodeError{Address: norm, Reason: "invalid coordinate in response", Err: err}
	}

	return coords, nil
}

// Suggest returns up to limit raw search results for address autocomplete.
func (g *MapsCoGeocoder) Suggest(ctx context.Context, query string, limit int) (_ []json.RawMessage, err error) {
	defer obs.Time(ctx, g.log, "mapsco.Suggest")(&err)

	norm := normalize(query)
	if norm == "" || limit <= 0 {
		return []json.RawMessage{}, nil
	}

	var results []json.RawMessage
	if err := g.search(ctx, norm, &results); err != nil {
		return nil, fmt.Errorf("suggest %q: %w", norm, err)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
