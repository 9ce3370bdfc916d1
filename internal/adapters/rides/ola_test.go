package rides

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"ride-fare-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOlaServer(t *testing.T, handler http.HandlerFunc) *OlaProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOlaProvider("partner-xyz", srv.URL, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestOlaFetchPricesMapsResponse(t *testing.T) {
	p := newOlaServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products", r.URL.Path)
		assert.Equal(t, "Bearer partner-xyz", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "12.9716", q.Get("pickup_lat"))
		assert.Equal(t, "77.5946", q.Get("pickup_lng"))
		assert.Equal(t, "13.1986", q.Get("drop_lat"))
		assert.Equal(t, "77.7066", q.Get("drop_lng"))

		_, _ = w.Write([]byte(`{"ride_estimate": [
			{"category": "mini", "amount_min": 380, "amount_max": 450, "distance": 33.1, "travel_time_in_minutes": 52},
			{"category": "prime sedan"}
		]}`))
	})

	got, err := p.FetchPrices(context.Background(), pickup, dropoff, "ignored")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Ola", got[0].Provider)
	assert.Equal(t, "Ola mini", got[0].Service)
	assert.Equal(t, 380.0, got[0].PriceMin)
	assert.Equal(t, 450.0, got[0].PriceMax)
	assert.Equal(t, "52 min", got[0].Duration)
	assert.Equal(t, "33.1 km", got[0].Distance)
	assert.Equal(t,
		"olacabs://app/launch?lat=12.9716&lng=77.5946&drop_lat=13.1986&drop_lng=77.7066&category=mini",
		got[0].Deeplink)

	assert.Equal(t, "Ola prime sedan", got[1].Service)
	assert.Zero(t, got[1].PriceMin)
	assert.Equal(t, domain.Unavailable, got[1].Duration)
	assert.Equal(t, domain.Unavailable, got[1].Distance)
	assert.Contains(t, got[1].Deeplink, "category=prime+sedan")
}

func TestOlaDoesNotRequireUserAuth(t *testing.T) {
	p := newOlaServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ride_estimate": []}`))
	})

	assert.False(t, p.RequiresUserAuth())
	got, err := p.FetchPrices(context.Background(), pickup, dropoff, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOlaFetchPricesHTTPError(t *testing.T) {
	p := newOlaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.FetchPrices(context.Background(), pickup, dropoff, "")
	var httpErr *domain.ProviderHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "Ola returned HTTP 500", httpErr.Error())
}

func TestOlaFetchPricesInvalidJSON(t *testing.T) {
	p := newOlaServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := p.FetchPrices(context.Background(), pickup, dropoff, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode Ola response")
}

func TestNewOlaProviderRequiresToken(t *testing.T) {
	_, err := NewOlaProvider("", "https://devapi.olacabs.com", time.Second, zap.NewNop())
	require.Error(t, err)
}
