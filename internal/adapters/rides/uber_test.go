package rides

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"ride-fare-service/internal/domain"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	pickup  = domain.Coordinates{Lat: 12.9716, Lon: 77.5946}
	dropoff = domain.Coordinates{Lat: 13.1986, Lon: 77.7066}
)

func newUberServer(t *testing.T, handler http.HandlerFunc) (*UberProvider, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	p, err := NewUberProvider("client-123", srv.URL, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return p, &calls
}

func TestUberFetchPricesMapsResponse(t *testing.T) {
	p, _ := newUberServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1.2/estimates/price", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "12.9716", q.Get("start_latitude"))
		assert.Equal(t, "77.5946", q.Get("start_longitude"))
		assert.Equal(t, "13.1986", q.Get("end_latitude"))
		assert.Equal(t, "77.7066", q.Get("end_longitude"))

		_, _ = w.Write([]byte(`{"prices": [
			{"product_id": "p-go", "display_name": "Go", "low_estimate": 420, "high_estimate": 510,
			 "duration": 2700, "distance": 34.5, "currency_code": "INR"},
			{"product_id": "p-auto", "display_name": "Auto", "low_estimate": null}
		]}`))
	})

	got, err := p.FetchPrices(context.Background(), pickup, dropoff, "user-token")
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Uber", first.Provider)
	assert.Equal(t, "Uber Go", first.Service)
	assert.Equal(t, 420.0, first.PriceMin)
	assert.Equal(t, 510.0, first.PriceMax)
	assert.Equal(t, "INR", first.Currency)
	assert.Equal(t, "45 min", first.Duration)
	assert.Equal(t, "34.5 km", first.Distance)
	assert.Equal(t,
		"https://m.uber.com/ul/?action=setPickup&client_id=client-123"+
			"&pickup[latitude]=12.9716&pickup[longitude]=77.5946"+
			"&dropoff[latitude]=13.1986&dropoff[longitude]=77.7066"+
			"&product_id=p-go",
		first.Deeplink)

	second := got[1]
	assert.Equal(t, "Uber Auto", second.Service)
	assert.Zero(t, second.PriceMin)
	assert.Zero(t, second.PriceMax)
	assert.Equal(t, domain.Unavailable, second.Duration)
	assert.Equal(t, domain.Unavailable, second.Distance)
}

func TestUberFetchPricesRequiresToken(t *testing.T) {
	p, calls := newUberServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	_, err := p.FetchPrices(context.Background(), pickup, dropoff, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthRequired))
	assert.EqualValues(t, 0, *calls)
}

func TestUberFetchPricesHTTPError(t *testing.T) {
	p, _ := newUberServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	})

	_, err := p.FetchPrices(context.Background(), pickup, dropoff, "expired")
	var httpErr *domain.ProviderHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "Uber", httpErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, `{"code":"unauthorized"}`, httpErr.Body)
}

func TestUberFetchPricesTimeoutIsHTTPError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	p, err := NewUberProvider("client-123", srv.URL, 50*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	_, err = p.FetchPrices(context.Background(), pickup, dropoff, "token")
	var httpErr *domain.ProviderHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Zero(t, httpErr.StatusCode)
	assert.Error(t, httpErr.Err)
}

func TestUberFetchPricesEmptyList(t *testing.T) {
	p, _ := newUberServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	got, err := p.FetchPrices(context.Background(), pickup, dropoff, "token")
	require.NoError(t, err)
	assert.Empty(t, got)
}
