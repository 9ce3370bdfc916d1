package services

import (
	"context"
	"errors"
	"ride-fare-service/internal/adapters/rides"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/ports"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	testPickup  = domain.Coordinates{Lat: 12.9716, Lon: 77.5946}
	testDropoff = domain.Coordinates{Lat: 13.1986, Lon: 77.7066}
)

type fakeGeocoder struct {
	byAddress map[string]domain.Coordinates
	errFor    map[string]error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	if err, ok := f.errFor[address]; ok {
		return domain.Coordinates{}, err
	}
	if c, ok := f.byAddress[address]; ok {
		return c, nil
	}
	return domain.Coordinates{}, &domain.GeocodeError{Address: address, Reason: "no results found"}
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		byAddress: map[string]domain.Coordinates{
			"MG Road":   testPickup,
			"Airport":   testDropoff,
			"Koramanga": {Lat: 12.93, Lon: 77.62},
		},
		errFor: map[string]error{},
	}
}

type fakeCredentials struct {
	tokens map[string]string
	err    error
}

func (f *fakeCredentials) Token(ctx context.Context, sessionID, provider string) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	tok, ok := f.tokens[sessionID+"/"+provider]
	return tok, ok, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []domain.SearchRecord
	err     error
}

func (f *fakeRecorder) RecordSearch(ctx context.Context, rec domain.SearchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func estimate(service string, min float64) domain.PriceEstimate {
	return domain.PriceEstimate{Service: service, PriceMin: min, PriceMax: min + 2, Currency: "INR"}
}

func newTestAggregator(t *testing.T, providers []ports.PriceProvider, creds ports.CredentialStore, opts ...AggregatorOption) *Aggregator {
	t.Helper()
	a, err := NewAggregator(newFakeGeocoder(), providers, creds, zap.NewNop(), opts...)
	require.NoError(t, err)
	return a
}

func serviceNames(estimates []domain.PriceEstimate) []string {
	out := make([]string, 0, len(estimates))
	for _, e := range estimates {
		out = append(out, e.Service)
	}
	return out
}

func TestAggregateSortsAcrossProviders(t *testing.T) {
	uber := rides.NewMockProvider("Uber", true, []domain.PriceEstimate{estimate("UberGo", 12), estimate("Premier", 8)}, nil)
	ola := rides.NewMockProvider("Ola", false, []domain.PriceEstimate{estimate("Mini", 10)}, nil)
	creds := &fakeCredentials{tokens: map[string]string{"sid/Uber": "user-token"}}

	a := newTestAggregator(t, []ports.PriceProvider{uber, ola}, creds)

	res, err := a.Aggregate(context.Background(), QuoteRequest{SessionID: "sid", Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Premier", "Mini", "UberGo"}, serviceNames(res.Estimates))
	assert.Equal(t, "Uber", res.Estimates[0].Provider)
	assert.Equal(t, "Ola", res.Estimates[1].Provider)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, testPickup, res.Pickup)
	assert.Equal(t, testDropoff, res.Dropoff)

	require.Len(t, uber.Calls(), 1)
	assert.Equal(t, "user-token", uber.Calls()[0].Credential)
	assert.Equal(t, testPickup, uber.Calls()[0].Pickup)
	assert.Equal(t, testDropoff, uber.Calls()[0].Dropoff)
	require.Len(t, ola.Calls(), 1)
	assert.Equal(t, "", ola.Calls()[0].Credential)
}

func TestAggregateKeepsOtherProvidersOnFailure(t *testing.T) {
	failing := rides.NewMockProvider("Ola", false, nil, &domain.ProviderHTTPError{Provider: "Ola", StatusCode: 500})
	ok := rides.NewMockProvider("Other", false, []domain.PriceEstimate{estimate("Sedan", 15), estimate("Auto", 5)}, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	a, err := NewAggregator(newFakeGeocoder(), []ports.PriceProvider{failing, ok}, nil, zap.New(core))
	require.NoError(t, err)

	res, err := a.Aggregate(context.Background(), QuoteRequest{Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Auto", "Sedan"}, serviceNames(res.Estimates))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Ola", res.Warnings[0].Provider)
	assert.Equal(t, "Ola API error: Ola returned HTTP 500", res.Warnings[0].Message())
	assert.Equal(t, 1, logs.FilterMessage("provider failed").Len())
}

func TestAggregateNoProviders(t *testing.T) {
	a := newTestAggregator(t, nil, nil)

	res, err := a.Aggregate(context.Background(), QuoteRequest{Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)
	assert.NotNil(t, res.Estimates)
	assert.Empty(t, res.Estimates)
	assert.Empty(t, res.Warnings)
}

func TestAggregateGeocodeFailureCallsNoProvider(t *testing.T) {
	p := rides.NewMockProvider("Ola", false, []domain.PriceEstimate{estimate("Mini", 10)}, nil)

	tests := []struct {
		name   string
		pickup string
		drop   string
	}{
		{name: "unknown pickup", pickup: "Atlantis", drop: "Airport"},
		{name: "unknown drop", pickup: "MG Road", drop: "Atlantis"},
		{name: "blank pickup", pickup: "", drop: "Airport"},
	}

	a := newTestAggregator(t, []ports.PriceProvider{p}, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Aggregate(context.Background(), QuoteRequest{Pickup: tt.pickup, Drop: tt.drop})
			require.Error(t, err)
			assert.Nil(t, res)

			var geoErr *domain.GeocodeError
			assert.True(t, errors.As(err, &geoErr))
		})
	}
	assert.Empty(t, p.Calls())
}

func TestAggregateSkipsUnauthorizedProvider(t *testing.T) {
	uber := rides.NewMockProvider("Uber", true, []domain.PriceEstimate{estimate("UberGo", 1)}, nil)
	ola := rides.NewMockProvider("Ola", false, []domain.PriceEstimate{estimate("Mini", 10)}, nil)
	creds := &fakeCredentials{tokens: map[string]string{}}

	a := newTestAggregator(t, []ports.PriceProvider{uber, ola}, creds)

	res, err := a.Aggregate(context.Background(), QuoteRequest{SessionID: "sid", Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Mini"}, serviceNames(res.Estimates))
	assert.Equal(t, []string{"Uber"}, res.Skipped)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, uber.Calls())
}

func TestAggregateCredentialStoreErrorIsWarning(t *testing.T) {
	uber := rides.NewMockProvider("Uber", true, []domain.PriceEstimate{estimate("UberGo", 1)}, nil)
	creds := &fakeCredentials{err: errors.New("redis down")}

	a := newTestAggregator(t, []ports.PriceProvider{uber}, creds)

	res, err := a.Aggregate(context.Background(), QuoteRequest{SessionID: "sid", Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message(), "redis down")
	assert.Empty(t, uber.Calls())
}

func TestAggregateStableOnEqualPrices(t *testing.T) {
	first := rides.NewMockProvider("A", false, []domain.PriceEstimate{estimate("a1", 10), estimate("a2", 5)}, nil)
	second := rides.NewMockProvider("B", false, []domain.PriceEstimate{estimate("b1", 10), estimate("b2", 5)}, nil)

	a := newTestAggregator(t, []ports.PriceProvider{first, second}, nil)

	// Repeat to shake out any dependence on goroutine completion order.
	for i := 0; i < 20; i++ {
		res, err := a.Aggregate(context.Background(), QuoteRequest{Pickup: "MG Road", Drop: "Airport"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a2", "b2", "a1", "b1"}, serviceNames(res.Estimates))

		for j := 1; j < len(res.Estimates); j++ {
			assert.LessOrEqual(t, res.Estimates[j-1].PriceMin, res.Estimates[j].PriceMin)
		}
	}
}

func TestAggregateRecordsSearch(t *testing.T) {
	ola := rides.NewMockProvider("Ola", false, []domain.PriceEstimate{estimate("Prime", 20), estimate("Mini", 10)}, nil)
	rec := &fakeRecorder{}

	a := newTestAggregator(t, []ports.PriceProvider{ola}, nil, WithSearchRecorder(rec))

	_, err := a.Aggregate(context.Background(), QuoteRequest{SessionID: "sid", Pickup: " MG Road", Drop: "Airport"})
	require.Error(t, err, "untrimmed address is unknown to the fake geocoder")
	assert.Empty(t, rec.records)

	_, err = a.Aggregate(context.Background(), QuoteRequest{SessionID: "sid", Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)

	require.Len(t, rec.records, 1)
	got := rec.records[0]
	assert.Equal(t, "sid", got.SessionID)
	assert.Equal(t, "MG Road", got.Pickup)
	assert.Equal(t, 2, got.EstimateCount)
	assert.Equal(t, "Mini", got.CheapestService)
	assert.Equal(t, 10.0, got.CheapestPrice)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAggregateIgnoresRecorderFailure(t *testing.T) {
	ola := rides.NewMockProvider("Ola", false, []domain.PriceEstimate{estimate("Mini", 10)}, nil)
	rec := &fakeRecorder{err: errors.New("db gone")}

	a := newTestAggregator(t, []ports.PriceProvider{ola}, nil, WithSearchRecorder(rec))

	res, err := a.Aggregate(context.Background(), QuoteRequest{Pickup: "MG Road", Drop: "Airport"})
	require.NoError(t, err)
	assert.Len(t, res.Estimates, 1)
	assert.Len(t, rec.records, 1)
}

func TestNewAggregatorRejectsDuplicateProvider(t *testing.T) {
	a := rides.NewMockProvider("Ola", false, nil, nil)
	b := rides.NewMockProvider("Ola", false, nil, nil)

	_, err := NewAggregator(newFakeGeocoder(), []ports.PriceProvider{a, b}, nil, zap.NewNop())
	require.Error(t, err)

	_, err = NewAggregator(nil, nil, nil, zap.NewNop())
	require.Error(t, err)
}

func TestAggregatorProviders(t *testing.T) {
	a := newTestAggregator(t, []ports.PriceProvider{
		rides.NewMockProvider("Uber", true, nil, nil),
		rides.NewMockProvider("Ola", false, nil, nil),
	}, nil)
	assert.Equal(t, []string{"Uber", "Ola"}, a.Providers())
}

type panickingProvider struct{ name string }

func (p panickingProvider) Name() string           { return p.name }
func (p panickingProvider) RequiresUserAuth() bool { return false }
func (p panickingProvider) FetchPrices(ctx context.Context, pickup, dropoff domain.Coordinates, credential string) ([]domain.PriceEstimate, error) {
	var m map[string]int
	m["boom"]++
	return nil, nil
}

func TestAggregateRecoversProviderPanic(t *testing.T) {
	ok := rides.NewMockProvider("Ola", false, []domain.PriceEstimate{estimate("Mini", 10)}, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	a, err := NewAggregator(newFakeGeocoder(), []ports.PriceProvider{panickingProvider{name: "Broken"}, ok}, nil, zap.New(core))
	require.NoError(t, err)

	var res *QuoteResult
	require.NotPanics(t, func() {
		res, err = a.Aggregate(context.Background(), QuoteRequest{Pickup: "MG Road", Drop: "Airport"})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Mini"}, serviceNames(res.Estimates))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Broken", res.Warnings[0].Provider)
	assert.Contains(t, res.Warnings[0].Message(), "Broken API error: provider panicked")
	assert.Equal(t, 1, logs.FilterMessage("provider failed").Len())
}
