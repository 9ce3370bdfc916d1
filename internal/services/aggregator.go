package services

import (
	"context"
	"errors"
	"fmt"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"
	"ride-fare-service/internal/ports"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type QuoteRequest struct {
	SessionID string
	Pickup    string
	Drop      string
}

// ProviderWarning is a non-fatal provider failure.
type ProviderWarning struct {
	Provider string
	Err      error
}

// Message is the user-facing text, e.g. "Ola API error: Ola returned HTTP 500".
func (w ProviderWarning) Message() string {
	return fmt.Sprintf("%s API error: %v", w.Provider, w.Err)
}

type QuoteResult struct {
	Pickup    domain.Coordinates
	Dropoff   domain.Coordinates
	Estimates []domain.PriceEstimate
	Warnings  []ProviderWarning
	// Providers not called because the user has not authorized them.
	Skipped []string
}

// providerResult is one provider's outcome, kept in registration order.
type providerResult struct {
	estimates []domain.PriceEstimate
	warning   *ProviderWarning
	skipped   bool
}

// Aggregator resolves both addresses, queries every registered provider and
// merges the results into one list sorted by minimum price.
type Aggregator struct {
	geocoder    ports.Geocoder
	providers   []ports.PriceProvider
	credentials ports.CredentialStore
	recorder    ports.SearchRecorder
	log         *zap.Logger
	now         func() time.Time
}

type AggregatorOption func(*Aggregator)

// WithSearchRecorder records every successful aggregation.
func WithSearchRecorder(r ports.SearchRecorder) AggregatorOption {
	return func(a *Aggregator) { a.recorder = r }
}

// NewAggregator wires the aggregator. credentials may be nil, in which case
// providers that need a user token are always skipped.
func NewAggregator(
	geocoder ports.Geocoder,
	providers []ports.PriceProvider,
	credentials ports.CredentialStore,
	log *zap.Logger,
	opts ...AggregatorOption,
) (*Aggregator, error) {
	if geocoder == nil {
		return nil, errors.New("aggregator: geocoder is nil")
	}

	seen := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		if p == nil {
			return nil, errors.New("aggregator: provider is nil")
		}
		if _, ok := seen[p.Name()]; ok {
			return nil, fmt.Errorf("aggregator: provider %q registered twice", p.Name())
		}
		seen[p.Name()] = struct{}{}
	}

	if log == nil {
		log = zap.NewNop()
	}

	a := &Aggregator{
		geocoder:    geocoder,
		providers:   providers,
		credentials: credentials,
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Providers returns the registered provider names in registration order.
func (a *Aggregator) Providers() []string {
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

// Aggregate geocodes pickup then drop, aborting on the first geocoding failure
// before any provider is called. Provider failures become warnings; the
// returned estimates are sorted ascending by PriceMin with ties kept in
// provider registration order.
func (a *Aggregator) Aggregate(ctx context.Context, req QuoteRequest) (_ *QuoteResult, err error) {
	defer obs.Time(ctx, a.log, "aggregator.Aggregate")(&err)

	pickup, err := a.geocoder.Geocode(ctx, req.Pickup)
	if err != nil {
		return nil, fmt.Errorf("geocode pickup: %w", err)
	}

	dropoff, err := a.geocoder.Geocode(ctx, req.Drop)
	if err != nil {
		return nil, fmt.Errorf("geocode drop: %w", err)
	}

	// Each goroutine writes only its own slot.
	results := make([]providerResult, len(a.providers))
	var wg sync.WaitGroup

	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p ports.PriceProvider) {
			defer wg.Done()
			// A panicking adapter only loses its own results.
			defer func() {
				if r := recover(); r != nil {
					results[i] = a.warn(ctx, p.Name(), fmt.Errorf("provider panicked: %v", r))
				}
			}()
			results[i] = a.fetch(ctx, p, req.SessionID, pickup, dropoff)
		}(i, p)
	}
	wg.Wait()

	res := &QuoteResult{
		Pickup:    pickup,
		Dropoff:   dropoff,
		Estimates: []domain.PriceEstimate{},
		Warnings:  []ProviderWarning{},
		Skipped:   []string{},
	}
	for i, r := range results {
		switch {
		case r.skipped:
			res.Skipped = append(res.Skipped, a.providers[i].Name())
		case r.warning != nil:
			res.Warnings = append(res.Warnings, *r.warning)
		default:
			res.Estimates = append(res.Estimates, r.estimates...)
		}
	}

	domain.SortByMinPrice(res.Estimates)

	a.record(ctx, req, res)

	return res, nil
}

func (a *Aggregator) fetch(
	ctx context.Context,
	p ports.PriceProvider,
	sessionID string,
	pickup domain.Coordinates,
	dropoff domain.Coordinates,
) providerResult {
	name := p.Name()

	var credential string
	if p.RequiresUserAuth() {
		token, ok, err := a.lookupToken(ctx, sessionID, name)
		if err != nil {
			return a.warn(ctx, name, fmt.Errorf("load credential: %w", err))
		}
		if !ok {
			return providerResult{skipped: true}
		}
		credential = token
	}

	estimates, err := p.FetchPrices(ctx, pickup, dropoff, credential)
	if err != nil {
		return a.warn(ctx, name, err)
	}
	return providerResult{estimates: estimates}
}

func (a *Aggregator) lookupToken(ctx context.Context, sessionID, provider string) (string, bool, error) {
	if a.credentials == nil || sessionID == "" {
		return "", false, nil
	}
	token, ok, err := a.credentials.Token(ctx, sessionID, provider)
	if err != nil {
		return "", false, err
	}
	return token, ok && token != "", nil
}

func (a *Aggregator) warn(ctx context.Context, provider string, err error) providerResult {
	a.log.Warn("provider failed",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.String("provider", provider),
		zap.Error(err),
	)
	return providerResult{warning: &ProviderWarning{Provider: provider, Err: err}}
}

func (a *Aggregator) record(ctx context.Context, req QuoteRequest, res *QuoteResult) {
	if a.recorder == nil {
		return
	}

	rec := domain.SearchRecord{
		SessionID:     req.SessionID,
		Pickup:        strings.TrimSpace(req.Pickup),
		Dropoff:       strings.TrimSpace(req.Drop),
		PickupCoords:  res.Pickup,
		DropoffCoords: res.Dropoff,
		EstimateCount: len(res.Estimates),
		CreatedAt:     a.now(),
	}
	if len(res.Estimates) > 0 {
		rec.CheapestService = res.Estimates[0].Service
		rec.CheapestPrice = res.Estimates[0].PriceMin
	}

	if err := a.recorder.RecordSearch(ctx, rec); err != nil {
		a.log.Warn("record search failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.Error(err),
		)
	}
}
