package rides

import (
	"context"
	"ride-fare-service/internal/domain"
	"sync"
)

// MockCall records one FetchPrices invocation.
type MockCall struct {
	Pickup     domain.Coordinates
	Dropoff    domain.Coordinates
	Credential string
}

// MockProvider is a scripted PriceProvider for tests and local demos.
// It returns Estimates, or Err when set.
type MockProvider struct {
	ProviderName string
	NeedsAuth    bool
	Estimates    []domain.PriceEstimate
	Err          error

	mu    sync.Mutex
	calls []MockCall
}

func NewMockProvider(name string, needsAuth bool, estimates []domain.PriceEstimate, err error) *MockProvider {
	return &MockProvider{ProviderName: name, NeedsAuth: needsAuth, Estimates: estimates, Err: err}
}

func (m *MockProvider) Name() string { return m.ProviderName }

func (m *MockProvider) RequiresUserAuth() bool { return m.NeedsAuth }

func (m *MockProvider) FetchPrices(
	ctx context.Context,
	pickup domain.Coordinates,
	dropoff domain.Coordinates,
	credential string,
) ([]domain.PriceEstimate, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Pickup: pickup, Dropoff: dropoff, Credential: credential})
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.NeedsAuth && credential == "" {
		return nil, &domain.AuthRequiredError{Provider: m.ProviderName}
	}

	out := make([]domain.PriceEstimate, len(m.Estimates))
	copy(out, m.Estimates)
	for i := range out {
		if out[i].Provider == "" {
			out[i].Provider = m.ProviderName
		}
	}
	return out, nil
}

// Calls returns a copy of the recorded invocations.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
