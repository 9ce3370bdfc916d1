package handlers

import (
	"context"
	"ride-fare-service/internal/ports"
	"ride-fare-service/internal/services"

	"go.uber.org/zap"
)

// SessionIDKey is the gin context key holding the caller's session id.
const SessionIDKey = "session_id"

// SessionRotateKey holds a func() string that issues a fresh session id
// cookie for the current response and returns the new id.
const SessionRotateKey = "session_rotate"

// Quoter is the fare comparison use case.
type Quoter interface {
	Aggregate(ctx context.Context, req services.QuoteRequest) (*services.QuoteResult, error)
	Providers() []string
}

// Authorizer runs the OAuth authorization-code flow for one provider.
type Authorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// Deps lists handler collaborators. Auth, Suggester and Rides are optional.
type Deps struct {
	Log       *zap.Logger
	Sessions  ports.SessionStore
	Quoter    Quoter
	Suggester ports.AddressSuggester
	Rides     ports.RideRepository

	Auth Authorizer
	// Provider whose token Auth obtains, e.g. "Uber".
	AuthProvider string
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	log          *zap.Logger
	sessions     ports.SessionStore
	quoter       Quoter
	suggester    ports.AddressSuggester
	rides        ports.RideRepository
	auth         Authorizer
	authProvider string
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		log:          log,
		sessions:     d.Sessions,
		quoter:       d.Quoter,
		suggester:    d.Suggester,
		rides:        d.Rides,
		auth:         d.Auth,
		authProvider: d.AuthProvider,
	}
}

// AuthEnabled reports whether an OAuth provider is configured.
func (h *Handler) AuthEnabled() bool { return h.auth != nil }
