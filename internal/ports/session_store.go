package ports

import "context"

// Read-only view of per-session provider tokens, as consumed by the aggregator.
type CredentialStore interface {
	// Return the access token stored for provider, and whether one exists.
	Token(ctx context.Context, sessionID, provider string) (string, bool, error)
}

// Per-session key-value state: provider tokens, OAuth state and flash messages.
type SessionStore interface {
	CredentialStore

	SetToken(ctx context.Context, sessionID, provider, token string) error
	DeleteToken(ctx context.Context, sessionID, provider string) error

	// Store the OAuth state issued by /login.
	SetState(ctx context.Context, sessionID, state string) error
	// Return and delete the stored OAuth state.
	TakeState(ctx context.Context, sessionID string) (string, bool, error)

	AddFlash(ctx context.Context, sessionID, message string) error
	// Return queued flash messages in insertion order and clear the queue.
	Flashes(ctx context.Context, sessionID string) ([]string, error)
}
