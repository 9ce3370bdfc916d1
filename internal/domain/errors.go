package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired  = errors.New("authorization required")
	ErrMissingCode   = errors.New("authorization code missing")
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// GeocodeError reports that an address could not be resolved to coordinates.
type GeocodeError struct {
	Address string
	Reason  string
	Err     error
}

func (e *GeocodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *GeocodeError) Unwrap() error { return e.Err }

// ProviderHTTPError reports a failed call to a ride provider.
// StatusCode is 0 when no response was received (transport error or timeout).
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderHTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *ProviderHTTPError) Unwrap() error { return e.Err }

// AuthRequiredError is returned by a provider that needs a per-user token
// when none was supplied.
type AuthRequiredError struct {
	Provider string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("no %s token found, login required", e.Provider)
}

func (e *AuthRequiredError) Is(target error) bool { return target == ErrAuthRequired }

// OAuthError reports a failed authorization-code exchange.
type OAuthError struct {
	Reason string
	Err    error
}

func (e *OAuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth: %s: %v", e.Reason, e.Err)
	}
	return "oauth: " + e.Reason
}

func (e *OAuthError) Unwrap() error { return e.Err }
