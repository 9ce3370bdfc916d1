package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"ride-fare-service/internal/domain"
	"ride-fare-service/internal/platform/obs"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// OAuthService drives the authorization-code flow for a provider that needs
// per-user tokens.
type OAuthService struct {
	conf   *oauth2.Config
	client *http.Client
	log    *zap.Logger
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
}

func NewOAuthService(cfg OAuthConfig, client *http.Client, log *zap.Logger) (*OAuthService, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("oauth: client id is empty")
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" {
		return nil, errors.New("oauth: auth and token urls are required")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{"request"}
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &OAuthService{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// Client credentials travel in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: client,
		log:    log,
	}, nil
}

// AuthURL returns the provider consent URL carrying state.
func (s *OAuthService) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (s *OAuthService) Exchange(ctx context.Context, code string) (_ string, err error) {
	defer obs.Time(ctx, s.log, "oauth.Exchange")(&err)

	code = strings.TrimSpace(code)
	if code == "" {
		return "", domain.ErrMissingCode
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return "", &domain.OAuthError{
				Reason: fmt.Sprintf("token endpoint returned HTTP %d", re.Response.StatusCode),
				Err:    err,
			}
		}
		return "", &domain.OAuthError{Reason: "token exchange failed", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &domain.OAuthError{Reason: "token response has no access_token"}
	}
	return tok.AccessToken, nil
}
