package rides

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"ride-fare-service/internal/domain"
	"strconv"
	"strings"
	"time"
)

const maxErrorBody = 512

// apiClient performs single-attempt JSON GETs against one provider API.
type apiClient struct {
	provider string
	session  *http.Client
	baseURL  string
}

func newAPIClient(provider, baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		provider: provider,
		session:  &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (c *apiClient) newRequest(
	ctx context.Context,
	path string,
	params url.Values,
	bearer string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()

	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en_US")

	return req, nil
}

// getJSON decodes a 2xx response body into out. Transport failures (including
// client timeouts) and non-2xx responses become *domain.ProviderHTTPError.
func (c *apiClient) getJSON(ctx context.Context, path string, params url.Values, bearer string, out any) error {
	req, err := c.newRequest(ctx, path, params, bearer)
	if err != nil {
		return err
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return &domain.ProviderHTTPError{Provider: c.provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.ProviderHTTPError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.provider, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
