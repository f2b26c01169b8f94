package infra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"valutatrade/internal/domain"
)

// RateProvider is a pluggable source of exchange rates. FetchRates returns
// directed pairs keyed "FROM_TO" with the rate as amount of TO per unit FROM.
type RateProvider interface {
	Name() string
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// apiClient is the HTTP plumbing shared by provider clients: a fixed per-call
// timeout and a client-side request limiter so a provider's own quota is not
// tripped by back-to-back commands.
type apiClient struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newAPIClient(name string, timeout time.Duration) apiClient {
	return apiClient{
		name: name,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// getJSON performs one GET and decodes the body into v. Failures are mapped
// onto the provider error taxonomy; there is no retry inside an update cycle.
func (c *apiClient) getJSON(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NewNetworkError("throttle", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.NetworkError{Op: "request", URL: url, Err: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewNetworkError("fetch", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.AuthKeyError{Source: c.name}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &domain.RateLimitError{Source: c.name, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return domain.NewNetworkError("fetch", url, &httpStatusError{status: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewNetworkError("read", url, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &domain.NetworkError{Op: "decode", URL: url, Err: err}
	}
	return nil
}

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return "unexpected status code: " + http.StatusText(e.status)
}
