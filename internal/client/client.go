package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rlanders/weatherview/internal/models"
	"github.com/rlanders/weatherview/internal/observability"
)

// WeatherClient fetches weather data from the upstream provider.
type WeatherClient interface {
	GetForecast(ctx context.Context, location string) (models.WeatherEnvelope, error)
	SearchLocations(ctx context.Context, query string) ([]models.SearchMatch, error)
}

var (
	ErrInvalidAPIKey    = errors.New("invalid API key")
	ErrLocationNotFound = errors.New("location not found")
	ErrUpstreamFailure  = errors.New("upstream failure")
	ErrRateLimited      = errors.New("rate limited")
)

// WeatherAPIClient talks to WeatherAPI.com. Every call is a single
// best-effort attempt: no retries, no circuit breaking. A failed call
// returns a zero envelope and an error; callers never see partial data.
type WeatherAPIClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

func NewWeatherAPIClient(apiKey, baseURL string, timeout time.Duration) (*WeatherAPIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WeatherAPIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// apiError is the provider's error envelope, e.g.
// {"error":{"code":1006,"message":"No matching location found."}}.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Provider error codes that mean the query resolved to no known location.
const (
	codeNoLocation   = 1006
	codeQueryMissing = 1003
)

// GetForecast requests current conditions, one forecast day (for the
// astronomy block), and alerts for the given location.
func (c *WeatherAPIClient) GetForecast(ctx context.Context, location string) (models.WeatherEnvelope, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("days", "1")
	params.Set("alerts", "yes")
	params.Set("aqi", "yes")

	var envelope models.WeatherEnvelope
	if err := c.getJSON(ctx, "/forecast.json", params, &envelope); err != nil {
		return models.WeatherEnvelope{}, err
	}
	return envelope, nil
}

// SearchLocations returns locations matching the query, for form suggestions.
func (c *WeatherAPIClient) SearchLocations(ctx context.Context, query string) ([]models.SearchMatch, error) {
	params := url.Values{}
	params.Set("q", query)

	var matches []models.SearchMatch
	if err := c.getJSON(ctx, "/search.json", params, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *WeatherAPIClient) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, path, params)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build request: %w", err)
	}

	corrID := extractCorrelationID(ctx)
	if corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if err := c.handleErrorResponse(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *WeatherAPIClient) buildRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	baseURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params.Set("key", c.apiKey)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

// handleErrorResponse maps non-2xx responses to sentinel errors. WeatherAPI
// reports unknown locations as 400 with error code 1006, so the body is
// consulted for 400s before falling back to the status code alone.
func (c *WeatherAPIClient) handleErrorResponse(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var ae apiError
	_ = json.Unmarshal(body, &ae)

	switch statusCode {
	case http.StatusBadRequest:
		if ae.Error.Code == codeNoLocation || ae.Error.Code == codeQueryMissing {
			return fmt.Errorf("%w: %s", ErrLocationNotFound, ae.Error.Message)
		}
		return fmt.Errorf("%w: HTTP 400: %s", ErrUpstreamFailure, ae.Error.Message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrInvalidAPIKey, ae.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, statusCode)
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
