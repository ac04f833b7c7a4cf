// Package places is the client for the maps/places provider.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wayfarer/backend/internal/domain/place"
	"github.com/wayfarer/backend/internal/domain/shared"
	"github.com/wayfarer/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseSize = 2 * 1024 * 1024

// detailsFields limits the details response to what the app renders
const detailsFields = "place_id,name,formatted_address,geometry/location,rating,types"

// ErrNotConfigured is returned by every call when no API key is set
var ErrNotConfigured = shared.NewDomainError(shared.CodeUpstreamUnavailable, "places provider is not configured")

// Client calls the provider's place details and nearby search endpoints.
// Outbound calls are throttled by a token bucket shared by all callers.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var (
	_ place.DetailsProvider = (*Client)(nil)
	_ place.NearbySearcher  = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.PlacesConfig, opts ...Option) *Client {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// PlaceDetails looks up a single place by provider id
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*place.Details, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, shared.NewValidationError("place id is required")
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusOK:
		return resp.Result.toDetails(), nil
	case statusNotFound, statusZeroResults, statusInvalidRequest:
		return nil, shared.NewNotFoundError("place")
	default:
		return nil, c.statusError("details", resp.Status, resp.ErrorMessage)
	}
}

// SearchNearby returns places of a type within radius meters of a point
func (c *Client) SearchNearby(ctx context.Context, q place.NearbyQuery) ([]place.NearbyPlace, error) {
	params := url.Values{}
	params.Set("location", strconv.FormatFloat(q.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(q.Longitude, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(q.Radius))
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	var resp nearbyResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case statusOK, statusZeroResults:
		out := make([]place.NearbyPlace, 0, len(resp.Results))
		for _, p := range resp.Results {
			out = append(out, p.toNearby())
		}
		return out, nil
	default:
		return nil, c.statusError("nearby search", resp.Status, resp.ErrorMessage)
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrUpstreamUnavailable, err)
	}

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("places: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// url.Error embeds the request URL, which carries the key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %v", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("places provider returned HTTP error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: HTTP %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", shared.ErrUpstreamUnavailable, err)
	}
	return nil
}

func (c *Client) statusError(op, status, message string) error {
	c.logger.Warn("places provider rejected request",
		zap.String("operation", op),
		zap.String("status", status),
		zap.String("message", message),
	)
	return fmt.Errorf("%w: %s returned %s", shared.ErrUpstreamUnavailable, op, status)
}
