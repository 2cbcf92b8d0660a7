package maps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/username/traffic-heatmap-planner/internal/heatmap"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Google Maps web services root
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	defaultTimeout      = 30 * time.Second
	autocompleteTimeout = 3 * time.Second
	maxSuggestions      = 5
	minAutocompleteLen  = 2
)

// ErrQueryFailed is returned when a travel time could not be obtained.
// The heatmap records such cells as absent.
var ErrQueryFailed = errors.New("travel time query failed")

// HTTPClient is the subset of *http.Client used by Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Google Maps Distance Matrix and Places APIs.
// Every call is a single attempt; there are no retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a new Maps API client. maxQPS > 0 caps the request rate
// on top of any pacing done by the caller.
func NewClient(baseURL, apiKey string, maxQPS float64, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	if maxQPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(maxQPS), 1)
	}
	return c
}

// TravelTime returns the driving (or other mode) duration for a departure,
// preferring duration_in_traffic over the plain duration.
func (c *Client) TravelTime(ctx context.Context, q heatmap.Query) (time.Duration, error) {
	params := url.Values{}
	params.Set("origins", q.Origin)
	params.Set("destinations", q.Destination)
	params.Set("mode", q.Mode)
	params.Set("departure_time", strconv.FormatInt(q.Departure.Unix(), 10))
	params.Set("traffic_model", q.TrafficModel)
	params.Set("key", c.apiKey)

	var resp DistanceMatrixResponse
	if err := c.doRequest(ctx, "/distancematrix/json", params, &resp); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("%w: empty result (status %s %s)", ErrQueryFailed, resp.Status, resp.ErrorMessage)
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != statusOK {
		return 0, fmt.Errorf("%w: element status %s", ErrQueryFailed, element.Status)
	}

	var seconds int64
	switch {
	case element.DurationInTraffic != nil:
		seconds = element.DurationInTraffic.Value
	case element.Duration != nil:
		seconds = element.Duration.Value
	default:
		return 0, fmt.Errorf("%w: element has no duration", ErrQueryFailed)
	}

	c.logger.Debug("Distance matrix answered",
		zap.Time("departure", q.Departure),
		zap.Int64("seconds", seconds))

	return time.Duration(seconds) * time.Second, nil
}

// Autocomplete returns up to five address suggestions for input.
// Inputs shorter than two characters and API-level errors yield no suggestions.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]string, error) {
	if utf8.RuneCountInString(input) < minAutocompleteLen {
		return []string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, autocompleteTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("input", input)
	params.Set("key", c.apiKey)
	params.Set("types", "geocode")

	var resp AutocompleteResponse
	if err := c.doRequest(ctx, "/place/autocomplete/json", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}

	switch resp.Status {
	case statusOK:
	case statusZeroResults:
		return []string{}, nil
	default:
		// REQUEST_DENIED usually means the Places API is not enabled for the key
		c.logger.Warn("Autocomplete rejected",
			zap.String("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage))
		return []string{}, nil
	}

	suggestions := make([]string, 0, maxSuggestions)
	for _, p := range resp.Predictions {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, p.Description)
	}
	return suggestions, nil
}

// DirectionsURL builds a shareable Google Maps directions link
func DirectionsURL(origin, destination, mode string) string {
	params := url.Values{}
	params.Set("api", "1")
	params.Set("origin", origin)
	params.Set("destination", destination)
	params.Set("travelmode", mode)
	return "https://www.google.com/maps/dir/?" + params.Encode()
}

// doRequest performs a single GET and decodes the JSON body into result
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", c.redact(err, path))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", c.redact(err, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// redact strips the query string, key included, from a url.Error
func (c *Client) redact(err error, path string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = c.baseURL + path
	}
	return err
}
