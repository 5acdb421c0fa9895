// Package ratings provides a client for a third-party book review-counts service.
//
// The service is an optional collaborator: the book detail page merges its
// numbers with locally stored reviews, and any failure here must degrade to
// local data only. Callers should treat every error as non-fatal.
package ratings

import (
	"context"
	"github.com/go-json-experiment/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Stats is the count/average pair reported by the external service.
type Stats struct {
	ReviewCount   int     `json:"review_count"`
	AverageRating float64 `json:"average_rating"`
}

// countsResponse is the raw review-counts API response.
type countsResponse struct {
	Books []struct {
		ISBN13           string  `json:"isbn13"`
		WorkRatingsCount int     `json:"work_ratings_count"`
		AverageRating    float64 `json:"average_rating"`
	} `json:"books"`
}

// Client fetches review statistics by ISBN-13.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a ratings client. The timeout bounds every call; there
// are no retries. Rate limited to roughly one request per second with a
// small burst, which is plenty for page loads.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
	}
}

// FetchStats returns the external review count and average rating for an
// ISBN-13. Timeouts, non-200 responses, and malformed bodies are all plain
// errors; the caller decides how to degrade.
func (c *Client) FetchStats(ctx context.Context, isbn13 string) (*Stats, error) {
	if isbn13 == "" {
		return nil, fmt.Errorf("no isbn13 for lookup")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("isbns", isbn13)

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ratings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ratings lookup failed: status %d", resp.StatusCode)
	}

	var counts countsResponse
	if err := json.UnmarshalRead(resp.Body, &counts); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if len(counts.Books) == 0 {
		return nil, fmt.Errorf("no ratings for isbn13 %s", isbn13)
	}

	c.logger.Debug("fetched external ratings",
		"isbn13", isbn13,
		"count", counts.Books[0].WorkRatingsCount,
	)

	return &Stats{
		ReviewCount:   counts.Books[0].WorkRatingsCount,
		AverageRating: counts.Books[0].AverageRating,
	}, nil
}
