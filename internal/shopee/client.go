// Package shopee talks to the marketplace's public v4 JSON API: the homepage
// category tree and the paginated daily-discover product feed.
package shopee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/ratelimit"

	"github.com/nattapongc/shopscout/internal/config"
)

// Sentinel errors for upstream failures.
var (
	ErrUpstreamUnreachable = errors.New("marketplace unreachable")
	ErrUpstreamStatus      = errors.New("marketplace returned error status")
	ErrUpstreamTimeout     = errors.New("marketplace request timeout")
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

// Client is the interface for fetching listings and categories upstream.
type Client interface {
	CategoryTree(ctx context.Context) ([]CategoryNode, error)
	DailyDiscover(ctx context.Context, offset int) ([]FeedItem, error)
}

// HTTPClient implements Client against the marketplace HTTP API. Outbound
// requests are paced by a token-bucket limiter to stay polite upstream.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	rl      ratelimit.Limiter
}

// NewHTTPClient creates a new marketplace client from config.
func NewHTTPClient(cfg config.ShopeeConfig) *HTTPClient {
	rps := cfg.RPS
	if rps < 1 {
		rps = 1
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		rl:      ratelimit.New(rps),
	}
}

func (c *HTTPClient) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	u := fmt.Sprintf("%s/pages/get_homepage_category_list", c.baseURL)

	var resp categoryTreeResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	return resp.Data.CategoryList, nil
}

func (c *HTTPClient) DailyDiscover(ctx context.Context, offset int) ([]FeedItem, error) {
	u := fmt.Sprintf("%s/homepage/get_daily_discover?bundle=daily_discover_main&limit=100&offset=%d",
		c.baseURL, offset)

	var resp dailyDiscoverResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	return resp.Data.Feeds, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, u string, out any) error {
	c.rl.Take()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding marketplace response: %w", err)
	}

	return nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
}

// --- marketplace response types ---

type categoryTreeResponse struct {
	Data struct {
		CategoryList []CategoryNode `json:"category_list"`
	} `json:"data"`
}

type dailyDiscoverResponse struct {
	Data struct {
		Feeds []FeedItem `json:"feeds"`
	} `json:"data"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
