package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattapongc/shopscout/internal/admission"
	"github.com/nattapongc/shopscout/internal/api"
	"github.com/nattapongc/shopscout/internal/api/handler"
	mw "github.com/nattapongc/shopscout/internal/api/middleware"
	"github.com/nattapongc/shopscout/internal/cache"
	"github.com/nattapongc/shopscout/internal/catalog"
	"github.com/nattapongc/shopscout/internal/classifier"
	"github.com/nattapongc/shopscout/internal/config"
	"github.com/nattapongc/shopscout/internal/scraper"
	"github.com/nattapongc/shopscout/internal/shopee"
	"github.com/nattapongc/shopscout/internal/store"
)

// fakeCache is an in-memory cache.Cache for wiring the full router without Redis.
type fakeCache struct {
	mu    sync.Mutex
	data  map[string][]byte
	count int64
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]byte)} }

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Ping(_ context.Context) error { return nil }

func (c *fakeCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count, nil
}

var _ cache.Cache = (*fakeCache)(nil)

// newMarketplaceStub serves the upstream category tree and three pages of
// ten organic phone-case items each, then empty pages.
func newMarketplaceStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/pages/get_homepage_category_list":
			_, _ = w.Write([]byte(`{
				"data": {
					"category_list": [
						{
							"catid": 100640, "parent_catid": 0, "level": 1,
							"display_name": "มือถือและอุปกรณ์เสริม",
							"children": [
								{"catid": 100641, "parent_catid": 100640, "level": 2, "display_name": "เคสโทรศัพท์"},
								{"catid": 100642, "parent_catid": 100640, "level": 2, "display_name": "พาวเวอร์แบงค์"}
							]
						}
					]
				}
			}`))
		case "/homepage/get_daily_discover":
			offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			page := offset / 100

			var feeds []map[string]any
			if page < 3 {
				for i := 0; i < 10; i++ {
					feeds = append(feeds, map[string]any{
						"item_card": map[string]any{
							"item": map[string]any{
								"itemid":    page*100 + i,
								"name":      fmt.Sprintf("เคสโทรศัพท์ รุ่น %d-%d", page, i),
								"price":     12900000,
								"shopid":    42,
								"shop_name": "case shop",
							},
						},
					})
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"feeds": feeds},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// newClassifierStub scores 0.9 for names mentioning phone cases, 0.1 otherwise.
func newClassifierStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductNames []string `json:"product_names"`
			CategoryName string   `json:"category_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		probs := make([]float64, len(req.ProductNames))
		for i, name := range req.ProductNames {
			if strings.Contains(name, "เคสโทรศัพท์") {
				probs[i] = 0.9
			} else {
				probs[i] = 0.1
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"probabilities": probs})
	}))
}

func newTestServer(t *testing.T, upstreamURL, classifierURL string) (*httptest.Server, store.Store) {
	t.Helper()

	feed := shopee.NewHTTPClient(config.ShopeeConfig{
		BaseURL: upstreamURL,
		SiteURL: "https://shopee.co.th",
		CDNURL:  "https://cf.shopee.co.th/file",
		Timeout: 5 * time.Second,
		RPS:     100,
	})
	cls := classifier.NewHTTPClient(config.ClassifierConfig{
		URL:     classifierURL,
		Timeout: 5 * time.Second,
	})

	directory := catalog.NewDirectory(feed)
	require.NoError(t, directory.Refresh(context.Background()))

	st := store.NewMemoryStore()
	scrapeCfg := config.ScrapeConfig{
		BatchSize:    10,
		Threshold:    0.65,
		MaxPages:     5,
		PageSize:     100,
		PageDelay:    time.Millisecond,
		DefaultLimit: 50,
		MaxLimit:     500,
	}
	svc := scraper.NewService(st, admission.NewGuard(), directory, feed, cls, scrapeCfg,
		config.ShopeeConfig{SiteURL: "https://shopee.co.th", CDNURL: "https://cf.shopee.co.th/file"})

	c := newFakeCache()
	router := api.NewRouter(api.Dependencies{
		RateLimit:         mw.NewRateLimit(c, 60),
		CategoriesHandler: handler.NewCategoriesHandler(directory, c),
		ScrapeHandler:     handler.NewScrapeHandler(svc, scrapeCfg),
		StatusHandler:     handler.NewStatusHandler(st),
		ResultsHandler:    handler.NewResultsHandler(st),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestScrapeLifecycle(t *testing.T) {
	upstream := newMarketplaceStub(t)
	defer upstream.Close()
	scorer := newClassifierStub(t)
	defer scorer.Close()

	srv, _ := newTestServer(t, upstream.URL, scorer.URL)

	// Category picker.
	resp, body := getJSON(t, srv.URL+"/api/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	categories := body["data"].([]any)
	require.Len(t, categories, 1)

	// Kick off a scrape for 20 products.
	resp, body = postJSON(t, srv.URL+"/api/scrape", `{"categoryId": "100640", "limit": 20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	assert.Equal(t, "Scraping initiated", body["message"])
	assert.Equal(t, "2 seconds", body["estimatedTime"])

	jobID, _ := body["jobId"].(string)
	require.NotEmpty(t, jobID)
	assert.Contains(t, jobID, "job_")

	// Poll until terminal.
	deadline := time.Now().Add(10 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		resp, body = getJSON(t, srv.URL+"/api/status/"+jobID)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		status, _ = body["status"].(string)
		if status == "completed" || status == "error" {
			break
		}

		progress := body["progress"].(float64)
		assert.GreaterOrEqual(t, progress, float64(0))
		assert.LessOrEqual(t, progress, float64(100))
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, "completed", status)
	assert.Equal(t, float64(100), body["progress"])
	assert.Equal(t, float64(20), body["scrapedItems"])
	assert.NotNil(t, body["completedAt"])

	// Fetch results.
	resp, body = getJSON(t, srv.URL+"/api/results/"+jobID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	assert.Equal(t, jobID, body["jobId"])
	assert.Equal(t, float64(20), body["totalItems"])

	category := body["category"].(map[string]any)
	assert.Equal(t, "100640", category["id"])
	assert.Equal(t, "มือถือและอุปกรณ์เสริม", category["name"])

	data := body["data"].([]any)
	require.Len(t, data, 20)
	first := data[0].(map[string]any)
	assert.Contains(t, first["name"], "เคสโทรศัพท์")
	assert.Equal(t, 129.0, first["price"])
	assert.Equal(t, 0.9, first["classificationScore"])
	assert.Contains(t, first["url"], "/product/42/")
}

func TestScrapeRejectsBadRequests(t *testing.T) {
	upstream := newMarketplaceStub(t)
	defer upstream.Close()
	scorer := newClassifierStub(t)
	defer scorer.Close()

	srv, _ := newTestServer(t, upstream.URL, scorer.URL)

	resp, body := postJSON(t, srv.URL+"/api/scrape", `{"limit": 10}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required parameters", body["error"])

	resp, body = postJSON(t, srv.URL+"/api/scrape", `not json at all`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request", body["error"])
}

func TestStatusUnknownJob(t *testing.T) {
	upstream := newMarketplaceStub(t)
	defer upstream.Close()
	scorer := newClassifierStub(t)
	defer scorer.Close()

	srv, _ := newTestServer(t, upstream.URL, scorer.URL)

	resp, body := getJSON(t, srv.URL+"/api/status/job_nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Job not found", body["error"])
}

func TestResultsWhileRunning(t *testing.T) {
	upstream := newMarketplaceStub(t)
	defer upstream.Close()
	scorer := newClassifierStub(t)
	defer scorer.Close()

	srv, st := newTestServer(t, upstream.URL, scorer.URL)

	_, body := postJSON(t, srv.URL+"/api/scrape", `{"categoryId": "100640", "limit": 20}`)
	jobID := body["jobId"].(string)

	// Results may race completion; both shapes are contract-legal, but a
	// still-running job must answer 400 with partialData.
	resp, body := getJSON(t, srv.URL+"/api/results/"+jobID)
	if resp.StatusCode == http.StatusBadRequest {
		assert.Equal(t, "Results not available", body["error"])
		_, present := body["partialData"]
		assert.True(t, present)
	} else {
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Drain the job so the admission slot is not left held across tests.
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := st.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Terminal() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
}

func TestConcurrentSubmissionLimitedPerClient(t *testing.T) {
	upstream := newMarketplaceStub(t)
	defer upstream.Close()
	scorer := newClassifierStub(t)
	defer scorer.Close()

	srv, st := newTestServer(t, upstream.URL, scorer.URL)

	_, first := postJSON(t, srv.URL+"/api/scrape", `{"categoryId": "100640", "limit": 30}`)
	require.Equal(t, true, first["success"])

	// Same client, second submission while the first is still running.
	resp, body := postJSON(t, srv.URL+"/api/scrape", `{"categoryId": "100640", "limit": 30}`)
	if resp.StatusCode == http.StatusTooManyRequests {
		assert.Equal(t, "Scrape already in progress", body["error"])
	} else {
		// First job already finished; the second admission is legal.
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	jobID := first["jobId"].(string)
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := st.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Terminal() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
}
