package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattapongc/shopscout/internal/config"
)

// setEnv is a helper that sets environment variables for a test and restores them after.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

// validEnv returns the minimum set of valid environment variables.
func validEnv() map[string]string {
	return map[string]string{
		"REDIS_URL":      "redis://localhost:6379",
		"CLASSIFIER_URL": "http://localhost:8000",
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, "http://localhost:8000", cfg.Classifier.URL)
	assert.Equal(t, "https://shopee.co.th/api/v4", cfg.Shopee.BaseURL)
	assert.Equal(t, "https://shopee.co.th", cfg.Shopee.SiteURL)
	assert.Equal(t, 2, cfg.Shopee.RPS)
}

func TestLoad_ScrapeDefaults(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Scrape.BatchSize)
	assert.InDelta(t, 0.65, cfg.Scrape.Threshold, 1e-9)
	assert.Equal(t, 10, cfg.Scrape.MaxPages)
	assert.Equal(t, 100, cfg.Scrape.PageSize)
	assert.Equal(t, 2*time.Second, cfg.Scrape.PageDelay)
	assert.Equal(t, 50, cfg.Scrape.DefaultLimit)
	assert.Equal(t, 500, cfg.Scrape.MaxLimit)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoad_CustomPort(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SCOUT_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_CustomScrapeSettings(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SCRAPE_BATCH_SIZE", "20")
	t.Setenv("SCRAPE_THRESHOLD", "0.8")
	t.Setenv("SCRAPE_PAGE_DELAY", "500ms")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Scrape.BatchSize)
	assert.InDelta(t, 0.8, cfg.Scrape.Threshold, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.Scrape.PageDelay)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SCOUT_PORT", "not-a-number")
	t.Setenv("SCRAPE_THRESHOLD", "very high")
	t.Setenv("SHOPEE_TIMEOUT", "soon")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 0.65, cfg.Scrape.Threshold, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.Shopee.Timeout)
}

func TestLoad_MissingRedisURL(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("REDIS_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestLoad_MissingClassifierURL(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("CLASSIFIER_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLASSIFIER_URL")
}

func TestLoad_ClassifierURLScheme(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("CLASSIFIER_URL", "localhost:8000")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLASSIFIER_URL must start with http")
}

func TestLoad_ShopeeBaseURLScheme(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SHOPEE_BASE_URL", "shopee.co.th/api/v4")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPEE_BASE_URL")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SCRAPE_BATCH_SIZE", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCRAPE_BATCH_SIZE")
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SCRAPE_THRESHOLD", "1.5")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCRAPE_THRESHOLD")
}

func TestLoad_DefaultLimitAboveMax(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("SCRAPE_DEFAULT_LIMIT", "600")
	t.Setenv("SCRAPE_MAX_LIMIT", "500")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCRAPE_DEFAULT_LIMIT")
}
