package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the shopscout server.
type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Shopee     ShopeeConfig
	Classifier ClassifierConfig
	Scrape     ScrapeConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type RedisConfig struct {
	URL string
}

type ShopeeConfig struct {
	BaseURL string
	SiteURL string
	CDNURL  string
	Timeout time.Duration
	// Requests per second against the marketplace API.
	RPS int
}

type ClassifierConfig struct {
	URL     string
	Timeout time.Duration
}

// ScrapeConfig carries the orchestrator's policy knobs.
type ScrapeConfig struct {
	BatchSize    int
	Threshold    float64
	MaxPages     int
	PageSize     int
	PageDelay    time.Duration
	DefaultLimit int
	MaxLimit     int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("SCOUT_PORT", 8080),
			Env:  envString("SCOUT_ENV", "development"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Shopee: ShopeeConfig{
			BaseURL: envString("SHOPEE_BASE_URL", "https://shopee.co.th/api/v4"),
			SiteURL: envString("SHOPEE_SITE_URL", "https://shopee.co.th"),
			CDNURL:  envString("SHOPEE_CDN_URL", "https://cf.shopee.co.th/file"),
			Timeout: envDuration("SHOPEE_TIMEOUT", 30*time.Second),
			RPS:     envInt("SHOPEE_RPS", 2),
		},
		Classifier: ClassifierConfig{
			URL:     os.Getenv("CLASSIFIER_URL"),
			Timeout: envDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
		},
		Scrape: ScrapeConfig{
			BatchSize:    envInt("SCRAPE_BATCH_SIZE", 10),
			Threshold:    envFloat("SCRAPE_THRESHOLD", 0.65),
			MaxPages:     envInt("SCRAPE_MAX_PAGES", 10),
			PageSize:     envInt("SCRAPE_PAGE_SIZE", 100),
			PageDelay:    envDuration("SCRAPE_PAGE_DELAY", 2*time.Second),
			DefaultLimit: envInt("SCRAPE_DEFAULT_LIMIT", 50),
			MaxLimit:     envInt("SCRAPE_MAX_LIMIT", 500),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Classifier.URL == "" {
		return fmt.Errorf("CLASSIFIER_URL is required")
	}
	if !strings.HasPrefix(c.Classifier.URL, "http://") && !strings.HasPrefix(c.Classifier.URL, "https://") {
		return fmt.Errorf("CLASSIFIER_URL must start with http:// or https://, got %q", c.Classifier.URL)
	}

	if !strings.HasPrefix(c.Shopee.BaseURL, "http://") && !strings.HasPrefix(c.Shopee.BaseURL, "https://") {
		return fmt.Errorf("SHOPEE_BASE_URL must start with http:// or https://, got %q", c.Shopee.BaseURL)
	}

	if c.Scrape.BatchSize < 1 {
		return fmt.Errorf("SCRAPE_BATCH_SIZE must be at least 1, got %d", c.Scrape.BatchSize)
	}
	if c.Scrape.Threshold < 0 || c.Scrape.Threshold > 1 {
		return fmt.Errorf("SCRAPE_THRESHOLD must be within [0, 1], got %v", c.Scrape.Threshold)
	}
	if c.Scrape.MaxPages < 1 {
		return fmt.Errorf("SCRAPE_MAX_PAGES must be at least 1, got %d", c.Scrape.MaxPages)
	}
	if c.Scrape.DefaultLimit < 1 || c.Scrape.DefaultLimit > c.Scrape.MaxLimit {
		return fmt.Errorf("SCRAPE_DEFAULT_LIMIT must be within [1, %d], got %d",
			c.Scrape.MaxLimit, c.Scrape.DefaultLimit)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
