package cache

// RateLimitKey is the global rolling-window request counter. One key for the
// whole service: the ceiling applies regardless of client identity.
func RateLimitKey() string {
	return "ratelimit:global"
}

// CategoryListKey holds the serialized main-category list between upstream refreshes.
func CategoryListKey() string {
	return "categories:main"
}
