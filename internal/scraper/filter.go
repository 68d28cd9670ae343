package scraper

import "strings"

// IsRelevant is the cheap pre-filter applied before the classifier call.
// With no keywords every candidate passes; the classifier alone decides.
func IsRelevant(name string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}

	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
