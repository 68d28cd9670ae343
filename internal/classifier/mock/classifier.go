package mock

import (
	"context"
	"strings"

	"github.com/nattapongc/shopscout/internal/classifier"
)

// MockClassifier satisfies classifier.Classifier for testing.
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, names []string, categoryName string) ([]float64, error)
}

func (m *MockClassifier) Classify(ctx context.Context, names []string, categoryName string) ([]float64, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, names, categoryName)
	}
	probs := make([]float64, len(names))
	for i := range probs {
		probs[i] = 1.0
	}
	return probs, nil
}

// NewKeywordClassifier scores 1.0 for names containing the keyword
// (case-insensitive) and 0.0 otherwise.
func NewKeywordClassifier(keyword string) *MockClassifier {
	kw := strings.ToLower(keyword)
	return &MockClassifier{
		ClassifyFunc: func(_ context.Context, names []string, _ string) ([]float64, error) {
			probs := make([]float64, len(names))
			for i, name := range names {
				if strings.Contains(strings.ToLower(name), kw) {
					probs[i] = 1.0
				}
			}
			return probs, nil
		},
	}
}

// NewFailingClassifier always returns the given error.
func NewFailingClassifier(err error) *MockClassifier {
	return &MockClassifier{
		ClassifyFunc: func(_ context.Context, _ []string, _ string) ([]float64, error) {
			return nil, err
		},
	}
}

// Compile-time check that MockClassifier implements Classifier.
var _ classifier.Classifier = (*MockClassifier)(nil)
