// Package classifier is the gateway to the external relevance scorer.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nattapongc/shopscout/internal/config"
)

// Classifier scores product names against a category name. The returned
// probabilities are in [0, 1], same order and length as the input names.
// Never call the scoring service directly — always inject this interface.
type Classifier interface {
	Classify(ctx context.Context, names []string, categoryName string) ([]float64, error)
}

// HTTPClient implements Classifier against the scorer's HTTP endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a new classifier client from config.
func NewHTTPClient(cfg config.ClassifierConfig) *HTTPClient {
	return &HTTPClient{
		url:    cfg.URL,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type classifyRequest struct {
	ProductNames []string `json:"product_names"`
	CategoryName string   `json:"category_name"`
}

type classifyResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error"`
}

func (c *HTTPClient) Classify(ctx context.Context, names []string, categoryName string) ([]float64, error) {
	if len(names) == 0 {
		return []float64{}, nil
	}

	body, err := json.Marshal(classifyRequest{
		ProductNames: names,
		CategoryName: categoryName,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding classify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if decoded.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, decoded.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if len(decoded.Probabilities) != len(names) {
		return nil, fmt.Errorf("%w: got %d probabilities for %d names",
			ErrInvalidResponse, len(decoded.Probabilities), len(names))
	}

	return decoded.Probabilities, nil
}

// Compile-time check that HTTPClient implements Classifier.
var _ Classifier = (*HTTPClient)(nil)
