// Package zeroshot provides a zero-shot text classifier adapter for
// inference endpoints that accept the Hugging Face zero-shot request shape.
package zeroshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

// Default configuration values.
const (
	DefaultURL     = domain.DefaultClassifierURL
	DefaultTimeout = domain.DefaultClassifierTimeout
)

// Config holds configuration for the zero-shot classifier.
type Config struct {
	// URL is the full inference endpoint.
	URL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Classifier scores text against candidate labels over HTTP.
type Classifier struct {
	client *http.Client
	url    string
	apiKey string
}

type classifyRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters classifyParams `json:"parameters"`
}

type classifyParams struct {
	CandidateLabels []string `json:"candidate_labels"`
}

// classifyResponse lists labels and scores in descending score order.
type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// NewClassifier creates a new zero-shot classifier.
func NewClassifier(cfg Config) *Classifier {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Classifier{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// Classify returns the highest-scoring label.
func (c *Classifier) Classify(ctx context.Context, text string, labels []string) (domain.Classification, error) {
	if len(labels) == 0 {
		return domain.Classification{}, fmt.Errorf("%w: at least one label is required", domain.ErrInvalidInput)
	}

	jsonBody, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParams{CandidateLabels: labels},
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: send request: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return domain.Classification{}, fmt.Errorf("%w: classifier error (status %d): failed to read response",
				domain.ErrExternalService, resp.StatusCode)
		}
		return domain.Classification{}, fmt.Errorf("%w: classifier error (status %d): %s",
			domain.ErrExternalService, resp.StatusCode, string(body))
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Labels) == 0 || len(result.Labels) != len(result.Scores) {
		return domain.Classification{}, fmt.Errorf("%w: classifier returned %d labels and %d scores",
			domain.ErrExternalService, len(result.Labels), len(result.Scores))
	}

	// Highest score wins.
	best := 0
	for i := range result.Scores {
		if result.Scores[i] > result.Scores[best] {
			best = i
		}
	}
	return domain.Classification{Label: result.Labels[best], Score: result.Scores[best]}, nil
}
