// Package ai builds the network adapters behind the ingestion pipeline from
// application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/custodia-labs/opus/internal/adapters/driven/archive"
	"github.com/custodia-labs/opus/internal/adapters/driven/catalog/spotify"
	"github.com/custodia-labs/opus/internal/adapters/driven/classifier/zeroshot"
	"github.com/custodia-labs/opus/internal/adapters/driven/embedding/clap"
	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the adapters built from settings.
type InitResult struct {
	Archive    driven.Archive
	Classifier driven.Classifier
	Embedder   driven.AudioEmbedder
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	if r.Embedder != nil {
		return r.Embedder.Close()
	}
	return nil
}

// Create builds the archive, classifier and embedding adapters.
// Service URLs must be absolute http or https URLs.
func Create(settings *domain.Settings) (*InitResult, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	var errs []error
	for key, raw := range map[string]string{
		"archive.base_url": settings.Archive.BaseURL,
		"classifier.url":   settings.Classifier.URL,
		"embedding.url":    settings.Embedding.URL,
	} {
		if err := checkServiceURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}

	return &InitResult{
		Archive: archive.NewClient(archive.Config{
			BaseURL:         settings.Archive.BaseURL,
			RatePerSecond:   settings.Archive.RatePerSecond,
			SearchTimeout:   settings.Archive.SearchTimeout,
			MetadataTimeout: settings.Archive.MetadataTimeout,
			DownloadTimeout: settings.Archive.DownloadTimeout,
		}),
		Classifier: zeroshot.NewClassifier(zeroshot.Config{
			URL:     settings.Classifier.URL,
			APIKey:  settings.Classifier.APIKey,
			Timeout: settings.Classifier.Timeout,
		}),
		Embedder: clap.NewEmbeddingService(clap.Config{
			BaseURL: settings.Embedding.URL,
			Timeout: settings.Embedding.Timeout,
		}),
	}, nil
}

// CreateCatalog builds the Spotify catalogue adapter. It returns nil and no
// error when no catalogue credentials are configured.
func CreateCatalog(settings *domain.Settings) (driven.Catalog, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}
	if !settings.Catalog.Configured() {
		return nil, nil
	}

	var errs []error
	for key, raw := range map[string]string{
		"catalog.token_url": settings.Catalog.TokenURL,
		"catalog.base_url":  settings.Catalog.BaseURL,
	} {
		if err := checkServiceURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}

	client, err := spotify.NewClient(spotify.Config{
		ClientID:     settings.Catalog.ClientID,
		ClientSecret: settings.Catalog.ClientSecret,
		TokenURL:     settings.Catalog.TokenURL,
		BaseURL:      settings.Catalog.BaseURL,
		Timeout:      settings.Catalog.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ValidateEmbedding pings the embedding service. An unreachable service is
// not fatal: ingestion then stores fallback vectors.
func ValidateEmbedding(ctx context.Context, embedder driven.AudioEmbedder) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: embedding service unreachable: %w", domain.ErrExternalService, err)
	}
	return nil
}

func checkServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	return nil
}
