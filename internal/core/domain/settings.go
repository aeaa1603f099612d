package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultArchiveBaseURL    = "https://archive.org"
	DefaultArchiveRows       = 10
	DefaultArchiveRate       = 2.0
	DefaultSearchTimeout     = 15 * time.Second
	DefaultMetadataTimeout   = 15 * time.Second
	DefaultDownloadTimeout   = 30 * time.Second
	DefaultClassifierTimeout = 30 * time.Second
	DefaultEmbeddingTimeout  = 60 * time.Second
	DefaultTargetLabel       = "classical"
	DefaultOtherLabel        = "non-classical"
	DefaultAcceptThreshold   = 0.75
	DefaultClassifierURL     = "http://localhost:8001/classify"
	DefaultEmbeddingURL      = "http://localhost:8002"
	DefaultMCPHTTPAddr       = "localhost:8765"
	DefaultCatalogTokenURL   = "https://accounts.spotify.com/api/token"
	DefaultCatalogBaseURL    = "https://api.spotify.com"
	DefaultCatalogTimeout    = 15 * time.Second
)

// DefaultFallbackSeed seeds fallback vectors when no seed is configured.
const DefaultFallbackSeed int64 = 42

// StorageSettings configures the track store.
type StorageSettings struct {
	// DataDir holds the SQLite database. Empty means ~/.opus/data.
	DataDir string
}

// ScratchSettings configures transient audio downloads.
type ScratchSettings struct {
	// Dir receives downloaded audio until embedding extraction deletes it.
	Dir string
}

// ArchiveSettings configures the open audio archive client.
type ArchiveSettings struct {
	BaseURL         string
	Rows            int
	RatePerSecond   float64
	SearchTimeout   time.Duration
	MetadataTimeout time.Duration
	DownloadTimeout time.Duration
}

// ClassifierSettings configures the zero-shot genre gate.
type ClassifierSettings struct {
	URL         string
	APIKey      string
	TargetLabel string
	OtherLabel  string
	Threshold   float64
	Timeout     time.Duration
}

// EmbeddingSettings configures the audio embedding service.
type EmbeddingSettings struct {
	URL     string
	Timeout time.Duration
}

// FallbackSettings configures the low-fidelity fallback vectors.
type FallbackSettings struct {
	Seed int64
}

// CatalogSettings configures the music catalogue used by discover.
type CatalogSettings struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	BaseURL      string
	Timeout      time.Duration
}

// Configured reports whether catalogue credentials are present.
func (c CatalogSettings) Configured() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

// MCPSettings configures the MCP server transport.
type MCPSettings struct {
	HTTPAddr string
}

// Settings is the complete application configuration.
type Settings struct {
	Storage    StorageSettings
	Scratch    ScratchSettings
	Archive    ArchiveSettings
	Classifier ClassifierSettings
	Embedding  EmbeddingSettings
	Fallback   FallbackSettings
	Catalog    CatalogSettings
	MCP        MCPSettings
}

// DefaultSettings returns settings usable against local model services.
func DefaultSettings() Settings {
	return Settings{
		Archive: ArchiveSettings{
			BaseURL:         DefaultArchiveBaseURL,
			Rows:            DefaultArchiveRows,
			RatePerSecond:   DefaultArchiveRate,
			SearchTimeout:   DefaultSearchTimeout,
			MetadataTimeout: DefaultMetadataTimeout,
			DownloadTimeout: DefaultDownloadTimeout,
		},
		Classifier: ClassifierSettings{
			URL:         DefaultClassifierURL,
			TargetLabel: DefaultTargetLabel,
			OtherLabel:  DefaultOtherLabel,
			Threshold:   DefaultAcceptThreshold,
			Timeout:     DefaultClassifierTimeout,
		},
		Embedding: EmbeddingSettings{
			URL:     DefaultEmbeddingURL,
			Timeout: DefaultEmbeddingTimeout,
		},
		Fallback: FallbackSettings{
			Seed: DefaultFallbackSeed,
		},
		Catalog: CatalogSettings{
			TokenURL: DefaultCatalogTokenURL,
			BaseURL:  DefaultCatalogBaseURL,
			Timeout:  DefaultCatalogTimeout,
		},
		MCP: MCPSettings{
			HTTPAddr: DefaultMCPHTTPAddr,
		},
	}
}

// Validate checks that the settings can drive the pipeline.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Archive.BaseURL) == "" {
		errs = append(errs, errors.New("archive.base_url is required"))
	}
	if s.Archive.Rows <= 0 {
		errs = append(errs, fmt.Errorf("archive.rows must be positive, got %d", s.Archive.Rows))
	}
	if s.Archive.RatePerSecond < 0 {
		errs = append(errs, fmt.Errorf("archive.rate_per_second must not be negative, got %g", s.Archive.RatePerSecond))
	}
	if strings.TrimSpace(s.Classifier.TargetLabel) == "" || strings.TrimSpace(s.Classifier.OtherLabel) == "" {
		errs = append(errs, errors.New("classifier labels are required"))
	}
	if s.Classifier.TargetLabel == s.Classifier.OtherLabel {
		errs = append(errs, errors.New("classifier target and other labels must differ"))
	}
	if s.Classifier.Threshold < 0 || s.Classifier.Threshold >= 1 {
		errs = append(errs, fmt.Errorf("classifier.threshold must be in [0,1), got %g", s.Classifier.Threshold))
	}
	for name, d := range map[string]time.Duration{
		"archive.search_timeout":   s.Archive.SearchTimeout,
		"archive.metadata_timeout": s.Archive.MetadataTimeout,
		"archive.download_timeout": s.Archive.DownloadTimeout,
		"classifier.timeout":       s.Classifier.Timeout,
		"embedding.timeout":        s.Embedding.Timeout,
		"catalog.timeout":          s.Catalog.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if (s.Catalog.ClientID == "") != (s.Catalog.ClientSecret == "") {
		errs = append(errs, errors.New("catalog.client_id and catalog.client_secret must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}
