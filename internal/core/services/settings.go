package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "storage.data_dir"
	keyScratchDir       = "scratch.dir"
	keyArchiveBaseURL   = "archive.base_url"
	keyArchiveRows      = "archive.rows"
	keyArchiveRate      = "archive.rate_per_second"
	keySearchTimeout    = "archive.search_timeout"
	keyMetadataTimeout  = "archive.metadata_timeout"
	keyDownloadTimeout  = "archive.download_timeout"
	keyClassifierURL    = "classifier.url"
	keyClassifierAPIKey = "classifier.api_key"
	keyTargetLabel      = "classifier.target_label"
	keyOtherLabel       = "classifier.other_label"
	keyThreshold        = "classifier.threshold"
	keyClassifierTO     = "classifier.timeout"
	keyEmbeddingURL     = "embedding.url"
	keyEmbeddingTO      = "embedding.timeout"
	keyFallbackSeed     = "fallback.seed"
	keyCatalogID        = "catalog.client_id"
	keyCatalogSecret    = "catalog.client_secret"
	keyCatalogTokenURL  = "catalog.token_url"
	keyCatalogBaseURL   = "catalog.base_url"
	keyCatalogTO        = "catalog.timeout"
	keyMCPHTTPAddr      = "mcp.http_addr"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
)

// settingKeys lists every key in display order with its value kind.
var settingKeys = []struct {
	key  string
	kind valueKind
}{
	{keyDataDir, kindString},
	{keyScratchDir, kindString},
	{keyArchiveBaseURL, kindString},
	{keyArchiveRows, kindInt},
	{keyArchiveRate, kindFloat},
	{keySearchTimeout, kindDuration},
	{keyMetadataTimeout, kindDuration},
	{keyDownloadTimeout, kindDuration},
	{keyClassifierURL, kindString},
	{keyClassifierAPIKey, kindString},
	{keyTargetLabel, kindString},
	{keyOtherLabel, kindString},
	{keyThreshold, kindFloat},
	{keyClassifierTO, kindDuration},
	{keyEmbeddingURL, kindString},
	{keyEmbeddingTO, kindDuration},
	{keyFallbackSeed, kindInt},
	{keyCatalogID, kindString},
	{keyCatalogSecret, kindString},
	{keyCatalogTokenURL, kindString},
	{keyCatalogBaseURL, kindString},
	{keyCatalogTO, kindDuration},
	{keyMCPHTTPAddr, kindString},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	durations := map[string]*time.Duration{
		keySearchTimeout:   &d.Archive.SearchTimeout,
		keyMetadataTimeout: &d.Archive.MetadataTimeout,
		keyDownloadTimeout: &d.Archive.DownloadTimeout,
		keyClassifierTO:    &d.Classifier.Timeout,
		keyEmbeddingTO:     &d.Embedding.Timeout,
		keyCatalogTO:       &d.Catalog.Timeout,
	}
	for key, dst := range durations {
		v, err := s.getDuration(key, *dst)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	d.Storage.DataDir = s.getString(keyDataDir, d.Storage.DataDir)
	d.Scratch.Dir = s.getString(keyScratchDir, d.Scratch.Dir)
	d.Archive.BaseURL = s.getString(keyArchiveBaseURL, d.Archive.BaseURL)
	d.Archive.Rows = s.getInt(keyArchiveRows, d.Archive.Rows)
	d.Archive.RatePerSecond = s.getFloat(keyArchiveRate, d.Archive.RatePerSecond)
	d.Classifier.URL = s.getString(keyClassifierURL, d.Classifier.URL)
	d.Classifier.APIKey = s.configStore.GetString(keyClassifierAPIKey)
	d.Classifier.TargetLabel = s.getString(keyTargetLabel, d.Classifier.TargetLabel)
	d.Classifier.OtherLabel = s.getString(keyOtherLabel, d.Classifier.OtherLabel)
	d.Classifier.Threshold = s.getFloat(keyThreshold, d.Classifier.Threshold)
	d.Embedding.URL = s.getString(keyEmbeddingURL, d.Embedding.URL)
	d.Fallback.Seed = int64(s.getInt(keyFallbackSeed, int(d.Fallback.Seed)))
	d.Catalog.ClientID = s.configStore.GetString(keyCatalogID)
	d.Catalog.ClientSecret = s.configStore.GetString(keyCatalogSecret)
	d.Catalog.TokenURL = s.getString(keyCatalogTokenURL, d.Catalog.TokenURL)
	d.Catalog.BaseURL = s.getString(keyCatalogBaseURL, d.Catalog.BaseURL)
	d.MCP.HTTPAddr = s.getString(keyMCPHTTPAddr, d.MCP.HTTPAddr)

	return &d, nil
}

// Set parses value according to the key's type and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %w", domain.ErrInvalidInput, key, err)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number: %w", domain.ErrInvalidInput, key, err)
		}
		typed = f
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s expects a duration: %w", domain.ErrInvalidInput, key, err)
		}
		typed = value
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised configuration key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func kindOf(key string) (valueKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return kindString, false
}

// getString returns a string setting or the default if not set.
func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt returns an int setting or the default if not set.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

// getFloat returns a float setting or the default if not set.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration parses a duration string setting or returns the default if not set.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := s.configStore.GetString(key)
	if raw == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return d, nil
}
