package driving

import "github.com/custodia-labs/opus/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, filling defaults for
	// unset keys.
	Get() (*domain.Settings, error)

	// Set updates one dot-notation key, parsing value to the key's type,
	// and persists it.
	Set(key, value string) error

	// Keys returns every recognised configuration key in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
