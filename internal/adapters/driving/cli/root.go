// Package cli provides the cobra command tree for the opus binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/core/ports/driving"
	"github.com/custodia-labs/opus/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired in by main. Commands report "not configured" when nil.
var (
	ingestionService      driving.IngestionService
	syncService           driving.SyncService
	recommendationService driving.RecommendationService
	searchService         driving.SearchService
	settingsService       driving.SettingsService
	discoveryService      driving.DiscoveryService
	serviceCheck          func(context.Context) error
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "opus",
	Short: "Genre-gated audio similarity index",
	Long: `Opus ingests tracks of a target genre, embeds their audio and
recommends tracks that sound alike.

Tracks are classified first; only accepted tracks are fetched from an open
audio archive, embedded and stored.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug and info logs")
}

// Services groups the driving ports the commands use.
type Services struct {
	Ingest    driving.IngestionService
	Sync      driving.SyncService
	Recommend driving.RecommendationService
	Search    driving.SearchService
	Settings  driving.SettingsService
	Discover  driving.DiscoveryService

	// Check probes the model services. Optional.
	Check func(context.Context) error
}

// SetServices injects the driving ports.
func SetServices(s Services) {
	ingestionService = s.Ingest
	syncService = s.Sync
	recommendationService = s.Recommend
	searchService = s.Search
	settingsService = s.Settings
	discoveryService = s.Discover
	serviceCheck = s.Check
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
