package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the archive, classifier, embedding and storage options.

Settings are stored in ~/.opus/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Set one setting. Run 'opus settings keys' for the recognised keys.

Timeouts take Go durations such as 30s or 1m.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the model services are reachable",
	Long: `Validates the settings and pings the embedding service. When the service
is unreachable, tracks are still added but stored with fallback embeddings.`,
	RunE: runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", orDefault(settings.Storage.DataDir, "~/.opus/data"))
	cmd.Printf("  Scratch dir: %s\n", orDefault(settings.Scratch.Dir, "(system temp)"))
	cmd.Println()

	cmd.Println("[Archive]")
	cmd.Printf("  Base URL: %s\n", settings.Archive.BaseURL)
	cmd.Printf("  Rows: %d\n", settings.Archive.Rows)
	cmd.Printf("  Rate: %g req/s\n", settings.Archive.RatePerSecond)
	cmd.Printf("  Timeouts: search %s, metadata %s, download %s\n",
		settings.Archive.SearchTimeout, settings.Archive.MetadataTimeout, settings.Archive.DownloadTimeout)
	cmd.Println()

	cmd.Println("[Classifier]")
	cmd.Printf("  URL: %s\n", settings.Classifier.URL)
	if settings.Classifier.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Classifier.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Labels: %s / %s\n", settings.Classifier.TargetLabel, settings.Classifier.OtherLabel)
	cmd.Printf("  Threshold: %g\n", settings.Classifier.Threshold)
	cmd.Printf("  Timeout: %s\n", settings.Classifier.Timeout)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  URL: %s\n", settings.Embedding.URL)
	cmd.Printf("  Timeout: %s\n", settings.Embedding.Timeout)
	cmd.Printf("  Fallback seed: %d\n", settings.Fallback.Seed)
	cmd.Println()

	cmd.Println("[Catalog]")
	cmd.Printf("  Client ID: %s\n", orDefault(settings.Catalog.ClientID, "(not set)"))
	if settings.Catalog.ClientSecret != "" {
		cmd.Printf("  Client secret: %s\n", maskAPIKey(settings.Catalog.ClientSecret))
	} else {
		cmd.Printf("  Client secret: (not set)\n")
	}
	cmd.Printf("  API: %s\n", settings.Catalog.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.Catalog.Timeout)
	cmd.Println()

	cmd.Println("[MCP]")
	cmd.Printf("  HTTP address: %s\n", settings.MCP.HTTPAddr)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'opus settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	cmd.Println("Configuration is valid.")

	if serviceCheck == nil {
		return nil
	}
	if err := serviceCheck(cmd.Context()); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("New tracks will be stored with fallback embeddings.")
		return nil
	}
	cmd.Println("Embedding service is reachable.")
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
