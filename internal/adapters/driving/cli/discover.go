package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/core/domain"
)

var (
	discoverLimit int
	discoverSync  bool
	discoverJSON  bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <query>",
	Short: "Search the music catalogue for tracks",
	Long: `Searches the Spotify catalogue and lists matching tracks with the IDs
they would be stored under. With --sync the hits are ingested like a batch
passed to "opus sync".

Requires catalog.client_id and catalog.client_secret to be set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVarP(&discoverLimit, "limit", "n", domain.DefaultCatalogLimit, "maximum number of catalogue hits")
	discoverCmd.Flags().BoolVar(&discoverSync, "sync", false, "ingest the hits")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoveryService == nil {
		return errors.New("catalogue not configured: set catalog.client_id and catalog.client_secret")
	}
	query := strings.Join(args, " ")

	if discoverSync {
		result, err := discoveryService.DiscoverAndSync(cmd.Context(), query, discoverLimit)
		if err != nil {
			return fmt.Errorf("discover failed: %w", err)
		}
		if discoverJSON {
			return printJSON(cmd, result)
		}
		printCatalogTracks(cmd, result.Tracks)
		if len(result.Tracks) > 0 {
			cmd.Println()
			cmd.Printf("Processed %d tracks: %d added, %d existing, %d skipped.\n",
				result.Report.TotalProcessed, result.Report.Added, result.Report.Existing, result.Report.Skipped)
		}
		return nil
	}

	tracks, err := discoveryService.Discover(cmd.Context(), query, discoverLimit)
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}
	if discoverJSON {
		return printJSON(cmd, tracks)
	}
	printCatalogTracks(cmd, tracks)
	return nil
}

func printCatalogTracks(cmd *cobra.Command, tracks []domain.CatalogTrack) {
	if len(tracks) == 0 {
		cmd.Println("No catalogue results found.")
		return
	}

	cmd.Println("Catalogue results:")
	cmd.Println()
	for i, t := range tracks {
		cmd.Printf("  [%d] %s - %s\n", i+1, t.Name, t.Artist)
		cmd.Printf("      ID: %s\n", t.ID)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
