package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search stored tracks",
	Long: `Finds stored tracks whose name or composer contains the text,
ignoring case. Without text, lists the first stored tracks.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	text := ""
	if len(args) > 0 {
		text = args[0]
	}

	tracks, err := searchService.Search(cmd.Context(), text, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, tracks)
	}

	return outputSearchTable(cmd, tracks)
}

type trackJSON struct {
	TrackID  string `json:"track_id"`
	Name     string `json:"name"`
	Composer string `json:"composer"`
}

func outputSearchJSON(cmd *cobra.Command, tracks []domain.Track) error {
	out := make([]trackJSON, len(tracks))
	for i, t := range tracks {
		out[i] = trackJSON{TrackID: t.ExternalID, Name: t.Name, Composer: t.Composer}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, tracks []domain.Track) error {
	if len(tracks) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, t := range tracks {
		cmd.Printf("  [%d] %s - %s\n", i+1, t.Name, t.Composer)
		cmd.Printf("      ID: %s\n", t.ExternalID)
	}
	return nil
}
