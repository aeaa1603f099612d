package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/opus/internal/adapters/driving/tui"
	"github.com/custodia-labs/opus/internal/core/domain"
)

var syncJSON bool

var syncCmd = &cobra.Command{
	Use:   "sync <file.json|->",
	Short: "Ingest a batch of tracks",
	Long: `Reads a JSON array of {"track_id","name","composer"} objects and ingests
every track that is not stored yet. Use "-" to read from stdin.

Tracks are processed in order. Entries that fail or fall outside the target
genre are counted as skipped. On a terminal a live progress view is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	tracks, err := readTracks(cmd, args[0])
	if err != nil {
		return err
	}

	if !syncJSON && isTerminal(cmd.OutOrStdout()) && isTerminal(cmd.InOrStdin()) {
		// The progress view prints its own summary.
		if _, err := tui.RunSync(cmd.Context(), syncService, tracks); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	}

	report, err := syncService.Sync(cmd.Context(), tracks)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Processed %d tracks: %d added, %d existing, %d skipped.\n",
		report.TotalProcessed, report.Added, report.Existing, report.Skipped)
	return nil
}

// readTracks decodes a track batch from a file or, for "-", from stdin.
func readTracks(cmd *cobra.Command, source string) ([]domain.TrackInput, error) {
	var r io.Reader
	if source == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch: %w", err)
		}
		defer f.Close()
		r = f
	}

	var tracks []domain.TrackInput
	if err := json.NewDecoder(r).Decode(&tracks); err != nil {
		return nil, fmt.Errorf("%w: failed to decode batch: %w", domain.ErrInvalidInput, err)
	}
	return tracks, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
