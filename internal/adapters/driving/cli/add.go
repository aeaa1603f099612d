package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/core/domain"
)

var addCmd = &cobra.Command{
	Use:   "add <track-id> <name> [composer]",
	Short: "Add a single track",
	Long: `Classifies the track, fetches its audio from the archive, embeds it and
stores it. Tracks outside the target genre are skipped without being stored.
Adding a track that is already stored is a no-op.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	in := domain.TrackInput{
		ExternalID: args[0],
		Name:       args[1],
	}
	if len(args) == 3 {
		in.Composer = args[2]
	}

	outcome, err := ingestionService.AddTrack(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	switch outcome {
	case domain.OutcomeAdded:
		cmd.Printf("Added %s.\n", in.ExternalID)
	case domain.OutcomeExisting:
		cmd.Printf("Track %s already exists.\n", in.ExternalID)
	case domain.OutcomeRejected:
		cmd.Printf("Skipped %s: %v.\n", in.ExternalID, domain.ErrClassificationRejected)
	default:
		cmd.Printf("Track %s was not added (%s).\n", in.ExternalID, outcome)
	}
	return nil
}
