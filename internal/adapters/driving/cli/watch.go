package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/adapters/driving/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Sync batch files dropped into a directory",
	Long: `Watches a directory for JSON batch files in the same format 'opus sync'
reads. Each file is synced once its writes settle and is then renamed with a
.done or .failed suffix. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("settle", inbox.DefaultSettle, "quiet period before a file is read")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	settle, err := cmd.Flags().GetDuration("settle")
	if err != nil {
		return fmt.Errorf("getting settle flag: %w", err)
	}

	w := inbox.New(args[0], syncService, inbox.WithSettle(settle))
	defer w.Close()

	results, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for batch files...\n", args[0])
	for r := range results {
		if r.Err != nil {
			cmd.Printf("%s: failed: %v\n", r.Path, r.Err)
			continue
		}
		cmd.Printf("%s: %d added, %d existing, %d skipped\n",
			r.Path, r.Report.Added, r.Report.Existing, r.Report.Skipped)
	}
	return nil
}
