package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/core/domain"
)

var (
	recommendTopK            int
	recommendExcludeFallback bool
	recommendJSON            bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <track-id>",
	Short: "Find tracks that sound alike",
	Long: `Ranks every other stored track by cosine similarity between audio
embeddings and prints the closest matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendTopK, "top-k", "k", domain.DefaultTopK, "maximum number of results")
	recommendCmd.Flags().BoolVar(&recommendExcludeFallback, "exclude-fallback", false,
		"skip tracks stored with a fallback embedding")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}

	recs, err := recommendationService.Recommend(cmd.Context(), args[0], domain.RecommendOptions{
		TopK:            recommendTopK,
		ExcludeFallback: recommendExcludeFallback,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("track %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("recommend failed: %w", err)
	}

	if recommendJSON {
		data, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(recs) == 0 {
		cmd.Println("No similar tracks found.")
		return nil
	}

	cmd.Printf("Tracks similar to %s:\n", args[0])
	cmd.Println()
	for i, r := range recs {
		marker := ""
		if r.Fallback {
			marker = " [fallback]"
		}
		cmd.Printf("  [%d] %s - %s (%.4f)%s\n", i+1, r.Name, r.Composer, r.Score, marker)
		cmd.Printf("      ID: %s\n", r.ExternalID)
	}
	return nil
}
