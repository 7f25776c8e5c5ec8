package cmd

import (
	"fmt"
	"strings"

	"github.com/notably/recall/internal/constants"
	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar [query]",
	Short: "Find notes similar to a query",
	Long: `Find notes similar to a free-text query.

When stored embeddings are available and the query can be embedded, results
are ranked by cosine similarity. Otherwise a text-overlap heuristic ranks
them, and the output is marked as fallback mode.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

var (
	similarLimit     int
	similarExcludeID int
)

func init() {
	rootCmd.AddCommand(similarCmd)
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", constants.DefaultSearchLimit, "Maximum number of results (capped at 20)")
	similarCmd.Flags().IntVar(&similarExcludeID, "exclude", 0, "Note ID to exclude from results")
}

func runSimilar(_ *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	response, err := searchSvc.Search(query, similarLimit, similarExcludeID)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(response.Results) == 0 {
		fmt.Println("No similar notes found.")
		return nil
	}

	if response.FallbackMode {
		fmt.Printf("Found %d similar notes (text-overlap fallback):\n\n", len(response.Results))
	} else {
		fmt.Printf("Found %d similar notes (embedding similarity):\n\n", len(response.Results))
	}

	for i, result := range response.Results {
		fmt.Printf("Match %d (score: %.2f):\n", i+1, result.Score)
		fmt.Printf("ID: %d\n", result.Note.ID)
		fmt.Printf("Title: %s\n", result.Note.Title)
		fmt.Printf("Created: %s\n", result.Note.CreatedAt.Format("2006-01-02 15:04:05"))
		if len(result.MatchedTerms) > 0 {
			fmt.Printf("Matched: %s\n", strings.Join(result.MatchedTerms, ", "))
		}
		if result.Note.Summary != "" {
			fmt.Printf("Summary: %s\n", result.Note.Summary)
		}
		preview := strings.ReplaceAll(result.Preview, "\n", " ")
		fmt.Printf("Preview: %s\n", preview)
		fmt.Println(strings.Repeat("-", 60))
	}

	return nil
}
