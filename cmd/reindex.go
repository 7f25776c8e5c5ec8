package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Regenerate embeddings for all notes",
	Long: `Regenerate the embedding vector for every note.

Run this after changing the embedding model; vectors from different models
are never compared, so notes embedded with an old model stop participating
in similarity ranking until reindexed.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(_ *cobra.Command, args []string) error {
	fmt.Println("Regenerating embeddings for all notes...")

	indexed, skipped, failed, err := indexer.ReindexAll()
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("Done. Indexed: %d, skipped: %d, failed: %d\n", indexed, skipped, failed)
	if failed > 0 {
		fmt.Println("Failed notes keep their previous embedding (if any); run reindex again to retry.")
	}

	return nil
}
