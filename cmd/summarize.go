package cmd

import (
	"fmt"
	"strconv"

	interrors "github.com/notably/recall/internal/errors"
	"github.com/notably/recall/internal/summarize"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [id]",
	Short: "Generate a summary for a note",
	Long: `Generate a summary and key points for a note using the configured
summarization model, and store the summary on the note.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(_ *cobra.Command, args []string) error {
	if !appConfig.EnableSummarization {
		return fmt.Errorf("summarization is disabled in configuration")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return interrors.ErrInvalidNoteID
	}

	note, err := noteRepo.GetByID(id)
	if err != nil {
		return err
	}

	summarizer := summarize.NewSummarizer(appConfig)

	fmt.Printf("Summarizing note %d (%s)...\n\n", note.ID, note.Title)
	result, err := summarizer.SummarizeNote(note)
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	if err := noteRepo.UpdateSummary(id, result.Summary); err != nil {
		fmt.Printf("Warning: could not store summary: %v\n", err)
	}

	fmt.Println(result.Summary)
	if len(result.KeyPoints) > 0 {
		fmt.Println("\nKey points:")
		for _, kp := range result.KeyPoints {
			fmt.Printf("- %s\n", kp)
		}
	}
	fmt.Printf("\nGenerated with %s (~%d tokens)\n", result.Model, result.TokenCount)

	return nil
}
