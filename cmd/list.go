package cmd

import (
	"fmt"
	"strings"

	"github.com/notably/recall/internal/constants"
	"github.com/notably/recall/internal/rank"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE:  runList,
}

var (
	listLimit  int
	listOffset int
	listShort  bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", constants.DefaultListLimit, "Maximum number of notes to show")
	listCmd.Flags().IntVarP(&listOffset, "offset", "o", 0, "Number of notes to skip")
	listCmd.Flags().BoolVarP(&listShort, "short", "s", false, "Show only ID and title")
}

func runList(_ *cobra.Command, args []string) error {
	notes, err := noteRepo.List(listLimit, listOffset)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	if len(notes) == 0 {
		fmt.Println("No notes found.")
		return nil
	}

	for _, note := range notes {
		if listShort {
			fmt.Printf("[%d] %s\n", note.ID, note.Title)
			continue
		}
		fmt.Printf("ID: %d\n", note.ID)
		fmt.Printf("Title: %s\n", note.Title)
		fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
		preview := strings.ReplaceAll(rank.Preview(note.Content), "\n", " ")
		fmt.Printf("Preview: %s\n", preview)
		fmt.Println(strings.Repeat("-", 60))
	}

	return nil
}
