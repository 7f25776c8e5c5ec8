package cmd

import (
	"fmt"
	"strconv"

	interrors "github.com/notably/recall/internal/errors"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a note by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(_ *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return interrors.ErrInvalidNoteID
	}

	note, err := noteRepo.GetByID(id)
	if err != nil {
		return err
	}

	fmt.Printf("ID: %d\n", note.ID)
	fmt.Printf("Title: %s\n", note.Title)
	fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated: %s\n", note.UpdatedAt.Format("2006-01-02 15:04:05"))
	if note.Summary != "" {
		fmt.Printf("Summary: %s\n", note.Summary)
	}
	fmt.Printf("\n%s\n", note.Content)

	return nil
}
