package cmd

import (
	"fmt"
	"strconv"

	interrors "github.com/notably/recall/internal/errors"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a note by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return interrors.ErrInvalidNoteID
	}

	if err := noteRepo.Delete(id); err != nil {
		return err
	}

	fmt.Printf("Note %d deleted.\n", id)
	return nil
}
