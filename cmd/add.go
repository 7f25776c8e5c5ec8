package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	interrors "github.com/notably/recall/internal/errors"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new note",
	Long: `Add a new note with a title and content.

Content can be provided in two ways:
1. Via --content flag: recall add -t "Title" -c "Content"
2. Via stdin: echo "Content" | recall add -t "Title"

After the note is written, an embedding is generated in the background path;
if embedding fails the note is still saved.`,
	RunE: runAdd,
}

var (
	addTitle   string
	addContent string
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Note title (required)")
	addCmd.Flags().StringVarP(&addContent, "content", "c", "", "Note content")
	_ = addCmd.MarkFlagRequired("title")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addContent == "" {
		stat, _ := os.Stdin.Stat()
		isPiped := (stat.Mode() & os.ModeCharDevice) == 0

		if isPiped {
			scanner := bufio.NewScanner(os.Stdin)
			var lines []string
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			addContent = strings.Join(lines, "\n")
		} else {
			fmt.Println("Enter note content (press Ctrl+D when finished):")
			scanner := bufio.NewScanner(os.Stdin)
			var lines []string
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			addContent = strings.Join(lines, "\n")
		}
	}

	if addContent == "" {
		return interrors.ErrEmptyContent
	}

	note, err := noteRepo.Create(addTitle, addContent)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	// Embedding failures never fail the write
	if err := indexer.IndexNote(note); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to generate embedding: %v\n", err)
	}

	fmt.Printf("Note created successfully!\n")
	fmt.Printf("ID: %d\n", note.ID)
	fmt.Printf("Title: %s\n", note.Title)
	fmt.Printf("Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04:05"))

	return nil
}
