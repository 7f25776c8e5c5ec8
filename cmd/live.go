package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/notably/recall/internal/constants"
	"github.com/notably/recall/internal/rank"
	"github.com/notably/recall/internal/recall"
	"github.com/spf13/cobra"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Interactively surface similar notes while you type",
	Long: `Read lines from stdin and surface the most similar notes after each one.

Input is debounced and results are cached per query, so repeating or quickly
revising a line does not trigger extra lookups. Intended for wiring into
editors; also usable directly for exploration. Type 'quit' to exit.`,
	RunE: runLive,
}

var (
	liveLimit     int
	liveExcludeID int
)

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.Flags().IntVarP(&liveLimit, "limit", "l", constants.DefaultSearchLimit, "Maximum number of results (capped at 20)")
	liveCmd.Flags().IntVar(&liveExcludeID, "exclude", 0, "Note ID to exclude from results, e.g. the note being edited")
}

func runLive(_ *cobra.Command, args []string) error {
	fetch := func(query string, limit, excludeID int) ([]rank.ScoredCandidate, error) {
		response, err := searchSvc.Search(query, limit, excludeID)
		if err != nil {
			return nil, err
		}
		return response.Results, nil
	}

	display := func(results []rank.ScoredCandidate) {
		if results == nil {
			return
		}
		if len(results) == 0 {
			fmt.Println("  (no similar notes)")
			return
		}
		for _, result := range results {
			fmt.Printf("  [%d] %s (%.2f)\n", result.Note.ID, result.Note.Title, result.Score)
		}
	}

	session := recall.NewSession(fetch, display,
		recall.WithDebounceInterval(time.Duration(appConfig.RecallDebounceMillis)*time.Millisecond),
		recall.WithStore(recall.NewFIFOStore(appConfig.RecallCacheSize)),
		recall.WithMinQueryLength(appConfig.RecallMinQueryLength),
	)

	fmt.Println("Type to see similar notes; 'quit' to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			break
		}
		session.FindSimilar(line, liveLimit, liveExcludeID)
	}

	// Let a trailing debounced lookup finish before exiting
	time.Sleep(time.Duration(appConfig.RecallDebounceMillis)*time.Millisecond + 200*time.Millisecond)

	return scanner.Err()
}
