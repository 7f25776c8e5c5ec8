package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/notably/recall/internal/api"
	"github.com/notably/recall/internal/logger"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start an HTTP API server that exposes recall functionality via REST endpoints.

The server provides endpoints for:

- Notes CRUD operations
- Similar-note search (embedding similarity with text fallback)
- Summarization
- Statistics and health

Examples:
  recall serve                               # Start on localhost:8080
  recall serve --host 0.0.0.0 --port 3000    # Start on all interfaces, port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind the server to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to bind the server to")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("Initializing HTTP API server...")

	apiServer := api.NewAPIServer(appConfig, noteRepo, searchSvc, indexer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- apiServer.Start(serveHost, servePort)
	}()

	fmt.Printf("Server URL: http://%s:%d\n", serveHost, servePort)
	fmt.Printf("Health:     http://%s:%d/api/v1/health\n", serveHost, servePort)
	fmt.Println("Press Ctrl+C to stop the server")

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigChan:
		fmt.Println("\nShutting down server...")
		if err := apiServer.Stop(); err != nil {
			return fmt.Errorf("failed to stop server cleanly: %w", err)
		}
	}

	return nil
}
