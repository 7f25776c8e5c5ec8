package cmd

import (
	"fmt"

	"github.com/notably/recall/internal/config"
	"github.com/spf13/cobra"
)

var (
	initDataDir        string
	initOllamaEndpoint string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize recall configuration",
	Long: `Initialize the recall configuration file with data directory and
embedding service settings. Run this once before using other commands.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "Directory for the notes database (default: ~/.local/share/recall)")
	initCmd.Flags().StringVar(&initOllamaEndpoint, "ollama-endpoint", "", "Ollama endpoint for embeddings and summaries (default: http://localhost:11434)")
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.InitializeConfig(initDataDir, initOllamaEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	fmt.Println("Configuration initialized successfully!")
	fmt.Printf("Config file: %s\n", configPath)
	fmt.Printf("Data directory: %s\n", cfg.DataDirectory)
	fmt.Printf("Ollama endpoint: %s\n", cfg.OllamaEndpoint)
	fmt.Printf("Embedding model: %s\n", cfg.EmbeddingModel)

	return nil
}
