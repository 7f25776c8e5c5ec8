package cmd

import (
	"fmt"
	"os"

	"github.com/notably/recall/internal/config"
	"github.com/notably/recall/internal/database"
	"github.com/notably/recall/internal/embeddings"
	"github.com/notably/recall/internal/logger"
	"github.com/notably/recall/internal/models"
	"github.com/notably/recall/internal/search"
	"github.com/spf13/cobra"
)

var (
	db        *database.DB
	noteRepo  *models.NoteRepository
	pipeline  *embeddings.Pipeline
	searchSvc *search.Service
	indexer   *search.Indexer
	appConfig *config.Config
	debugFlag bool
	Version   = "dev" // Version is set from main.go
)

var rootCmd = &cobra.Command{
	Use:     "recall",
	Short:   "A note backend with similarity-based memory recall",
	Version: Version,
	Long: `recall is a note-taking backend whose core is similarity search:
as you write, it surfaces your most relevant past notes, ranked by embedding
cosine similarity with a cheap text-overlap fallback.

First time users should run 'recall init' to set up the configuration.`,
}

func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initAppConfig)
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

func initAppConfig() {
	// Skip initialization for the init command
	if len(os.Args) > 1 && os.Args[1] == "init" {
		return
	}

	var err error
	appConfig, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please run 'recall init' to set up the configuration.\n")
		os.Exit(1)
	}

	if debugFlag || appConfig.Debug {
		logger.SetDebugMode(true)
		logger.Debug("Data directory: %s", appConfig.DataDirectory)
		logger.Debug("Ollama endpoint: %s", appConfig.OllamaEndpoint)
		logger.Debug("Vector search enabled: %v", appConfig.EnableVectorSearch)
		logger.Debug("Embedding model: %s", appConfig.EmbeddingModel)
	}

	db, err = database.New(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
		os.Exit(1)
	}

	noteRepo = models.NewNoteRepository(db.Conn())
	pipeline = embeddings.NewPipeline(embeddings.NewOllamaProvider(appConfig))
	searchSvc = search.NewService(noteRepo, pipeline, appConfig)
	indexer = search.NewIndexer(noteRepo, pipeline)
}
