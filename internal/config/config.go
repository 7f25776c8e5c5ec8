package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/notably/recall/internal/constants"
)

type Config struct {
	DatabasePath  string `json:"database_path,omitempty"`
	DataDirectory string `json:"data_directory,omitempty"`

	// Embedding settings
	OllamaEndpoint     string `json:"ollama_endpoint"`
	EmbeddingModel     string `json:"embedding_model"`
	VectorDimensions   int    `json:"vector_dimensions"`
	EnableVectorSearch bool   `json:"enable_vector_search"`

	// Summarization settings
	SummarizationModel  string `json:"summarization_model,omitempty"`
	EnableSummarization bool   `json:"enable_summarization"`

	// Recall settings
	RecallDebounceMillis int `json:"recall_debounce_millis"`
	RecallCacheSize      int `json:"recall_cache_size"`
	RecallMinQueryLength int `json:"recall_min_query_length"`

	Debug bool `json:"debug"`
}

// getDefaultConfig returns a fresh copy of the default configuration
func getDefaultConfig() Config {
	return Config{
		DatabasePath:  "", // Will be set to DataDirectory/notes.db
		DataDirectory: "", // Will be set to ~/.local/share/recall

		OllamaEndpoint:     "http://localhost:11434",
		EmbeddingModel:     "nomic-embed-text",
		VectorDimensions:   384,
		EnableVectorSearch: true,

		SummarizationModel:  "llama3.2:latest",
		EnableSummarization: true,

		RecallDebounceMillis: constants.DefaultDebounceMillis,
		RecallCacheSize:      constants.DefaultCacheSize,
		RecallMinQueryLength: constants.MinRecallQueryLength,

		Debug: false,
	}
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "recall", "config.json"), nil
}

func GetDefaultDataDirectory() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".recall")
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "recall")
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// Return default config if the file doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := getDefaultConfig()
		applyDefaults(&cfg)
		return &cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := getDefaultConfig()

	if cfg.DataDirectory == "" {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDirectory, "notes.db")
	}
	if cfg.OllamaEndpoint == "" {
		cfg.OllamaEndpoint = defaults.OllamaEndpoint
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaults.EmbeddingModel
	}
	if cfg.VectorDimensions == 0 {
		cfg.VectorDimensions = defaults.VectorDimensions
	}
	if cfg.SummarizationModel == "" {
		cfg.SummarizationModel = defaults.SummarizationModel
	}
	if cfg.RecallDebounceMillis == 0 {
		cfg.RecallDebounceMillis = defaults.RecallDebounceMillis
	}
	if cfg.RecallCacheSize == 0 {
		cfg.RecallCacheSize = defaults.RecallCacheSize
	}
	if cfg.RecallMinQueryLength == 0 {
		cfg.RecallMinQueryLength = defaults.RecallMinQueryLength
	}
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if cfg.DataDirectory != "" {
		if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, constants.ConfigFileMode); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func InitializeConfig(dataDir, ollamaEndpoint string) (*Config, error) {
	cfg := getDefaultConfig()

	if dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		cfg.DataDirectory = GetDefaultDataDirectory()
	}

	cfg.DatabasePath = filepath.Join(cfg.DataDirectory, "notes.db")

	if ollamaEndpoint != "" {
		cfg.OllamaEndpoint = ollamaEndpoint
	}

	if err := Save(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) GetDatabasePath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDirectory, "notes.db")
}

func (c *Config) GetOllamaAPIURL(endpoint string) string {
	return fmt.Sprintf("%s/api/%s", c.OllamaEndpoint, endpoint)
}
