// Package config loads application configuration from ~/.docchat/config.yaml,
// falling back to defaults when the file is absent. API keys come from the
// environment, never from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Provider struct {
		BaseURL         string `yaml:"base_url"`
		APIKeyEnv       string `yaml:"api_key_env"`
		ChatModel       string `yaml:"chat_model"`
		EmbedModel      string `yaml:"embed_model"`
		MaxAnswerTokens int    `yaml:"max_answer_tokens"`
	} `yaml:"provider"`
	Store struct {
		// Backend selects the vector store: chromem, pgvector, or memory.
		Backend          string `yaml:"backend"`
		Path             string `yaml:"path"`
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"store"`
	Processing struct {
		MaxTokens     int  `yaml:"max_tokens"`
		MaxChars      int  `yaml:"max_chars"`
		TopK          int  `yaml:"top_k"`
		StoreFullText bool `yaml:"store_full_text"`
	} `yaml:"processing"`
	Paths struct {
		UploadsDir string `yaml:"uploads_dir"`
	} `yaml:"paths"`
}

// APIKey resolves the provider API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.Provider.APIKeyEnv)
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(configDir(), "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644)
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Provider.BaseURL = "https://api.openai.com/v1"
	cfg.Provider.APIKeyEnv = "OPENAI_API_KEY"
	cfg.Provider.ChatModel = "gpt-4o"
	cfg.Provider.EmbedModel = "text-embedding-ada-002"
	cfg.Provider.MaxAnswerTokens = 500

	cfg.Store.Backend = "chromem"
	cfg.Store.Path = filepath.Join(configDir(), "index")
	cfg.Store.ConnectionString = "postgres://postgres@localhost/postgres?sslmode=disable"

	cfg.Processing.MaxTokens = 8191
	cfg.Processing.MaxChars = 30000
	cfg.Processing.TopK = 3
	cfg.Processing.StoreFullText = true

	cfg.Paths.UploadsDir = filepath.Join(configDir(), "uploads")

	return cfg
}

func configDir() string {
	return filepath.Join(os.Getenv("HOME"), ".docchat")
}
