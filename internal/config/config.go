// Package config provides configuration loading and structs for the Substream server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Model   ModelConfig   `yaml:"model"`
	Search  SearchConfig  `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path to the catalog database.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ModelConfig holds feature weighting constants for the content model.
// The defaults are tuned empirically; changing them changes every score
// the engine produces, so treat them as configuration with stable defaults.
type ModelConfig struct {
	TermWeight     float64 `yaml:"term_weight"`
	SynopsisWeight float64 `yaml:"synopsis_weight"`
	BigramWeight   float64 `yaml:"bigram_weight"`
	MaxRepeat      float64 `yaml:"max_repeat"`
}

// SearchConfig holds hybrid ranking weights and thresholds.
type SearchConfig struct {
	VectorWeight     float64 `yaml:"vector_weight"`
	KeywordWeight    float64 `yaml:"keyword_weight"`
	MinCombinedScore float64 `yaml:"min_combined_score"`
	MinVectorScore   float64 `yaml:"min_vector_score"`
	CoverageBonus    float64 `yaml:"coverage_bonus"`
	HybridLimit      int     `yaml:"hybrid_limit"`
	VectorLimit      int     `yaml:"vector_limit"`
	RecommendLimit   int     `yaml:"recommend_limit"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands the database path. Returns an error if the file cannot be read
// or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, filepath.Dir(path))

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
