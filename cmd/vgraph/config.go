package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Command-line flags
// override anything set here.
type Config struct {
	// Database is the path to the data directory.
	Database string `yaml:"database"`

	AI struct {
		EmbeddingHost  string `yaml:"embedding_host"`
		EmbeddingModel string `yaml:"embedding_model"`
		ExtractorHost  string `yaml:"extractor_host"`
		ExtractorModel string `yaml:"extractor_model"`
	} `yaml:"ai"`

	Search struct {
		VectorWeight float64 `yaml:"vector_weight"`
		GraphWeight  float64 `yaml:"graph_weight"`
		TopK         int     `yaml:"top_k"`
		ExpandDepth  int     `yaml:"expand_depth"`
	} `yaml:"search"`
}

// loadConfig reads a YAML config file. A missing path returns an empty
// config so every setting falls back to flags and defaults.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
