// Package config provides configuration loading and structs for the FloatChat server.
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
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Ollama   OllamaConfig   `yaml:"ollama"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Sampling SamplingConfig `yaml:"sampling"`
	Query    QueryConfig    `yaml:"query"`
	Vector   VectorConfig   `yaml:"vector"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the path of the SQLite database that backs both the
// relational profile sink and the persistent vector collection.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// OllamaConfig holds settings for the Ollama embedding and generation backends.
type OllamaConfig struct {
	URL             string  `yaml:"url"`
	EmbedModel      string  `yaml:"embed_model"`
	GenModel        string  `yaml:"gen_model"`
	Temperature     float64 `yaml:"temperature"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
	EmbedCacheSize  int     `yaml:"embed_cache_size"`
	EmbedDimensions int     `yaml:"embed_dimensions"`
}

// IngestConfig holds chunking and batching settings for the ingestion pipeline.
type IngestConfig struct {
	DataDir      string   `yaml:"data_dir"`
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	BatchSize    int      `yaml:"batch_size"`
	Extensions   []string `yaml:"extensions"`
}

// SamplingConfig holds grid sampling strides and value sanity bounds.
// Bounds are pointers so that a configured zero is distinguishable from unset.
type SamplingConfig struct {
	TimeStride int      `yaml:"time_stride"`
	LatStride  int      `yaml:"lat_stride"`
	LonStride  int      `yaml:"lon_stride"`
	MinTemp    *float64 `yaml:"min_temp"`
	MaxTemp    *float64 `yaml:"max_temp"`
	MinSal     *float64 `yaml:"min_sal"`
	MaxSal     *float64 `yaml:"max_sal"`
}

// QueryConfig holds retrieval settings for the query path.
type QueryConfig struct {
	TopK            int `yaml:"top_k"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	Type       string       `yaml:"type"`
	Collection string       `yaml:"collection"`
	Qdrant     QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// WatchConfig holds directory watch settings for automatic ingestion.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies environment
// overrides and defaults, and expands relative paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Ingest.DataDir = expandPath(cfg.Ingest.DataDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
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
