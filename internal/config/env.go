package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Best effort: a missing .env is not an error.
	_ = godotenv.Load()
}

// applyEnvOverrides applies environment variables on top of file values.
// The variable names match the original deployment convention so existing
// .env files keep working.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		cfg.Ollama.URL = v
	}
	if v := os.Getenv("EMB_MODEL"); v != "" {
		cfg.Ollama.EmbedModel = v
	}
	if v := os.Getenv("GEN_MODEL"); v != "" {
		cfg.Ollama.GenModel = v
	}
	if v := os.Getenv("COLLECTION"); v != "" {
		cfg.Vector.Collection = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if n, ok := envInt("CHUNK_SIZE"); ok {
		cfg.Ingest.ChunkSize = n
	}
	if n, ok := envInt("CHUNK_OVERLAP"); ok {
		cfg.Ingest.ChunkOverlap = n
	}
	if n, ok := envInt("TOP_K"); ok {
		cfg.Query.TopK = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
