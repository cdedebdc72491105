package config

// Default value-sanity bounds for surface measurements. Readings outside
// these ranges are treated as sensor artifacts and skipped during sampling.
const (
	DefaultMinTemp = -5.0
	DefaultMaxTemp = 50.0
	DefaultMinSal  = 0.0
	DefaultMaxSal  = 50.0
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/floatchat.db"
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = "http://localhost:11434"
	}
	if cfg.Ollama.EmbedModel == "" {
		cfg.Ollama.EmbedModel = "nomic-embed-text"
	}
	if cfg.Ollama.GenModel == "" {
		cfg.Ollama.GenModel = "gemma2:2b"
	}
	if cfg.Ollama.Temperature == 0 {
		cfg.Ollama.Temperature = 0.2
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = 120
	}
	if cfg.Ollama.EmbedCacheSize == 0 {
		cfg.Ollama.EmbedCacheSize = 10000
	}
	if cfg.Ollama.EmbedDimensions == 0 {
		cfg.Ollama.EmbedDimensions = 768
	}
	if cfg.Ingest.DataDir == "" {
		cfg.Ingest.DataDir = "./data/raw/argo"
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1200
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 200
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 256
	}
	if cfg.Ingest.Extensions == nil {
		cfg.Ingest.Extensions = []string{".csv", ".txt", ".md", ".html", ".htm", ".pdf", ".xlsx", ".nc"}
	}
	if cfg.Sampling.TimeStride == 0 {
		cfg.Sampling.TimeStride = 10
	}
	if cfg.Sampling.LatStride == 0 {
		cfg.Sampling.LatStride = 10
	}
	if cfg.Sampling.LonStride == 0 {
		cfg.Sampling.LonStride = 10
	}
	if cfg.Sampling.MinTemp == nil {
		cfg.Sampling.MinTemp = floatPtr(DefaultMinTemp)
	}
	if cfg.Sampling.MaxTemp == nil {
		cfg.Sampling.MaxTemp = floatPtr(DefaultMaxTemp)
	}
	if cfg.Sampling.MinSal == nil {
		cfg.Sampling.MinSal = floatPtr(DefaultMinSal)
	}
	if cfg.Sampling.MaxSal == nil {
		cfg.Sampling.MaxSal = floatPtr(DefaultMaxSal)
	}
	if cfg.Query.TopK == 0 {
		cfg.Query.TopK = 8
	}
	if cfg.Query.MaxContextChars == 0 {
		cfg.Query.MaxContextChars = 6000
	}
	if cfg.Vector.Type == "" {
		cfg.Vector.Type = "sqlite"
	}
	if cfg.Vector.Collection == "" {
		cfg.Vector.Collection = "argo_profiles"
	}
	if cfg.Vector.Qdrant.URL == "" {
		cfg.Vector.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Vector.Qdrant.TimeoutSecs == 0 {
		cfg.Vector.Qdrant.TimeoutSecs = 15
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".csv", ".txt", ".md", ".html", ".htm", ".pdf", ".xlsx"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

func floatPtr(v float64) *float64 { return &v }
