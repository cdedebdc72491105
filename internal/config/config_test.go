package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 1200 || cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("chunk defaults = %d/%d, want 1200/200", cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	}
	if cfg.Sampling.TimeStride != 10 || cfg.Sampling.LatStride != 10 || cfg.Sampling.LonStride != 10 {
		t.Errorf("stride defaults = %d/%d/%d, want 10/10/10",
			cfg.Sampling.TimeStride, cfg.Sampling.LatStride, cfg.Sampling.LonStride)
	}
	if *cfg.Sampling.MinTemp != -5 || *cfg.Sampling.MaxTemp != 50 {
		t.Errorf("temp bounds = [%v, %v], want [-5, 50]", *cfg.Sampling.MinTemp, *cfg.Sampling.MaxTemp)
	}
	if *cfg.Sampling.MinSal != 0 || *cfg.Sampling.MaxSal != 50 {
		t.Errorf("sal bounds = [%v, %v], want [0, 50]", *cfg.Sampling.MinSal, *cfg.Sampling.MaxSal)
	}
	if cfg.Query.TopK != 8 {
		t.Errorf("top_k default = %d, want 8", cfg.Query.TopK)
	}
	if cfg.Vector.Type != "sqlite" || cfg.Vector.Collection != "argo_profiles" {
		t.Errorf("vector defaults = %s/%s", cfg.Vector.Type, cfg.Vector.Collection)
	}
	if cfg.Ollama.EmbedModel != "nomic-embed-text" {
		t.Errorf("embed model default = %s", cfg.Ollama.EmbedModel)
	}
}

func TestApplyDefaults_KeepsConfiguredZeroBounds(t *testing.T) {
	zero := 0.0
	cfg := &Config{}
	cfg.Sampling.MinTemp = &zero
	ApplyDefaults(cfg)
	if *cfg.Sampling.MinTemp != 0 {
		t.Errorf("configured zero min_temp was overridden: %v", *cfg.Sampling.MinTemp)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  port: 9999
storage:
  database_path: ./db/floatchat.db
ingest:
  chunk_size: 800
sampling:
  time_stride: 5
  min_temp: -2
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Ingest.ChunkSize != 800 {
		t.Errorf("chunk_size = %d, want 800", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.ChunkOverlap != 200 {
		t.Errorf("chunk_overlap default = %d, want 200", cfg.Ingest.ChunkOverlap)
	}
	if cfg.Sampling.TimeStride != 5 {
		t.Errorf("time_stride = %d, want 5", cfg.Sampling.TimeStride)
	}
	if *cfg.Sampling.MinTemp != -2 {
		t.Errorf("min_temp = %v, want -2", *cfg.Sampling.MinTemp)
	}
	// Relative "./" paths resolve against the config directory.
	if cfg.Storage.DatabasePath != filepath.Join(dir, "db/floatchat.db") {
		t.Errorf("database_path = %s", cfg.Storage.DatabasePath)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
