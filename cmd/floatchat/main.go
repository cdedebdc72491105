// Package main is the FloatChat CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/floatchat/floatchat/internal/config"
	"github.com/floatchat/floatchat/internal/embedding"
	"github.com/floatchat/floatchat/internal/grid"
	"github.com/floatchat/floatchat/internal/ingest"
	"github.com/floatchat/floatchat/internal/llm"
	"github.com/floatchat/floatchat/internal/rag"
	"github.com/floatchat/floatchat/internal/server"
	"github.com/floatchat/floatchat/internal/store"
	"github.com/floatchat/floatchat/internal/vector"
	"github.com/floatchat/floatchat/internal/watcher"
	"github.com/floatchat/floatchat/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/floatchat/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("floatchat version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	pipeline := components.Pipeline
	watchSvc := watcher.New(
		watchRoots(cfg),
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			res := pipeline.Ingest(context.Background(), path)
			if res.Status != ingest.StatusIngested {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.String("details", res.Details))
			}
		},
		logger,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}

	srv := server.NewServer(
		components.Pipeline,
		components.Responder,
		components.Profiles,
		components.Index,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// watchRoots returns the directories to watch, defaulting to the ingest data
// directory when none are configured.
func watchRoots(cfg *config.Config) []string {
	if len(cfg.Watch.Directories) > 0 {
		return cfg.Watch.Directories
	}
	return []string{cfg.Ingest.DataDir}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	path := cfg.Ingest.DataDir
	if fs.NArg() > 0 {
		path = strings.TrimSpace(fs.Arg(0))
	}
	res := components.Pipeline.Ingest(context.Background(), path)
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	if res.Status != ingest.StatusIngested {
		os.Exit(1)
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	topK := fs.Int("top-k", 0, "number of chunks to retrieve (default from config)")
	showContexts := fs.Bool("contexts", false, "print retrieved contexts with the answer")
	_ = fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: floatchat ask [flags] <question>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	k := *topK
	if k <= 0 {
		k = cfg.Query.TopK
	}
	answer, err := components.Responder.Answer(context.Background(), question, rag.Options{
		TopK:            k,
		MaxContextChars: cfg.Query.MaxContextChars,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(answer.Answer)
	if *showContexts {
		fmt.Println("\nContexts:")
		for i, c := range answer.Contexts {
			fmt.Printf("  [%d] %s\n      %s\n", i+1, c.Source, c.Text)
		}
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize components: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	profileCount, err := components.Profiles.CountProfiles(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	chunkCount, err := components.Index.Count(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Profiles:   %d\n", profileCount)
	fmt.Printf("Chunks:     %d\n", chunkCount)
	fmt.Printf("Collection: %s (%s)\n", cfg.Vector.Collection, cfg.Vector.Type)
	fmt.Printf("Models:     embed=%s gen=%s\n", cfg.Ollama.EmbedModel, cfg.Ollama.GenModel)
}

// Components bundles initialized dependencies and owns their lifecycle.
type Components struct {
	Profiles  *store.ProfileStore
	Embedder  embedding.Embedder
	Index     vector.Index
	Pipeline  *ingest.Pipeline
	Responder *rag.Responder
}

func (c *Components) Close() {
	if c.Profiles != nil {
		_ = c.Profiles.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	profiles, err := store.NewProfileStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize profile store: %w", err)
	}

	timeout := time.Duration(cfg.Ollama.TimeoutSecs) * time.Second
	var embedder embedding.Embedder = embedding.NewOllamaEmbedder(
		cfg.Ollama.URL,
		cfg.Ollama.EmbedModel,
		cfg.Ollama.EmbedDimensions,
		timeout,
	)
	if cfg.Ollama.EmbedCacheSize > 0 {
		embedder = embedding.NewCachedEmbedder(embedder, cfg.Ollama.EmbedCacheSize)
	}

	index, err := vector.New(vector.Config{
		Type:         cfg.Vector.Type,
		Collection:   cfg.Vector.Collection,
		Dimensions:   cfg.Ollama.EmbedDimensions,
		DatabasePath: cfg.Storage.DatabasePath,
		QdrantURL:    cfg.Vector.Qdrant.URL,
		QdrantAPIKey: cfg.Vector.Qdrant.APIKey,
	})
	if err != nil {
		_ = profiles.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	logger.Info("vector index initialized",
		zap.String("type", cfg.Vector.Type),
		zap.String("collection", cfg.Vector.Collection))

	pipeline, err := ingest.NewPipeline(ingest.Config{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		BatchSize:    cfg.Ingest.BatchSize,
		Extensions:   cfg.Ingest.Extensions,
		Sampling:     samplingOptions(cfg),
	}, embedder, index, profiles, logger)
	if err != nil {
		_ = profiles.Close()
		_ = index.Close()
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	generator := llm.NewOllamaGenerator(llm.OllamaConfig{
		URL:         cfg.Ollama.URL,
		Model:       cfg.Ollama.GenModel,
		Temperature: float32(cfg.Ollama.Temperature),
		Timeout:     timeout,
	})
	responder := rag.NewResponder(embedder, index, generator, logger)

	return &Components{
		Profiles:  profiles,
		Embedder:  embedder,
		Index:     index,
		Pipeline:  pipeline,
		Responder: responder,
	}, nil
}

func samplingOptions(cfg *config.Config) grid.Options {
	opts := grid.DefaultOptions()
	if cfg.Sampling.TimeStride > 0 {
		opts.TimeStride = cfg.Sampling.TimeStride
	}
	if cfg.Sampling.LatStride > 0 {
		opts.LatStride = cfg.Sampling.LatStride
	}
	if cfg.Sampling.LonStride > 0 {
		opts.LonStride = cfg.Sampling.LonStride
	}
	if cfg.Sampling.MinTemp != nil {
		opts.MinTemp = *cfg.Sampling.MinTemp
	}
	if cfg.Sampling.MaxTemp != nil {
		opts.MaxTemp = *cfg.Sampling.MaxTemp
	}
	if cfg.Sampling.MinSal != nil {
		opts.MinSal = *cfg.Sampling.MinSal
	}
	if cfg.Sampling.MaxSal != nil {
		opts.MaxSal = *cfg.Sampling.MaxSal
	}
	return opts
}

func printUsage() {
	fmt.Println(`floatchat - ARGO ocean data assistant

Usage:
  floatchat server [flags]            Start the HTTP server
  floatchat ingest [flags] [path]     Ingest a file or directory (default: configured data dir)
  floatchat ask [flags] <question>    Ask a question against the ingested data
  floatchat status [flags]            Show profile and index counts
  floatchat version                   Show version
  floatchat help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/floatchat/config.yaml)
  --debug            Enable debug logging

Ingest Flags:
  --config string    Config file path

Ask Flags:
  --config string    Config file path
  --top-k int        Number of chunks to retrieve (default from config)
  --contexts         Print retrieved contexts with the answer

Examples:
  floatchat server
  floatchat ingest ./data/raw/argo
  floatchat ingest tempsal.nc
  floatchat ask "What is the average surface temperature near the equator?"
  floatchat ask --contexts "Where is salinity highest?"
  floatchat status`)
}
