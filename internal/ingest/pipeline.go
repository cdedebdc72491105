// Package ingest runs the ingestion pipeline: sample or extract, normalize,
// chunk, embed, and index.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/floatchat/floatchat/internal/chunker"
	"github.com/floatchat/floatchat/internal/embedding"
	"github.com/floatchat/floatchat/internal/extract"
	"github.com/floatchat/floatchat/internal/grid"
	"github.com/floatchat/floatchat/internal/models"
	"github.com/floatchat/floatchat/internal/normalize"
	"github.com/floatchat/floatchat/internal/store"
	"github.com/floatchat/floatchat/internal/vector"
)

// StatusIngested and StatusError are the two terminal ingestion statuses.
const (
	StatusIngested = "ingested"
	StatusError    = "error"
)

// DefaultBatchSize bounds peak memory and provider request size during
// embedding and index adds.
const DefaultBatchSize = 256

// Result is the structured outcome of an ingestion run. Ingestion never
// raises to its caller; failures land in Status and Details.
type Result struct {
	Status      string `json:"status"`
	AddedChunks int    `json:"added_chunks"`
	Skipped     int    `json:"skipped"`
	Details     string `json:"details"`
}

// Config parameterizes a pipeline.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	// BatchSize is the number of chunks embedded and added per batch.
	// Zero means DefaultBatchSize.
	BatchSize int
	// Extensions restricts directory ingestion to the listed file
	// extensions (with leading dot). Empty means all files.
	Extensions []string
	// Sampling controls virtual profile extraction from gridded files.
	Sampling grid.Options
}

// Pipeline turns data sources into indexed chunks. The profile store is
// optional; when set, sampled profiles are also written to the relational
// sink before indexing.
type Pipeline struct {
	chunker      *chunker.Chunker
	embedder     embedding.Embedder
	index        vector.Index
	profiles     *store.ProfileStore
	extractor    *extract.Extractor
	batchSize    int
	extensions   map[string]bool
	samplingOpts grid.Options
	logger       *zap.Logger
}

// NewPipeline creates a pipeline. profiles may be nil.
func NewPipeline(cfg Config, embedder embedding.Embedder, index vector.Index, profiles *store.ProfileStore, logger *zap.Logger) (*Pipeline, error) {
	ch, err := chunker.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var extensions map[string]bool
	if len(cfg.Extensions) > 0 {
		extensions = make(map[string]bool, len(cfg.Extensions))
		for _, ext := range cfg.Extensions {
			extensions[strings.ToLower(ext)] = true
		}
	}
	return &Pipeline{
		chunker:      ch,
		embedder:     embedder,
		index:        index,
		profiles:     profiles,
		extractor:    extract.NewExtractor(),
		batchSize:    batchSize,
		extensions:   extensions,
		samplingOpts: cfg.Sampling,
		logger:       logger,
	}, nil
}

// Ingest dispatches on the source: a directory is walked file by file, a
// .nc file goes through grid sampling, anything else through text
// extraction. The result is always structured, never an error.
func (p *Pipeline) Ingest(ctx context.Context, path string) *Result {
	info, err := os.Stat(path)
	if err != nil {
		return &Result{Status: StatusError, Details: fmt.Sprintf("stat %s: %v", path, err)}
	}
	if info.IsDir() {
		return p.IngestDirectory(ctx, path)
	}
	if strings.EqualFold(filepath.Ext(path), ".nc") {
		return p.IngestGrid(ctx, path)
	}
	return p.IngestFile(ctx, path)
}

// IngestGrid samples virtual profiles from a gridded NetCDF file, writes
// them to the relational sink, and indexes one knowledge unit per profile.
func (p *Pipeline) IngestGrid(ctx context.Context, path string) *Result {
	g, err := grid.LoadNetCDF(path)
	if err != nil {
		return &Result{Status: StatusError, Details: fmt.Sprintf("load grid %s: %v", path, err)}
	}
	profiles, err := grid.Sample(g, p.samplingOpts)
	if err != nil {
		return &Result{Status: StatusError, Details: fmt.Sprintf("sample grid %s: %v", path, err)}
	}
	return p.IngestProfiles(ctx, path, profiles)
}

// IngestProfiles writes sampled profiles to the relational sink and indexes
// one knowledge unit per profile.
func (p *Pipeline) IngestProfiles(ctx context.Context, source string, profiles []models.Profile) *Result {
	if p.profiles != nil {
		if err := p.profiles.SaveProfiles(ctx, profiles); err != nil {
			return &Result{Status: StatusError, Details: fmt.Sprintf("save profiles: %v", err)}
		}
	}

	units := normalize.Units(normalize.Source{
		Kind:     normalize.KindProfiles,
		Name:     source,
		Profiles: profiles,
	})
	added, err := p.indexUnits(ctx, units)
	if err != nil {
		return &Result{Status: StatusError, AddedChunks: added, Details: err.Error()}
	}

	p.logger.Info("ingested profiles",
		zap.String("source", source),
		zap.Int("profiles", len(profiles)),
		zap.Int("added_chunks", added))
	return &Result{
		Status:      StatusIngested,
		AddedChunks: added,
		Details:     fmt.Sprintf("sampled %d profiles from %s", len(profiles), filepath.Base(source)),
	}
}

// IngestFile extracts text from a single file and indexes it. CSV files
// become one unit per row; everything else becomes one document unit.
func (p *Pipeline) IngestFile(ctx context.Context, path string) *Result {
	src, err := p.fileSource(path)
	if err != nil {
		return &Result{Status: StatusError, Details: fmt.Sprintf("extract %s: %v", path, err)}
	}
	added, err := p.indexUnits(ctx, normalize.Units(*src))
	if err != nil {
		return &Result{Status: StatusError, AddedChunks: added, Details: err.Error()}
	}
	p.logger.Info("ingested file", zap.String("path", path), zap.Int("added_chunks", added))
	return &Result{
		Status:      StatusIngested,
		AddedChunks: added,
		Details:     fmt.Sprintf("indexed %s", filepath.Base(path)),
	}
}

// IngestDirectory walks dir and ingests every matching file. A file that
// fails is skipped and counted; the walk continues. Grid files abort the
// run only through their own result, never the directory's.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) *Result {
	var added, skipped int
	var failures []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if p.extensions != nil && !p.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		var res *Result
		if strings.EqualFold(filepath.Ext(path), ".nc") {
			res = p.IngestGrid(ctx, path)
		} else {
			res = p.IngestFile(ctx, path)
		}
		if res.Status != StatusIngested {
			skipped++
			failures = append(failures, res.Details)
			p.logger.Warn("skipped file", zap.String("path", path), zap.String("reason", res.Details))
			return nil
		}
		added += res.AddedChunks
		return nil
	})
	if err != nil {
		return &Result{Status: StatusError, AddedChunks: added, Skipped: skipped,
			Details: fmt.Sprintf("walk %s: %v", dir, err)}
	}

	details := fmt.Sprintf("ingested directory %s", dir)
	if skipped > 0 {
		details = fmt.Sprintf("%s (%d skipped: %s)", details, skipped, strings.Join(failures, "; "))
	}
	return &Result{Status: StatusIngested, AddedChunks: added, Skipped: skipped, Details: details}
}

// fileSource builds the normalization source for a file.
func (p *Pipeline) fileSource(path string) (*normalize.Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return csvSource(path)
	}
	text, err := p.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	return &normalize.Source{Kind: normalize.KindDocument, Name: path, Text: text}, nil
}

// csvSource reads a CSV file into a row source: the first record is the
// header, each following record becomes one knowledge unit.
func csvSource(path string) (*normalize.Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &normalize.Source{Kind: normalize.KindRows, Name: path}, nil
	}
	table := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &normalize.Source{
		Kind:    normalize.KindRows,
		Name:    path,
		Table:   table,
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

// indexUnits chunks units and indexes them in fixed-size batches. Each
// batch's add completes before the next batch is embedded; a failed batch
// aborts with the count of chunks already added.
func (p *Pipeline) indexUnits(ctx context.Context, units []models.KnowledgeUnit) (int, error) {
	var batch []models.Chunk
	added := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}
		vectors, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		entries := make([]vector.Entry, len(batch))
		for i, ch := range batch {
			entries[i] = vector.Entry{
				ID:       ch.ID,
				Vector:   vectors[i],
				Text:     ch.Text,
				Metadata: ch.Metadata,
			}
		}
		if err := p.index.Add(ctx, entries); err != nil {
			return fmt.Errorf("add batch to index: %w", err)
		}
		added += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, unit := range units {
		for _, ch := range p.chunker.Chunk(unit) {
			batch = append(batch, ch)
			if len(batch) >= p.batchSize {
				if err := flush(); err != nil {
					return added, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return added, err
	}
	return added, nil
}
