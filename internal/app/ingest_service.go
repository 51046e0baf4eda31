package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"pdfchatbot/internal/model"
)

// UpsertBatchSize is the fixed number of records written per index call.
const UpsertBatchSize = 100

type Stage string

const (
	StageReceived  Stage = "received"
	StageExtracted Stage = "extracted"
	StageChunked   Stage = "chunked"
	StageEmbedded  Stage = "embedded"
	StageUpserted  Stage = "upserted"
	StageComplete  Stage = "complete"
	StageFailed    Stage = "failed"
)

type IngestService struct {
	loader   PageLoader
	chunker  Chunker
	embedder Embedder
	index    VectorIndex
	events   EventPublisher
	timeouts Timeouts
	logger   *zap.Logger
}

// NewIngestService builds the ingestion pipeline. events may be nil.
func NewIngestService(
	loader PageLoader,
	chunker Chunker,
	embedder Embedder,
	index VectorIndex,
	events EventPublisher,
	timeouts Timeouts,
	logger *zap.Logger,
) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		events:   events,
		timeouts: timeouts,
		logger:   logger,
	}
}

// IngestInput names a staged upload. FileName is the client's original name.
type IngestInput struct {
	FileName string
	Path     string
}

type IngestResult struct {
	DocumentID string `json:"documentId"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
	Batches    int    `json:"batches"`
	Stage      Stage  `json:"stage"`
}

// StageError reports the stage an ingestion stopped at.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Ingest loads, chunks, embeds and upserts one PDF.
// Batches already written stay in the index if a later step fails.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	name := input.FileName
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(input.Path)
	}
	result := &IngestResult{
		DocumentID: model.DocumentIDFromFileName(name),
		Stage:      StageReceived,
	}

	attempting := StageReceived
	err := s.run(ctx, input, result, &attempting)
	if err != nil {
		err = &StageError{Stage: attempting, Err: err}
		s.logger.Warn("ingest failed",
			zap.String("document_id", result.DocumentID),
			zap.String("stage", string(attempting)),
			zap.Int("batches", result.Batches),
			zap.Error(err))
		result.Stage = StageFailed
	} else {
		result.Stage = StageComplete
		s.logger.Info("ingest complete",
			zap.String("document_id", result.DocumentID),
			zap.Int("pages", result.Pages),
			zap.Int("chunks", result.Chunks),
			zap.Int("batches", result.Batches))
	}
	s.publish(ctx, name, result, err)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// run records in attempting the stage each step is working towards.
func (s *IngestService) run(ctx context.Context, input IngestInput, result *IngestResult, attempting *Stage) error {
	if strings.TrimSpace(input.Path) == "" {
		return invalidInput("no file uploaded")
	}

	*attempting = StageExtracted
	pages, err := s.loader.LoadPages(ctx, input.Path)
	if err != nil {
		return fmt.Errorf("load pdf pages failed: %w", err)
	}
	if !hasText(pages) {
		return ErrNoExtractableText
	}
	result.Pages = len(pages)

	var buffer []model.VectorRecord
	for _, page := range pages {
		*attempting = StageChunked
		chunks, err := s.chunker.ChunkPage(result.DocumentID, page, result.Chunks)
		if err != nil {
			return fmt.Errorf("chunk page %d failed: %w", page.Number, err)
		}
		if len(chunks) == 0 {
			continue
		}

		*attempting = StageEmbedded
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = strings.ReplaceAll(c.Text, "\n", " ")
		}
		vectors, err := s.embedPage(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed page %d failed: %w", page.Number, err)
		}

		for i, c := range chunks {
			buffer = append(buffer, model.NewVectorRecord(c, input.Path, vectors[i]))
		}
		result.Chunks += len(chunks)

		for len(buffer) >= UpsertBatchSize {
			*attempting = StageUpserted
			if err := s.upsert(ctx, buffer[:UpsertBatchSize]); err != nil {
				return fmt.Errorf("upsert batch %d failed: %w", result.Batches+1, err)
			}
			result.Batches++
			buffer = buffer[UpsertBatchSize:]
		}
	}

	if result.Chunks == 0 {
		return ErrNoExtractableText
	}
	if len(buffer) > 0 {
		*attempting = StageUpserted
		if err := s.upsert(ctx, buffer); err != nil {
			return fmt.Errorf("upsert batch %d failed: %w", result.Batches+1, err)
		}
		result.Batches++
	}
	return nil
}

func (s *IngestService) embedPage(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := withTimeout(ctx, s.timeouts.LLM)
	defer cancel()

	vectors, err := s.embedder.EmbedMany(callCtx, texts)
	if err != nil {
		return nil, serviceError("embed", err)
	}
	if len(vectors) != len(texts) {
		return nil, serviceError("embed", fmt.Errorf("got %d vectors for %d texts", len(vectors), len(texts)))
	}
	return vectors, nil
}

func (s *IngestService) upsert(ctx context.Context, records []model.VectorRecord) error {
	callCtx, cancel := withTimeout(ctx, s.timeouts.Index)
	defer cancel()

	batch := make([]model.VectorRecord, len(records))
	copy(batch, records)
	return serviceError("index upsert", s.index.Upsert(callCtx, batch))
}

func (s *IngestService) publish(ctx context.Context, fileName string, result *IngestResult, ingestErr error) {
	if s.events == nil {
		return
	}
	event := model.IngestionEvent{
		DocumentID: result.DocumentID,
		FileName:   fileName,
		Stage:      string(result.Stage),
		Pages:      result.Pages,
		Chunks:     result.Chunks,
		Batches:    result.Batches,
		OccurredAt: time.Now().UTC(),
	}
	if ingestErr != nil {
		event.Error = ingestErr.Error()
	}

	pubCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.timeouts.Index)
	defer cancel()
	if err := s.events.PublishIngestion(pubCtx, event); err != nil {
		s.logger.Warn("publish ingestion event failed",
			zap.String("document_id", result.DocumentID),
			zap.Error(err))
	}
}

func hasText(pages []model.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
