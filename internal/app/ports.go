package app

import (
	"context"
	"time"

	"pdfchatbot/internal/model"
)

type PageLoader interface {
	LoadPages(ctx context.Context, path string) ([]model.Page, error)
}

type Chunker interface {
	ChunkPage(documentID string, page model.Page, startIndex int) ([]model.Chunk, error)
}

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the similarity store. Query returns at most topK matches, best first.
type VectorIndex interface {
	EnsureIndex(ctx context.Context, spec model.IndexSpec) error
	Upsert(ctx context.Context, records []model.VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]model.Match, error)
	Ping(ctx context.Context) error
}

type Completer interface {
	Answer(ctx context.Context, contextText, question string) (string, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type EventPublisher interface {
	PublishIngestion(ctx context.Context, event model.IngestionEvent) error
}

// Timeouts bound each outbound call. Zero disables the bound.
type Timeouts struct {
	LLM   time.Duration
	Index time.Duration
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
