package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
)

// Embedder turns text into fixed-length vectors. Results are never cached.
type Embedder struct {
	impl      embeddings.Embedder
	dimension int
}

// NewEmbedder wraps client. A dimension of 0 skips the length check.
func NewEmbedder(client embeddings.EmbedderClient, dimension, batchSize int) (*Embedder, error) {
	opts := []embeddings.Option{}
	if batchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(batchSize))
	}
	impl, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder failed: %w", err)
	}
	return &Embedder{impl: impl, dimension: dimension}, nil
}

// EmbedMany returns one vector per text, in order.
func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if err := e.checkDimension(v); err != nil {
			return nil, fmt.Errorf("embedding %d: %w", i, err)
		}
	}
	return vectors, nil
}

func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if err := e.checkDimension(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

func (e *Embedder) checkDimension(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("empty embedding in response")
	}
	if e.dimension > 0 && len(v) != e.dimension {
		return fmt.Errorf("embedding dimension %d does not match index dimension %d", len(v), e.dimension)
	}
	return nil
}
