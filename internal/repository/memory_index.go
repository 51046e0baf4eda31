package repository

import (
	"context"
	"fmt"
	"sync"

	"pdfchatbot/internal/model"
)

// MemoryIndex keeps records in process memory. Contents are lost on restart.
type MemoryIndex struct {
	mu        sync.RWMutex
	records   map[string]model.VectorRecord
	dimension int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]model.VectorRecord)}
}

func (m *MemoryIndex) EnsureIndex(_ context.Context, spec model.IndexSpec) error {
	if err := checkCosine(spec.Metric); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimension = spec.Dimension
	return nil
}

func (m *MemoryIndex) Upsert(ctx context.Context, records []model.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if m.dimension > 0 && len(rec.Values) != m.dimension {
			return fmt.Errorf("record %s: %w", rec.ID, ErrDimensionMismatch)
		}
	}
	for _, rec := range records {
		rec.Values = append([]float32(nil), rec.Values...)
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]model.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]model.Match, 0, len(m.records))
	for id, rec := range m.records {
		match := model.Match{ID: id, Score: cosineSimilarity(vector, rec.Values)}
		if includeMetadata {
			match.Metadata = rec.Metadata
		}
		matches = append(matches, match)
	}
	return topMatches(matches, topK), nil
}

func (m *MemoryIndex) Ping(context.Context) error { return nil }

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
