package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchatbot/internal/model"
)

func record(id, text string, values ...float32) model.VectorRecord {
	return model.VectorRecord{ID: id, Values: values, Metadata: model.RecordMetadata{Text: text, DocumentID: "doc"}}
}

func TestMemoryIndex_QueryRanksByCosine(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.EnsureIndex(ctx, model.IndexSpec{Name: "t", Dimension: 2, Metric: model.MetricCosine}))

	require.NoError(t, idx.Upsert(ctx, []model.VectorRecord{
		record("a", "east", 1, 0),
		record("b", "north", 0, 1),
		record("c", "north-east", 1, 1),
	}))

	matches, err := idx.Query(ctx, []float32{1, 0.1}, 2, true)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
	assert.Equal(t, "east", matches[0].Passage())

	noMeta, err := idx.Query(ctx, []float32{1, 0}, 10, false)
	require.NoError(t, err)
	assert.Len(t, noMeta, 3)
	assert.Empty(t, noMeta[0].Metadata.Text)
}

func TestMemoryIndex_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.Upsert(ctx, []model.VectorRecord{record("doc_0", "old", 1, 0)}))
	require.NoError(t, idx.Upsert(ctx, []model.VectorRecord{record("doc_0", "new", 1, 0)}))

	assert.Equal(t, 1, idx.Len())
	matches, err := idx.Query(ctx, []float32{1, 0}, 1, true)
	require.NoError(t, err)
	assert.Equal(t, "new", matches[0].Passage())
}

func TestMemoryIndex_EmptyAndDimension(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()
	require.NoError(t, idx.EnsureIndex(ctx, model.IndexSpec{Dimension: 3}))

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 10, true)
	require.NoError(t, err)
	assert.Empty(t, matches)

	err = idx.Upsert(ctx, []model.VectorRecord{record("x", "t", 1, 0)})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Zero(t, idx.Len())

	assert.ErrorIs(t, idx.EnsureIndex(ctx, model.IndexSpec{Metric: model.MetricDotProduct}), ErrUnsupportedMetric)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestTopMatches_TiesByID(t *testing.T) {
	got := topMatches([]model.Match{{ID: "b", Score: 0.5}, {ID: "a", Score: 0.5}, {ID: "c", Score: 0.9}}, 0)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
