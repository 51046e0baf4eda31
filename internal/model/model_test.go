package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentIDFromFileName(t *testing.T) {
	assert.Equal(t, "annual-report-2024.pdf", DocumentIDFromFileName("Annual Report 2024.pdf"))
	assert.Equal(t, "notes.pdf", DocumentIDFromFileName("/tmp/uploads/NOTES.pdf"))
	assert.Equal(t, "document", DocumentIDFromFileName("  "))
}

func TestNewVectorRecord(t *testing.T) {
	chunk := Chunk{
		DocumentID: "doc.pdf",
		Index:      42,
		Text:       "hello world",
		Location:   Location{Page: 3, FromLine: 1, ToLine: 2},
	}
	rec := NewVectorRecord(chunk, "/tmp/doc.pdf", []float32{0.1, 0.2})

	assert.Equal(t, "doc.pdf_42", rec.ID)
	meta := rec.Metadata.Map()
	assert.Equal(t, "hello world", meta[MetaText])
	assert.Equal(t, "hello world", meta[MetaPageContent])
	assert.Equal(t, `{"pageNumber":3,"from":1,"to":2}`, meta[MetaLocation])
	assert.Equal(t, int64(3), meta[MetaPage])
	assert.Equal(t, int64(42), meta[MetaChunkIndex])
}

func TestVectorRow_RoundTrip(t *testing.T) {
	rec := NewVectorRecord(Chunk{DocumentID: "d", Index: 1, Text: "t", Location: Location{Page: 1}}, "p", []float32{1, 2, 3})
	row := NewVectorRow("idx", rec)

	assert.Equal(t, "idx", row.IndexName)
	assert.Equal(t, []float32{1, 2, 3}, row.EmbeddingVector())
	assert.Equal(t, rec.Metadata, row.Metadata())
}
