package model

import (
	"encoding/json"
	"fmt"
)

// Location points a chunk back at its page and line span.
type Location struct {
	Page     int `json:"pageNumber"`
	FromLine int `json:"from"`
	ToLine   int `json:"to"`
}

// Chunk is a bounded passage of a page, numbered across the whole document.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
	Location   Location
}

// RecordID is the vector id of the chunk: <documentID>_<index>.
func (c Chunk) RecordID() string {
	return RecordID(c.DocumentID, c.Index)
}

func RecordID(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// Metadata keys stored alongside every vector.
const (
	MetaText        = "text"
	MetaPageContent = "pageContent"
	MetaLocation    = "loc"
	MetaSourcePath  = "txtPath"
	MetaDocumentID  = "documentId"
	MetaPage        = "page"
	MetaChunkIndex  = "chunkIndex"
)

// VectorRecord is what the index stores for one chunk.
type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata RecordMetadata
}

// RecordMetadata is the typed form of a record's metadata.
type RecordMetadata struct {
	Text       string
	Location   Location
	SourcePath string
	DocumentID string
	Page       int
	ChunkIndex int
}

// NewVectorRecord pairs a chunk with its embedding.
func NewVectorRecord(chunk Chunk, sourcePath string, values []float32) VectorRecord {
	return VectorRecord{
		ID:     chunk.RecordID(),
		Values: values,
		Metadata: RecordMetadata{
			Text:       chunk.Text,
			Location:   chunk.Location,
			SourcePath: sourcePath,
			DocumentID: chunk.DocumentID,
			Page:       chunk.Location.Page,
			ChunkIndex: chunk.Index,
		},
	}
}

// Map flattens the metadata into the key/value shape vector stores accept.
// The location is JSON-encoded because stores only keep flat values.
func (m RecordMetadata) Map() map[string]any {
	loc, _ := json.Marshal(m.Location)
	return map[string]any{
		MetaText:        m.Text,
		MetaPageContent: m.Text,
		MetaLocation:    string(loc),
		MetaSourcePath:  m.SourcePath,
		MetaDocumentID:  m.DocumentID,
		MetaPage:        int64(m.Page),
		MetaChunkIndex:  int64(m.ChunkIndex),
	}
}

// Match is one similarity-query hit.
type Match struct {
	ID       string
	Score    float32
	Metadata RecordMetadata
}

// Passage returns the stored chunk text of the match.
func (m Match) Passage() string {
	return m.Metadata.Text
}
