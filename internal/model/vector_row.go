package model

import (
	"encoding/json"
	"time"
)

// VectorRow is the SQL form of a vector record.
// Embedding is stored as a JSON array of float32 for portability.
type VectorRow struct {
	IndexName  string    `gorm:"primaryKey;size:128"`
	ID         string    `gorm:"primaryKey;size:512"`
	DocumentID string    `gorm:"size:256;not null;index"`
	ChunkIndex int       `gorm:"not null"`
	Page       int       `gorm:"not null"`
	SourcePath string    `gorm:"size:1024"`
	Location   string    `gorm:"size:256"`
	Content    string    `gorm:"type:text;not null"`
	Embedding  string    `gorm:"type:mediumtext"`
	UpdatedAt  time.Time
}

func (VectorRow) TableName() string {
	return "vector_records"
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (r *VectorRow) EmbeddingVector() []float32 {
	if r.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(r.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (r *VectorRow) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		r.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	r.Embedding = string(b)
}

// Metadata rebuilds the typed metadata of the row.
func (r *VectorRow) Metadata() RecordMetadata {
	var loc Location
	_ = json.Unmarshal([]byte(r.Location), &loc)
	return RecordMetadata{
		Text:       r.Content,
		Location:   loc,
		SourcePath: r.SourcePath,
		DocumentID: r.DocumentID,
		Page:       r.Page,
		ChunkIndex: r.ChunkIndex,
	}
}

// NewVectorRow converts a record into its row form for the named index.
func NewVectorRow(indexName string, rec VectorRecord) VectorRow {
	loc, _ := json.Marshal(rec.Metadata.Location)
	row := VectorRow{
		ID:         rec.ID,
		IndexName:  indexName,
		DocumentID: rec.Metadata.DocumentID,
		ChunkIndex: rec.Metadata.ChunkIndex,
		Page:       rec.Metadata.Page,
		SourcePath: rec.Metadata.SourcePath,
		Location:   string(loc),
		Content:    rec.Metadata.Text,
	}
	row.SetEmbedding(rec.Values)
	return row
}
