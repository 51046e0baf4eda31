package model

import "time"

// IngestionEvent is published once per upload when an ingestion finishes or fails.
type IngestionEvent struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	Stage      string    `json:"stage"`
	Pages      int       `json:"pages"`
	Chunks     int       `json:"chunks"`
	Batches    int       `json:"batches"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
