package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pdfchatbot/internal/model"
)

// SQLIndex stores vectors in a relational table and ranks them by brute-force cosine.
type SQLIndex struct {
	db        *gorm.DB
	name      string
	dimension int
}

func NewSQLIndex(db *gorm.DB, name string) *SQLIndex {
	return &SQLIndex{db: db, name: name}
}

func (s *SQLIndex) EnsureIndex(ctx context.Context, spec model.IndexSpec) error {
	if err := checkCosine(spec.Metric); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).AutoMigrate(&model.VectorRow{}); err != nil {
		return fmt.Errorf("migrate vector table failed: %w", err)
	}
	if spec.Name != "" {
		s.name = spec.Name
	}
	s.dimension = spec.Dimension
	return nil
}

func (s *SQLIndex) Upsert(ctx context.Context, records []model.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]model.VectorRow, len(records))
	for i, rec := range records {
		if s.dimension > 0 && len(rec.Values) != s.dimension {
			return fmt.Errorf("record %s: %w", rec.ID, ErrDimensionMismatch)
		}
		rows[i] = model.NewVectorRow(s.name, rec)
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert vector rows failed: %w", err)
	}
	return nil
}

func (s *SQLIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]model.Match, error) {
	var rows []model.VectorRow
	if err := s.db.WithContext(ctx).Where("index_name = ?", s.name).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list vector rows failed: %w", err)
	}

	matches := make([]model.Match, 0, len(rows))
	for i := range rows {
		match := model.Match{
			ID:    rows[i].ID,
			Score: cosineSimilarity(vector, rows[i].EmbeddingVector()),
		}
		if includeMetadata {
			match.Metadata = rows[i].Metadata()
		}
		matches = append(matches, match)
	}
	return topMatches(matches, topK), nil
}

func (s *SQLIndex) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql failed: %w", err)
	}
	return nil
}
