package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pdfchatbot/internal/model"
)

// recordIDKey keeps the string record id in the payload; qdrant point ids must be UUIDs.
const recordIDKey = "recordId"

var pointNamespace = uuid.MustParse("6f2a4c1e-3b7d-5e90-8a1f-2c4d6e8b0a13")

// collectionClient is the part of *qdrant.Client the index uses.
type collectionClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
}

// QdrantIndex maps an index onto one qdrant collection.
type QdrantIndex struct {
	client     collectionClient
	collection string
	logger     *zap.Logger
}

func NewQdrantIndex(client *qdrant.Client, collection string, logger *zap.Logger) *QdrantIndex {
	return newQdrantIndex(client, collection, logger)
}

func newQdrantIndex(client collectionClient, collection string, logger *zap.Logger) *QdrantIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QdrantIndex{client: client, collection: collection, logger: logger}
}

// EnsureIndex creates the collection when absent. Losing a creation race is not an error.
func (q *QdrantIndex) EnsureIndex(ctx context.Context, spec model.IndexSpec) error {
	if spec.Name != "" {
		q.collection = spec.Name
	}
	distance, err := qdrantDistance(spec.Metric)
	if err != nil {
		return err
	}

	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection %s failed: %w", q.collection, err)
	}
	if exists {
		return q.checkDimension(ctx, spec.Dimension)
	}

	q.logger.Info("creating vector collection",
		zap.String("collection", q.collection),
		zap.Int("dimension", spec.Dimension),
		zap.String("metric", spec.Metric),
		zap.String("cloud", spec.Cloud),
		zap.String("region", spec.Region))

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(spec.Dimension),
			Distance: distance,
		}),
	})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("create collection %s failed: %w", q.collection, err)
	}
	return nil
}

func (q *QdrantIndex) checkDimension(ctx context.Context, dimension int) error {
	info, err := q.client.GetCollectionInfo(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("get collection %s failed: %w", q.collection, err)
	}
	size := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != 0 && dimension > 0 && size != uint64(dimension) {
		return fmt.Errorf("collection %s has size %d, want %d: %w", q.collection, size, dimension, ErrDimensionMismatch)
	}
	return nil
}

func (q *QdrantIndex) Upsert(ctx context.Context, records []model.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(records))
	for i, rec := range records {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(rec.ID)),
			Vectors: qdrant.NewVectorsDense(rec.Values),
			Payload: qdrant.NewValueMap(recordPayload(rec)),
		}
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert %d points failed: %w", len(points), err)
	}
	return nil
}

// Query always fetches the record id so matches carry the same ids as the other backends.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]model.Match, error) {
	withPayload := qdrant.NewWithPayload(true)
	if !includeMetadata {
		withPayload = qdrant.NewWithPayloadInclude(recordIDKey)
	}
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    withPayload,
	})
	if err != nil {
		return nil, fmt.Errorf("query collection %s failed: %w", q.collection, err)
	}

	matches := make([]model.Match, 0, len(points))
	for _, p := range points {
		match := matchFromPayload(p.GetId().GetUuid(), p.GetScore(), p.GetPayload())
		if !includeMetadata {
			match.Metadata = model.RecordMetadata{}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (q *QdrantIndex) Ping(ctx context.Context) error {
	if _, err := q.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// PointID derives a stable UUIDv5 for a record id, so re-ingestion overwrites points.
func PointID(recordID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(recordID)).String()
}

func recordPayload(rec model.VectorRecord) map[string]any {
	payload := rec.Metadata.Map()
	payload[recordIDKey] = rec.ID
	return payload
}

func matchFromPayload(pointID string, score float32, payload map[string]*qdrant.Value) model.Match {
	match := model.Match{ID: pointID, Score: score}
	if len(payload) == 0 {
		return match
	}
	if id := payload[recordIDKey].GetStringValue(); id != "" {
		match.ID = id
	}
	var loc model.Location
	if raw := payload[model.MetaLocation].GetStringValue(); raw != "" {
		_ = json.Unmarshal([]byte(raw), &loc)
	}
	text := payload[model.MetaText].GetStringValue()
	if text == "" {
		text = payload[model.MetaPageContent].GetStringValue()
	}
	match.Metadata = model.RecordMetadata{
		Text:       text,
		Location:   loc,
		SourcePath: payload[model.MetaSourcePath].GetStringValue(),
		DocumentID: payload[model.MetaDocumentID].GetStringValue(),
		Page:       int(payload[model.MetaPage].GetIntegerValue()),
		ChunkIndex: int(payload[model.MetaChunkIndex].GetIntegerValue()),
	}
	return match
}

func qdrantDistance(metric string) (qdrant.Distance, error) {
	switch strings.ToLower(metric) {
	case "", model.MetricCosine:
		return qdrant.Distance_Cosine, nil
	case model.MetricEuclidean:
		return qdrant.Distance_Euclid, nil
	case model.MetricDotProduct:
		return qdrant.Distance_Dot, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("metric %q: %w", metric, ErrUnsupportedMetric)
	}
}

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) && se.GRPCStatus().Code() == codes.AlreadyExists {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
