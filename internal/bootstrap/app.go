package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pdfchatbot/internal/ai"
	"pdfchatbot/internal/app"
	"pdfchatbot/internal/chunker"
	"pdfchatbot/internal/config"
	"pdfchatbot/internal/model"
	"pdfchatbot/internal/pkg/pdfextract"
	"pdfchatbot/internal/pkg/staging"
	mysqlClient "pdfchatbot/internal/platform/mysql"
	qdrantClient "pdfchatbot/internal/platform/qdrant"
	rabbitmqClient "pdfchatbot/internal/platform/rabbitmq"
	"pdfchatbot/internal/repository"
	"pdfchatbot/internal/worker"
)

const janitorInterval = time.Minute

type App struct {
	Config *config.Config
	Logger *zap.Logger

	Index       app.VectorIndex
	Staging     *staging.Dir
	Ingest      *app.IngestService
	Answer      *app.AnswerService
	Infographic *app.InfographicService
	Events      *rabbitmqClient.IngestEventPublisher
	Janitor     *worker.UploadJanitor

	MySQL  *gorm.DB
	Qdrant *qdrant.Client
	MQConn *amqp.Connection

	StartedAt time.Time
}

// New wires every component. The vector index is verified before New returns,
// so a misconfigured index stops the process before it serves traffic.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config

	if err := a.openIndex(ctx); err != nil {
		return err
	}
	if err := EnsureIndex(ctx, cfg, a.Index); err != nil {
		return err
	}

	settings := LLMSettings(cfg)
	llm, err := ai.NewLLM(settings)
	if err != nil {
		return err
	}
	embedder, err := ai.NewEmbedder(llm, cfg.Index.Dimension, cfg.LLM.EmbeddingBatchSize)
	if err != nil {
		return err
	}

	stagingDir, err := staging.New(cfg.App.UploadDir)
	if err != nil {
		return err
	}
	a.Staging = stagingDir

	var events app.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		conn, err := rabbitmqClient.New(dialCtx, cfg.RabbitMQ.URL)
		cancel()
		if err != nil {
			return err
		}
		a.MQConn = conn
		a.Events = rabbitmqClient.NewIngestEventPublisher(conn, cfg.RabbitMQ.IngestQueue)
		events = a.Events
	}

	timeouts := app.Timeouts{
		LLM:   time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
		Index: time.Duration(cfg.Index.TimeoutSeconds) * time.Second,
	}
	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Chunker.ChunkSize),
		chunker.WithChunkOverlap(cfg.Chunker.ChunkOverlap),
	)

	a.Ingest = app.NewIngestService(pdfextract.NewLoader(), splitter, embedder, a.Index, events, timeouts, a.Logger.Named("ingest"))
	a.Answer = app.NewAnswerService(embedder, a.Index, ai.NewCompleter(llm), app.AnswerOptions{
		TopK:            cfg.Retrieval.TopK,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
		Timeouts:        timeouts,
	}, a.Logger.Named("answer"))
	a.Infographic = app.NewInfographicService(ai.NewImageClient(settings), timeouts, a.Logger.Named("infographic"))

	a.Janitor = worker.NewUploadJanitor(
		stagingDir,
		time.Duration(cfg.App.UploadRetentionMinutes)*time.Minute,
		janitorInterval,
		a.Logger.Named("janitor"),
	)
	if err := a.Janitor.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start upload janitor failed: %w", err)
	}
	return nil
}

// OpenIndex connects the configured backend without creating anything.
func OpenIndex(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.openIndex(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) openIndex(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Index.Backend {
	case config.IndexBackendQdrant:
		client, err := qdrantClient.New(ctx, cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.APIKey, cfg.Qdrant.UseTLS)
		if err != nil {
			return err
		}
		a.Qdrant = client
		a.Index = repository.NewQdrantIndex(client, cfg.Index.Name, a.Logger.Named("qdrant"))
	case config.IndexBackendMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return err
		}
		a.MySQL = db
		a.Index = repository.NewSQLIndex(db, cfg.Index.Name)
	case config.IndexBackendMemory:
		a.Index = repository.NewMemoryIndex()
	default:
		return fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}
	a.Logger.Info("vector index backend selected", zap.String("backend", cfg.Index.Backend), zap.String("index", cfg.Index.Name))
	return nil
}

// EnsureIndex creates the configured index if it does not exist yet.
func EnsureIndex(ctx context.Context, cfg *config.Config, index app.VectorIndex) error {
	timeout := time.Duration(cfg.Index.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ensureCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spec := model.IndexSpec{
		Name:      cfg.Index.Name,
		Dimension: cfg.Index.Dimension,
		Metric:    cfg.Index.Metric,
		Cloud:     cfg.Index.Cloud,
		Region:    cfg.Index.Region,
	}
	if err := index.EnsureIndex(ensureCtx, spec); err != nil {
		return fmt.Errorf("ensure index %s failed: %w", spec.Name, err)
	}
	return nil
}

func LLMSettings(cfg *config.Config) ai.Settings {
	return ai.Settings{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		ImageModel:     cfg.LLM.ImageModel,
		Timeout:        time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}
}

func (a *App) Close() error {
	var errs []error
	if a.Janitor != nil {
		a.Janitor.Close()
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq failed: %w", err))
		}
	}
	if a.Qdrant != nil {
		if err := a.Qdrant.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close qdrant failed: %w", err))
		}
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close mysql failed: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
