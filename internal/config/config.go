package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	IndexBackendQdrant = "qdrant"
	IndexBackendMySQL  = "mysql"
	IndexBackendMemory = "memory"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Log       LogConfig       `toml:"log"`
	LLM       LLMConfig       `toml:"llm"`
	Index     IndexConfig     `toml:"index"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	MySQL     MySQLConfig     `toml:"mysql"`
	Chunker   ChunkerConfig   `toml:"chunker"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
}

type AppConfig struct {
	Name                   string   `toml:"name"`
	Env                    string   `toml:"env"`
	Host                   string   `toml:"host"`
	Port                   int      `toml:"port"`
	GinMode                string   `toml:"gin_mode"`
	UploadDir              string   `toml:"upload_dir"`
	KeepUploads            bool     `toml:"keep_uploads"`
	UploadRetentionMinutes int      `toml:"upload_retention_minutes"`
	MaxUploadMB            int      `toml:"max_upload_mb"`
	CORSAllowedOrigins     []string `toml:"cors_allowed_origins"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json or console
}

type LLMConfig struct {
	BaseURL            string `toml:"base_url"`
	APIKey             string `toml:"api_key"`
	Model              string `toml:"model"`
	EmbeddingModel     string `toml:"embedding_model"`
	EmbeddingBatchSize int    `toml:"embedding_batch_size"`
	ImageModel         string `toml:"image_model"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
}

type IndexConfig struct {
	Backend        string `toml:"backend"`
	Name           string `toml:"name"`
	Dimension      int    `toml:"dimension"`
	Metric         string `toml:"metric"`
	Cloud          string `toml:"cloud"`
	Region         string `toml:"region"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type QdrantConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
	UseTLS bool   `toml:"use_tls"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type ChunkerConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

type RetrievalConfig struct {
	TopK            int `toml:"top_k"`
	MaxContextChars int `toml:"max_context_chars"`
}

// RabbitMQConfig is optional; an empty URL disables ingestion events.
type RabbitMQConfig struct {
	URL         string `toml:"url"`
	IngestQueue string `toml:"ingest_queue"`
}

// Load builds the config from defaults, an optional TOML file and the environment.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file failed: %w", err)
	}

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that would make the service unusable.
func (c *Config) Validate() error {
	var problems []string
	if c.App.Port <= 0 {
		problems = append(problems, "app.port must be positive")
	}
	if strings.TrimSpace(c.App.UploadDir) == "" {
		problems = append(problems, "app.upload_dir is required")
	}
	if c.App.UploadRetentionMinutes <= 0 {
		problems = append(problems, "app.upload_retention_minutes must be positive")
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		problems = append(problems, "llm.api_key is required (set OPENAI_API_KEY or LLM_API_KEY)")
	}
	if c.Index.Dimension <= 0 {
		problems = append(problems, "index.dimension must be positive")
	}
	if strings.TrimSpace(c.Index.Name) == "" {
		problems = append(problems, "index.name is required")
	}
	switch c.Index.Backend {
	case IndexBackendQdrant:
		if c.Qdrant.Host == "" || c.Qdrant.Port <= 0 {
			problems = append(problems, "qdrant.host and qdrant.port are required for the qdrant backend")
		}
	case IndexBackendMySQL:
		if c.MySQL.Host == "" || c.MySQL.DB == "" {
			problems = append(problems, "mysql.host and mysql.db are required for the mysql backend")
		}
	case IndexBackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown index.backend %q", c.Index.Backend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:                   "pdfchatbot",
			Env:                    "dev",
			Host:                   "0.0.0.0",
			Port:                   3001,
			GinMode:                "release",
			UploadDir:              "uploads",
			KeepUploads:            false,
			UploadRetentionMinutes: 60,
			MaxUploadMB:            25,
			CORSAllowedOrigins:     []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			BaseURL:            "https://api.openai.com/v1",
			Model:              "gpt-4o-mini",
			EmbeddingModel:     "text-embedding-ada-002",
			EmbeddingBatchSize: 512,
			ImageModel:         "dall-e-3",
			TimeoutSeconds:     60,
		},
		Index: IndexConfig{
			Backend:        IndexBackendQdrant,
			Name:           "pdfchatbot-1",
			Dimension:      1536,
			Metric:         "cosine",
			Cloud:          "aws",
			Region:         "us-east-1",
			TimeoutSeconds: 30,
		},
		Qdrant: QdrantConfig{
			Host: "127.0.0.1",
			Port: 6334,
		},
		MySQL: MySQLConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "root",
			DB:     "pdfchatbot",
			Params: "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Chunker: ChunkerConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
		},
		Retrieval: RetrievalConfig{
			TopK:            10,
			MaxContextChars: 12000,
		},
		RabbitMQ: RabbitMQConfig{
			IngestQueue: "pdf.ingest.events",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.UploadDir = getEnv("UPLOAD_DIR", cfg.App.UploadDir)
	cfg.App.KeepUploads = getEnvAsBool("KEEP_UPLOADS", cfg.App.KeepUploads)
	cfg.App.UploadRetentionMinutes = getEnvAsInt("UPLOAD_RETENTION_MINUTES", cfg.App.UploadRetentionMinutes)
	cfg.App.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", cfg.App.MaxUploadMB)
	cfg.App.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", cfg.App.CORSAllowedOrigins)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getSecret("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.APIKey = getSecret("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.EmbeddingModel = getEnv("LLM_EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)
	cfg.LLM.EmbeddingBatchSize = getEnvAsInt("LLM_EMBEDDING_BATCH_SIZE", cfg.LLM.EmbeddingBatchSize)
	cfg.LLM.ImageModel = getEnv("LLM_IMAGE_MODEL", cfg.LLM.ImageModel)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Index.Backend = strings.ToLower(getEnv("INDEX_BACKEND", cfg.Index.Backend))
	cfg.Index.Name = getEnv("INDEX_NAME", cfg.Index.Name)
	cfg.Index.Dimension = getEnvAsInt("INDEX_DIMENSION", cfg.Index.Dimension)
	cfg.Index.Metric = strings.ToLower(getEnv("INDEX_METRIC", cfg.Index.Metric))
	cfg.Index.Cloud = getEnv("INDEX_CLOUD", cfg.Index.Cloud)
	cfg.Index.Region = getEnv("INDEX_REGION", cfg.Index.Region)
	cfg.Index.TimeoutSeconds = getEnvAsInt("INDEX_TIMEOUT_SECONDS", cfg.Index.TimeoutSeconds)

	cfg.Qdrant.Host = getEnv("QDRANT_HOST", cfg.Qdrant.Host)
	cfg.Qdrant.Port = getEnvAsInt("QDRANT_PORT", cfg.Qdrant.Port)
	cfg.Qdrant.APIKey = getSecret("QDRANT_API_KEY", cfg.Qdrant.APIKey)
	cfg.Qdrant.UseTLS = getEnvAsBool("QDRANT_USE_TLS", cfg.Qdrant.UseTLS)

	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getSecret("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Chunker.ChunkSize = getEnvAsInt("CHUNK_SIZE", cfg.Chunker.ChunkSize)
	cfg.Chunker.ChunkOverlap = getEnvAsInt("CHUNK_OVERLAP", cfg.Chunker.ChunkOverlap)

	cfg.Retrieval.TopK = getEnvAsInt("RETRIEVAL_TOP_K", cfg.Retrieval.TopK)
	cfg.Retrieval.MaxContextChars = getEnvAsInt("RETRIEVAL_MAX_CONTEXT_CHARS", cfg.Retrieval.MaxContextChars)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.IngestQueue = getEnv("RABBITMQ_INGEST_QUEUE", cfg.RabbitMQ.IngestQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret ignores empty values so a blank variable never wipes a key from the file.
func getSecret(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
