package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms/openai"
)

// Settings configures the OpenAI-compatible provider used for chat, embeddings and images.
type Settings struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	ImageModel     string
	Timeout        time.Duration
}

func (s Settings) httpClient() *http.Client {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewLLM builds the langchaingo OpenAI client shared by the embedder and the completer.
func NewLLM(s Settings) (*openai.LLM, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, fmt.Errorf("llm api key is empty")
	}
	opts := []openai.Option{
		openai.WithToken(s.APIKey),
		openai.WithModel(s.Model),
		openai.WithEmbeddingModel(s.EmbeddingModel),
		openai.WithHTTPClient(s.httpClient()),
	}
	if base := strings.TrimRight(strings.TrimSpace(s.BaseURL), "/"); base != "" {
		opts = append(opts, openai.WithBaseURL(base))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client failed: %w", err)
	}
	return llm, nil
}
