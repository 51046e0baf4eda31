package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"pdfchatbot/internal/model"
)

const (
	DefaultTopK            = 10
	DefaultMaxContextChars = 12000
)

type AnswerService struct {
	embedder        Embedder
	index           VectorIndex
	completer       Completer
	topK            int
	maxContextChars int
	timeouts        Timeouts
	logger          *zap.Logger
}

type AnswerOptions struct {
	TopK int
	// MaxContextChars caps the joined passages in runes; 0 means unlimited.
	MaxContextChars int
	Timeouts        Timeouts
}

func NewAnswerService(embedder Embedder, index VectorIndex, completer Completer, opts AnswerOptions, logger *zap.Logger) *AnswerService {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxContextChars < 0 {
		opts.MaxContextChars = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerService{
		embedder:        embedder,
		index:           index,
		completer:       completer,
		topK:            opts.TopK,
		maxContextChars: opts.MaxContextChars,
		timeouts:        opts.Timeouts,
		logger:          logger,
	}
}

// AnswerResult.Answer is nil when nothing relevant was retrieved.
type AnswerResult struct {
	Answer *string `json:"answer"`
}

func (s *AnswerService) Answer(ctx context.Context, question string) (*AnswerResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, invalidInput("no question provided")
	}

	vector, err := s.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := s.query(ctx, vector)
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(matches, s.maxContextChars)
	if contextText == "" {
		s.logger.Debug("no relevant passages", zap.Int("matches", len(matches)))
		return &AnswerResult{}, nil
	}

	callCtx, cancel := withTimeout(ctx, s.timeouts.LLM)
	defer cancel()
	text, err := s.completer.Answer(callCtx, contextText, question)
	if err != nil {
		return nil, serviceError("completion", err)
	}

	s.logger.Debug("answered question",
		zap.Int("matches", len(matches)),
		zap.Int("context_chars", utf8.RuneCountInString(contextText)))
	return &AnswerResult{Answer: &text}, nil
}

func (s *AnswerService) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	callCtx, cancel := withTimeout(ctx, s.timeouts.LLM)
	defer cancel()
	vector, err := s.embedder.EmbedOne(callCtx, question)
	if err != nil {
		return nil, serviceError("embed question", err)
	}
	return vector, nil
}

func (s *AnswerService) query(ctx context.Context, vector []float32) ([]model.Match, error) {
	callCtx, cancel := withTimeout(ctx, s.timeouts.Index)
	defer cancel()
	matches, err := s.index.Query(callCtx, vector, s.topK, true)
	if err != nil {
		return nil, serviceError("index query", err)
	}
	return matches, nil
}

// BuildContext joins match passages with a single space in rank order.
// Empty and repeated passages are skipped. With maxChars > 0 the first passage that
// would overflow ends the context; a lone top passage is truncated instead.
func BuildContext(matches []model.Match, maxChars int) string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(matches))
	used := 0
	for _, m := range matches {
		passage := m.Passage()
		if strings.TrimSpace(passage) == "" {
			continue
		}
		if _, dup := seen[passage]; dup {
			continue
		}
		seen[passage] = struct{}{}

		cost := utf8.RuneCountInString(passage)
		if used > 0 {
			cost++
		}
		if maxChars > 0 && used+cost > maxChars {
			if used == 0 {
				b.WriteString(string([]rune(passage)[:maxChars]))
			}
			break
		}
		if used > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(passage)
		used += cost
	}
	return b.String()
}
