package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	infographicPromptPrefix = "Design an infographic that visually represents the following key points in a clean and professional style. Show the content as bullet points in a PPT: "
	maxPromptChars          = 1000
	promptEllipsis          = "..."
)

type InfographicService struct {
	images  ImageGenerator
	timeout Timeouts
	logger  *zap.Logger
}

func NewInfographicService(images ImageGenerator, timeouts Timeouts, logger *zap.Logger) *InfographicService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InfographicService{images: images, timeout: timeouts, logger: logger}
}

// BuildInfographicPrompt prefixes the transcript and caps the prompt at 1000 characters.
func BuildInfographicPrompt(conversationText string) string {
	prompt := infographicPromptPrefix + conversationText
	if utf8.RuneCountInString(prompt) <= maxPromptChars {
		return prompt
	}
	keep := maxPromptChars - utf8.RuneCountInString(promptEllipsis)
	return string([]rune(prompt)[:keep]) + promptEllipsis
}

// Generate returns the hosted URL of one infographic image for the transcript.
func (s *InfographicService) Generate(ctx context.Context, conversationText string) (string, error) {
	if strings.TrimSpace(conversationText) == "" {
		return "", invalidInput("conversation text is required")
	}

	prompt := BuildInfographicPrompt(conversationText)
	callCtx, cancel := withTimeout(ctx, s.timeout.LLM)
	defer cancel()

	url, err := s.images.GenerateImage(callCtx, prompt)
	if err != nil {
		return "", serviceError("image generation", err)
	}
	s.logger.Info("infographic generated", zap.Int("prompt_chars", utf8.RuneCountInString(prompt)))
	return url, nil
}
