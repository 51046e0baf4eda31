package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// Completer answers a question from a single block of retrieved context
// using a stuff-documents QA chain.
type Completer struct {
	chain chains.Chain
}

func NewCompleter(model llms.Model) *Completer {
	return &Completer{chain: chains.LoadStuffQA(model)}
}

func (c *Completer) Answer(ctx context.Context, contextText, question string) (string, error) {
	out, err := chains.Call(ctx, c.chain, map[string]any{
		"input_documents": []schema.Document{{PageContent: contextText}},
		"question":        question,
	})
	if err != nil {
		return "", fmt.Errorf("qa chain call failed: %w", err)
	}
	text, ok := out["text"].(string)
	if !ok {
		return "", fmt.Errorf("qa chain returned no text")
	}
	return text, nil
}
