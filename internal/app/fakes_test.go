package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pdfchatbot/internal/model"
)

type fakeLoader struct {
	pages []model.Page
	err   error
}

func (f *fakeLoader) LoadPages(_ context.Context, _ string) ([]model.Page, error) {
	return f.pages, f.err
}

// fakeChunker cuts a page into perPage[page.Number] chunks, or one chunk per line.
type fakeChunker struct {
	perPage map[int]int
}

func (f *fakeChunker) ChunkPage(documentID string, page model.Page, startIndex int) ([]model.Chunk, error) {
	var texts []string
	if n, ok := f.perPage[page.Number]; ok {
		for i := 0; i < n; i++ {
			texts = append(texts, fmt.Sprintf("page %d\npassage %d", page.Number, i))
		}
	} else {
		for _, line := range strings.Split(page.Text, "\n") {
			if strings.TrimSpace(line) != "" {
				texts = append(texts, line)
			}
		}
	}
	chunks := make([]model.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = model.Chunk{
			DocumentID: documentID,
			Index:      startIndex + i,
			Text:       t,
			Location:   model.Location{Page: page.Number},
		}
	}
	return chunks, nil
}

type fakeEmbedder struct {
	mu        sync.Mutex
	manyCalls [][]string
	oneCalls  []string
	err       error
	dim       int
}

func (f *fakeEmbedder) vector() []float32 {
	dim := f.dim
	if dim == 0 {
		dim = 3
	}
	return make([]float32, dim)
}

func (f *fakeEmbedder) EmbedMany(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manyCalls = append(f.manyCalls, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector()
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oneCalls = append(f.oneCalls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(), nil
}

type fakeIndex struct {
	mu         sync.Mutex
	batches    [][]model.VectorRecord
	failOnCall int // 1-based upsert call that fails; 0 never
	matches    []model.Match
	queryErr   error
	lastTopK   int
}

func (f *fakeIndex) EnsureIndex(context.Context, model.IndexSpec) error { return nil }
func (f *fakeIndex) Ping(context.Context) error                         { return nil }

func (f *fakeIndex) Upsert(_ context.Context, records []model.VectorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOnCall > 0 && len(f.batches)+1 == f.failOnCall {
		return fmt.Errorf("index unavailable")
	}
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int, _ bool) ([]model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTopK = topK
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) batchSizes() []int {
	sizes := make([]int, len(f.batches))
	for i, b := range f.batches {
		sizes[i] = len(b)
	}
	return sizes
}

type fakeCompleter struct {
	calls    int
	context  string
	question string
	answer   string
	err      error
}

func (f *fakeCompleter) Answer(_ context.Context, contextText, question string) (string, error) {
	f.calls++
	f.context = contextText
	f.question = question
	return f.answer, f.err
}

type fakeImages struct {
	prompt string
	url    string
	err    error
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.url, f.err
}

type fakePublisher struct {
	events []model.IngestionEvent
	err    error
}

func (f *fakePublisher) PublishIngestion(_ context.Context, event model.IngestionEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func matchWithText(id, text string) model.Match {
	return model.Match{ID: id, Score: 0.9, Metadata: model.RecordMetadata{Text: text}}
}
