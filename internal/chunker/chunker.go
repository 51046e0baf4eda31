package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"pdfchatbot/internal/model"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

var separators = []string{"\n\n", "\n", " ", ""}

// Chunker splits page text into bounded, overlapping passages.
type Chunker struct {
	size     int
	overlap  int
	splitter textsplitter.RecursiveCharacter
}

type Option func(*Chunker)

func WithChunkSize(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.size = n
		}
	}
}

func WithChunkOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

func New(opts ...Option) *Chunker {
	c := &Chunker{size: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.size {
		c.overlap = c.size / 5
	}
	c.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.size),
		textsplitter.WithChunkOverlap(c.overlap),
		textsplitter.WithSeparators(separators),
	)
	return c
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns the non-empty passages of text in document order.
// No passage is longer than the chunk size in runes.
func (c *Chunker) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text failed: %w", err)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, hardSplit(p, c.size)...)
	}
	return out, nil
}

// ChunkPage splits one page and numbers the chunks from startIndex.
func (c *Chunker) ChunkPage(documentID string, page model.Page, startIndex int) ([]model.Chunk, error) {
	parts, err := c.Split(page.Text)
	if err != nil {
		return nil, err
	}

	chunks := make([]model.Chunk, 0, len(parts))
	cursor := 0
	for i, p := range parts {
		from, to, next := lineSpan(page.Text, p, cursor)
		cursor = next
		chunks = append(chunks, model.Chunk{
			DocumentID: documentID,
			Index:      startIndex + i,
			Text:       p,
			Location: model.Location{
				Page:     page.Number,
				FromLine: from,
				ToLine:   to,
			},
		})
	}
	return chunks, nil
}

func hardSplit(s string, size int) []string {
	if utf8.RuneCountInString(s) <= size {
		return []string{s}
	}
	runes := []rune(s)
	var out []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		if piece := strings.TrimSpace(string(runes[:n])); piece != "" {
			out = append(out, piece)
		}
		runes = runes[n:]
	}
	return out
}

// lineSpan finds passage in text at or after cursor and returns its 1-based line range.
// Passages that cannot be located keep the line of the cursor.
func lineSpan(text, passage string, cursor int) (from, to, next int) {
	if cursor > len(text) {
		cursor = len(text)
	}
	pos := strings.Index(text[cursor:], passage)
	if pos < 0 {
		line := strings.Count(text[:cursor], "\n") + 1
		return line, line, cursor
	}
	start := cursor + pos
	from = strings.Count(text[:start], "\n") + 1
	to = from + strings.Count(passage, "\n")
	// overlapping chunks start inside the previous one
	return from, to, start + 1
}
