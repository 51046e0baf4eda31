package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchatbot/internal/model"
)

func sampleText(paragraphs, wordsPer int) string {
	var b strings.Builder
	for p := 0; p < paragraphs; p++ {
		if p > 0 {
			b.WriteString("\n\n")
		}
		for w := 0; w < wordsPer; w++ {
			if w > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "word%d_%d", p, w)
		}
	}
	return b.String()
}

func TestSplit_RespectsSizeAndCoversWords(t *testing.T) {
	c := New(WithChunkSize(120), WithChunkOverlap(20))
	text := sampleText(6, 40)

	chunks, err := c.Split(text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, ch := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(ch))
		assert.LessOrEqual(t, utf8.RuneCountInString(ch), 120)
	}

	joined := strings.Join(chunks, " ")
	for _, word := range strings.Fields(text) {
		assert.Contains(t, joined, word)
	}
	assert.True(t, strings.HasPrefix(chunks[0], "word0_0"))
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "word5_39"))
}

func TestSplit_ShortTextIsOneChunk(t *testing.T) {
	c := New()
	chunks, err := c.Split("  a short page  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a short page"}, chunks)
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := New().Split(" \n\n ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_UnbrokenTextIsHardSplit(t *testing.T) {
	c := New(WithChunkSize(50), WithChunkOverlap(0))
	chunks, err := c.Split(strings.Repeat("é", 230))
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	total := 0
	for _, ch := range chunks {
		n := utf8.RuneCountInString(ch)
		assert.LessOrEqual(t, n, 50)
		total += n
	}
	assert.GreaterOrEqual(t, total, 230)
}

func TestNew_OverlapNotSmallerThanSize(t *testing.T) {
	c := New(WithChunkSize(100), WithChunkOverlap(100))
	assert.Equal(t, 100, c.Size())
	assert.Equal(t, 20, c.Overlap())

	d := New()
	assert.Equal(t, DefaultChunkSize, d.Size())
	assert.Equal(t, DefaultChunkOverlap, d.Overlap())
}

func TestChunkPage_NumbersFromStartIndex(t *testing.T) {
	c := New(WithChunkSize(60), WithChunkOverlap(0))
	page := model.Page{Number: 2, Text: "first line here\nsecond line here\n\n" + sampleText(1, 30)}

	chunks, err := c.ChunkPage("report.pdf", page, 7)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, ch := range chunks {
		assert.Equal(t, 7+i, ch.Index)
		assert.Equal(t, "report.pdf", ch.DocumentID)
		assert.Equal(t, 2, ch.Location.Page)
		assert.GreaterOrEqual(t, ch.Location.ToLine, ch.Location.FromLine)
		assert.Equal(t, fmt.Sprintf("report.pdf_%d", 7+i), ch.RecordID())
	}
	assert.Equal(t, 1, chunks[0].Location.FromLine)
}
