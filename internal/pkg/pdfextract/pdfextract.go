package pdfextract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfchatbot/internal/model"
)

// Loader reads a PDF from disk one page at a time.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// LoadPages returns every page in order, including pages without text.
func (l *Loader) LoadPages(ctx context.Context, path string) ([]model.Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()
	return readPages(ctx, r)
}

// ReadPages is LoadPages for an in-memory document.
func ReadPages(ctx context.Context, r io.ReaderAt, size int64) ([]model.Page, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf failed: %w", err)
	}
	return readPages(ctx, reader)
}

func readPages(ctx context.Context, r *pdf.Reader) (pages []model.Page, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	total := r.NumPage()
	pages = make([]model.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := model.Page{Number: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("extract page %d failed: %w", i, err)
			}
			page.Text = strings.TrimSpace(text)
		}
		pages = append(pages, page)
	}
	return pages, nil
}
