package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Page is the extracted text of one PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document is one uploaded file after extraction.
type Document struct {
	ID         string
	FileName   string
	SourcePath string
	Pages      []Page
}

var unsafeIDChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// DocumentIDFromFileName derives a stable document id from the uploaded file name,
// so re-uploading the same file maps onto the same vector ids.
func DocumentIDFromFileName(name string) string {
	base := strings.ToLower(strings.TrimSpace(filepath.Base(name)))
	base = unsafeIDChars.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		return "document"
	}
	return base
}
