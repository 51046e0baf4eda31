package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dir holds uploads between the HTTP request and ingestion.
type Dir struct {
	root string
	now  func() time.Time
}

func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	return &Dir{root: root, now: time.Now}, nil
}

func (d *Dir) Root() string {
	return d.root
}

// Name builds <field>-<unixMillis>-<uuid8><ext>; the random suffix keeps
// concurrent uploads of the same file apart.
func (d *Dir) Name(field, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%s%s", field, d.now().UnixMilli(), uuid.NewString()[:8], ext)
}

// Save copies r into a new staged file and returns its path.
func (d *Dir) Save(field, originalName string, r io.Reader) (string, error) {
	path := filepath.Join(d.root, d.Name(field, originalName))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("create staged file failed: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write staged file failed: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staged file failed: %w", err)
	}
	return path, nil
}

// Remove deletes a staged file. A file that is already gone is not an error.
func (d *Dir) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file failed: %w", err)
	}
	return nil
}

// Sweep removes regular files last modified before now-maxAge and returns how many went.
func (d *Dir) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return 0, fmt.Errorf("read upload dir failed: %w", err)
	}
	cutoff := d.now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := d.Remove(filepath.Join(d.root, entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
