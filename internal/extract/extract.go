// Package extract turns source documents into ordered page texts.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"docrank/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned when no extractor handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNoText is returned when a document has no extractable text on any page.
	ErrNoText = errors.New("no text content found")
)

// Registry dispatches extraction by file extension.
type Registry struct {
	byExt map[string]domain.PageExtractor
}

// NewRegistry returns a registry with the PDF and plain-text extractors installed.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]domain.PageExtractor)}
	pdf := NewPDFExtractor()
	txt := NewTextExtractor()
	r.Register(".pdf", pdf)
	r.Register(".txt", txt)
	r.Register(".md", txt)
	return r
}

// Register installs an extractor for an extension such as ".pdf".
func (r *Registry) Register(ext string, e domain.PageExtractor) {
	r.byExt[strings.ToLower(ext)] = e
}

// Pages extracts the non-empty pages of the document at path.
func (r *Registry) Pages(ctx context.Context, path string) ([]domain.PageText, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return e.Pages(ctx, path)
}

// nonEmpty drops whitespace-only pages while keeping original page numbers.
func nonEmpty(pages []domain.PageText) []domain.PageText {
	out := pages[:0]
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
