package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"docrank/internal/domain"
)

// TextExtractor reads plain-text documents, treating form feeds as page breaks.
type TextExtractor struct{}

// NewTextExtractor creates a plain-text extractor.
func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

// Pages returns one PageText per form-feed separated page.
func (e *TextExtractor) Pages(ctx context.Context, path string) ([]domain.PageText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	parts := strings.Split(text, "\f")
	pages := make([]domain.PageText, 0, len(parts))
	for i, part := range parts {
		pages = append(pages, domain.PageText{PageNumber: i + 1, Text: part})
	}
	pages = nonEmpty(pages)
	if len(pages) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return pages, nil
}
