package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"docrank/internal/domain"
)

// Source is one document to extract.
type Source struct {
	ID    string
	Path  string
	Title string
}

var errMissing = errors.New("file not found")

type extraction struct {
	doc *domain.Document
	err error
}

// Extract reads the pages of every source concurrently. Missing or
// unreadable documents are logged and skipped; the returned documents
// keep source order. Only context cancellation is returned as an error.
func (s *Service) Extract(ctx context.Context, sources []Source) ([]domain.Document, error) {
	results := make([]extraction, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.Extraction.Workers))
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := os.Stat(src.Path); err != nil {
				results[i].err = fmt.Errorf("%w: %s", errMissing, src.Path)
				return nil
			}
			pages, err := s.pages(gctx, src.Path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i].err = err
				return nil
			}
			results[i].doc = &domain.Document{ID: src.ID, Path: src.Path, Title: src.Title, Pages: pages}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(sources))
	for i, r := range results {
		src := sources[i]
		switch {
		case errors.Is(r.err, errMissing):
			s.logger.Warn("document not found", slog.String("document", src.ID), slog.String("path", src.Path))
			s.reporter.Fail("File not found: %s", src.Path)
		case r.err != nil:
			s.logger.Warn("document extraction failed", slog.String("document", src.ID), slog.Any("error", r.err))
			s.reporter.Fail("  Error processing %s: %v", src.ID, r.err)
		default:
			s.logger.Debug("document extracted", slog.String("document", src.ID), slog.Int("pages", len(r.doc.Pages)))
			s.reporter.Step("  Processing: %s", src.ID)
			docs = append(docs, *r.doc)
		}
	}
	return docs, nil
}

// pages runs the extractor, converting a panic into an error so one bad
// file cannot take down the run.
func (s *Service) pages(ctx context.Context, path string) (pages []domain.PageText, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("extractor panic on %s: %v", path, p)
		}
	}()
	return s.extractor.Pages(ctx, path)
}
