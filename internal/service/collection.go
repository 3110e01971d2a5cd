package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"docrank/internal/domain"
	"docrank/internal/history"
	"docrank/internal/report"
)

// CollectionResult summarises one processed collection.
type CollectionResult struct {
	Name       string
	OutputPath string
	RunID      string
	Mode       string
	Sections   int
	Elapsed    time.Duration
}

// ProcessCollection runs the enhanced pipeline over the collection in dir
// and writes its report. Any enhanced failure falls back to simple mode,
// so a report is written whenever the input file is readable.
func (s *Service) ProcessCollection(ctx context.Context, dir string) (*CollectionResult, error) {
	start := s.now()
	name := filepath.Base(dir)

	in, err := report.ReadInput(filepath.Join(dir, s.cfg.Layout.InputFile))
	if err != nil {
		return nil, err
	}
	runID := s.newID()
	logger := s.logger.With(slog.String("run_id", runID), slog.String("collection", name))
	sc := domain.ScoringContext{PersonaRole: in.Persona.Role, JobTask: in.JobToBeDone.Task}

	s.reporter.Banner("Processing " + name)
	s.reporter.Detail("Persona", sc.PersonaRole)
	s.reporter.Detail("Job", sc.JobTask)

	out, err := s.enhanced(ctx, dir, in, sc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("enhanced processing failed, using simple mode", slog.Any("error", err))
		s.reporter.Fail("Enhanced processing failed: %v", err)
		s.reporter.Warn("Falling back to simple processing...")
		out = s.simple(ctx, dir, in)
	}
	out.Metadata.RunID = runID
	out.Metadata.ProcessingTimestamp = s.now().Format(report.TimestampLayout)

	if err := report.ValidateOutput(out); err != nil {
		logger.Warn("report does not match output schema", slog.Any("error", err))
	}
	outPath := filepath.Join(dir, s.cfg.Layout.OutputFile)
	if err := report.Write(outPath, out); err != nil {
		return nil, err
	}

	res := &CollectionResult{
		Name:       name,
		OutputPath: outPath,
		RunID:      runID,
		Mode:       out.Metadata.Mode,
		Sections:   out.Metadata.TotalSectionsAnalyzed,
		Elapsed:    s.now().Sub(start),
	}
	s.reporter.Success("%s output written to %s", res.Mode, outPath)
	s.reporter.Elapsed("Processing time", res.Elapsed)
	s.reporter.Step("Sections analyzed: %d", res.Sections)
	logger.Info("collection processed",
		slog.String("mode", res.Mode), slog.Int("sections", res.Sections), slog.Duration("elapsed", res.Elapsed))

	if s.recorder != nil {
		err := s.recorder.Record(ctx, history.Run{
			ID:         runID,
			Collection: name,
			Persona:    sc.PersonaRole,
			Job:        sc.JobTask,
			Mode:       res.Mode,
			Sections:   res.Sections,
			StartedAt:  start,
			Duration:   res.Elapsed,
		})
		if err != nil {
			logger.Warn("recording run history failed", slog.Any("error", err))
		}
	}
	return res, nil
}

// ProcessAll processes each named collection under root. Collections
// without an input file are skipped; failures of one collection do not
// stop the others and are joined into the returned error.
func (s *Service) ProcessAll(ctx context.Context, root string, names []string) ([]CollectionResult, error) {
	start := s.now()
	var (
		results []CollectionResult
		errs    []error
	)
	for _, name := range names {
		dir := name
		if root != "" && !filepath.IsAbs(name) {
			dir = filepath.Join(root, name)
		}
		if _, err := os.Stat(filepath.Join(dir, s.cfg.Layout.InputFile)); err != nil {
			s.logger.Info("skipping collection without input file", slog.String("collection", name))
			s.reporter.Warn("Skipping %s: No input JSON found.", name)
			continue
		}
		res, err := s.ProcessCollection(ctx, dir)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			s.logger.Error("collection failed", slog.String("collection", name), slog.Any("error", err))
			s.reporter.Fail("Processing %s failed: %v", name, err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		results = append(results, *res)
	}
	s.reporter.Elapsed("All collections processed in", s.now().Sub(start))
	return results, errors.Join(errs...)
}

func (s *Service) sources(dir string, in *report.Input) []Source {
	sources := make([]Source, len(in.Documents))
	for i, d := range in.Documents {
		sources[i] = Source{
			ID:    d.Filename,
			Path:  filepath.Join(dir, s.cfg.Layout.DocumentsDir, d.Filename),
			Title: d.Title,
		}
	}
	return sources
}

func (s *Service) enhanced(ctx context.Context, dir string, in *report.Input, sc domain.ScoringContext) (out *report.Output, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("enhanced pipeline panic: %v", p)
		}
	}()
	s.reporter.Step("Initializing enhanced processing...")
	docs, err := s.Extract(ctx, s.sources(dir, in))
	if err != nil {
		return nil, err
	}
	s.reporter.Step("  Ranking sections by relevance...")
	res, err := s.Rank(ctx, docs, sc)
	if err != nil {
		return nil, err
	}
	return BuildOutput(res, sc), nil
}

// simple emits the first pages of every readable document verbatim,
// titled with the configured document title.
func (s *Service) simple(ctx context.Context, dir string, in *report.Input) *report.Output {
	filenames := make([]string, len(in.Documents))
	for i, d := range in.Documents {
		filenames[i] = d.Filename
	}
	out := report.NewOutput(report.Metadata{
		InputDocuments: filenames,
		Persona:        in.Persona.Role,
		JobToBeDone:    in.JobToBeDone.Task,
		Mode:           report.ModeSimple,
	})

	for _, src := range s.sources(dir, in) {
		if _, err := os.Stat(src.Path); err != nil {
			continue
		}
		pages, err := s.pages(ctx, src.Path)
		if err != nil {
			s.logger.Warn("simple mode extraction failed", slog.String("document", src.ID), slog.Any("error", err))
			s.reporter.Fail("Error processing %s: %v", src.ID, err)
			continue
		}
		if n := s.cfg.Fallback.PagesPerDocument; len(pages) > n {
			pages = pages[:n]
		}
		for idx, p := range pages {
			out.ExtractedSections = append(out.ExtractedSections, report.ExtractedSection{
				Document:       src.ID,
				SectionTitle:   src.Title,
				ImportanceRank: idx + 1,
				PageNumber:     p.PageNumber,
			})
			out.SubsectionAnalysis = append(out.SubsectionAnalysis, report.SubsectionAnalysis{
				Document:    src.ID,
				RefinedText: truncateRunes(p.Text, s.cfg.Fallback.ExcerptLength),
				PageNumber:  p.PageNumber,
			})
		}
	}
	out.Metadata.TotalSectionsAnalyzed = len(out.ExtractedSections)
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func baseName(path string) string { return filepath.Base(path) }
