package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docrank/internal/chunker"
	"docrank/internal/domain"
	"docrank/internal/ranking"
	"docrank/internal/report"
	"docrank/internal/summarizer"
)

// ErrNoSections is returned when no document yields a candidate section.
var ErrNoSections = errors.New("no sections extracted from any document")

// Result is the outcome of ranking one pooled corpus.
type Result struct {
	Sections []domain.RankedSection
	// Excerpts parallel Sections.
	Excerpts []domain.RefinedExcerpt
	// Documents lists the documents that contributed sections, in pooling order.
	Documents []string
}

// Rank detects sections in every document, ranks the pooled sections for
// the persona and job, and refines each ranked section.
func (s *Service) Rank(ctx context.Context, docs []domain.Document, sc domain.ScoringContext) (*Result, error) {
	pooled, contributing := s.pool(docs)
	if len(pooled) == 0 {
		return nil, ErrNoSections
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scorer := s.NewScorer(sc)
	ranked := ranking.New(scorer,
		ranking.WithTFIDF(s.tfidfOptions()),
		ranking.WithLogger(s.logger),
	).Rank(pooled)

	refiner := summarizer.NewRefiner(scorer, chunker.NewParagraphChunker())
	excerpts := make([]domain.RefinedExcerpt, len(ranked))
	for i, r := range ranked {
		excerpts[i] = domain.RefinedExcerpt{
			DocumentID:  r.DocumentID,
			PageNumber:  r.PageNumber,
			RefinedText: refiner.Refine(r.Text, s.cfg.Refiner.MaxLength),
		}
	}
	return &Result{Sections: ranked, Excerpts: excerpts, Documents: contributing}, nil
}

// pool detects the sections of each document in order and tags them with
// the owning document. A document whose detection fails contributes nothing.
func (s *Service) pool(docs []domain.Document) ([]domain.CandidateSection, []string) {
	var (
		pooled       []domain.CandidateSection
		contributing []string
	)
	for _, doc := range docs {
		sections, err := s.detect(doc)
		if err != nil {
			s.logger.Warn("section detection failed", slog.String("document", doc.ID), slog.Any("error", err))
			continue
		}
		if len(sections) == 0 {
			continue
		}
		for i := range sections {
			sections[i].DocumentID = doc.ID
		}
		pooled = append(pooled, sections...)
		contributing = append(contributing, doc.ID)
	}
	return pooled, contributing
}

func (s *Service) detect(doc domain.Document) (sections []domain.CandidateSection, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("detector panic: %v", p)
		}
	}()
	return s.detector.Detect(doc.Pages), nil
}

// BuildOutput converts a ranking result into an enhanced-mode report.
// Timestamp and run ID are left for the caller.
func BuildOutput(res *Result, sc domain.ScoringContext) *report.Output {
	out := report.NewOutput(report.Metadata{
		InputDocuments:        append([]string{}, res.Documents...),
		Persona:               sc.PersonaRole,
		JobToBeDone:           sc.JobTask,
		TotalSectionsAnalyzed: len(res.Sections),
		Mode:                  report.ModeEnhanced,
	})
	for i, r := range res.Sections {
		out.ExtractedSections = append(out.ExtractedSections, report.ExtractedSection{
			Document:       r.DocumentID,
			SectionTitle:   r.Title,
			ImportanceRank: r.ImportanceRank,
			PageNumber:     r.PageNumber,
		})
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, report.SubsectionAnalysis{
			Document:    res.Excerpts[i].DocumentID,
			RefinedText: res.Excerpts[i].RefinedText,
			PageNumber:  res.Excerpts[i].PageNumber,
		})
	}
	return out
}

// RankFiles ranks ad-hoc document files without a collection input file.
// Each document is identified by its base file name.
func (s *Service) RankFiles(ctx context.Context, paths []string, sc domain.ScoringContext) (*report.Output, *Result, error) {
	sources := make([]Source, len(paths))
	for i, p := range paths {
		sources[i] = Source{ID: baseName(p), Path: p, Title: baseName(p)}
	}
	docs, err := s.Extract(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Rank(ctx, docs, sc)
	if err != nil {
		return nil, nil, err
	}
	out := BuildOutput(res, sc)
	out.Metadata.RunID = s.newID()
	out.Metadata.ProcessingTimestamp = s.now().Format(report.TimestampLayout)
	return out, res, nil
}
