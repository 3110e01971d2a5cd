// Package service runs the ranking pipeline over document collections.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"docrank/internal/config"
	"docrank/internal/detector"
	"docrank/internal/domain"
	"docrank/internal/embedding/tfidf"
	"docrank/internal/extract"
	"docrank/internal/history"
	"docrank/internal/scoring"
)

// Reporter receives human-readable progress lines.
type Reporter interface {
	Banner(title string)
	Step(format string, args ...any)
	Detail(label, value string)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Fail(format string, args ...any)
	Elapsed(label string, d time.Duration)
}

// Recorder stores finished collection runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Service wires extraction, detection, ranking and refinement together.
type Service struct {
	cfg       *config.AppConfig
	extractor domain.PageExtractor
	knowledge *scoring.KnowledgeBase
	detector  *detector.Detector
	recorder  Recorder
	reporter  Reporter
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option customises a Service.
type Option func(*Service)

// WithExtractor replaces the page extractor.
func WithExtractor(e domain.PageExtractor) Option { return func(s *Service) { s.extractor = e } }

// WithKnowledgeBase replaces the persona keyword table.
func WithKnowledgeBase(kb *scoring.KnowledgeBase) Option { return func(s *Service) { s.knowledge = kb } }

// WithRecorder enables run history.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option { return func(s *Service) { s.reporter = r } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock sets the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDGenerator sets the run ID source.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// New creates a service. A nil config selects the defaults.
func New(cfg *config.AppConfig, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{
		cfg:       cfg,
		extractor: extract.NewRegistry(),
		knowledge: scoring.DefaultKnowledgeBase(),
		detector:  detector.New(cfg.Detector.WindowLines, cfg.Detector.MaxPagesPerDoc),
		reporter:  nopReporter{},
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewScorer builds the keyword scorer for one persona and job.
func (s *Service) NewScorer(sc domain.ScoringContext) *scoring.Scorer {
	w := s.cfg.Ranker.Weights
	return scoring.NewScorer(s.knowledge, sc, scoring.Weights{
		Persona:    w.Persona,
		Job:        w.Job,
		Context:    w.Context,
		Vector:     w.Vector,
		Keyword:    w.Keyword,
		TitleBonus: w.TitleBonus,
	})
}

func (s *Service) tfidfOptions() tfidf.Options {
	t := s.cfg.Ranker.TFIDF
	return tfidf.Options{
		MaxFeatures: t.MaxFeatures,
		MinNgram:    t.MinNgram,
		MaxNgram:    t.MaxNgram,
		MinDF:       t.MinDF,
		MaxDF:       t.MaxDF,
		Sublinear:   t.Sublinear(),
	}
}

type nopReporter struct{}

func (nopReporter) Banner(string)                 {}
func (nopReporter) Step(string, ...any)           {}
func (nopReporter) Detail(string, string)         {}
func (nopReporter) Success(string, ...any)        {}
func (nopReporter) Warn(string, ...any)           {}
func (nopReporter) Fail(string, ...any)           {}
func (nopReporter) Elapsed(string, time.Duration) {}
