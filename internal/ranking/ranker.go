// Package ranking orders pooled candidate sections by a blend of corpus
// term-vector similarity and keyword relevance.
package ranking

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"docrank/internal/domain"
	"docrank/internal/embedding"
	"docrank/internal/embedding/tfidf"
	"docrank/internal/scoring"
	"docrank/internal/vectorstore"
	"docrank/internal/vectorstore/memory"
)

// Ranker scores and orders sections for one persona and job.
type Ranker struct {
	scorer      *scoring.Scorer
	newEmbedder func() embedding.Embedder
	newStore    func() vectorstore.Storage
	logger      *slog.Logger
}

// Option customises a Ranker.
type Option func(*Ranker)

// WithTFIDF sets the vectorizer options.
func WithTFIDF(opts tfidf.Options) Option {
	return func(r *Ranker) {
		r.newEmbedder = func() embedding.Embedder { return tfidf.NewEmbedder(opts) }
	}
}

// WithEmbedder replaces the vectorizer. A fresh embedder is built per call
// to Rank so the vocabulary always reflects the whole pooled corpus.
func WithEmbedder(factory func() embedding.Embedder) Option {
	return func(r *Ranker) { r.newEmbedder = factory }
}

// WithStore replaces the vector store used for the similarity pass.
func WithStore(factory func() vectorstore.Storage) Option {
	return func(r *Ranker) { r.newStore = factory }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Ranker) { r.logger = l }
}

// New creates a ranker around a run's scorer.
func New(scorer *scoring.Scorer, opts ...Option) *Ranker {
	r := &Ranker{
		scorer:      scorer,
		newEmbedder: func() embedding.Embedder { return tfidf.NewEmbedder(tfidf.DefaultOptions()) },
		newStore:    func() vectorstore.Storage { return memory.NewStorage() },
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns the sections ordered by descending relevance with dense
// 1-based importance ranks. Equal scores keep their input order.
func (r *Ranker) Rank(sections []domain.CandidateSection) []domain.RankedSection {
	if len(sections) == 0 {
		return []domain.RankedSection{}
	}

	vectors, err := r.vectorScores(sections)
	if err != nil {
		r.logger.Warn("term-vector scoring failed, using keyword scores only",
			slog.Int("sections", len(sections)), slog.Any("error", err))
		vectors = make([]float64, len(sections))
	}

	w := r.scorer.Weights()
	ranked := make([]domain.RankedSection, len(sections))
	for i, s := range sections {
		kw := r.scorer.Score(s.Text, s.DocumentID)
		score := w.Vector*vectors[i] + w.Keyword*kw
		if HasRealTitle(s.Title) {
			score += w.TitleBonus
		}
		ranked[i] = domain.RankedSection{
			CandidateSection: s,
			VectorScore:      vectors[i],
			KeywordScore:     kw,
			RelevanceScore:   scoring.NonNegative(score),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
	for i := range ranked {
		ranked[i].ImportanceRank = i + 1
	}
	return ranked
}

// HasRealTitle reports whether a title looks like a detected header rather
// than a generic placeholder.
func HasRealTitle(title string) bool {
	return len(strings.Fields(title)) >= 2 && !strings.HasPrefix(title, "Content")
}

// vectorScores fits the vectorizer on every section plus the query and
// returns each section's cosine similarity to the query.
func (r *Ranker) vectorScores(sections []domain.CandidateSection) (scores []float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("vectorizer panic: %v", p)
		}
	}()

	corpus := make([]string, 0, len(sections)+1)
	for _, s := range sections {
		corpus = append(corpus, s.Text)
	}
	query := r.scorer.Context().Query()
	corpus = append(corpus, query)

	emb := r.newEmbedder()
	if err := emb.Prepare(corpus); err != nil {
		return nil, fmt.Errorf("prepare %s: %w", emb.Name(), err)
	}

	store := r.newStore()
	if err := store.Init(emb.Dimension()); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	ids := make([]string, len(sections))
	vecs := make([][]float64, len(sections))
	for i, s := range sections {
		v, err := emb.Embed(s.Text)
		if err != nil {
			return nil, fmt.Errorf("embed section %d: %w", i, err)
		}
		ids[i] = strconv.Itoa(i)
		vecs[i] = v
	}
	if err := store.Upsert(ids, vecs); err != nil {
		return nil, fmt.Errorf("store vectors: %w", err)
	}

	qv, err := emb.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := store.Search(qv, 0)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	scores = make([]float64, len(sections))
	for _, m := range matches {
		i, err := strconv.Atoi(m.ID)
		if err != nil || i < 0 || i >= len(scores) {
			return nil, fmt.Errorf("unexpected match id %q", m.ID)
		}
		scores[i] = scoring.NonNegative(m.Score)
	}
	return scores, nil
}
