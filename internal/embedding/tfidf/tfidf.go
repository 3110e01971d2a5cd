package tfidf

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"docrank/internal/embedding"
)

// ErrEmptyVocabulary is returned by Prepare when no term survives
// tokenisation and document-frequency pruning.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

// Options control vocabulary construction.
type Options struct {
	// MaxFeatures keeps only the most frequent terms; 0 keeps all.
	MaxFeatures int
	MinNgram    int
	MaxNgram    int
	// MinDF is the minimum number of documents a term must occur in.
	MinDF int
	// MaxDF is the maximum share of documents a term may occur in.
	MaxDF float64
	// Sublinear replaces raw term counts with 1+ln(count).
	Sublinear bool
}

// DefaultOptions returns the settings used for section ranking.
func DefaultOptions() Options {
	return Options{MaxFeatures: 2000, MinNgram: 1, MaxNgram: 3, MinDF: 1, MaxDF: 0.95, Sublinear: true}
}

// Embedder implements a TF-IDF vectorizer with word n-grams.
// It builds a vocabulary from the corpus and computes IDF values.
type Embedder struct {
	opts         Options
	vocabulary   map[string]int
	terms        []string
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

var _ embedding.Embedder = (*Embedder)(nil)

// NewEmbedder creates an unprepared TF-IDF embedder. Zero n-gram bounds
// and a non-positive MaxDF fall back to the defaults.
func NewEmbedder(opts Options) *Embedder {
	def := DefaultOptions()
	if opts.MinNgram <= 0 {
		opts.MinNgram = def.MinNgram
	}
	if opts.MaxNgram < opts.MinNgram {
		opts.MaxNgram = opts.MinNgram
	}
	if opts.MinDF <= 0 {
		opts.MinDF = def.MinDF
	}
	if opts.MaxDF <= 0 || opts.MaxDF > 1 {
		opts.MaxDF = def.MaxDF
	}
	return &Embedder{
		opts:         opts,
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
		stopwords:    englishStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	e.prepared = false
	if len(corpus) == 0 {
		return fmt.Errorf("%w: empty corpus", ErrEmptyVocabulary)
	}

	df := make(map[string]int)
	tf := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range e.analyze(text) {
			tf[term]++
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	if len(df) == 0 {
		return fmt.Errorf("%w: documents contain only stop words", ErrEmptyVocabulary)
	}

	n := float64(len(corpus))
	maxDocs := e.opts.MaxDF * n
	if maxDocs < float64(e.opts.MinDF) {
		return fmt.Errorf("%w: max_df covers fewer documents than min_df", ErrEmptyVocabulary)
	}
	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= e.opts.MinDF && float64(count) <= maxDocs {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("%w: no terms remain after pruning", ErrEmptyVocabulary)
	}

	if e.opts.MaxFeatures > 0 && len(terms) > e.opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:e.opts.MaxFeatures]
	}
	sort.Strings(terms)

	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.terms = terms
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the L2-normalised TF-IDF vector for the given text.
// Text with no known terms yields the zero vector.
func (e *Embedder) Embed(text string) ([]float64, error) {
	if !e.prepared {
		return nil, embedding.ErrNotPrepared
	}
	vec := make([]float64, e.dimension)
	counts := make(map[int]int)
	for _, term := range e.analyze(text) {
		if idx, ok := e.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return vec, nil
	}
	for idx, count := range counts {
		tfv := float64(count)
		if e.opts.Sublinear {
			tfv = 1 + math.Log(tfv)
		}
		vec[idx] = tfv * e.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// analyze lower-cases and tokenises text, removes stop words, and expands
// the remaining tokens into n-grams.
func (e *Embedder) analyze(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		tokens = append(tokens, t)
	}
	if e.opts.MaxNgram == 1 && e.opts.MinNgram == 1 {
		return tokens
	}
	var out []string
	for size := e.opts.MinNgram; size <= e.opts.MaxNgram && size <= len(tokens); size++ {
		for i := 0; i+size <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+size], " "))
		}
	}
	return out
}
