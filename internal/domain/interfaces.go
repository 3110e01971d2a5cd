package domain

import "context"

// Source tags how a candidate section was produced.
const (
	SourceDetectedSection = "detected_section"
	SourcePageContent     = "page_content"
)

// PageText is the raw text of one page of a source document.
type PageText struct {
	PageNumber int
	Text       string
}

// Document is a source document reduced to its ordered page texts.
type Document struct {
	ID    string
	Path  string
	Title string
	Pages []PageText
}

// CandidateSection is a titled span of page text eligible for ranking.
type CandidateSection struct {
	DocumentID string
	PageNumber int
	Title      string
	Text       string
	Source     string
	// Rule names the header rule that matched, empty for page fallbacks.
	Rule string
}

// RankedSection is a candidate section with its relevance score and rank.
type RankedSection struct {
	CandidateSection
	VectorScore    float64
	KeywordScore   float64
	RelevanceScore float64
	ImportanceRank int
}

// RefinedExcerpt is the condensed text of one ranked section.
type RefinedExcerpt struct {
	DocumentID  string
	PageNumber  int
	RefinedText string
}

// ScoringContext describes who is asking and what they need.
type ScoringContext struct {
	PersonaRole string
	JobTask     string
}

// Query returns the synthetic query document used for vector similarity.
func (c ScoringContext) Query() string {
	return c.PersonaRole + " " + c.JobTask
}

// PageExtractor turns a source document on disk into page texts.
type PageExtractor interface {
	Pages(ctx context.Context, path string) ([]PageText, error)
}

// Chunker splits text into the paragraphs used for excerpt selection.
type Chunker interface {
	Split(text string) []string
}

// Summarizer condenses a section's text into a bounded excerpt.
type Summarizer interface {
	Refine(text string, maxLength int) string
}

// TextScorer scores a piece of text against the run's persona and job.
type TextScorer interface {
	Score(text, documentLabel string) float64
}
