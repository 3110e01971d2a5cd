// Package detector finds candidate sections in raw page text using
// structural and typographic heuristics.
package detector

import (
	"strings"

	"docrank/internal/domain"
)

const (
	defaultWindowLines = 10
	defaultMaxPages    = 5
)

// Detector turns page text into candidate sections. It holds no per-call
// state and is safe for concurrent use.
type Detector struct {
	rules       []HeaderRule
	windowLines int
	maxPages    int
}

// Option customises a Detector.
type Option func(*Detector)

// WithRules replaces the header rule library.
func WithRules(rules []HeaderRule) Option {
	return func(d *Detector) { d.rules = rules }
}

// New creates a detector. windowLines is the number of lines, header
// included, copied into each section body; maxPages caps the pages
// considered per document. Non-positive values select the defaults.
func New(windowLines, maxPages int, opts ...Option) *Detector {
	if windowLines <= 0 {
		windowLines = defaultWindowLines
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	d := &Detector{rules: DefaultRules, windowLines: windowLines, maxPages: maxPages}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the candidate sections of the first maxPages non-empty
// pages of a document, in page order. DocumentID is left for the caller.
func (d *Detector) Detect(pages []domain.PageText) []domain.CandidateSection {
	var sections []domain.CandidateSection
	considered := 0
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		if considered == d.maxPages {
			break
		}
		considered++
		sections = append(sections, d.DetectPage(page)...)
	}
	return sections
}

// DetectPage returns one section per header line found on the page, or a
// single whole-page section with a generated title when there is none.
func (d *Detector) DetectPage(page domain.PageText) []domain.CandidateSection {
	lines := strings.Split(page.Text, "\n")
	var sections []domain.CandidateSection
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		rule, ok := d.headerRule(line)
		if !ok {
			continue
		}
		end := min(i+d.windowLines, len(lines))
		sections = append(sections, domain.CandidateSection{
			PageNumber: page.PageNumber,
			Title:      line,
			Text:       strings.Join(lines[i:end], "\n"),
			Source:     domain.SourceDetectedSection,
			Rule:       rule,
		})
	}
	if len(sections) > 0 || strings.TrimSpace(page.Text) == "" {
		return sections
	}
	return []domain.CandidateSection{{
		PageNumber: page.PageNumber,
		Title:      GenerateTitle(page.Text),
		Text:       page.Text,
		Source:     domain.SourcePageContent,
	}}
}

// IsHeader reports whether a single line would start a section.
func (d *Detector) IsHeader(line string) bool {
	_, ok := d.headerRule(strings.TrimSpace(line))
	return ok
}

func (d *Detector) headerRule(line string) (string, bool) {
	if len([]rune(line)) < 3 {
		return "", false
	}
	clean := cleanHeaderLine(line)
	if clean == "" {
		return "", false
	}
	for _, r := range d.rules {
		if r.Match(clean) {
			return r.Name, true
		}
	}
	return "", false
}
