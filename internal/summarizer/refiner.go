// Package summarizer condenses section text into length-bounded excerpts
// built from the section's most relevant paragraphs.
package summarizer

import (
	"sort"
	"strings"

	"docrank/internal/chunker"
	"docrank/internal/domain"
)

const (
	// DefaultMaxLength is used when Refine is given a non-positive bound.
	DefaultMaxLength = 1000

	// Ellipsis marks text cut at an arbitrary character.
	Ellipsis = "..."

	minParagraphLength = 30
	minPartialLength   = 100
	// sentenceCutShare is how far into a partial paragraph a period must
	// sit for the cut to move back to it.
	sentenceCutShare = 0.7
)

// Refiner picks the paragraphs of a section that score highest for the
// run's persona and job. Lengths are counted in runes.
type Refiner struct {
	scorer  domain.TextScorer
	chunker domain.Chunker
}

var _ domain.Summarizer = (*Refiner)(nil)

// NewRefiner creates a refiner. A nil chunker selects paragraph splitting.
func NewRefiner(scorer domain.TextScorer, c domain.Chunker) *Refiner {
	if c == nil {
		c = chunker.NewParagraphChunker()
	}
	return &Refiner{scorer: scorer, chunker: c}
}

// Refine returns text trimmed when it already fits, otherwise the best
// paragraphs that fit within maxLength. The result never exceeds
// maxLength plus len(Ellipsis).
func (r *Refiner) Refine(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if runeLen(text) <= maxLength {
		return strings.TrimSpace(text)
	}

	type scored struct {
		text  string
		score float64
	}
	var candidates []scored
	for _, p := range r.chunker.Split(text) {
		if runeLen(p) > minParagraphLength {
			candidates = append(candidates, scored{text: p, score: r.scorer.Score(p, "")})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	var b strings.Builder
	used := 0
	for _, c := range candidates {
		n := runeLen(c.text)
		if used+n <= maxLength {
			b.WriteString(c.text)
			b.WriteString("\n\n")
			used += n + 2
			continue
		}
		if remaining := maxLength - used; remaining > minPartialLength {
			b.WriteString(cutPartial([]rune(c.text)[:remaining]))
		}
		break
	}

	if out := strings.TrimSpace(b.String()); out != "" {
		return out
	}
	return truncate(text, maxLength) + Ellipsis
}

// cutPartial ends a paragraph prefix at its last period when that period
// falls late enough, otherwise marks the hard cut with an ellipsis.
func cutPartial(partial []rune) string {
	last := -1
	for i := len(partial) - 1; i >= 0; i-- {
		if partial[i] == '.' {
			last = i
			break
		}
	}
	if float64(last) > float64(len(partial))*sentenceCutShare {
		return string(partial[:last+1])
	}
	return string(partial) + Ellipsis
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func runeLen(s string) int { return len([]rune(s)) }
