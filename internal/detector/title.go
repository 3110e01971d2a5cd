package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// PlaceholderTitle is returned when a page has no usable tokens.
const PlaceholderTitle = "Content Section"

// titleStrategy proposes a title for page text, or reports no match.
type titleStrategy func(text string) (string, bool)

// titleLadder is tried in order; the first strategy to produce a title wins.
var titleLadder = []titleStrategy{
	titleFromLeadingLines,
	titleFromDishPatterns,
	titleFromCapitalisedRun,
	titleFromFirstWords,
}

var (
	titleMarkerRe  = regexp.MustCompile(`^[\s•\-\*\x{f0b7}\x{f0a7}\d\.\)]+`)
	titleSymbolsRe = regexp.MustCompile(`[^\p{L}\p{N}_\s\-&']`)

	dishPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*(?:\s+(?:Salad|Soup|Pasta|Pizza|Curry|Bowl|Dish|Recipe))\b`),
		regexp.MustCompile(`\b(?:Grilled|Baked|Roasted|Fresh|Steamed|Pan[- ]?fried)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`),
		regexp.MustCompile(`\b[A-Z][a-z]+\s+(?:with|and)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`),
	}
	capitalisedRunRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3}\b`)

	// Capitalised runs that are place-name fragments rather than titles.
	ignoredRuns = map[string]struct{}{"the united": {}, "south of": {}, "north america": {}}
)

// GenerateTitle derives a title for a page without structural headers.
// It never fails; the worst case is PlaceholderTitle.
func GenerateTitle(text string) string {
	for _, strategy := range titleLadder {
		if title, ok := strategy(text); ok {
			return title
		}
	}
	return PlaceholderTitle
}

func titleFromLeadingLines(text string) (string, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if n := utf8.RuneCountInString(line); n < 3 || n > 80 {
			continue
		}
		clean := titleMarkerRe.ReplaceAllString(line, "")
		clean = strings.TrimSpace(titleSymbolsRe.ReplaceAllString(clean, ""))
		if len(strings.Fields(clean)) < 2 || utf8.RuneCountInString(clean) > 60 {
			continue
		}
		if hasAnyPrefix(strings.ToLower(clean), []string{"ingredients", "instructions", "directions"}) {
			continue
		}
		return clean, true
	}
	return "", false
}

func titleFromDishPatterns(text string) (string, bool) {
	for _, re := range dishPatterns {
		if m := re.FindString(text); m != "" {
			return truncateRunes(m, 60), true
		}
	}
	return "", false
}

func titleFromCapitalisedRun(text string) (string, bool) {
	for _, m := range capitalisedRunRe.FindAllString(text, -1) {
		if len(strings.Fields(m)) < 2 || utf8.RuneCountInString(m) > 50 {
			continue
		}
		if _, skip := ignoredRuns[strings.ToLower(m)]; skip {
			continue
		}
		return m, true
	}
	return "", false
}

func titleFromFirstWords(text string) (string, bool) {
	var words []string
	for _, w := range strings.Fields(text) {
		if utf8.RuneCountInString(w) > 2 {
			words = append(words, w)
			if len(words) == 6 {
				break
			}
		}
	}
	if len(words) == 0 {
		return "", false
	}
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) > 50 {
		return truncateRunes(title, 50) + "...", true
	}
	return title, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
