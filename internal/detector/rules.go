package detector

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeaderRule is one entry of the header library. A line is a header when
// Pattern matches (or is nil) and Accept (when set) agrees.
type HeaderRule struct {
	Name    string
	Pattern *regexp.Regexp
	Accept  func(clean string) bool
}

// Match reports whether the cleaned line satisfies the rule.
func (r HeaderRule) Match(clean string) bool {
	if r.Pattern != nil && !r.Pattern.MatchString(clean) {
		return false
	}
	if r.Accept != nil && !r.Accept(clean) {
		return false
	}
	return r.Pattern != nil || r.Accept != nil
}

// DefaultRules is evaluated top to bottom; the first match wins.
var DefaultRules = []HeaderRule{
	{Name: "dish_name", Pattern: regexp.MustCompile(`^[A-Z][a-zA-Z\s&'-]{3,50}(?:\s+(?:Salad|Soup|Pasta|Pizza|Curry|Bowl|Dish|Recipe))?$`)},
	{Name: "numbered", Pattern: regexp.MustCompile(`^\d+\.\s+[A-Z][A-Za-z\s\-&]{5,60}$`)},
	{Name: "all_caps", Pattern: regexp.MustCompile(`^[A-Z\s\-&]{8,50}$`)},
	{Name: "title_case", Pattern: regexp.MustCompile(`^[A-Z][A-Za-z\s\-&]{10,60}$`)},
	{Name: "bullet", Pattern: regexp.MustCompile(`^•\s+[A-Z][A-Za-z\s\-&]{5,50}$`)},
	{Name: "known_header", Pattern: regexp.MustCompile(`^(?:Introduction|Overview|Summary|Conclusion)`)},
	{Name: "cooking_method", Pattern: regexp.MustCompile(`^(?:Grilled|Baked|Roasted|Fresh|Steamed|Pan[- ]?fried)\s+[A-Z][a-zA-Z\s]{5,40}$`)},
	{Name: "with_phrase", Pattern: regexp.MustCompile(`^[A-Z][a-zA-Z\s&'-]+(?:\s+with\s+[A-Z][a-zA-Z\s&]+)?$`)},
	{Name: "title_like", Accept: looksLikeTitle},
}

var (
	// leadingMarkerRe strips bullets, numbering and private-use glyphs left by PDF fonts.
	leadingMarkerRe = regexp.MustCompile(`^[\s•\-\*\x{f0b7}\x{f0a7}\d\.\)\(]+`)
	quantityRe      = regexp.MustCompile(`^\d+\s+(cups?|tablespoons?|teaspoons?|pounds?|ounces?)`)

	bodyPrefixes = []string{"ingredients", "instructions", "directions", "method", "serves", "prep time"}
	leadStops    = map[string]struct{}{
		"the": {}, "and": {}, "or": {}, "but": {}, "with": {}, "for": {}, "in": {}, "on": {}, "at": {},
	}
)

func cleanHeaderLine(line string) string {
	return strings.TrimSpace(leadingMarkerRe.ReplaceAllString(line, ""))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// looksLikeTitle is the generic fallback heuristic for short, capitalised,
// unpunctuated lines that do not read like recipe body text.
func looksLikeTitle(clean string) bool {
	n := utf8.RuneCountInString(clean)
	if n < 3 || n > 80 {
		return false
	}
	words := strings.Fields(clean)
	if len(words) < 2 {
		return false
	}
	lower := strings.ToLower(clean)
	if hasAnyPrefix(lower, bodyPrefixes) || quantityRe.MatchString(lower) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(words[0])
	if !unicode.IsUpper(first) || strings.HasSuffix(clean, ".") {
		return false
	}
	for _, w := range words[:2] {
		if _, stop := leadStops[strings.ToLower(w)]; stop {
			return false
		}
	}
	return true
}
