package scoring

import (
	"regexp"
	"sort"
	"strings"
)

var (
	actionWordRe = regexp.MustCompile(`\b(?:prepare|create|analyze|identify|summarize|review|plan|develop|design|build)\w*\b`)
	domainTermRe = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)
	quotedTermRe = regexp.MustCompile(`["']([^"']+)["']`)
)

// JobKeywords are the keyword tiers derived from a job description.
type JobKeywords struct {
	High   []string
	Medium []string
}

// ExtractJobKeywords derives keyword tiers from free-text job description.
// Action verbs (matched as word prefixes) and quoted phrases are high
// priority; every other word of five or more letters is medium priority.
func ExtractJobKeywords(job string) JobKeywords {
	lower := strings.ToLower(job)

	high := actionWordRe.FindAllString(lower, -1)
	for _, m := range quotedTermRe.FindAllStringSubmatch(job, -1) {
		if term := strings.ToLower(strings.TrimSpace(m[1])); term != "" {
			high = append(high, term)
		}
	}

	var medium []string
	for _, term := range domainTermRe.FindAllString(lower, -1) {
		if len(term) > 4 {
			medium = append(medium, term)
		}
	}
	return JobKeywords{High: dedupe(high), Medium: dedupe(medium)}
}

// countContained returns how many keywords occur as substrings of text.
func countContained(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// dedupe returns the distinct values in sorted order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
