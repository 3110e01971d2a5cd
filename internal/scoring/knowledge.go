package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var defaultPersonasYAML []byte

// Tiers are the keyword lists of one persona, from most to least telling.
type Tiers struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

// KnowledgeBase maps persona roles to their keyword tiers.
type KnowledgeBase struct {
	Personas map[string]Tiers `yaml:"personas"`
}

// DefaultKnowledgeBase returns the built-in persona table.
func DefaultKnowledgeBase() *KnowledgeBase {
	kb, err := ParseKnowledgeBase(defaultPersonasYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded personas.yaml: %v", err))
	}
	return kb
}

// LoadKnowledgeBase reads a persona table from a YAML file.
func LoadKnowledgeBase(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	return ParseKnowledgeBase(data)
}

// ParseKnowledgeBase decodes a persona table and lower-cases its keywords.
func ParseKnowledgeBase(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	for role, tiers := range kb.Personas {
		kb.Personas[role] = Tiers{
			High:   normalizeKeywords(tiers.High),
			Medium: normalizeKeywords(tiers.Medium),
			Low:    normalizeKeywords(tiers.Low),
		}
	}
	return &kb, nil
}

// Lookup returns the tiers for a role. An exact match is preferred, then a
// case-insensitive one; unknown roles get empty tiers.
func (kb *KnowledgeBase) Lookup(role string) Tiers {
	if kb == nil {
		return Tiers{}
	}
	if t, ok := kb.Personas[role]; ok {
		return t
	}
	want := strings.TrimSpace(role)
	names := make([]string, 0, len(kb.Personas))
	for name := range kb.Personas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.EqualFold(name, want) {
			return kb.Personas[name]
		}
	}
	return Tiers{}
}

func normalizeKeywords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return dedupe(out)
}
