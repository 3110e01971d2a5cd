// Package scoring computes keyword-driven relevance of text to a persona
// and the job they need done.
package scoring

import (
	"math"
	"strings"

	"docrank/internal/domain"
)

// Tier multipliers. A matched keyword contributes tier points times the
// multiplier: persona high 3x3, medium 2x2, low 1; job high 5x5, medium 2x2.
const (
	personaHighPoints   = 3 * 3
	personaMediumPoints = 2 * 2
	personaLowPoints    = 1
	jobHighPoints       = 5 * 5
	jobMediumPoints     = 2 * 2

	// wordsPerLengthUnit is the passage length above which scores are
	// divided down, turning raw hit counts into a density.
	wordsPerLengthUnit = 100.0
)

// Weights are the blend constants of the relevance score.
type Weights struct {
	Persona    float64
	Job        float64
	Context    float64
	Vector     float64
	Keyword    float64
	TitleBonus float64
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{Persona: 0.3, Job: 0.5, Context: 0.2, Vector: 0.4, Keyword: 0.6, TitleBonus: 0.1}
}

// Breakdown itemises one keyword score.
type Breakdown struct {
	PersonaScore  float64
	JobScore      float64
	ContextBonus  float64
	Penalty       float64
	LengthDivisor float64
	Score         float64
	FiredRules    []string
}

// Scorer scores text against one persona and job. It is built once per
// run and is immutable afterwards, so it may be shared freely.
type Scorer struct {
	context domain.ScoringContext
	weights Weights
	persona Tiers
	job     JobKeywords
	rules   []contextRule
}

// NewScorer derives the keyword tables and active context rules for a run.
// A nil knowledge base behaves like one with no known personas.
func NewScorer(kb *KnowledgeBase, sc domain.ScoringContext, w Weights) *Scorer {
	job := strings.ToLower(sc.JobTask)
	persona := strings.ToLower(sc.PersonaRole)

	var active []contextRule
	for _, r := range defaultContextRules() {
		if r.applies(job, persona) {
			active = append(active, r)
		}
	}
	return &Scorer{
		context: sc,
		weights: w,
		persona: kb.Lookup(sc.PersonaRole),
		job:     ExtractJobKeywords(sc.JobTask),
		rules:   active,
	}
}

// Context returns the persona and job the scorer was built for.
func (s *Scorer) Context() domain.ScoringContext { return s.context }

// Weights returns the blend constants in use.
func (s *Scorer) Weights() Weights { return s.weights }

// PersonaKeywords returns the persona tiers in use.
func (s *Scorer) PersonaKeywords() Tiers { return s.persona }

// JobKeywords returns the job tiers in use.
func (s *Scorer) JobKeywords() JobKeywords { return s.job }

// Score returns the non-negative keyword relevance of text. documentLabel
// is the owning document's name and may be empty.
func (s *Scorer) Score(text, documentLabel string) float64 {
	return s.Explain(text, documentLabel).Score
}

// Explain returns the full breakdown behind Score.
func (s *Scorer) Explain(text, documentLabel string) Breakdown {
	lower := strings.ToLower(text)
	doc := strings.ToLower(documentLabel)

	b := Breakdown{
		PersonaScore: float64(personaHighPoints*countContained(lower, s.persona.High) +
			personaMediumPoints*countContained(lower, s.persona.Medium) +
			personaLowPoints*countContained(lower, s.persona.Low)),
		JobScore: float64(jobHighPoints*countContained(lower, s.job.High) +
			jobMediumPoints*countContained(lower, s.job.Medium)),
	}
	for _, r := range s.rules {
		bonus, penalty := r.apply(lower, doc)
		if bonus == 0 && penalty == 0 {
			continue
		}
		b.ContextBonus += bonus
		b.Penalty += penalty
		b.FiredRules = append(b.FiredRules, r.name)
	}

	b.LengthDivisor = math.Max(float64(len(strings.Fields(text)))/wordsPerLengthUnit, 1)
	raw := s.weights.Persona*b.PersonaScore + s.weights.Job*b.JobScore +
		s.weights.Context*b.ContextBonus + b.Penalty
	b.Score = NonNegative(raw / b.LengthDivisor)
	return b
}

// NonNegative maps negative, NaN and infinite scores to zero.
func NonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
