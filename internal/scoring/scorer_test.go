package scoring

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrank/internal/domain"
)

func newScorer(persona, job string) *Scorer {
	return NewScorer(DefaultKnowledgeBase(), domain.ScoringContext{PersonaRole: persona, JobTask: job}, DefaultWeights())
}

func TestExtractJobKeywords(t *testing.T) {
	kw := ExtractJobKeywords(`Prepare a 'gluten-free' buffet for the Corporate gathering, reviewing options`)

	assert.Equal(t, []string{"gluten-free", "prepare", "reviewing"}, kw.High)
	assert.Equal(t, []string{"buffet", "corporate", "gathering", "gluten", "options", "prepare", "reviewing"}, kw.Medium)
}

func TestExtractJobKeywords_Empty(t *testing.T) {
	kw := ExtractJobKeywords("")
	assert.Empty(t, kw.High)
	assert.Empty(t, kw.Medium)
}

func TestScore_PersonaArithmetic(t *testing.T) {
	s := newScorer("Travel Planner", "")
	b := s.Explain("Our itinerary", "")

	assert.Equal(t, 9.0, b.PersonaScore)
	assert.Equal(t, 0.0, b.JobScore)
	assert.Equal(t, 2.0, b.ContextBonus)
	assert.Equal(t, []string{"travel_terms"}, b.FiredRules)
	assert.InDelta(t, 0.3*9+0.2*2, b.Score, 1e-9)
}

func TestScore_JobHighKeyword(t *testing.T) {
	s := newScorer("Unknown Role", "Plan a trip")
	b := s.Explain("We plan everything", "")

	assert.Equal(t, 0.0, b.PersonaScore)
	assert.Equal(t, 25.0, b.JobScore)
	assert.InDelta(t, 12.5, b.Score, 1e-9)
}

func TestScore_UnknownPersonaDegradesToJobKeywords(t *testing.T) {
	s := newScorer("Astronaut", "Summarize mission reports")
	assert.Empty(t, s.PersonaKeywords().High)
	assert.Greater(t, s.Score("mission reports summary", ""), 0.0)
}

func TestScore_DietaryPenaltyDominance(t *testing.T) {
	s := newScorer("Food Contractor", "vegetarian dinner menu")
	chicken := s.Explain("Stir fry with chicken and rice.", "")
	tofu := s.Explain("Stir fry with tofu and rice.", "")

	assert.Equal(t, chicken.PersonaScore, tofu.PersonaScore)
	assert.Equal(t, chicken.JobScore, tofu.JobScore)
	rawDelta := (tofu.ContextBonus + tofu.Penalty) - (chicken.ContextBonus + chicken.Penalty)
	assert.Equal(t, 12.0, rawDelta)
	assert.Equal(t, -8.0, chicken.Penalty)
	assert.Greater(t, tofu.Score, chicken.Score)
	assert.Equal(t, 0.0, chicken.Score, "penalised score is clamped at zero")
}

func TestScore_GlutenFreeRule(t *testing.T) {
	s := newScorer("Food Contractor", "gluten-free lunch")
	b := s.Explain("rice noodles tossed with wheat flour dumplings", "")
	assert.Equal(t, 3.0, b.ContextBonus)
	assert.Equal(t, -4.0, b.Penalty)
}

func TestScore_MealAlignment(t *testing.T) {
	s := newScorer("Food Contractor", "Prepare a vegetarian dinner menu")

	dinner := s.Explain("some text", "Dinner Ideas - Mains.pdf")
	assert.Equal(t, 5.0, dinner.ContextBonus)
	assert.Contains(t, dinner.FiredRules, "dinner_document")

	breakfast := s.Explain("some text", "Breakfast Ideas.pdf")
	assert.Equal(t, 0.0, breakfast.ContextBonus)
	assert.Equal(t, -3.0, breakfast.Penalty)
	assert.Contains(t, breakfast.FiredRules, "breakfast_in_dinner_job")
}

func TestScore_RoleDomainDensity(t *testing.T) {
	tests := []struct {
		persona string
		text    string
		bonus   float64
	}{
		{"PhD Researcher", "a methodology over a dataset", 4},
		{"Investment Analyst", "revenue and profit grew with market growth", 8},
		{"Travel Planner", "hotel near the tour start", 4},
		{"HR Professional", "hotel near the tour start", 0},
	}
	for _, tc := range tests {
		t.Run(tc.persona, func(t *testing.T) {
			b := newScorer(tc.persona, "").Explain(tc.text, "")
			assert.Equal(t, tc.bonus, b.ContextBonus)
		})
	}
}

func TestScore_BuffetAndCorporate(t *testing.T) {
	s := newScorer("Food Contractor", "corporate buffet")
	b := s.Explain("a dessert table for the crowd", "")
	assert.Equal(t, 2.0, b.ContextBonus)
	assert.Equal(t, -1.0, b.Penalty)
}

func TestScore_LengthNormalization(t *testing.T) {
	s := newScorer("Food Contractor", "vegetarian dinner menu")
	short := "vegetarian dinner"
	long := short + strings.Repeat(" filler", 198)

	require.Len(t, strings.Fields(long), 200)
	assert.InDelta(t, s.Score(short, "")/2, s.Score(long, ""), 1e-9)
}

func TestScore_NonNegative(t *testing.T) {
	s := newScorer("Food Contractor", "vegetarian dinner menu for a corporate buffet")
	for _, text := range []string{"", "!!!???...", "   ", "beef pork chicken dessert", "\x00\xff"} {
		score := s.Score(text, "breakfast")
		assert.GreaterOrEqual(t, score, 0.0, "text %q", text)
		assert.False(t, math.IsNaN(score))
	}
}

func TestScore_Deterministic(t *testing.T) {
	s := newScorer("Travel Planner", "Plan a trip of 4 days for a group of 10 college friends.")
	text := "Plan your itinerary with a budget hotel and local restaurant tour."
	first := s.Explain(text, "South of France - Cities.pdf")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Explain(text, "South of France - Cities.pdf"))
	}
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, 0.0, NonNegative(-1))
	assert.Equal(t, 0.0, NonNegative(math.NaN()))
	assert.Equal(t, 0.0, NonNegative(math.Inf(1)))
	assert.Equal(t, 2.5, NonNegative(2.5))
}

func TestKnowledgeBase(t *testing.T) {
	kb := DefaultKnowledgeBase()

	t.Run("exact", func(t *testing.T) {
		assert.Contains(t, kb.Lookup("Travel Planner").High, "itinerary")
	})
	t.Run("case insensitive", func(t *testing.T) {
		assert.Contains(t, kb.Lookup(" travel planner ").Medium, "hotel")
	})
	t.Run("unknown", func(t *testing.T) {
		assert.Equal(t, Tiers{}, kb.Lookup("Astronaut"))
	})
	t.Run("nil base", func(t *testing.T) {
		var empty *KnowledgeBase
		assert.Equal(t, Tiers{}, empty.Lookup("Travel Planner"))
	})
}

func TestLoadKnowledgeBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	content := "personas:\n  Sommelier:\n    high: [Vintage, ' Terroir ', vintage]\n    low: [glass]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	kb, err := LoadKnowledgeBase(path)
	require.NoError(t, err)
	tiers := kb.Lookup("Sommelier")
	assert.Equal(t, []string{"terroir", "vintage"}, tiers.High)
	assert.Empty(t, tiers.Medium)
	assert.Equal(t, []string{"glass"}, tiers.Low)

	s := NewScorer(kb, domain.ScoringContext{PersonaRole: "Sommelier"}, DefaultWeights())
	assert.InDelta(t, 0.3*9, s.Score("A vintage wine", ""), 1e-9)
}

func TestLoadKnowledgeBase_Errors(t *testing.T) {
	_, err := LoadKnowledgeBase(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseKnowledgeBase([]byte("personas: [not, a, map]"))
	assert.Error(t, err)
}
