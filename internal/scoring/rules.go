package scoring

import "strings"

// contextRule is one domain-specific bonus or penalty. Rules whose trigger
// does not fire for the run's persona and job are dropped when the Scorer
// is built, so only apply runs per scored text.
type contextRule struct {
	name    string
	applies func(job, persona string) bool
	apply   func(text, doc string) (bonus, penalty float64)
}

var (
	academicRoles = []string{"researcher", "phd", "student", "academic"}
	academicTerms = []string{"methodology", "dataset", "benchmark", "evaluation", "literature", "study", "research", "analysis", "experiment"}

	businessRoles = []string{"analyst", "investment", "business"}
	businessTerms = []string{"revenue", "profit", "market", "financial", "growth", "strategy", "investment", "performance"}

	travelTerms = []string{"hotel", "restaurant", "attraction", "tour", "booking", "itinerary", "destination"}

	vegetarianTerms = []string{"vegetarian", "vegan", "plant-based", "tofu", "beans", "lentils", "quinoa", "vegetables"}
	meatTerms       = []string{"beef", "chicken", "pork", "lamb", "turkey", "fish", "salmon", "tuna", "meat", "poultry"}

	glutenFreeTerms = []string{"gluten-free", "gluten free", "rice", "corn", "quinoa"}
	glutenTerms     = []string{"wheat", "flour", "bread", "pasta", "barley", "rye"}

	buffetTerms = []string{"buffet", "serving", "large batch", "crowd", "party", "catering"}
)

func jobMentions(word string) func(job, persona string) bool {
	return func(job, _ string) bool { return strings.Contains(job, word) }
}

func personaMentionsAny(words []string) func(job, persona string) bool {
	return func(_, persona string) bool { return containsAny(persona, words) }
}

// mealAlignment rewards documents named after the meal the job asks for.
func mealAlignment(meal string) contextRule {
	return contextRule{
		name:    meal + "_document",
		applies: jobMentions(meal),
		apply: func(_, doc string) (float64, float64) {
			if strings.Contains(doc, meal) {
				return 5, 0
			}
			return 0, 0
		},
	}
}

// termDensity adds two points per distinct domain term present.
func termDensity(name string, trigger func(job, persona string) bool, terms []string) contextRule {
	return contextRule{
		name:    name,
		applies: trigger,
		apply: func(text, _ string) (float64, float64) {
			return 2 * float64(countContained(text, terms)), 0
		},
	}
}

// dietary rewards texts showing compliant ingredients and penalises texts
// mentioning any forbidden one.
func dietary(name, trigger string, good []string, bonus float64, bad []string, penalty float64) contextRule {
	return contextRule{
		name:    name,
		applies: jobMentions(trigger),
		apply: func(text, _ string) (float64, float64) {
			var b, p float64
			if containsAny(text, good) {
				b = bonus
			}
			if containsAny(text, bad) {
				p = -penalty
			}
			return b, p
		},
	}
}

func defaultContextRules() []contextRule {
	return []contextRule{
		mealAlignment("dinner"),
		mealAlignment("breakfast"),
		mealAlignment("lunch"),
		termDensity("academic_terms", personaMentionsAny(academicRoles), academicTerms),
		termDensity("business_terms", personaMentionsAny(businessRoles), businessTerms),
		termDensity("travel_terms", personaMentionsAny([]string{"travel"}), travelTerms),
		dietary("vegetarian", "vegetarian", vegetarianTerms, 4, meatTerms, 8),
		dietary("gluten_free", "gluten-free", glutenFreeTerms, 3, glutenTerms, 4),
		{
			name:    "buffet_scale",
			applies: jobMentions("buffet"),
			apply: func(text, _ string) (float64, float64) {
				if containsAny(text, buffetTerms) {
					return 2, 0
				}
				return 0, 0
			},
		},
		{
			name:    "breakfast_in_dinner_job",
			applies: jobMentions("dinner"),
			apply: func(_, doc string) (float64, float64) {
				if strings.Contains(doc, "breakfast") {
					return 0, -3
				}
				return 0, 0
			},
		},
		{
			name:    "corporate_dessert",
			applies: jobMentions("corporate"),
			apply: func(text, _ string) (float64, float64) {
				if strings.Contains(text, "dessert") {
					return 0, -1
				}
				return 0, 0
			},
		},
	}
}
