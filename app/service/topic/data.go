package topic

// Pillars are the fixed set of conversation domains.
const (
	PillarSleep     = "sleep"
	PillarNutrition = "nutrition"
	PillarFitness   = "fitness"
	PillarMindset   = "mindset"
	PillarMoney     = "money"

	DefaultPillar = PillarMindset
)

// Result records the chosen pillar and which tier produced it, so routing
// decisions stay observable and testable.
type Result struct {
	Pillar     string  `json:"pillar"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
	Reason     string  `json:"reason"`
}

var keywordTable = map[string][]string{
	PillarSleep: {
		"sleep", "asleep", "insomnia", "wake up", "waking", "tired", "nap",
		"night", "bedtime", "rest", "dream", "snooze", "melatonin",
	},
	PillarNutrition: {
		"eat", "eating", "food", "meal", "diet", "snack", "hungry", "sugar",
		"protein", "vegetable", "calorie", "breakfast", "lunch", "dinner", "cooking",
	},
	PillarFitness: {
		"exercise", "workout", "gym", "run", "running", "walk", "training",
		"stretch", "cardio", "strength", "steps", "yoga", "sore", "active",
	},
	PillarMindset: {
		"stress", "stressed", "anxious", "anxiety", "mood", "meditate",
		"meditation", "mindful", "focus", "overwhelmed", "gratitude",
		"journaling", "motivation", "habit",
	},
	PillarMoney: {
		"money", "budget", "spend", "spending", "save", "saving", "debt",
		"salary", "bills", "expense", "finances", "financial", "invest",
	},
}

// ValidPillar reports membership in the fixed pillar set.
func ValidPillar(key string) bool {
	_, ok := keywordTable[key]
	return ok
}
