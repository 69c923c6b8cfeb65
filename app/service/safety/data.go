package safety

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
)

// rank orders severities for tie-breaking, higher wins.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityModerate:
		return 1
	default:
		return 0
	}
}

type Resource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Note    string `json:"note,omitempty"`
}

// Verdict is the outcome of a crisis check. A positive verdict must be
// delivered instead of any generated response.
type Verdict struct {
	IsCrisis bool       `json:"is_crisis"`
	Severity Severity   `json:"severity,omitempty"`
	Category string     `json:"category,omitempty"`
	Message  string     `json:"message,omitempty"`
	Sources  []Resource `json:"resources,omitempty"`
	Method   string     `json:"method,omitempty"`
}

type patternCategory struct {
	name     string
	severity Severity
	keywords []string
}

// patternTable is the first, cheap detection tier. Substring matching is
// case-insensitive; the highest-severity matching category wins.
var patternTable = []patternCategory{
	{
		name:     "suicidal_ideation",
		severity: SeverityCritical,
		keywords: []string{
			"kill myself",
			"end my life",
			"want to die",
			"suicide",
			"suicidal",
			"better off dead",
			"no reason to live",
			"end it all",
		},
	},
	{
		name:     "self_harm",
		severity: SeverityCritical,
		keywords: []string{
			"hurt myself",
			"harm myself",
			"cut myself",
			"self-harm",
			"self harm",
		},
	},
	{
		name:     "acute_crisis",
		severity: SeverityHigh,
		keywords: []string{
			"can't go on",
			"cant go on",
			"give up on everything",
			"nothing matters anymore",
			"no way out",
			"cry for help",
		},
	},
	{
		name:     "severe_distress",
		severity: SeverityModerate,
		keywords: []string{
			"completely hopeless",
			"hate myself",
			"worthless",
			"unbearable",
			"falling apart",
		},
	},
}

var crisisResources = []Resource{
	{Name: "988 Suicide & Crisis Lifeline", Contact: "call or text 988", Note: "24/7, free and confidential"},
	{Name: "Crisis Text Line", Contact: "text HOME to 741741"},
	{Name: "International Association for Suicide Prevention", Contact: "https://www.iasp.info/resources/Crisis_Centres/"},
}

var severityMessages = map[Severity]string{
	SeverityCritical: "I'm really glad you told me. What you're feeling matters, and you deserve support right now — please reach out to one of the crisis resources below, or call your local emergency number. You don't have to go through this alone.",
	SeverityHigh:     "It sounds like you're carrying something very heavy right now. I'm not able to give you the support you deserve here, but the people at the resources below are trained for exactly this and want to hear from you.",
	SeverityModerate: "That sounds genuinely hard, and I want to make sure you have real support. If these feelings keep weighing on you, the resources below are a good place to start — talking to someone can help more than it seems.",
}
