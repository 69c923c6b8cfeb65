package modelrouter

// Task is the coarse classification of what a generation call needs from a
// model. Every task maps to a statically ordered (primary, fallback) provider
// pair.
type Task string

const (
	TaskDeepReasoning  Task = "deep-reasoning"
	TaskConversational Task = "conversational"
	TaskMixed          Task = "mixed"
)

type route struct {
	primary     string
	fallback    string
	temperature float32
}

var routes = map[Task]route{
	TaskDeepReasoning:  {primary: "anthropic", fallback: "openai", temperature: 0.4},
	TaskConversational: {primary: "openai", fallback: "anthropic", temperature: 0.9},
	TaskMixed:          {primary: "openai", fallback: "anthropic", temperature: 0.7},
}

type Reply struct {
	Provider string
	Text     string
}
