package coach

import "wellspring/app/service/safety"

type Request struct {
	UserID  string   `json:"user_id"`
	Message string   `json:"message"`
	Pillar  string   `json:"pillar,omitempty"`
	Hints   []string `json:"hints,omitempty"`
}

type Meta struct {
	Method      string  `json:"method"`
	Confidence  float64 `json:"confidence"`
	Saved       bool    `json:"saved"`
	SaveSummary string  `json:"save_summary,omitempty"`
}

type Response struct {
	OK        bool              `json:"ok"`
	Text      string            `json:"text"`
	Pillar    string            `json:"pillar,omitempty"`
	Provider  string            `json:"provider,omitempty"`
	IsCrisis  bool              `json:"is_crisis,omitempty"`
	Resources []safety.Resource `json:"resources,omitempty"`
	Meta      Meta              `json:"meta"`
}
