package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const minModelConfidence = 0.7

// Classifier is a single low-temperature JSON classification call. The model
// router satisfies this.
type Classifier interface {
	Classify(ctx context.Context, system, userText string) (string, error)
}

const classifierPrompt = `You are a safety classifier for a wellness coaching app.
Decide whether the user's message indicates a mental health crisis (self-harm, suicidal ideation, acute distress).
Respond with JSON only: {"is_crisis": bool, "category": string, "severity": "critical"|"high"|"moderate", "confidence": number between 0 and 1}.`

type modelVerdict struct {
	IsCrisis   bool    `json:"is_crisis"`
	Category   string  `json:"category"`
	Severity   string  `json:"severity"`
	Confidence float64 `json:"confidence"`
}

var _ Detector = (*ModelDetector)(nil)

// ModelDetector is the second tier: one classification call, accepted only
// above the confidence threshold.
type ModelDetector struct {
	classifier Classifier
}

func NewModelDetector(classifier Classifier) *ModelDetector {
	return &ModelDetector{classifier: classifier}
}

func (d *ModelDetector) Detect(ctx context.Context, text string) (*Verdict, error) {
	raw, err := d.classifier.Classify(ctx, classifierPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("crisis classification call failed: %w", err)
	}

	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "json")
	raw = strings.TrimSpace(raw)

	var verdict modelVerdict
	if err = json.Unmarshal([]byte(raw), &verdict); err != nil {
		return nil, fmt.Errorf("failed to unmarshal crisis verdict: %w", err)
	}

	if !verdict.IsCrisis || verdict.Confidence <= minModelConfidence {
		return &Verdict{IsCrisis: false}, nil
	}

	severity := Severity(verdict.Severity)
	if severity.rank() == 0 {
		severity = SeverityHigh
	}

	return &Verdict{
		IsCrisis: true,
		Severity: severity,
		Category: verdict.Category,
		Method:   "model",
	}, nil
}
