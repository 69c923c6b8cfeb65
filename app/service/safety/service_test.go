package safety

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClassifier struct {
	calls int
	reply string
	err   error
}

func (c *scriptedClassifier) Classify(_ context.Context, _, _ string) (string, error) {
	c.calls++
	return c.reply, c.err
}

func TestPatternTierCatchesCrisisKeywords(t *testing.T) {
	classifier := &scriptedClassifier{reply: `{"is_crisis": false}`}
	svc := NewWithDetectors(NewPatternDetector(), NewModelDetector(classifier))

	verdict := svc.Check(context.Background(), "I want to kill myself")

	assert.True(t, verdict.IsCrisis)
	assert.Equal(t, SeverityCritical, verdict.Severity)
	assert.Equal(t, "suicidal_ideation", verdict.Category)
	assert.Equal(t, "pattern", verdict.Method)
	assert.NotEmpty(t, verdict.Message)
	assert.NotEmpty(t, verdict.Sources)
	assert.Equal(t, 0, classifier.calls, "pattern tier must short-circuit the model tier")
}

func TestPatternTierIsCaseInsensitive(t *testing.T) {
	svc := NewWithDetectors(NewPatternDetector())

	verdict := svc.Check(context.Background(), "Sometimes I think about SUICIDE")

	assert.True(t, verdict.IsCrisis)
}

func TestHighestSeverityWinsOnMultipleMatches(t *testing.T) {
	detector := NewPatternDetector()

	verdict, err := detector.Detect(context.Background(), "I feel worthless and I want to end my life")

	require.NoError(t, err)
	assert.True(t, verdict.IsCrisis)
	assert.Equal(t, SeverityCritical, verdict.Severity)
}

func TestModelTierAcceptsConfidentVerdict(t *testing.T) {
	classifier := &scriptedClassifier{
		reply: `{"is_crisis": true, "category": "acute_distress", "severity": "high", "confidence": 0.92}`,
	}
	svc := NewWithDetectors(NewPatternDetector(), NewModelDetector(classifier))

	verdict := svc.Check(context.Background(), "everything is dark lately and I keep disappearing from my own life")

	assert.True(t, verdict.IsCrisis)
	assert.Equal(t, SeverityHigh, verdict.Severity)
	assert.Equal(t, "model", verdict.Method)
}

func TestModelTierRejectsLowConfidence(t *testing.T) {
	classifier := &scriptedClassifier{
		reply: `{"is_crisis": true, "category": "distress", "severity": "moderate", "confidence": 0.5}`,
	}
	svc := NewWithDetectors(NewPatternDetector(), NewModelDetector(classifier))

	verdict := svc.Check(context.Background(), "rough week at work")

	assert.False(t, verdict.IsCrisis)
}

func TestModelTierErrorFailsOpen(t *testing.T) {
	classifier := &scriptedClassifier{err: errors.New("provider down")}
	svc := NewWithDetectors(NewPatternDetector(), NewModelDetector(classifier))

	verdict := svc.Check(context.Background(), "rough week at work")

	assert.False(t, verdict.IsCrisis)
	assert.Equal(t, 1, classifier.calls)
}

func TestNoCrisisForOrdinaryMessage(t *testing.T) {
	svc := NewWithDetectors(NewPatternDetector())

	verdict := svc.Check(context.Background(), "I can't fall asleep at night")

	assert.False(t, verdict.IsCrisis)
}
