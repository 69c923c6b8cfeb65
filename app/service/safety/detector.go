package safety

import (
	"context"
	"strings"
)

// Detector is one tier of crisis detection. Tiers are evaluated in order and
// the first positive verdict wins, so the model tier can be swapped out (for
// a locally hosted classifier, say) without touching the pattern tier.
type Detector interface {
	Detect(ctx context.Context, text string) (*Verdict, error)
}

var _ Detector = (*PatternDetector)(nil)

// PatternDetector matches the fixed keyword table. No I/O, never errors.
type PatternDetector struct {
	table []patternCategory
}

func NewPatternDetector() *PatternDetector {
	return &PatternDetector{table: patternTable}
}

func (d *PatternDetector) Detect(_ context.Context, text string) (*Verdict, error) {
	lowered := strings.ToLower(text)

	var best *Verdict

	for _, category := range d.table {
		for _, keyword := range category.keywords {
			if !strings.Contains(lowered, keyword) {
				continue
			}

			if best == nil || category.severity.rank() > best.Severity.rank() {
				best = &Verdict{
					IsCrisis: true,
					Severity: category.severity,
					Category: category.name,
					Method:   "pattern",
				}
			}

			break
		}
	}

	if best == nil {
		return &Verdict{IsCrisis: false}, nil
	}

	return best, nil
}
