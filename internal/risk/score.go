package risk

import (
	"math"

	"github.com/aegis-risk/aegis/internal/models"
)

// MaxScore caps every persisted risk score.
const MaxScore = 100.0

// ClampScore bounds a raw aggregated score to [0, MaxScore] and rounds it to
// two decimal places. Clamping happens once, at persistence time; raw
// accumulation is unbounded.
func ClampScore(raw float64) float64 {
	clamped := math.Min(raw, MaxScore)
	if clamped < 0 {
		clamped = 0
	}
	return math.Round(clamped*100) / 100
}

// Classify maps an already-clamped score to a decision label. It is a pure,
// total function of the score under the configured thresholds.
func (c Config) Classify(score float64) models.Decision {
	switch {
	case score >= c.BlockThreshold:
		return models.DecisionBlock
	case score >= c.ReviewThreshold:
		return models.DecisionReview
	default:
		return models.DecisionAllow
	}
}
