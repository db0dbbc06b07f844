package risk

import (
	"github.com/aegis-risk/aegis/internal/models"
)

// Config carries the static weight and threshold tables. It is passed into
// the engine rather than read from package state so tests can override it
// per run. Weights are deterministic configuration, never learned.
type Config struct {
	// Weights maps a signal type to its score contribution per unit value.
	// Signal types absent from the map contribute zero.
	Weights map[models.SignalType]float64

	// ReviewThreshold and BlockThreshold partition the clamped score:
	// score >= BlockThreshold is BLOCK, >= ReviewThreshold is REVIEW,
	// anything below is ALLOW.
	ReviewThreshold float64
	BlockThreshold  float64

	// MinScoreDelta is the smallest score movement that justifies a new
	// decision row when the label is unchanged.
	MinScoreDelta float64
}

// DefaultConfig returns the production weight and threshold tables.
func DefaultConfig() Config {
	return Config{
		Weights: map[models.SignalType]float64{
			models.SignalTotalSpend24h: 0.002,
			models.SignalTxnVelocity1h: 8.0,
			models.SignalNewDeviceUsed: 15.0,
		},
		ReviewThreshold: 40,
		BlockThreshold:  70,
		MinScoreDelta:   1.0,
	}
}
