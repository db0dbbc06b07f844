package pipeline

import (
	"context"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/logger"
	"github.com/aegis-risk/aegis/internal/metrics"
	"github.com/aegis-risk/aegis/internal/risk"
	"github.com/aegis-risk/aegis/internal/signals"
)

// Pipeline exposes the two driver entry points of the core: signal generation
// and decisioning. Both are batch passes over accumulated data and both are
// safe to re-invoke; re-running decisioning over an unchanged backlog writes
// nothing new.
type Pipeline struct {
	Detector *signals.Detector
	Risk     *risk.Engine
}

func New(db *gorm.DB, cfg risk.Config, velocityThreshold int, notifier risk.Notifier) *Pipeline {
	engine := risk.NewEngine(db, cfg)
	engine.Notifier = notifier
	return &Pipeline{
		Detector: signals.NewDetector(db, velocityThreshold),
		Risk:     engine,
	}
}

// RunSignalGeneration invokes all three signal detectors over the full
// current transaction history.
func (p *Pipeline) RunSignalGeneration(ctx context.Context) error {
	metrics.IncPipelineRun("signal_generation")
	return p.Detector.Run(ctx)
}

// RunDecisioning aggregates the signal backlog into scored assessments,
// classifies them, and persists the ones that changed materially together
// with their audit entries.
func (p *Pipeline) RunDecisioning(ctx context.Context) (risk.Summary, error) {
	metrics.IncPipelineRun("decisioning")
	return p.Risk.Run(ctx)
}

// RunAll executes signal generation followed by decisioning, the order a
// scheduled driver uses.
func (p *Pipeline) RunAll(ctx context.Context) error {
	if err := p.RunSignalGeneration(ctx); err != nil {
		return err
	}
	summary, err := p.RunDecisioning(ctx)
	if err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"persisted":  summary.Persisted,
		"suppressed": summary.Suppressed,
	}).Info("pipeline run finished")
	return nil
}
