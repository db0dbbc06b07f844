package risk

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/audit"
	"github.com/aegis-risk/aegis/internal/logger"
	"github.com/aegis-risk/aegis/internal/metrics"
	"github.com/aegis-risk/aegis/internal/models"
	"github.com/aegis-risk/aegis/internal/signals"
)

// Reason is one weighted signal contribution to an assessment.
type Reason struct {
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Contribution float64 `json:"contribution"`
}

// Assessment is the computed risk posture for one (user, account) key before
// deduplication decides whether it becomes a new ledger row.
type Assessment struct {
	UserID    string
	AccountID string
	RawScore  float64
	Score     float64
	Decision  models.Decision
	Reasons   []Reason
}

// Summary reports the outcome of one decisioning run.
type Summary struct {
	Assessed   int
	Persisted  int
	Suppressed int
	Skipped    int
}

// Notifier receives persisted BLOCK decisions. Implementations must be
// best-effort: the pipeline outcome never depends on notification delivery.
type Notifier interface {
	DecisionBlocked(userID, accountID string, score float64)
}

// Engine runs the decisioning half of the pipeline: aggregation,
// classification, deduplication, persistence, and audit emission. Runs are
// single-threaded and run-to-completion over the full signal backlog.
type Engine struct {
	DB        *gorm.DB
	Cfg       Config
	Signals   *signals.Store
	Decisions *Store
	Notifier  Notifier
}

func NewEngine(db *gorm.DB, cfg Config) *Engine {
	return &Engine{
		DB:        db,
		Cfg:       cfg,
		Signals:   signals.NewStore(db),
		Decisions: NewStore(db),
	}
}

// Run computes assessments for every (user, account) key joined from the
// current signal backlog and persists the ones that changed materially.
// Re-running over an unchanged backlog is idempotent: every assessment
// deduplicates against the row the previous run wrote.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	assessments, skipped, err := e.Aggregate(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Assessed: len(assessments), Skipped: skipped}
	for _, a := range assessments {
		persisted, err := e.decide(ctx, a)
		if err != nil {
			return summary, fmt.Errorf("decide user %s account %s: %w", a.UserID, a.AccountID, err)
		}
		if persisted {
			summary.Persisted++
		} else {
			summary.Suppressed++
		}
	}

	logger.WithFields(map[string]interface{}{
		"assessed":   summary.Assessed,
		"persisted":  summary.Persisted,
		"suppressed": summary.Suppressed,
		"skipped":    summary.Skipped,
	}).Info("decisioning run complete")
	return summary, nil
}

type accountKey struct {
	userID    string
	accountID string
}

// Aggregate joins every signal to the accounts its user has transacted on and
// accumulates weighted contributions per (user, account) key. Accumulation is
// unbounded; clamping happens at persistence time. Signals whose user maps to
// no account are skipped without failing the run.
func (e *Engine) Aggregate(ctx context.Context) ([]Assessment, int, error) {
	index, err := e.userAccounts(ctx)
	if err != nil {
		return nil, 0, err
	}

	sigs, err := e.Signals.All(ctx)
	if err != nil {
		return nil, 0, err
	}

	totals := make(map[accountKey]*Assessment)
	skipped := 0
	for _, sig := range sigs {
		accounts := index[sig.UserID]
		if len(accounts) == 0 {
			skipped++
			logger.WithFields(map[string]interface{}{
				"user_id":     sig.UserID,
				"signal_type": sig.SignalType,
			}).Warn("signal user has no account, skipping")
			continue
		}

		weight, known := e.Cfg.Weights[sig.SignalType]
		if !known {
			metrics.IncUnknownSignalType()
			logger.WithFields(map[string]interface{}{
				"signal_type": sig.SignalType,
			}).Warn("unrecognized signal type contributes zero weight")
		}
		contribution := weight * sig.SignalValue

		for _, accountID := range accounts {
			key := accountKey{userID: sig.UserID, accountID: accountID}
			a, ok := totals[key]
			if !ok {
				a = &Assessment{UserID: sig.UserID, AccountID: accountID}
				totals[key] = a
			}
			a.RawScore += contribution
			a.Reasons = append(a.Reasons, Reason{
				Type:         string(sig.SignalType),
				Description:  sig.Description,
				Contribution: contribution,
			})
		}
	}

	assessments := make([]Assessment, 0, len(totals))
	for _, a := range totals {
		a.Score = ClampScore(a.RawScore)
		a.Decision = e.Cfg.Classify(a.Score)
		assessments = append(assessments, *a)
	}

	// Stable processing order keeps runs deterministic.
	sort.Slice(assessments, func(i, j int) bool {
		if assessments[i].UserID != assessments[j].UserID {
			return assessments[i].UserID < assessments[j].UserID
		}
		return assessments[i].AccountID < assessments[j].AccountID
	})
	return assessments, skipped, nil
}

// userAccounts builds the user -> accounts index once per run from the
// transaction set, so aggregation stays a single linear pass over signals.
func (e *Engine) userAccounts(ctx context.Context) (map[string][]string, error) {
	type pair struct {
		UserID    string
		AccountID string
	}

	var pairs []pair
	err := e.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Distinct("user_id", "account_id").
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("build user-account index: %w", err)
	}

	index := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		index[p.UserID] = append(index[p.UserID], p.AccountID)
	}
	for _, accounts := range index {
		sort.Strings(accounts)
	}
	return index, nil
}

type auditMetadata struct {
	UserID    string          `json:"user_id"`
	AccountID string          `json:"account_id"`
	RiskScore float64         `json:"risk_score"`
	Decision  models.Decision `json:"decision"`
	Reasons   []Reason        `json:"reasons"`
}

// decide applies last-write deduplication and, when the assessment differs
// materially from its predecessor, persists the decision row and its audit
// entry in one transaction. Returns whether a row was written.
func (e *Engine) decide(ctx context.Context, a Assessment) (bool, error) {
	prev, err := e.Decisions.previous(ctx, a.UserID, a.AccountID)
	if err != nil {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}
	if prev != nil && prev.Decision == a.Decision && abs(prev.RiskScore-a.Score) < e.Cfg.MinScoreDelta {
		metrics.IncDecisionSuppressed()
		logger.WithFields(map[string]interface{}{
			"account_id": a.AccountID,
			"decision":   a.Decision,
			"score":      a.Score,
		}).Debug("decision unchanged, write suppressed")
		return false, nil
	}

	reasonsJSON, err := marshalReasons(a.Reasons)
	if err != nil {
		return false, err
	}

	decision := models.RiskDecision{
		UserID:    a.UserID,
		AccountID: a.AccountID,
		RiskScore: a.Score,
		Decision:  a.Decision,
		Reasons:   reasonsJSON,
	}

	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&decision).Error; err != nil {
			return fmt.Errorf("persist decision: %w", err)
		}
		return audit.Record(tx, models.EventDecisionMade, a.AccountID, auditMetadata{
			UserID:    a.UserID,
			AccountID: a.AccountID,
			RiskScore: a.Score,
			Decision:  a.Decision,
			Reasons:   a.Reasons,
		})
	})
	if err != nil {
		return false, err
	}

	metrics.IncDecisionPersisted(string(a.Decision))
	if a.Decision == models.DecisionBlock && e.Notifier != nil {
		e.Notifier.DecisionBlocked(a.UserID, a.AccountID, a.Score)
	}
	return true, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
