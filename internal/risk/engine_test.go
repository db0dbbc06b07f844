package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/models"
)

func setupRiskTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Transaction{},
		&models.Signal{},
		&models.RiskDecision{},
		&models.AuditLog{},
	))
	return db
}

func seedTxn(t *testing.T, db *gorm.DB, userID, accountID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Transaction{
		UserID:    userID,
		AccountID: accountID,
		Amount:    100,
		Status:    models.TxnStatusSuccess,
	}).Error)
}

func seedSignal(t *testing.T, db *gorm.DB, userID string, sigType models.SignalType, value float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.Signal{
		UserID:      userID,
		SignalType:  sigType,
		SignalValue: value,
		Description: "test signal",
	}).Error)
}

// unitConfig gives every signal type weight 1 so the signal value is the raw
// score, which keeps threshold scenarios easy to stage.
func unitConfig() Config {
	cfg := DefaultConfig()
	cfg.Weights = map[models.SignalType]float64{
		models.SignalTotalSpend24h: 1,
		models.SignalTxnVelocity1h: 1,
		models.SignalNewDeviceUsed: 1,
	}
	return cfg
}

func TestEngineRunPersistsDecisionWithAudit(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedSignal(t, db, "u1", models.SignalTxnVelocity1h, 6)

	e := NewEngine(db, DefaultConfig())
	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Assessed)
	assert.Equal(t, 1, summary.Persisted)

	var decision models.RiskDecision
	require.NoError(t, db.First(&decision).Error)
	assert.Equal(t, "u1", decision.UserID)
	assert.Equal(t, "a1", decision.AccountID)
	assert.Equal(t, 48.0, decision.RiskScore) // 8.0 * 6
	assert.Equal(t, models.DecisionReview, decision.Decision)

	reasons, err := ParseReasons(decision.Reasons)
	require.NoError(t, err)
	require.Len(t, reasons, 1)
	assert.Equal(t, string(models.SignalTxnVelocity1h), reasons[0].Type)
	assert.Equal(t, 48.0, reasons[0].Contribution)

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.EventDecisionMade, entry.EventType)
	assert.Equal(t, "a1", entry.EntityID)
	assert.Contains(t, entry.MetadataJSON, `"risk_score":48`)
	assert.Contains(t, entry.MetadataJSON, `"reasons"`)
}

func TestEngineClampsBeforePersisting(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 250)

	e := NewEngine(db, unitConfig())
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	var decision models.RiskDecision
	require.NoError(t, db.First(&decision).Error)
	assert.Equal(t, 100.0, decision.RiskScore)
	assert.Equal(t, models.DecisionBlock, decision.Decision)

	// The raw contribution is preserved in the reason breakdown.
	reasons, err := ParseReasons(decision.Reasons)
	require.NoError(t, err)
	assert.Equal(t, 250.0, reasons[0].Contribution)
}

func TestEngineDeduplicatesSmallDrift(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 50.2)

	e := NewEngine(db, unitConfig())
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	// Shift the score by less than the dedup delta: 50.2 -> 50.9, both REVIEW.
	require.NoError(t, db.Where("1 = 1").Delete(&models.Signal{}).Error)
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 50.9)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Persisted)
	assert.Equal(t, 1, summary.Suppressed)

	var count int64
	db.Model(&models.RiskDecision{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnginePersistsMaterialDrift(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 50.2)

	e := NewEngine(db, unitConfig())
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	// 50.2 -> 52.5 is a delta >= 1 with the same label: must persist.
	require.NoError(t, db.Where("1 = 1").Delete(&models.Signal{}).Error)
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 52.5)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Persisted)

	var count int64
	db.Model(&models.RiskDecision{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestEngineLabelChangeOverridesDedup(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 69.9)

	e := NewEngine(db, unitConfig())
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	// 69.9 REVIEW -> 70.1 BLOCK: |delta| < 1 but the label changed.
	require.NoError(t, db.Where("1 = 1").Delete(&models.Signal{}).Error)
	seedSignal(t, db, "u1", models.SignalTotalSpend24h, 70.1)

	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Persisted)

	latest, err := e.Decisions.ForAccount(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionBlock, latest.Decision)
}

func TestEngineIdempotentRerun(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedTxn(t, db, "u2", "a2")
	seedSignal(t, db, "u1", models.SignalTxnVelocity1h, 6)
	seedSignal(t, db, "u2", models.SignalNewDeviceUsed, 1)

	e := NewEngine(db, DefaultConfig())
	first, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Persisted)

	second, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Persisted)
	assert.Equal(t, 2, second.Suppressed)

	var decisions, audits int64
	db.Model(&models.RiskDecision{}).Count(&decisions)
	db.Model(&models.AuditLog{}).Where("event_type = ?", models.EventDecisionMade).Count(&audits)
	assert.Equal(t, int64(2), decisions)
	assert.Equal(t, decisions, audits, "audit entries must stay 1:1 with persisted decisions")
}

func TestEngineFansOutAcrossUserAccounts(t *testing.T) {
	db := setupRiskTestDB(t)
	// u1 transacts on two accounts: one signal contributes under both keys.
	seedTxn(t, db, "u1", "a1")
	seedTxn(t, db, "u1", "a2")
	seedSignal(t, db, "u1", models.SignalNewDeviceUsed, 1)

	e := NewEngine(db, DefaultConfig())
	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Assessed)
	assert.Equal(t, 2, summary.Persisted)

	for _, account := range []string{"a1", "a2"} {
		d, err := e.Decisions.ForAccount(context.Background(), account)
		require.NoError(t, err)
		assert.Equal(t, 15.0, d.RiskScore)
	}
}

func TestEngineSkipsSignalWithoutAccount(t *testing.T) {
	db := setupRiskTestDB(t)
	// No transactions for u-ghost: the signal cannot be joined to an account.
	seedSignal(t, db, "u-ghost", models.SignalTxnVelocity1h, 9)

	e := NewEngine(db, DefaultConfig())
	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Assessed)
	assert.Equal(t, 1, summary.Skipped)

	var count int64
	db.Model(&models.RiskDecision{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestEngineUnknownSignalTypeContributesZero(t *testing.T) {
	db := setupRiskTestDB(t)
	seedTxn(t, db, "u1", "a1")
	seedSignal(t, db, "u1", models.SignalType("GEO_ANOMALY"), 500)
	seedSignal(t, db, "u1", models.SignalNewDeviceUsed, 1)

	e := NewEngine(db, DefaultConfig())
	summary, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Persisted)

	d, err := e.Decisions.ForAccount(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 15.0, d.RiskScore)

	// The unknown type still appears in the breakdown, at zero contribution.
	reasons, err := ParseReasons(d.Reasons)
	require.NoError(t, err)
	require.Len(t, reasons, 2)
	for _, r := range reasons {
		if r.Type == "GEO_ANOMALY" {
			assert.Equal(t, 0.0, r.Contribution)
		}
	}
}

func TestStoreForAccountNoDecision(t *testing.T) {
	db := setupRiskTestDB(t)
	store := NewStore(db)

	_, err := store.ForAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoDecision)
}

func TestStoreLatestOrdersNewestFirst(t *testing.T) {
	db := setupRiskTestDB(t)
	store := NewStore(db)

	for i, score := range []float64{10, 20, 30} {
		d := models.RiskDecision{
			UserID:    "u1",
			AccountID: "a1",
			RiskScore: score,
			Decision:  models.DecisionAllow,
			Reasons:   "[]",
		}
		require.NoError(t, db.Create(&d).Error)
		// Distinct timestamps so ordering is unambiguous.
		require.NoError(t, db.Model(&d).Update("created_at", d.CreatedAt.Add(time.Duration(i)*time.Second)).Error)
	}

	latest, err := store.Latest(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 30.0, latest[0].RiskScore)
	assert.Equal(t, 20.0, latest[1].RiskScore)
}
