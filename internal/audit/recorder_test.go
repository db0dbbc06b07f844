package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/models"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	return db
}

func TestRecordSerializesMetadata(t *testing.T) {
	db := setupAuditTestDB(t)

	meta := map[string]interface{}{"risk_score": 48.0, "decision": "REVIEW"}
	require.NoError(t, Record(db, models.EventDecisionMade, "acc-1", meta))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.NotEmpty(t, entry.LogID)
	assert.Equal(t, models.EventDecisionMade, entry.EventType)
	assert.Equal(t, "acc-1", entry.EntityID)
	assert.JSONEq(t, `{"risk_score":48,"decision":"REVIEW"}`, entry.MetadataJSON)
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	db := setupAuditTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := Record(tx, models.EventDecisionMade, "acc-1", sampleMeta()); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	var count int64
	db.Model(&models.AuditLog{}).Count(&count)
	assert.Equal(t, int64(0), count, "audit entry must not survive a rolled-back transaction")
}

func sampleMeta() map[string]string { return map[string]string{"k": "v"} }

func TestForEntityNewestFirst(t *testing.T) {
	db := setupAuditTestDB(t)

	require.NoError(t, Record(db, models.EventDecisionMade, "acc-1", map[string]int{"n": 1}))
	require.NoError(t, Record(db, models.EventDecisionMade, "acc-2", map[string]int{"n": 2}))
	require.NoError(t, Record(db, models.EventDecisionMade, "acc-1", map[string]int{"n": 3}))

	entries, err := ForEntity(context.Background(), db, "acc-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
