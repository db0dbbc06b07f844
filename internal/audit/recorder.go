package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/models"
)

// Record appends an immutable audit entry using the caller's transaction
// handle, so the entry commits or rolls back together with whatever write it
// documents. Metadata is serialized to JSON as-is.
func Record(tx *gorm.DB, eventType, entityID string, metadata interface{}) error {
	blob, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata for %s: %w", entityID, err)
	}

	entry := models.AuditLog{
		EventType:    eventType,
		EntityID:     entityID,
		MetadataJSON: string(blob),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append audit entry for %s: %w", entityID, err)
	}
	return nil
}

// ForEntity returns the audit trail of one entity, newest first.
func ForEntity(ctx context.Context, db *gorm.DB, entityID string) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("fetch audit trail for %s: %w", entityID, err)
	}
	return entries, nil
}
