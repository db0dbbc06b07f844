package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventDecisionMade is written once per persisted risk decision.
const EventDecisionMade = "DECISION_MADE"

// AuditLog is a strictly append-only record proving why a decision was made.
// MetadataJSON carries the full, non-summarized reason breakdown.
type AuditLog struct {
	LogID        string    `json:"log_id" gorm:"primaryKey"`
	EventType    string    `json:"event_type" gorm:"index"`
	EntityID     string    `json:"entity_id" gorm:"index"`
	MetadataJSON string    `json:"metadata_json" gorm:"column:metadata_json;type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.LogID == "" {
		l.LogID = uuid.New().String()
	}
	return
}
