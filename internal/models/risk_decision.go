package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Decision is the classified outcome attached to a persisted risk score.
type Decision string

const (
	DecisionAllow  Decision = "ALLOW"
	DecisionReview Decision = "REVIEW"
	DecisionBlock  Decision = "BLOCK"
)

// RiskDecision is one entry in the append-only decision ledger for a
// (user, account) pair. A new row is a new fact, never an update; the current
// decision for an account is the row with the latest created_at.
//
// Reasons holds the structured contribution breakdown serialized as JSON.
type RiskDecision struct {
	DecisionID string    `json:"decision_id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index"`
	AccountID  string    `json:"account_id" gorm:"index"`
	RiskScore  float64   `json:"risk_score"`
	Decision   Decision  `json:"decision"`
	Reasons    string    `json:"reasons" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (d *RiskDecision) BeforeCreate(tx *gorm.DB) (err error) {
	if d.DecisionID == "" {
		d.DecisionID = uuid.New().String()
	}
	return
}
