package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignalType identifies the detector that produced a signal.
type SignalType string

const (
	SignalTotalSpend24h SignalType = "TOTAL_SPEND_24H"
	SignalTxnVelocity1h SignalType = "TXN_VELOCITY_1H"
	SignalNewDeviceUsed SignalType = "NEW_DEVICE_USED"
)

// Signal is a derived behavioral fact about a user's transaction activity.
// Append-only: the aggregator reads signals but never mutates or deletes them.
type Signal struct {
	SignalID    string     `json:"signal_id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index"`
	SignalType  SignalType `json:"signal_type"`
	SignalValue float64    `json:"signal_value"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}

func (s *Signal) BeforeCreate(tx *gorm.DB) (err error) {
	if s.SignalID == "" {
		s.SignalID = uuid.New().String()
	}
	return
}
