package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction statuses. Only successful transactions feed signal detection.
const (
	TxnStatusSuccess = "success"
	TxnStatusFailed  = "failed"
)

// Transaction is a single payment fact ingested by an external collaborator.
// Immutable once created; the pipeline only ever reads these rows.
type Transaction struct {
	TxnID            string    `json:"txn_id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"index"`
	AccountID        string    `json:"account_id" gorm:"index"`
	Amount           float64   `json:"amount"`
	TxnType          string    `json:"txn_type"`
	Channel          string    `json:"channel"`
	MerchantCategory string    `json:"merchant_category"`
	Location         string    `json:"location"`
	DeviceID         string    `json:"device_id" gorm:"index"`
	TxnTimestamp     time.Time `json:"txn_timestamp" gorm:"index"`
	Status           string    `json:"status"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.TxnID == "" {
		t.TxnID = uuid.New().String()
	}
	return
}
