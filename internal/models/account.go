package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountStatusActive marks accounts eligible for demo transaction generation.
const AccountStatusActive = "active"

// Account belongs to a User and is the entity risk decisions are keyed on.
type Account struct {
	AccountID   string    `json:"account_id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index"`
	AccountType string    `json:"account_type"`
	Balance     float64   `json:"balance"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) (err error) {
	if a.AccountID == "" {
		a.AccountID = uuid.New().String()
	}
	return
}
