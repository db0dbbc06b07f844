package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a bank customer whose transaction behavior is scored. Users are
// reference data for the pipeline: the core never creates or mutates them.
type User struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	KYCLevel  int       `json:"kyc_level" gorm:"column:kyc_level"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	return
}
