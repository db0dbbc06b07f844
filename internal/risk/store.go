package risk

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/models"
)

// ErrNoDecision is returned when an account has no persisted decision yet.
var ErrNoDecision = errors.New("no decision found for account")

// Store queries the append-only decision ledger. The current decision for a
// key is always the row with the latest creation timestamp.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Latest returns the most recent limit decisions across all accounts,
// newest first.
func (s *Store) Latest(ctx context.Context, limit int) ([]models.RiskDecision, error) {
	var decisions []models.RiskDecision
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&decisions).Error
	if err != nil {
		return nil, fmt.Errorf("fetch latest decisions: %w", err)
	}
	return decisions, nil
}

// ForAccount returns the current decision for an account, or ErrNoDecision.
func (s *Store) ForAccount(ctx context.Context, accountID string) (*models.RiskDecision, error) {
	var decision models.RiskDecision
	err := s.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&decision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDecision
	}
	if err != nil {
		return nil, fmt.Errorf("fetch decision for account %s: %w", accountID, err)
	}
	return &decision, nil
}

// previous returns the immediately preceding decision for a (user, account)
// key, or nil when the key has never been decided.
func (s *Store) previous(ctx context.Context, userID, accountID string) (*models.RiskDecision, error) {
	var decision models.RiskDecision
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND account_id = ?", userID, accountID).
		Order("created_at DESC").
		First(&decision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch previous decision for user %s account %s: %w", userID, accountID, err)
	}
	return &decision, nil
}
