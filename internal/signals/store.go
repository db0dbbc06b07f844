package signals

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/metrics"
	"github.com/aegis-risk/aegis/internal/models"
)

// Store is the persistence adapter for the append-only signal ledger.
// Detectors write through it; the risk aggregator reads through it.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Append persists a new signal row. Signals are never updated or deleted.
func (s *Store) Append(ctx context.Context, sig *models.Signal) error {
	if err := s.DB.WithContext(ctx).Create(sig).Error; err != nil {
		return fmt.Errorf("append %s signal for user %s: %w", sig.SignalType, sig.UserID, err)
	}
	metrics.IncSignalEmitted(string(sig.SignalType))
	return nil
}

// All returns the full current signal backlog.
func (s *Store) All(ctx context.Context) ([]models.Signal, error) {
	var sigs []models.Signal
	if err := s.DB.WithContext(ctx).Find(&sigs).Error; err != nil {
		return nil, fmt.Errorf("fetch signal backlog: %w", err)
	}
	return sigs, nil
}

// Recent returns the most recent limit signals, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.Signal, error) {
	var sigs []models.Signal
	err := s.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&sigs).Error
	if err != nil {
		return nil, fmt.Errorf("fetch recent signals: %w", err)
	}
	return sigs, nil
}
