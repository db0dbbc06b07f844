package signals

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/logger"
	"github.com/aegis-risk/aegis/internal/models"
)

// DefaultVelocityThreshold is the successful-transaction count per hour at
// which a velocity signal fires.
const DefaultVelocityThreshold = 5

// Detector scans the transaction history and emits behavioral signals.
// Every run rescans the full history; no cursor state is kept between runs.
// The three detectors are independent and each commits its own writes, so a
// failure in one leaves the signals of the detectors before it persisted.
type Detector struct {
	DB    *gorm.DB
	Store *Store

	// VelocityThreshold is the minimum hourly transaction count that emits a
	// TXN_VELOCITY_1H signal.
	VelocityThreshold int

	// Now is the run clock; overridable in tests.
	Now func() time.Time
}

func NewDetector(db *gorm.DB, velocityThreshold int) *Detector {
	if velocityThreshold <= 0 {
		velocityThreshold = DefaultVelocityThreshold
	}
	return &Detector{
		DB:                db,
		Store:             NewStore(db),
		VelocityThreshold: velocityThreshold,
		Now:               time.Now,
	}
}

// Run executes all three detectors in order. The first store-level failure
// aborts the run; signals committed by earlier detectors remain valid.
func (d *Detector) Run(ctx context.Context) error {
	if err := d.DetectSpend(ctx); err != nil {
		return fmt.Errorf("spend detector: %w", err)
	}
	if err := d.DetectVelocity(ctx); err != nil {
		return fmt.Errorf("velocity detector: %w", err)
	}
	if err := d.DetectNewDevices(ctx); err != nil {
		return fmt.Errorf("new-device detector: %w", err)
	}
	return nil
}

type spendRow struct {
	UserID string
	Total  float64
}

// DetectSpend emits one TOTAL_SPEND_24H signal per user whose successful
// transactions in the trailing 24 hours sum to a positive amount.
func (d *Detector) DetectSpend(ctx context.Context) error {
	since := d.Now().Add(-24 * time.Hour)

	var rows []spendRow
	err := d.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("user_id, SUM(amount) AS total").
		Where("status = ? AND txn_timestamp >= ?", models.TxnStatusSuccess, since).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("aggregate 24h spend: %w", err)
	}

	for _, row := range rows {
		if row.Total <= 0 {
			continue
		}
		sig := &models.Signal{
			UserID:      row.UserID,
			SignalType:  models.SignalTotalSpend24h,
			SignalValue: row.Total,
			Description: fmt.Sprintf("User spent ₹%.2f in last 24 hours", row.Total),
		}
		if err := d.Store.Append(ctx, sig); err != nil {
			return err
		}
	}

	logger.WithFields(map[string]interface{}{"users": len(rows)}).
		Debug("spend detector pass complete")
	return nil
}

type velocityRow struct {
	UserID    string
	AccountID string
	TxnCount  int64
}

// DetectVelocity emits a TXN_VELOCITY_1H signal for every (user, account)
// pair whose successful-transaction count in the trailing hour meets the
// threshold. Pairs below the threshold produce nothing.
func (d *Detector) DetectVelocity(ctx context.Context) error {
	since := d.Now().Add(-1 * time.Hour)

	var rows []velocityRow
	err := d.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("user_id, account_id, COUNT(*) AS txn_count").
		Where("status = ? AND txn_timestamp >= ?", models.TxnStatusSuccess, since).
		Group("user_id, account_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("aggregate 1h velocity: %w", err)
	}

	for _, row := range rows {
		if row.TxnCount < int64(d.VelocityThreshold) {
			continue
		}
		sig := &models.Signal{
			UserID:      row.UserID,
			SignalType:  models.SignalTxnVelocity1h,
			SignalValue: float64(row.TxnCount),
			Description: fmt.Sprintf("%d successful transactions in last 1 hour for account %s", row.TxnCount, row.AccountID),
		}
		if err := d.Store.Append(ctx, sig); err != nil {
			return err
		}
	}
	return nil
}

type deviceRow struct {
	UserID    string
	AccountID string
	DeviceID  string
}

// DetectNewDevices emits a NEW_DEVICE_USED signal for every
// (user, account, device) triple in successful transactions whose device id
// never appears in any transaction older than 24 hours. A device with zero
// prior history anywhere is always new: cold-start devices are risk-positive.
func (d *Detector) DetectNewDevices(ctx context.Context) error {
	cutoff := d.Now().Add(-24 * time.Hour)

	var oldDevices []string
	err := d.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Distinct().
		Where("txn_timestamp < ?", cutoff).
		Pluck("device_id", &oldDevices).Error
	if err != nil {
		return fmt.Errorf("collect known devices: %w", err)
	}

	known := make(map[string]struct{}, len(oldDevices))
	for _, id := range oldDevices {
		known[id] = struct{}{}
	}

	var rows []deviceRow
	err = d.DB.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("user_id, account_id, device_id").
		Where("status = ?", models.TxnStatusSuccess).
		Group("user_id, account_id, device_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("collect device usage: %w", err)
	}

	for _, row := range rows {
		if _, seen := known[row.DeviceID]; seen {
			continue
		}
		sig := &models.Signal{
			UserID:      row.UserID,
			SignalType:  models.SignalNewDeviceUsed,
			SignalValue: 1,
			Description: fmt.Sprintf("New device %s used for account %s", row.DeviceID, row.AccountID),
		}
		if err := d.Store.Append(ctx, sig); err != nil {
			return err
		}
	}
	return nil
}
