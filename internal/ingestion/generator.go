package ingestion

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/models"
)

var (
	merchantCategories = []string{
		"food", "groceries", "fuel", "travel",
		"shopping", "entertainment", "utilities",
	}
	channels  = []string{"upi", "card", "bank_transfer"}
	locations = []string{"Bangalore", "Mumbai", "Delhi", "Chennai", "Hyderabad"}
)

const devicePoolSize = 20

// Generator produces demo users, accounts, and randomized transactions. It
// stands in for the external ingestion collaborator; the pipeline itself
// never creates transactions.
type Generator struct {
	DB   *gorm.DB
	rand *rand.Rand

	// Now is the transaction clock; overridable in tests.
	Now func() time.Time
}

func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{
		DB:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:  time.Now,
	}
}

// SeedUsersAndAccounts creates n users, each with one active wallet account.
func (g *Generator) SeedUsersAndAccounts(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		user := models.User{
			Name:     fmt.Sprintf("User_%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Phone:    fmt.Sprintf("+91XXXXXXXX%d", i),
			KYCLevel: 2,
		}
		if err := g.DB.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}

		account := models.Account{
			UserID:      user.UserID,
			AccountType: "wallet",
			Balance:     10000.0,
			Status:      models.AccountStatusActive,
		}
		if err := g.DB.WithContext(ctx).Create(&account).Error; err != nil {
			return fmt.Errorf("seed account for user %d: %w", i, err)
		}
	}
	return nil
}

// GenerateTransactions inserts n randomized transactions across active
// accounts: uniform amounts between 10 and 5000, a 95/5 success/failed split,
// and a shared pool of device ids so repeat devices occur.
func (g *Generator) GenerateTransactions(ctx context.Context, n int) error {
	pairs, err := g.activePairs(ctx)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no active accounts to generate transactions for")
	}

	for i := 0; i < n; i++ {
		pair := pairs[g.rand.Intn(len(pairs))]
		txn := models.Transaction{
			UserID:           pair.UserID,
			AccountID:        pair.AccountID,
			Amount:           math.Round((10+g.rand.Float64()*4990)*100) / 100,
			TxnType:          "debit",
			Channel:          channels[g.rand.Intn(len(channels))],
			MerchantCategory: merchantCategories[g.rand.Intn(len(merchantCategories))],
			Location:         locations[g.rand.Intn(len(locations))],
			DeviceID:         fmt.Sprintf("device_%d", 1+g.rand.Intn(devicePoolSize)),
			TxnTimestamp:     g.Now(),
			Status:           g.randomStatus(),
		}
		if err := g.DB.WithContext(ctx).Create(&txn).Error; err != nil {
			return fmt.Errorf("insert generated transaction: %w", err)
		}
	}
	return nil
}

type userAccountPair struct {
	UserID    string
	AccountID string
}

func (g *Generator) activePairs(ctx context.Context) ([]userAccountPair, error) {
	var pairs []userAccountPair
	err := g.DB.WithContext(ctx).
		Model(&models.Account{}).
		Select("user_id, account_id").
		Where("status = ?", models.AccountStatusActive).
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("fetch active accounts: %w", err)
	}
	return pairs, nil
}

func (g *Generator) randomStatus() string {
	if g.rand.Float64() < 0.95 {
		return models.TxnStatusSuccess
	}
	return models.TxnStatusFailed
}
