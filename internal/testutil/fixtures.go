package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"nestegg/internal/models"
	"nestegg/internal/schedule"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAsset creates an active savings asset with zero balance.
func CreateTestAsset(t *testing.T, db *gorm.DB, userID string) *models.Asset {
	t.Helper()
	return CreateTestAssetWithBalance(t, db, userID, decimal.Zero)
}

// CreateTestAssetWithBalance creates an active savings asset with the given
// balance. The balance is written directly, without a backing transaction
// row, so use it only where the test controls the ledger itself.
func CreateTestAssetWithBalance(t *testing.T, db *gorm.DB, userID string, balance decimal.Decimal) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Asset %d", nextID()),
		Type:     models.AssetTypeSavings,
		Balance:  balance,
		IsActive: true,
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a plain ledger entry dated today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: amount,
		Date:   schedule.Today(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestAssetTransaction creates an asset transaction row dated today.
// The asset's balance is not adjusted; use the service for ledger-accurate
// rows.
func CreateTestAssetTransaction(t *testing.T, db *gorm.DB, userID, assetID string, txType models.AssetTransactionType, amount decimal.Decimal) *models.AssetTransaction {
	t.Helper()

	tx := &models.AssetTransaction{
		UserID:  userID,
		AssetID: assetID,
		Type:    txType,
		Amount:  amount,
		Date:    schedule.Today(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test asset transaction: %v", err)
	}
	return tx
}

// CreateTestFixedExpense creates an active fixed expense definition row
// without materializing any transactions.
func CreateTestFixedExpense(t *testing.T, db *gorm.DB, userID, startMonth, endMonth string, scheduledDay int) *models.FixedExpense {
	t.Helper()

	definition := &models.FixedExpense{
		UserID:       userID,
		Title:        fmt.Sprintf("Test Fixed Expense %d", nextID()),
		Amount:       decimal.NewFromInt(100),
		ScheduledDay: scheduledDay,
		StartMonth:   startMonth,
		EndMonth:     endMonth,
		IsActive:     true,
	}
	if err := db.Create(definition).Error; err != nil {
		t.Fatalf("failed to create test fixed expense: %v", err)
	}
	return definition
}

// CreateTestFixedSaving creates an active fixed saving definition row
// without materializing any asset transactions.
func CreateTestFixedSaving(t *testing.T, db *gorm.DB, userID, assetID, startMonth, endMonth string, scheduledDay int) *models.FixedSaving {
	t.Helper()

	definition := &models.FixedSaving{
		UserID:       userID,
		AssetID:      assetID,
		Title:        fmt.Sprintf("Test Fixed Saving %d", nextID()),
		Amount:       decimal.NewFromInt(100),
		ScheduledDay: scheduledDay,
		StartMonth:   startMonth,
		EndMonth:     endMonth,
		IsActive:     true,
	}
	if err := db.Create(definition).Error; err != nil {
		t.Fatalf("failed to create test fixed saving: %v", err)
	}
	return definition
}

// FutureMonth returns the month n months after the current UTC month,
// formatted as "YYYY-MM". Negative n steps backwards.
func FutureMonth(n int) string {
	now := time.Now().UTC()
	shifted := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return schedule.MonthOf(shifted).String()
}
