package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, models.TransactionTypeIncome, decimal.NewFromInt(5000), time.Now(), "Salary", nil)
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected non-empty transaction ID")
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(5000), tx.Amount)
		if tx.IsFixed {
			t.Error("expected user-created row to not be fixed")
		}
	})

	t.Run("with_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		tx, err := svc.CreateTransaction(user.ID, models.TransactionTypeExpense, decimal.NewFromInt(42), time.Now(), "Coffee", &cat.ID)
		testutil.AssertNoError(t, err)
		if tx.CategoryID == nil || *tx.CategoryID != cat.ID {
			t.Error("expected category ID to be set")
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		missing := "no-such-category"

		_, err := svc.CreateTransaction(user.ID, models.TransactionTypeExpense, decimal.NewFromInt(10), time.Now(), "", &missing)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("cross_user_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)

		_, err := svc.CreateTransaction(user2.ID, models.TransactionTypeExpense, decimal.NewFromInt(10), time.Now(), "", &cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, models.TransactionTypeIncome, decimal.Zero, time.Now(), "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, models.TransactionType("transfer"), decimal.NewFromInt(10), time.Now(), "", nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("default_date_when_zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, models.TransactionTypeIncome, decimal.NewFromInt(10), time.Time{}, "", nil)
		testutil.AssertNoError(t, err)
		if tx.Date.IsZero() {
			t.Error("expected date to be defaulted to today, got zero")
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(100))

		newAmount := decimal.NewFromInt(150)
		memo := "updated"
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{Amount: &newAmount, Memo: &memo})
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.NewFromInt(150), updated.Amount)
		if updated.Memo != "updated" {
			t.Errorf("expected memo updated, got %s", updated.Memo)
		}
	})

	t.Run("fixed_row_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(100))
		if err := db.Model(tx).Update("is_fixed", true).Error; err != nil {
			t.Fatalf("failed to mark row fixed: %v", err)
		}

		newAmount := decimal.NewFromInt(1)
		_, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionPatch{Amount: &newAmount})
		testutil.AssertAppError(t, err, "FIXED_RECORD_IMMUTABLE")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user1.ID, models.TransactionTypeExpense, decimal.NewFromInt(100))

		newAmount := decimal.NewFromInt(1)
		_, err := svc.UpdateTransaction(user2.ID, tx.ID, TransactionPatch{Amount: &newAmount})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(100))

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))
		_, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("fixed_row_immutable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(100))
		if err := db.Model(tx).Update("is_fixed", true).Error; err != nil {
			t.Fatalf("failed to mark row fixed: %v", err)
		}

		err := svc.DeleteTransaction(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "FIXED_RECORD_IMMUTABLE")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("hides_future_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(100))
		future := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(200))
		if err := db.Model(future).Update("date", time.Now().UTC().AddDate(0, 1, 0)).Error; err != nil {
			t.Fatalf("failed to move row to the future: %v", err)
		}

		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 {
			t.Fatalf("expected 1 visible transaction, got %d", len(result.Data))
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(100), result.Data[0].Amount)
	})

	t.Run("filters_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, decimal.NewFromInt(100))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(200))

		income := models.TransactionTypeIncome
		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Type: &income})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 {
			t.Fatalf("expected 1 income transaction, got %d", len(result.Data))
		}
		if result.Data[0].Type != models.TransactionTypeIncome {
			t.Errorf("expected income, got %s", result.Data[0].Type)
		}
	})

	t.Run("invalid_month_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		badMonth := "January"
		_, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Month: &badMonth})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetMonthlySummary(t *testing.T) {
	t.Run("totals_by_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, decimal.NewFromInt(3000))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(1200))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, decimal.NewFromInt(300))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeSaving, decimal.NewFromInt(500))

		summary, err := svc.GetMonthlySummary(user.ID, testutil.FutureMonth(0))
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, decimal.NewFromInt(3000), summary.TotalIncome)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(1500), summary.TotalExpense)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(500), summary.TotalSaving)
	})

	t.Run("invalid_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetMonthlySummary(user.ID, "2025-13")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
