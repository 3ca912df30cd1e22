package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/schedule"
	"nestegg/internal/testutil"
)

func TestCreateFixedExpense(t *testing.T) {
	t.Run("materializes_one_row_per_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Rent",
			Amount:       decimal.NewFromInt(1200),
			ScheduledDay: 15,
			StartMonth:   "2025-01",
			EndMonth:     "2025-03",
		})
		testutil.AssertNoError(t, err)

		var rows []models.Transaction
		err = db.Where("fixed_expense_id = ?", definition.ID).Order("date ASC").Find(&rows).Error
		testutil.AssertNoError(t, err)

		if len(rows) != 3 {
			t.Fatalf("expected 3 generated rows, got %d", len(rows))
		}
		wantDates := []time.Time{
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		}
		for i, row := range rows {
			if !schedule.DateOf(row.Date).Equal(wantDates[i]) {
				t.Errorf("row %d: expected date %s, got %s", i, wantDates[i], row.Date)
			}
			if !row.IsFixed {
				t.Errorf("row %d: expected IsFixed", i)
			}
			if row.Type != models.TransactionTypeExpense {
				t.Errorf("row %d: expected expense type, got %s", i, row.Type)
			}
			testutil.AssertDecimalEqual(t, decimal.NewFromInt(1200), row.Amount)
		}
	})

	t.Run("clamps_to_short_months", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Insurance",
			Amount:       decimal.NewFromInt(80),
			ScheduledDay: 31,
			StartMonth:   "2025-01",
			EndMonth:     "2025-03",
		})
		testutil.AssertNoError(t, err)

		var rows []models.Transaction
		err = db.Where("fixed_expense_id = ?", definition.ID).Order("date ASC").Find(&rows).Error
		testutil.AssertNoError(t, err)

		wantDates := []time.Time{
			time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		}
		if len(rows) != len(wantDates) {
			t.Fatalf("expected %d rows, got %d", len(wantDates), len(rows))
		}
		for i, row := range rows {
			if !schedule.DateOf(row.Date).Equal(wantDates[i]) {
				t.Errorf("row %d: expected date %s, got %s", i, wantDates[i], row.Date)
			}
		}
	})

	t.Run("invalid_month_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Backwards",
			Amount:       decimal.NewFromInt(10),
			ScheduledDay: 1,
			StartMonth:   "2025-05",
			EndMonth:     "2025-01",
		})
		testutil.AssertAppError(t, err, "INVALID_MONTH_RANGE")
	})

	t.Run("invalid_scheduled_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Bad Day",
			Amount:       decimal.NewFromInt(10),
			ScheduledDay: 32,
			StartMonth:   "2025-01",
			EndMonth:     "2025-02",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("malformed_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Bad Month",
			Amount:       decimal.NewFromInt(10),
			ScheduledDay: 1,
			StartMonth:   "2025/01",
			EndMonth:     "2025-02",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		missing := "no-such-category"

		_, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Categorized",
			Amount:       decimal.NewFromInt(10),
			ScheduledDay: 1,
			StartMonth:   "2025-01",
			EndMonth:     "2025-02",
			CategoryID:   &missing,
		})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateFixedExpense(t *testing.T) {
	t.Run("regenerates_future_rows_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		// Range straddling today: one elapsed month, several upcoming.
		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Gym",
			Amount:       decimal.NewFromInt(50),
			ScheduledDay: 1,
			StartMonth:   testutil.FutureMonth(-1),
			EndMonth:     testutil.FutureMonth(3),
		})
		testutil.AssertNoError(t, err)

		var before []models.Transaction
		err = db.Where("fixed_expense_id = ? AND date < ?", definition.ID, schedule.Today()).Find(&before).Error
		testutil.AssertNoError(t, err)

		newAmount := decimal.NewFromInt(75)
		_, err = svc.UpdateFixedExpense(user.ID, definition.ID, FixedExpensePatch{Amount: &newAmount})
		testutil.AssertNoError(t, err)

		// Elapsed rows keep the original amount.
		var past []models.Transaction
		err = db.Where("fixed_expense_id = ? AND date < ?", definition.ID, schedule.Today()).Find(&past).Error
		testutil.AssertNoError(t, err)
		if len(past) != len(before) {
			t.Fatalf("expected %d elapsed rows untouched, got %d", len(before), len(past))
		}
		for _, row := range past {
			testutil.AssertDecimalEqual(t, decimal.NewFromInt(50), row.Amount)
		}

		// Upcoming rows carry the new amount, one per remaining month.
		var future []models.Transaction
		err = db.Where("fixed_expense_id = ? AND date >= ?", definition.ID, schedule.Today()).Find(&future).Error
		testutil.AssertNoError(t, err)
		if len(future) == 0 {
			t.Fatal("expected regenerated future rows")
		}
		for _, row := range future {
			testutil.AssertDecimalEqual(t, decimal.NewFromInt(75), row.Amount)
		}
	})

	t.Run("no_duplicate_rows_after_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Streaming",
			Amount:       decimal.NewFromInt(15),
			ScheduledDay: 10,
			StartMonth:   testutil.FutureMonth(1),
			EndMonth:     testutil.FutureMonth(4),
		})
		testutil.AssertNoError(t, err)

		title := "Streaming Plus"
		_, err = svc.UpdateFixedExpense(user.ID, definition.ID, FixedExpensePatch{Title: &title})
		testutil.AssertNoError(t, err)

		var count int64
		err = db.Model(&models.Transaction{}).Where("fixed_expense_id = ?", definition.ID).Count(&count).Error
		testutil.AssertNoError(t, err)
		if count != 4 {
			t.Errorf("expected 4 rows after regeneration, got %d", count)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		title := "Missing"
		_, err := svc.UpdateFixedExpense(user.ID, "missing", FixedExpensePatch{Title: &title})
		testutil.AssertAppError(t, err, "FIXED_EXPENSE_NOT_FOUND")
	})
}

func TestDeleteFixedExpense(t *testing.T) {
	t.Run("keeps_past_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Old Sub",
			Amount:       decimal.NewFromInt(20),
			ScheduledDay: 1,
			StartMonth:   testutil.FutureMonth(-2),
			EndMonth:     testutil.FutureMonth(2),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteFixedExpense(user.ID, definition.ID))

		_, err = svc.GetFixedExpenseByID(user.ID, definition.ID)
		testutil.AssertAppError(t, err, "FIXED_EXPENSE_NOT_FOUND")

		var futureCount int64
		err = db.Model(&models.Transaction{}).
			Where("fixed_expense_id = ? AND date >= ?", definition.ID, schedule.Today()).
			Count(&futureCount).Error
		testutil.AssertNoError(t, err)
		if futureCount != 0 {
			t.Errorf("expected no future rows, got %d", futureCount)
		}

		var pastCount int64
		err = db.Model(&models.Transaction{}).
			Where("fixed_expense_id = ? AND date < ?", definition.ID, schedule.Today()).
			Count(&pastCount).Error
		testutil.AssertNoError(t, err)
		if pastCount == 0 {
			t.Error("expected elapsed rows to survive deletion")
		}
	})
}

func TestToggleFixedExpenseActive(t *testing.T) {
	t.Run("deactivate_removes_future_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Paused Sub",
			Amount:       decimal.NewFromInt(30),
			ScheduledDay: 5,
			StartMonth:   testutil.FutureMonth(1),
			EndMonth:     testutil.FutureMonth(3),
		})
		testutil.AssertNoError(t, err)

		toggled, err := svc.ToggleFixedExpenseActive(user.ID, definition.ID)
		testutil.AssertNoError(t, err)
		if toggled.IsActive {
			t.Error("expected definition deactivated")
		}

		var count int64
		err = db.Model(&models.Transaction{}).Where("fixed_expense_id = ?", definition.ID).Count(&count).Error
		testutil.AssertNoError(t, err)
		if count != 0 {
			t.Errorf("expected no rows while inactive, got %d", count)
		}
	})

	t.Run("reactivate_regenerates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user := testutil.CreateTestUser(t, db)

		definition, err := svc.CreateFixedExpense(user.ID, FixedExpenseFields{
			Title:        "Resumed Sub",
			Amount:       decimal.NewFromInt(30),
			ScheduledDay: 5,
			StartMonth:   testutil.FutureMonth(1),
			EndMonth:     testutil.FutureMonth(3),
		})
		testutil.AssertNoError(t, err)

		_, err = svc.ToggleFixedExpenseActive(user.ID, definition.ID)
		testutil.AssertNoError(t, err)
		toggled, err := svc.ToggleFixedExpenseActive(user.ID, definition.ID)
		testutil.AssertNoError(t, err)
		if !toggled.IsActive {
			t.Error("expected definition reactivated")
		}

		var count int64
		err = db.Model(&models.Transaction{}).Where("fixed_expense_id = ?", definition.ID).Count(&count).Error
		testutil.AssertNoError(t, err)
		if count != 3 {
			t.Errorf("expected 3 regenerated rows, got %d", count)
		}
	})
}

func TestGetUserFixedExpenses(t *testing.T) {
	t.Run("lists_own_definitions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewFixedExpenseService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		testutil.CreateTestFixedExpense(t, db, user1.ID, "2025-01", "2025-03", 1)
		testutil.CreateTestFixedExpense(t, db, user2.ID, "2025-01", "2025-03", 1)

		result, err := svc.GetUserFixedExpenses(user1.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 {
			t.Errorf("expected 1 definition, got %d", len(result.Data))
		}
	})
}
