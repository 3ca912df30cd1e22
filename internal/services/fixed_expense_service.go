package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/schedule"
)

// fixedExpenseService handles recurring expense definitions and keeps their
// materialized transaction rows in sync. Past rows are historical and never
// touched; every mutation regenerates only rows dated today or later.
type fixedExpenseService struct {
	db *gorm.DB
}

// NewFixedExpenseService creates a new FixedExpenseServicer.
func NewFixedExpenseService(db *gorm.DB) FixedExpenseServicer {
	return &fixedExpenseService{db: db}
}

// validateDefinition checks the common recurring definition fields and
// returns the parsed month range.
func validateDefinition(title string, amount decimal.Decimal, scheduledDay int, startMonth, endMonth string) (schedule.Month, schedule.Month, error) {
	var zero schedule.Month
	if title == "" {
		return zero, zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if !amount.IsPositive() {
		return zero, zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if scheduledDay < 1 || scheduledDay > 31 {
		return zero, zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "scheduled day must be between 1 and 31")
	}
	start, err := schedule.ParseMonth(startMonth)
	if err != nil {
		return zero, zero, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	end, err := schedule.ParseMonth(endMonth)
	if err != nil {
		return zero, zero, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if start.After(end) {
		return zero, zero, apperrors.ErrInvalidMonthRange
	}
	return start, end, nil
}

// CreateFixedExpense inserts the definition and materializes one expense
// transaction per covered month, as one atomic batch.
func (s *fixedExpenseService) CreateFixedExpense(userID string, fields FixedExpenseFields) (*models.FixedExpense, error) {
	start, end, err := validateDefinition(fields.Title, fields.Amount, fields.ScheduledDay, fields.StartMonth, fields.EndMonth)
	if err != nil {
		return nil, err
	}

	if fields.CategoryID != nil {
		var count int64
		s.db.Model(&models.Category{}).Where("id = ? AND user_id = ?", *fields.CategoryID, userID).Count(&count)
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	definition := &models.FixedExpense{
		UserID:       userID,
		CategoryID:   fields.CategoryID,
		Title:        fields.Title,
		Amount:       fields.Amount,
		ScheduledDay: fields.ScheduledDay,
		StartMonth:   fields.StartMonth,
		EndMonth:     fields.EndMonth,
		IsActive:     true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(definition).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.materialize(tx, definition, schedule.Expand(start, end, fields.ScheduledDay))
	})
	if err != nil {
		return nil, err
	}

	return definition, nil
}

// materialize bulk-inserts one generated expense row per date.
func (s *fixedExpenseService) materialize(tx *gorm.DB, definition *models.FixedExpense, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	rows := make([]models.Transaction, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, models.Transaction{
			UserID:         definition.UserID,
			CategoryID:     definition.CategoryID,
			Type:           models.TransactionTypeExpense,
			Amount:         definition.Amount,
			Memo:           definition.Title,
			Date:           date,
			IsFixed:        true,
			FixedExpenseID: &definition.ID,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// removeFutureRows deletes every generated row dated today or later.
func (s *fixedExpenseService) removeFutureRows(tx *gorm.DB, definitionID string, today time.Time) error {
	if err := tx.Where("fixed_expense_id = ? AND date >= ?", definitionID, today).
		Delete(&models.Transaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// futureDates expands the range and keeps only dates from today on.
func futureDates(start, end schedule.Month, scheduledDay int, today time.Time) []time.Time {
	var dates []time.Time
	for _, d := range schedule.Expand(start, end, scheduledDay) {
		if !d.Before(today) {
			dates = append(dates, d)
		}
	}
	return dates
}

// UpdateFixedExpense deletes the definition's future rows, applies the
// patch, and regenerates rows dated today or later from the merged values
// while the definition remains active. Elapsed rows stay untouched.
func (s *fixedExpenseService) UpdateFixedExpense(userID, definitionID string, patch FixedExpensePatch) (*models.FixedExpense, error) {
	definition, err := s.GetFixedExpenseByID(userID, definitionID)
	if err != nil {
		return nil, err
	}

	title := definition.Title
	if patch.Title != nil {
		title = *patch.Title
	}
	amount := definition.Amount
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	scheduledDay := definition.ScheduledDay
	if patch.ScheduledDay != nil {
		scheduledDay = *patch.ScheduledDay
	}
	startMonth := definition.StartMonth
	if patch.StartMonth != nil {
		startMonth = *patch.StartMonth
	}
	endMonth := definition.EndMonth
	if patch.EndMonth != nil {
		endMonth = *patch.EndMonth
	}
	categoryID := definition.CategoryID
	if patch.CategoryID != nil {
		categoryID = patch.CategoryID
	}

	start, end, err := validateDefinition(title, amount, scheduledDay, startMonth, endMonth)
	if err != nil {
		return nil, err
	}

	merged := *definition
	merged.Title = title
	merged.Amount = amount
	merged.ScheduledDay = scheduledDay
	merged.StartMonth = startMonth
	merged.EndMonth = endMonth
	merged.CategoryID = categoryID

	today := schedule.Today()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.removeFutureRows(tx, definitionID, today); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":         title,
			"amount":        amount,
			"scheduled_day": scheduledDay,
			"start_month":   startMonth,
			"end_month":     endMonth,
			"category_id":   categoryID,
		}
		if err := tx.Model(definition).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if !merged.IsActive {
			return nil
		}
		return s.materialize(tx, &merged, futureDates(start, end, scheduledDay, today))
	})
	if err != nil {
		return nil, err
	}

	return s.GetFixedExpenseByID(userID, definitionID)
}

// DeleteFixedExpense removes the definition and its rows dated today or
// later; past generated rows remain as history.
func (s *fixedExpenseService) DeleteFixedExpense(userID, definitionID string) error {
	definition, err := s.GetFixedExpenseByID(userID, definitionID)
	if err != nil {
		return err
	}

	today := schedule.Today()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.removeFutureRows(tx, definitionID, today); err != nil {
			return err
		}
		if err := tx.Delete(definition).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ToggleFixedExpenseActive flips the definition between active and
// inactive. Deactivating removes rows dated today or later; activating
// regenerates them from the stored range.
func (s *fixedExpenseService) ToggleFixedExpenseActive(userID, definitionID string) (*models.FixedExpense, error) {
	definition, err := s.GetFixedExpenseByID(userID, definitionID)
	if err != nil {
		return nil, err
	}

	start, end, err := validateDefinition(definition.Title, definition.Amount, definition.ScheduledDay, definition.StartMonth, definition.EndMonth)
	if err != nil {
		return nil, err
	}

	today := schedule.Today()
	activating := !definition.IsActive

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.removeFutureRows(tx, definitionID, today); err != nil {
			return err
		}
		if err := tx.Model(definition).Update("is_active", activating).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !activating {
			return nil
		}
		return s.materialize(tx, definition, futureDates(start, end, definition.ScheduledDay, today))
	})
	if err != nil {
		return nil, err
	}

	return s.GetFixedExpenseByID(userID, definitionID)
}

// GetUserFixedExpenses retrieves a paginated list of definitions for a user.
func (s *fixedExpenseService) GetUserFixedExpenses(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.FixedExpense], error) {
	page.Defaults()

	base := s.db.Model(&models.FixedExpense{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var definitions []models.FixedExpense
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at ASC").Find(&definitions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(definitions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetFixedExpenseByID retrieves a definition by ID for a specific user
func (s *fixedExpenseService) GetFixedExpenseByID(userID, definitionID string) (*models.FixedExpense, error) {
	var definition models.FixedExpense
	if err := s.db.Where("id = ? AND user_id = ?", definitionID, userID).First(&definition).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFixedExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &definition, nil
}
