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

// transactionService handles plain ledger entries. These carry no balance
// side effect; asset balances only move through asset transactions.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

func (s *transactionService) checkCategory(userID string, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	s.db.Model(&models.Category{}).Where("id = ? AND user_id = ?", *categoryID, userID).Count(&count)
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// CreateTransaction records a new income, expense, or saving entry.
func (s *transactionService) CreateTransaction(
	userID string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	date time.Time,
	memo string,
	categoryID *string,
) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	switch transactionType {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeSaving:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported transaction type")
	}
	if err := s.checkCategory(userID, categoryID); err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = schedule.Today()
	} else {
		date = schedule.DateOf(date)
	}

	transaction := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Type:       transactionType,
		Amount:     amount,
		Memo:       memo,
		Date:       date,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// UpdateTransaction applies a partial update. Rows generated from a fixed
// expense are immutable through this path.
func (s *transactionService) UpdateTransaction(userID, transactionID string, patch TransactionPatch) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.IsFixed {
		return nil, apperrors.ErrFixedRecordImmutable
	}

	updates := make(map[string]interface{})
	if patch.Type != nil {
		switch *patch.Type {
		case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeSaving:
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported transaction type")
		}
		updates["type"] = *patch.Type
	}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		updates["amount"] = *patch.Amount
	}
	if patch.Date != nil {
		updates["date"] = schedule.DateOf(*patch.Date)
	}
	if patch.Memo != nil {
		updates["memo"] = *patch.Memo
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(userID, patch.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *patch.CategoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", transactionID).First(transaction).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return transaction, nil
}

// DeleteTransaction removes an entry. Rows generated from a fixed expense
// are immutable through this path.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if transaction.IsFixed {
		return apperrors.ErrFixedRecordImmutable
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserTransactions returns entries dated on or before today, newest
// first. Future rows generated by fixed expenses stay hidden until their
// date arrives.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date <= ?", userID, schedule.Today())
	if filter.Month != nil {
		month, err := schedule.ParseMonth(*filter.Month)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		base = base.Where("date >= ? AND date <= ?", month.Date(1), month.Date(month.Days()))
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves an entry by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetMonthlySummary totals income, expense, and saving entries for one
// month, counting only rows dated on or before today.
func (s *transactionService) GetMonthlySummary(userID, monthStr string) (*MonthlySummary, error) {
	month, err := schedule.ParseMonth(monthStr)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	summary := &MonthlySummary{Month: month.String()}
	types := map[models.TransactionType]*decimal.Decimal{
		models.TransactionTypeIncome:  &summary.TotalIncome,
		models.TransactionTypeExpense: &summary.TotalExpense,
		models.TransactionTypeSaving:  &summary.TotalSaving,
	}

	for transactionType, target := range types {
		var total decimal.Decimal
		err := s.db.Model(&models.Transaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND type = ? AND date >= ? AND date <= ? AND date <= ?",
				userID, transactionType, month.Date(1), month.Date(month.Days()), schedule.Today()).
			Scan(&total).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		*target = total
	}

	return summary, nil
}
