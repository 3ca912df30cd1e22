package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/models"
)

// goalService handles the user's savings goal and net worth computation.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// SetGoal creates or replaces the user's single goal row.
func (s *goalService) SetGoal(userID string, targetAmount, initialAmount decimal.Decimal) (*models.Goal, error) {
	if !targetAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if initialAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial amount must not be negative")
	}

	var goal models.Goal
	err := s.db.Where("user_id = ?", userID).First(&goal).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		goal = models.Goal{
			UserID:        userID,
			TargetAmount:  targetAmount,
			InitialAmount: initialAmount,
		}
		if err := s.db.Create(&goal).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		updates := map[string]interface{}{
			"target_amount":  targetAmount,
			"initial_amount": initialAmount,
		}
		if err := s.db.Model(&goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return &goal, nil
}

// GetGoal retrieves the user's goal.
func (s *goalService) GetGoal(userID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("user_id = ?", userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// GetNetWorth computes initial amount + total income - total expense +
// total asset balances. The three aggregates are independent reads and run
// concurrently. A missing goal contributes zero target and initial amounts.
func (s *goalService) GetNetWorth(userID string) (*NetWorthSummary, error) {
	summary := &NetWorthSummary{}

	goal, err := s.GetGoal(userID)
	if err != nil && !errors.Is(err, apperrors.ErrGoalNotFound) {
		return nil, err
	}
	if goal != nil {
		summary.TargetAmount = goal.TargetAmount
		summary.InitialAmount = goal.InitialAmount
	}

	sumTransactions := func(transactionType models.TransactionType, target *decimal.Decimal) func() error {
		return func() error {
			var total decimal.Decimal
			err := s.db.Model(&models.Transaction{}).
				Select("COALESCE(SUM(amount), 0)").
				Where("user_id = ? AND type = ?", userID, transactionType).
				Scan(&total).Error
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			*target = total
			return nil
		}
	}

	var g errgroup.Group
	g.Go(sumTransactions(models.TransactionTypeIncome, &summary.TotalIncome))
	g.Go(sumTransactions(models.TransactionTypeExpense, &summary.TotalExpense))
	g.Go(func() error {
		var total decimal.Decimal
		err := s.db.Model(&models.Asset{}).
			Select("COALESCE(SUM(balance), 0)").
			Where("user_id = ? AND is_active = ?", userID, true).
			Scan(&total).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		summary.TotalAssets = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.NetWorth = summary.InitialAmount.
		Add(summary.TotalIncome).
		Sub(summary.TotalExpense).
		Add(summary.TotalAssets)
	return summary, nil
}
