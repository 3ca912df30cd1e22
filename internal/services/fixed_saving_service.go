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

// fixedSavingService handles recurring saving definitions. Its materialized
// rows are deposit asset transactions, so generating and removing them also
// moves the target asset's balance; both always happen in the same atomic
// batch to keep the balance invariant intact.
type fixedSavingService struct {
	db           *gorm.DB
	assetService AssetServicer
}

// NewFixedSavingService creates a new FixedSavingServicer.
func NewFixedSavingService(db *gorm.DB, assetService AssetServicer) FixedSavingServicer {
	return &fixedSavingService{db: db, assetService: assetService}
}

// CreateFixedSaving inserts the definition and materializes one deposit
// asset transaction per covered month against the target asset, crediting
// the asset's balance for every generated row.
func (s *fixedSavingService) CreateFixedSaving(userID string, fields FixedSavingFields) (*models.FixedSaving, error) {
	start, end, err := validateDefinition(fields.Title, fields.Amount, fields.ScheduledDay, fields.StartMonth, fields.EndMonth)
	if err != nil {
		return nil, err
	}

	if _, err := s.assetService.GetAssetByID(userID, fields.AssetID); err != nil {
		return nil, err
	}

	definition := &models.FixedSaving{
		UserID:       userID,
		AssetID:      fields.AssetID,
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

// materialize bulk-inserts one generated deposit row per date and credits
// the target asset with the total inside the caller's transaction.
func (s *fixedSavingService) materialize(tx *gorm.DB, definition *models.FixedSaving, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	rows := make([]models.AssetTransaction, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, models.AssetTransaction{
			UserID:        definition.UserID,
			AssetID:       definition.AssetID,
			Type:          models.AssetTransactionTypeDeposit,
			Amount:        definition.Amount,
			Date:          date,
			Memo:          definition.Title,
			IsFixed:       true,
			FixedSavingID: &definition.ID,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := definition.Amount.Mul(decimal.NewFromInt(int64(len(dates))))
	return s.assetService.ApplyBalanceChange(tx, definition.UserID, definition.AssetID, total)
}

// removeFutureRows deletes every generated row dated today or later and
// debits each referenced asset by the removed amounts. Rows are grouped per
// asset because older rows may predate an asset change on the definition.
func (s *fixedSavingService) removeFutureRows(tx *gorm.DB, userID, definitionID string, today time.Time) error {
	var rows []models.AssetTransaction
	if err := tx.Where("fixed_saving_id = ? AND date >= ?", definitionID, today).
		Find(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(rows) == 0 {
		return nil
	}

	totals := make(map[string]decimal.Decimal)
	for _, row := range rows {
		totals[row.AssetID] = totals[row.AssetID].Add(row.Amount)
	}

	if err := tx.Where("fixed_saving_id = ? AND date >= ?", definitionID, today).
		Delete(&models.AssetTransaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for assetID, total := range totals {
		if err := s.assetService.ApplyBalanceChange(tx, userID, assetID, total.Neg()); err != nil {
			return err
		}
	}
	return nil
}

// UpdateFixedSaving deletes the definition's future rows (debiting the
// asset), applies the patch, and regenerates rows dated today or later from
// the merged values while the definition remains active.
func (s *fixedSavingService) UpdateFixedSaving(userID, definitionID string, patch FixedSavingPatch) (*models.FixedSaving, error) {
	definition, err := s.GetFixedSavingByID(userID, definitionID)
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

	today := schedule.Today()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.removeFutureRows(tx, userID, definitionID, today); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":         title,
			"amount":        amount,
			"scheduled_day": scheduledDay,
			"start_month":   startMonth,
			"end_month":     endMonth,
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

	return s.GetFixedSavingByID(userID, definitionID)
}

// DeleteFixedSaving removes the definition and its rows dated today or
// later, debiting the asset for the removed rows; past generated rows
// remain as history.
func (s *fixedSavingService) DeleteFixedSaving(userID, definitionID string) error {
	definition, err := s.GetFixedSavingByID(userID, definitionID)
	if err != nil {
		return err
	}

	today := schedule.Today()
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.removeFutureRows(tx, userID, definitionID, today); err != nil {
			return err
		}
		if err := tx.Delete(definition).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ToggleFixedSavingActive flips the definition between active and inactive.
// Deactivating removes rows dated today or later; activating regenerates
// them from the stored range.
func (s *fixedSavingService) ToggleFixedSavingActive(userID, definitionID string) (*models.FixedSaving, error) {
	definition, err := s.GetFixedSavingByID(userID, definitionID)
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
		if err := s.removeFutureRows(tx, userID, definitionID, today); err != nil {
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

	return s.GetFixedSavingByID(userID, definitionID)
}

// GetUserFixedSavings retrieves a paginated list of definitions for a user.
func (s *fixedSavingService) GetUserFixedSavings(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.FixedSaving], error) {
	page.Defaults()

	base := s.db.Model(&models.FixedSaving{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var definitions []models.FixedSaving
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at ASC").Find(&definitions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(definitions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetFixedSavingByID retrieves a definition by ID for a specific user
func (s *fixedSavingService) GetFixedSavingByID(userID, definitionID string) (*models.FixedSaving, error) {
	var definition models.FixedSaving
	if err := s.db.Where("id = ? AND user_id = ?", definitionID, userID).First(&definition).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFixedSavingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &definition, nil
}
