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

// assetTransactionService handles balance-mutating transaction business
// logic. Record writes and their balance effects always commit together.
type assetTransactionService struct {
	db           *gorm.DB
	assetService AssetServicer
}

// NewAssetTransactionService creates a new AssetTransactionServicer.
func NewAssetTransactionService(db *gorm.DB, assetService AssetServicer) AssetTransactionServicer {
	return &assetTransactionService{
		db:           db,
		assetService: assetService,
	}
}

// balanceEffect is one signed balance adjustment against one asset.
type balanceEffect struct {
	assetID string
	delta   decimal.Decimal
}

// effectsOf maps a transaction onto its balance effects: deposit and profit
// add to the source asset; withdraw, loss, and transfer subtract from it; a
// transfer additionally adds the amount to the target asset.
func effectsOf(t models.AssetTransactionType, assetID string, toAssetID *string, amount decimal.Decimal) ([]balanceEffect, error) {
	switch t {
	case models.AssetTransactionTypeDeposit, models.AssetTransactionTypeProfit:
		return []balanceEffect{{assetID: assetID, delta: amount}}, nil
	case models.AssetTransactionTypeWithdraw, models.AssetTransactionTypeLoss:
		return []balanceEffect{{assetID: assetID, delta: amount.Neg()}}, nil
	case models.AssetTransactionTypeTransfer:
		if toAssetID == nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer requires a target asset")
		}
		return []balanceEffect{
			{assetID: assetID, delta: amount.Neg()},
			{assetID: *toAssetID, delta: amount},
		}, nil
	default:
		return nil, apperrors.ErrInvalidOperationType
	}
}

// reversed negates every effect, producing the exact inverse adjustment.
func reversed(effects []balanceEffect) []balanceEffect {
	out := make([]balanceEffect, len(effects))
	for i, e := range effects {
		out[i] = balanceEffect{assetID: e.assetID, delta: e.delta.Neg()}
	}
	return out
}

// applyEffects applies each balance adjustment inside the caller's
// database transaction.
func (s *assetTransactionService) applyEffects(tx *gorm.DB, userID string, effects []balanceEffect) error {
	for _, e := range effects {
		if err := s.assetService.ApplyBalanceChange(tx, userID, e.assetID, e.delta); err != nil {
			return err
		}
	}
	return nil
}

// validate checks the shape of a (possibly merged) transaction before any
// write happens: positive amount, a target asset on transfers only, and no
// self-transfer.
func (s *assetTransactionService) validate(userID, assetID string, t models.AssetTransactionType, amount decimal.Decimal, toAssetID *string) error {
	if !amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if assetID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset ID is required")
	}

	switch t {
	case models.AssetTransactionTypeTransfer:
		if toAssetID == nil || *toAssetID == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer requires a target asset")
		}
		if *toAssetID == assetID {
			return apperrors.ErrSameAssetTransfer
		}
	case models.AssetTransactionTypeDeposit, models.AssetTransactionTypeWithdraw,
		models.AssetTransactionTypeProfit, models.AssetTransactionTypeLoss:
		if toAssetID != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "target asset is only valid for transfers")
		}
	default:
		return apperrors.ErrInvalidOperationType
	}

	// Ownership checks double as existence checks; a cross-user asset is
	// reported as not found.
	if _, err := s.assetService.GetAssetByID(userID, assetID); err != nil {
		return err
	}
	if toAssetID != nil {
		if _, err := s.assetService.GetAssetByID(userID, *toAssetID); err != nil {
			return err
		}
	}
	return nil
}

// CreateAssetTransaction records a new balance-mutating event and applies
// its balance effects in the same atomic batch.
func (s *assetTransactionService) CreateAssetTransaction(
	userID, assetID string,
	transactionType models.AssetTransactionType,
	amount decimal.Decimal,
	date time.Time,
	memo string,
	toAssetID *string,
) (*models.AssetTransaction, error) {
	if err := s.validate(userID, assetID, transactionType, amount, toAssetID); err != nil {
		return nil, err
	}

	if date.IsZero() {
		date = schedule.Today()
	} else {
		date = schedule.DateOf(date)
	}

	transaction := &models.AssetTransaction{
		UserID:    userID,
		AssetID:   assetID,
		Type:      transactionType,
		Amount:    amount,
		Date:      date,
		Memo:      memo,
		ToAssetID: toAssetID,
	}

	effects, err := effectsOf(transactionType, assetID, toAssetID, amount)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyEffects(tx, userID, effects)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// UpdateAssetTransaction rewrites an existing transaction. Because amount,
// type, and both asset references may all change at once, it undoes the
// original balance effects completely, writes the merged field values, and
// applies the new effects, all in one atomic batch. System-generated rows
// are immutable.
func (s *assetTransactionService) UpdateAssetTransaction(userID, transactionID string, patch AssetTransactionPatch) (*models.AssetTransaction, error) {
	existing, err := s.GetAssetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if existing.IsFixed {
		return nil, apperrors.ErrFixedRecordImmutable
	}

	// Merge the patch over the stored values.
	assetID := existing.AssetID
	if patch.AssetID != nil {
		assetID = *patch.AssetID
	}
	transactionType := existing.Type
	if patch.Type != nil {
		transactionType = *patch.Type
	}
	amount := existing.Amount
	if patch.Amount != nil {
		amount = *patch.Amount
	}
	date := existing.Date
	if patch.Date != nil {
		date = schedule.DateOf(*patch.Date)
	}
	memo := existing.Memo
	if patch.Memo != nil {
		memo = *patch.Memo
	}
	toAssetID := existing.ToAssetID
	if patch.ToAssetID != nil {
		toAssetID = patch.ToAssetID
	}
	if transactionType != models.AssetTransactionTypeTransfer {
		toAssetID = nil
	}

	if err := s.validate(userID, assetID, transactionType, amount, toAssetID); err != nil {
		return nil, err
	}

	oldEffects, err := effectsOf(existing.Type, existing.AssetID, existing.ToAssetID, existing.Amount)
	if err != nil {
		return nil, err
	}
	newEffects, err := effectsOf(transactionType, assetID, toAssetID, amount)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyEffects(tx, userID, reversed(oldEffects)); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"asset_id":    assetID,
			"type":        transactionType,
			"amount":      amount,
			"date":        date,
			"memo":        memo,
			"to_asset_id": toAssetID,
		}
		if err := tx.Model(existing).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.applyEffects(tx, userID, newEffects)
	})
	if err != nil {
		return nil, err
	}

	return s.GetAssetTransactionByID(userID, transactionID)
}

// DeleteAssetTransaction removes a transaction and undoes its balance
// effects, including the transfer counter-leg, atomically. System-generated
// rows are immutable.
func (s *assetTransactionService) DeleteAssetTransaction(userID, transactionID string) error {
	existing, err := s.GetAssetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if existing.IsFixed {
		return apperrors.ErrFixedRecordImmutable
	}

	effects, err := effectsOf(existing.Type, existing.AssetID, existing.ToAssetID, existing.Amount)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyEffects(tx, userID, reversed(effects))
	})
}

// ListAssetTransactions returns transactions dated on or before today,
// newest first. Future-dated rows generated by fixed savings stay hidden
// until their date arrives.
func (s *assetTransactionService) ListAssetTransactions(userID string, assetID *string, page pagination.PageRequest) (*pagination.PageResponse[models.AssetTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.AssetTransaction{}).
		Where("user_id = ? AND date <= ?", userID, schedule.Today())
	if assetID != nil {
		base = base.Where("asset_id = ?", *assetID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.AssetTransaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAssetTransactionByID retrieves a transaction by ID for a specific user
func (s *assetTransactionService) GetAssetTransactionByID(userID, transactionID string) (*models.AssetTransaction, error) {
	var transaction models.AssetTransaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
