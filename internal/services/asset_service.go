package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/schedule"
)

// assetService handles asset-related business logic, including the balance
// ledger primitive used by every balance-mutating operation.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// CreateAsset creates a new asset for a user. A positive initial balance is
// recorded as a deposit transaction so the balance invariant holds from the
// first row.
func (s *assetService) CreateAsset(userID, name string, assetType models.AssetType, initialBalance decimal.Decimal) (*models.Asset, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name is required")
	}
	if initialBalance.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial balance must not be negative")
	}

	asset := &models.Asset{
		UserID:   userID,
		Name:     name,
		Type:     assetType,
		Balance:  initialBalance,
		IsActive: true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(asset).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if initialBalance.IsPositive() {
			transaction := &models.AssetTransaction{
				UserID:  userID,
				AssetID: asset.ID,
				Type:    models.AssetTransactionTypeDeposit,
				Amount:  initialBalance,
				Date:    schedule.Today(),
				Memo:    "Initial balance",
			}
			if err := tx.Create(transaction).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return asset, nil
}

// GetUserAssets retrieves a paginated list of active assets for a user.
func (s *assetService) GetUserAssets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	page.Defaults()

	base := s.db.Model(&models.Asset{}).Where("user_id = ? AND is_active = ?", userID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var assets []models.Asset
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at ASC").Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(assets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAssetByID retrieves an asset by ID for a specific user
func (s *assetService) GetAssetByID(userID, assetID string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Where("id = ? AND user_id = ?", assetID, userID).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &asset, nil
}

// UpdateAsset updates an existing asset's attributes. The balance is never
// writable here; it only moves through asset transactions.
func (s *assetService) UpdateAsset(userID, assetID string, fields AssetUpdateFields) (*models.Asset, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.Type != nil {
		updates["type"] = *fields.Type
	}
	if fields.IsActive != nil {
		updates["is_active"] = *fields.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(asset).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", asset.ID).First(asset).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return asset, nil
}

// DeleteAsset removes an asset together with every asset transaction that
// references it, as source or as transfer target. Legs of those transactions
// that land on surviving assets are reversed first, so each remaining balance
// still equals the sum of its remaining rows. Fixed savings targeting the
// asset are deactivated so they stop generating rows against a gone asset.
func (s *assetService) DeleteAsset(userID, assetID string) error {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var cascading []models.AssetTransaction
		if err := tx.Where("user_id = ? AND (asset_id = ? OR to_asset_id = ?)", userID, assetID, assetID).
			Find(&cascading).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, transaction := range cascading {
			effects, err := effectsOf(transaction.Type, transaction.AssetID, transaction.ToAssetID, transaction.Amount)
			if err != nil {
				return err
			}
			for _, effect := range reversed(effects) {
				if effect.assetID == assetID {
					continue
				}
				if err := s.ApplyBalanceChange(tx, userID, effect.assetID, effect.delta); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("user_id = ? AND (asset_id = ? OR to_asset_id = ?)", userID, assetID, assetID).
			Delete(&models.AssetTransaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.FixedSaving{}).
			Where("asset_id = ? AND user_id = ?", assetID, userID).
			Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Delete(asset).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return nil
	})
}

// ApplyBalanceChange adds the signed delta to the asset's running balance
// inside the caller's database transaction. The update is expressed against
// the stored value rather than an in-memory copy so that a reverse followed
// by a reapply within one batch composes correctly.
func (s *assetService) ApplyBalanceChange(tx *gorm.DB, userID, assetID string, delta decimal.Decimal) error {
	result := tx.Model(&models.Asset{}).
		Where("id = ? AND user_id = ?", assetID, userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}
