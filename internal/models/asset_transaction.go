package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetTransactionType represents the kind of balance-mutating event
type AssetTransactionType string

const (
	AssetTransactionTypeDeposit  AssetTransactionType = "deposit"
	AssetTransactionTypeWithdraw AssetTransactionType = "withdraw"
	AssetTransactionTypeProfit   AssetTransactionType = "profit"
	AssetTransactionTypeLoss     AssetTransactionType = "loss"
	AssetTransactionTypeTransfer AssetTransactionType = "transfer"
)

// AssetTransaction represents a balance-mutating event against one asset,
// or two for transfers. Deposit and profit increase the referenced asset's
// balance; withdraw, loss, and transfer decrease it; a transfer additionally
// increases the target asset by the same amount.
//
// Records with IsFixed set were generated from a fixed saving and are
// immutable through user edit paths; only the owning definition's lifecycle
// operations create or remove them.
type AssetTransaction struct {
	Base
	UserID  string               `gorm:"type:uuid;not null;index" json:"user_id"`
	AssetID string               `gorm:"type:uuid;not null;index" json:"asset_id"`
	Type    AssetTransactionType `gorm:"not null" json:"type"`
	Amount  decimal.Decimal      `gorm:"type:numeric(20,4);not null" json:"amount"`
	Date    time.Time            `gorm:"type:date;not null;index" json:"date"`
	Memo    string               `json:"memo"`
	IsFixed bool                 `gorm:"default:false" json:"is_fixed"`

	// For transfers
	ToAssetID *string `gorm:"type:uuid" json:"to_asset_id,omitempty"`

	// Link back to the generating definition for fixed rows
	FixedSavingID *string `gorm:"type:uuid;index" json:"fixed_saving_id,omitempty"`

	// Relationships
	Asset   Asset  `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	ToAsset *Asset `gorm:"foreignKey:ToAssetID" json:"to_asset,omitempty"`
}
