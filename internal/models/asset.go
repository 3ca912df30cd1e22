package models

import "github.com/shopspring/decimal"

// AssetType represents the kind of holding an asset tracks
type AssetType string

const (
	AssetTypeSavings    AssetType = "savings"
	AssetTypeDeposit    AssetType = "deposit"
	AssetTypeStock      AssetType = "stock"
	AssetTypeFund       AssetType = "fund"
	AssetTypeCrypto     AssetType = "crypto"
	AssetTypeRealEstate AssetType = "real_estate"
	AssetTypeOther      AssetType = "other"
)

// Asset represents a tracked account or holding with a running balance.
// Balance is a running total kept exactly in sync with the signed amounts
// of all asset transactions referencing the asset; there is no independent
// source of truth.
type Asset struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string          `gorm:"not null" json:"name"`
	Type     AssetType       `gorm:"not null" json:"type"`
	Balance  decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"balance"`
	IsActive bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []AssetTransaction `gorm:"foreignKey:AssetID" json:"transactions,omitempty"`
	FixedSavings []FixedSaving      `gorm:"foreignKey:AssetID" json:"fixed_savings,omitempty"`
}
