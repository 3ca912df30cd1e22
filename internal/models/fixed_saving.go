package models

import "github.com/shopspring/decimal"

// FixedSaving is a recurring saving definition. It materializes into one
// deposit AssetTransaction per covered month against the target asset, so
// every generated or removed row also carries its balance effect.
type FixedSaving struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AssetID      string          `gorm:"type:uuid;not null;index" json:"asset_id"`
	Title        string          `gorm:"not null" json:"title"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	ScheduledDay int             `gorm:"not null" json:"scheduled_day"`
	StartMonth   string          `gorm:"type:char(7);not null" json:"start_month"`
	EndMonth     string          `gorm:"type:char(7);not null" json:"end_month"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Asset        Asset              `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
	Transactions []AssetTransaction `gorm:"foreignKey:FixedSavingID" json:"transactions,omitempty"`
}
