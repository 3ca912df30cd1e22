package models

import "github.com/shopspring/decimal"

// FixedExpense is a recurring expense definition. It materializes into one
// Transaction row per covered month at the scheduled day, clamped to the
// month's length. StartMonth and EndMonth are inclusive "YYYY-MM" values.
type FixedExpense struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID   *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Title        string          `gorm:"not null" json:"title"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	ScheduledDay int             `gorm:"not null" json:"scheduled_day"`
	StartMonth   string          `gorm:"type:char(7);not null" json:"start_month"`
	EndMonth     string          `gorm:"type:char(7);not null" json:"end_month"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:FixedExpenseID" json:"transactions,omitempty"`
}
