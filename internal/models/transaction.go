package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of a plain ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeSaving  TransactionType = "saving"
)

// Transaction is a plain ledger entry for income, expense, or saving.
// Unlike AssetTransaction it carries no balance-mutation side effect.
// Rows with IsFixed set were generated from a fixed expense and cannot
// be edited or deleted directly.
type Transaction struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Type       TransactionType `gorm:"not null" json:"type"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Memo       string          `json:"memo"`
	Date       time.Time       `gorm:"type:date;not null;index" json:"date"`
	IsFixed    bool            `gorm:"default:false" json:"is_fixed"`

	// Link back to the generating definition for fixed rows
	FixedExpenseID *string `gorm:"type:uuid;index" json:"fixed_expense_id,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
