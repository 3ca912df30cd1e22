package models

import "github.com/shopspring/decimal"

// Goal holds a user's single active savings target. Net worth is computed
// as initial amount + total income - total expense + total asset balances.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"target_amount"`
	InitialAmount decimal.Decimal `gorm:"type:numeric(20,4);not null;default:0" json:"initial_amount"`
}
