package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nestegg/internal/models"
	"nestegg/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AssetUpdateFields holds optional fields for a partial asset update.
type AssetUpdateFields struct {
	Name     *string
	Type     *models.AssetType
	IsActive *bool
}

// AssetServicer defines the contract for asset-related business logic.
// ApplyBalanceChange is the balance ledger primitive: it adds the signed
// delta to the asset's running balance and must always be called inside
// the same database transaction as the record write it accounts for.
type AssetServicer interface {
	CreateAsset(userID, name string, assetType models.AssetType, initialBalance decimal.Decimal) (*models.Asset, error)
	GetUserAssets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	GetAssetByID(userID, assetID string) (*models.Asset, error)
	UpdateAsset(userID, assetID string, fields AssetUpdateFields) (*models.Asset, error)
	DeleteAsset(userID, assetID string) error
	ApplyBalanceChange(tx *gorm.DB, userID, assetID string, delta decimal.Decimal) error
}

// AssetTransactionPatch holds optional fields for a partial asset
// transaction update. A nil field leaves the stored value unchanged.
// ToAssetID is cleared automatically when the merged type is not transfer.
type AssetTransactionPatch struct {
	AssetID   *string
	Type      *models.AssetTransactionType
	Amount    *decimal.Decimal
	Date      *time.Time
	Memo      *string
	ToAssetID *string
}

// AssetTransactionServicer defines the contract for balance-mutating
// transaction business logic. Every mutation applies its balance effects
// and the record write as one atomic unit.
type AssetTransactionServicer interface {
	CreateAssetTransaction(userID, assetID string, transactionType models.AssetTransactionType, amount decimal.Decimal, date time.Time, memo string, toAssetID *string) (*models.AssetTransaction, error)
	UpdateAssetTransaction(userID, transactionID string, patch AssetTransactionPatch) (*models.AssetTransaction, error)
	DeleteAssetTransaction(userID, transactionID string) error
	ListAssetTransactions(userID string, assetID *string, page pagination.PageRequest) (*pagination.PageResponse[models.AssetTransaction], error)
	GetAssetTransactionByID(userID, transactionID string) (*models.AssetTransaction, error)
}

// FixedExpenseFields holds the definition fields for creating a fixed expense.
type FixedExpenseFields struct {
	Title        string
	Amount       decimal.Decimal
	ScheduledDay int
	StartMonth   string
	EndMonth     string
	CategoryID   *string
}

// FixedExpensePatch holds optional fields for a partial definition update.
type FixedExpensePatch struct {
	Title        *string
	Amount       *decimal.Decimal
	ScheduledDay *int
	StartMonth   *string
	EndMonth     *string
	CategoryID   *string
}

// FixedExpenseServicer defines the contract for recurring expense
// definitions and their materialized transaction rows.
type FixedExpenseServicer interface {
	CreateFixedExpense(userID string, fields FixedExpenseFields) (*models.FixedExpense, error)
	UpdateFixedExpense(userID, definitionID string, patch FixedExpensePatch) (*models.FixedExpense, error)
	DeleteFixedExpense(userID, definitionID string) error
	ToggleFixedExpenseActive(userID, definitionID string) (*models.FixedExpense, error)
	GetUserFixedExpenses(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.FixedExpense], error)
	GetFixedExpenseByID(userID, definitionID string) (*models.FixedExpense, error)
}

// FixedSavingFields holds the definition fields for creating a fixed saving.
type FixedSavingFields struct {
	AssetID      string
	Title        string
	Amount       decimal.Decimal
	ScheduledDay int
	StartMonth   string
	EndMonth     string
}

// FixedSavingPatch holds optional fields for a partial definition update.
type FixedSavingPatch struct {
	Title        *string
	Amount       *decimal.Decimal
	ScheduledDay *int
	StartMonth   *string
	EndMonth     *string
}

// FixedSavingServicer defines the contract for recurring saving
// definitions. Materialized rows are deposit asset transactions, so every
// generation and removal also adjusts the target asset's balance in the
// same atomic batch.
type FixedSavingServicer interface {
	CreateFixedSaving(userID string, fields FixedSavingFields) (*models.FixedSaving, error)
	UpdateFixedSaving(userID, definitionID string, patch FixedSavingPatch) (*models.FixedSaving, error)
	DeleteFixedSaving(userID, definitionID string) error
	ToggleFixedSavingActive(userID, definitionID string) (*models.FixedSaving, error)
	GetUserFixedSavings(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.FixedSaving], error)
	GetFixedSavingByID(userID, definitionID string) (*models.FixedSaving, error)
}

// TransactionPatch holds optional fields for a partial transaction update.
type TransactionPatch struct {
	Type       *models.TransactionType
	Amount     *decimal.Decimal
	Date       *time.Time
	Memo       *string
	CategoryID *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Month      *string
	Type       *models.TransactionType
	CategoryID *string
}

// MonthlySummary aggregates plain transactions for one month.
type MonthlySummary struct {
	Month        string          `json:"month"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	TotalSaving  decimal.Decimal `json:"total_saving"`
}

// TransactionServicer defines the contract for plain ledger entries
// (income/expense/saving) with no balance side effect.
type TransactionServicer interface {
	CreateTransaction(userID string, transactionType models.TransactionType, amount decimal.Decimal, date time.Time, memo string, categoryID *string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, patch TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	GetMonthlySummary(userID, month string) (*MonthlySummary, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// NetWorthSummary aggregates the user's overall financial position.
type NetWorthSummary struct {
	TargetAmount  decimal.Decimal `json:"target_amount"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpense  decimal.Decimal `json:"total_expense"`
	TotalAssets   decimal.Decimal `json:"total_assets"`
	NetWorth      decimal.Decimal `json:"net_worth"`
}

// GoalServicer defines the contract for the user's savings goal.
type GoalServicer interface {
	SetGoal(userID string, targetAmount, initialAmount decimal.Decimal) (*models.Goal, error)
	GetGoal(userID string) (*models.Goal, error)
	GetNetWorth(userID string) (*NetWorthSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
