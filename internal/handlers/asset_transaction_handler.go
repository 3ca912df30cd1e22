package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/models"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

// AssetTransactionHandler handles balance-mutating transaction requests.
type AssetTransactionHandler struct {
	transactionService services.AssetTransactionServicer
	auditService       services.AuditServicer
}

// NewAssetTransactionHandler creates a new AssetTransactionHandler.
func NewAssetTransactionHandler(transactionService services.AssetTransactionServicer, auditService services.AuditServicer) *AssetTransactionHandler {
	return &AssetTransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateAssetTransactionRequest represents the request payload for creating
// an asset transaction. Date is an optional "YYYY-MM-DD" string defaulting
// to today. ToAssetID is required for transfers and rejected otherwise.
type CreateAssetTransactionRequest struct {
	AssetID   string          `json:"asset_id" binding:"required"`
	Type      string          `json:"type" binding:"required,asset_transaction_type"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Date      string          `json:"date"`
	Memo      string          `json:"memo" binding:"max=500"`
	ToAssetID *string         `json:"to_asset_id"`
}

// UpdateAssetTransactionRequest represents a partial update. Omitted fields
// keep their stored values.
type UpdateAssetTransactionRequest struct {
	AssetID   *string          `json:"asset_id"`
	Type      *string          `json:"type" binding:"omitempty,asset_transaction_type"`
	Amount    *decimal.Decimal `json:"amount"`
	Date      *string          `json:"date"`
	Memo      *string          `json:"memo" binding:"omitempty,max=500"`
	ToAssetID *string          `json:"to_asset_id"`
}

// AssetTransactionListQuery holds list filters alongside pagination.
type AssetTransactionListQuery struct {
	pagination.PageRequest
	AssetID *string `form:"asset_id"`
}

// CreateAssetTransaction handles the creation of a new asset transaction
// @Summary     Create an asset transaction
// @Description Record a deposit, withdrawal, profit, loss, or transfer. The referenced asset balances move in the same atomic batch.
// @Tags        asset-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAssetTransactionRequest true "Transaction details"
// @Success     201 {object} models.AssetTransaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /asset-transactions [post]
func (h *AssetTransactionHandler) CreateAssetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAssetTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateAssetTransaction(
		userID,
		req.AssetID,
		models.AssetTransactionType(req.Type),
		req.Amount,
		date,
		req.Memo,
		req.ToAssetID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ASSET_TRANSACTION", "asset_transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"asset_id": req.AssetID, "type": req.Type, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListAssetTransactions handles the retrieval of asset transactions
// @Summary     List asset transactions
// @Description Get a paginated list of asset transactions dated on or before today, newest first, optionally filtered by asset.
// @Tags        asset-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       asset_id  query string false "Filter by asset"
// @Success     200 {object} pagination.PageResponse[models.AssetTransaction] "Paginated transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /asset-transactions [get]
func (h *AssetTransactionHandler) ListAssetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query AssetTransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.ListAssetTransactions(userID, query.AssetID, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAssetTransactionByID handles the retrieval of a single asset transaction
// @Summary     Get asset transaction by ID
// @Description Get a specific asset transaction by ID for the authenticated user
// @Tags        asset-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.AssetTransaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /asset-transactions/{id} [get]
func (h *AssetTransactionHandler) GetAssetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetAssetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateAssetTransaction handles rewriting an asset transaction
// @Summary     Update asset transaction
// @Description Partially update an asset transaction. The original balance effects are undone and the new ones applied atomically. System-generated rows are immutable.
// @Tags        asset-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateAssetTransactionRequest true "Updated fields"
// @Success     200 {object} models.AssetTransaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "System-generated record"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /asset-transactions/{id} [put]
func (h *AssetTransactionHandler) UpdateAssetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := services.AssetTransactionPatch{
		AssetID:   req.AssetID,
		Amount:    req.Amount,
		Memo:      req.Memo,
		ToAssetID: req.ToAssetID,
	}
	if req.Type != nil {
		transactionType := models.AssetTransactionType(*req.Type)
		patch.Type = &transactionType
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.Date = &date
	}

	transaction, err := h.transactionService.UpdateAssetTransaction(userID, transactionID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_ASSET_TRANSACTION", "asset_transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteAssetTransaction handles deleting an asset transaction
// @Summary     Delete asset transaction
// @Description Delete an asset transaction, undoing its balance effects including the transfer counter-leg. System-generated rows are immutable.
// @Tags        asset-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "System-generated record"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /asset-transactions/{id} [delete]
func (h *AssetTransactionHandler) DeleteAssetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteAssetTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ASSET_TRANSACTION", "asset_transaction", transactionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
