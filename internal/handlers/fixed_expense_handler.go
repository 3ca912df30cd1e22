package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

// FixedExpenseHandler handles recurring expense definition requests.
type FixedExpenseHandler struct {
	fixedExpenseService services.FixedExpenseServicer
	auditService        services.AuditServicer
}

// NewFixedExpenseHandler creates a new FixedExpenseHandler.
func NewFixedExpenseHandler(fixedExpenseService services.FixedExpenseServicer, auditService services.AuditServicer) *FixedExpenseHandler {
	return &FixedExpenseHandler{fixedExpenseService: fixedExpenseService, auditService: auditService}
}

// CreateFixedExpenseRequest represents the request payload for creating a
// fixed expense definition. StartMonth and EndMonth are inclusive "YYYY-MM"
// values; the scheduled day is clamped down on shorter months.
type CreateFixedExpenseRequest struct {
	Title        string          `json:"title" binding:"required,min=1,max=100"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ScheduledDay int             `json:"scheduled_day" binding:"required,min=1,max=31"`
	StartMonth   string          `json:"start_month" binding:"required,month"`
	EndMonth     string          `json:"end_month" binding:"required,month"`
	CategoryID   *string         `json:"category_id"`
}

// UpdateFixedExpenseRequest represents a partial definition update.
type UpdateFixedExpenseRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=100"`
	Amount       *decimal.Decimal `json:"amount"`
	ScheduledDay *int             `json:"scheduled_day" binding:"omitempty,min=1,max=31"`
	StartMonth   *string          `json:"start_month" binding:"omitempty,month"`
	EndMonth     *string          `json:"end_month" binding:"omitempty,month"`
	CategoryID   *string          `json:"category_id"`
}

// CreateFixedExpense handles the creation of a new fixed expense
// @Summary     Create a fixed expense
// @Description Create a recurring expense definition and materialize one expense transaction per covered month.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFixedExpenseRequest true "Fixed expense details"
// @Success     201 {object} models.FixedExpense "Definition created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses [post]
func (h *FixedExpenseHandler) CreateFixedExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	definition, err := h.fixedExpenseService.CreateFixedExpense(userID, services.FixedExpenseFields{
		Title:        req.Title,
		Amount:       req.Amount,
		ScheduledDay: req.ScheduledDay,
		StartMonth:   req.StartMonth,
		EndMonth:     req.EndMonth,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_FIXED_EXPENSE", "fixed_expense", definition.ID, c.ClientIP(),
		map[string]interface{}{"title": req.Title, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"fixed_expense": definition})
}

// GetUserFixedExpenses handles the retrieval of fixed expenses for a user
// @Summary     List fixed expenses
// @Description Get a paginated list of fixed expense definitions for the authenticated user
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.FixedExpense] "Paginated definitions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses [get]
func (h *FixedExpenseHandler) GetUserFixedExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.fixedExpenseService.GetUserFixedExpenses(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFixedExpenseByID handles the retrieval of a single fixed expense
// @Summary     Get fixed expense by ID
// @Description Get a specific fixed expense definition by ID for the authenticated user
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Success     200 {object} models.FixedExpense "Definition details"
// @Failure     400 {object} ErrorResponse "Invalid definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id} [get]
func (h *FixedExpenseHandler) GetFixedExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	definitionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	definition, err := h.fixedExpenseService.GetFixedExpenseByID(userID, definitionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixed_expense": definition})
}

// UpdateFixedExpense handles updating a fixed expense definition
// @Summary     Update fixed expense
// @Description Partially update a fixed expense definition. Rows dated today or later are regenerated from the merged values; elapsed rows stay untouched.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Param       request body UpdateFixedExpenseRequest true "Updated fields"
// @Success     200 {object} models.FixedExpense "Updated definition"
// @Failure     400 {object} ErrorResponse "Invalid input or definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id} [put]
func (h *FixedExpenseHandler) UpdateFixedExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	definitionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateFixedExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	definition, err := h.fixedExpenseService.UpdateFixedExpense(userID, definitionID, services.FixedExpensePatch{
		Title:        req.Title,
		Amount:       req.Amount,
		ScheduledDay: req.ScheduledDay,
		StartMonth:   req.StartMonth,
		EndMonth:     req.EndMonth,
		CategoryID:   req.CategoryID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_FIXED_EXPENSE", "fixed_expense", definitionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"fixed_expense": definition})
}

// DeleteFixedExpense handles deleting a fixed expense definition
// @Summary     Delete fixed expense
// @Description Delete a fixed expense definition and its generated rows dated today or later. Elapsed rows remain as history.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Success     204 "Definition deleted"
// @Failure     400 {object} ErrorResponse "Invalid definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id} [delete]
func (h *FixedExpenseHandler) DeleteFixedExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	definitionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.fixedExpenseService.DeleteFixedExpense(userID, definitionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_FIXED_EXPENSE", "fixed_expense", definitionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ToggleFixedExpenseActive handles flipping a definition's active flag
// @Summary     Toggle fixed expense active
// @Description Toggle a fixed expense between active and inactive. Deactivating removes rows dated today or later; activating regenerates them.
// @Tags        fixed-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Success     200 {object} models.FixedExpense "Toggled definition"
// @Failure     400 {object} ErrorResponse "Invalid definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-expenses/{id}/active [patch]
func (h *FixedExpenseHandler) ToggleFixedExpenseActive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	definitionID, err := pathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	definition, err := h.fixedExpenseService.ToggleFixedExpenseActive(userID, definitionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TOGGLE_FIXED_EXPENSE", "fixed_expense", definitionID, c.ClientIP(),
		map[string]interface{}{"is_active": definition.IsActive})

	c.JSON(http.StatusOK, gin.H{"fixed_expense": definition})
}
