package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/pagination"
	"nestegg/internal/services"
)

// FixedSavingHandler handles recurring saving definition requests.
type FixedSavingHandler struct {
	fixedSavingService services.FixedSavingServicer
	auditService       services.AuditServicer
}

// NewFixedSavingHandler creates a new FixedSavingHandler.
func NewFixedSavingHandler(fixedSavingService services.FixedSavingServicer, auditService services.AuditServicer) *FixedSavingHandler {
	return &FixedSavingHandler{fixedSavingService: fixedSavingService, auditService: auditService}
}

// CreateFixedSavingRequest represents the request payload for creating a
// fixed saving definition. Generated rows are deposit asset transactions
// against the target asset.
type CreateFixedSavingRequest struct {
	AssetID      string          `json:"asset_id" binding:"required"`
	Title        string          `json:"title" binding:"required,min=1,max=100"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	ScheduledDay int             `json:"scheduled_day" binding:"required,min=1,max=31"`
	StartMonth   string          `json:"start_month" binding:"required,month"`
	EndMonth     string          `json:"end_month" binding:"required,month"`
}

// UpdateFixedSavingRequest represents a partial definition update.
type UpdateFixedSavingRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=100"`
	Amount       *decimal.Decimal `json:"amount"`
	ScheduledDay *int             `json:"scheduled_day" binding:"omitempty,min=1,max=31"`
	StartMonth   *string          `json:"start_month" binding:"omitempty,month"`
	EndMonth     *string          `json:"end_month" binding:"omitempty,month"`
}

// CreateFixedSaving handles the creation of a new fixed saving
// @Summary     Create a fixed saving
// @Description Create a recurring saving definition and materialize one deposit asset transaction per covered month, crediting the target asset.
// @Tags        fixed-savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateFixedSavingRequest true "Fixed saving details"
// @Success     201 {object} models.FixedSaving "Definition created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-savings [post]
func (h *FixedSavingHandler) CreateFixedSaving(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateFixedSavingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	definition, err := h.fixedSavingService.CreateFixedSaving(userID, services.FixedSavingFields{
		AssetID:      req.AssetID,
		Title:        req.Title,
		Amount:       req.Amount,
		ScheduledDay: req.ScheduledDay,
		StartMonth:   req.StartMonth,
		EndMonth:     req.EndMonth,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_FIXED_SAVING", "fixed_saving", definition.ID, c.ClientIP(),
		map[string]interface{}{"title": req.Title, "amount": req.Amount, "asset_id": req.AssetID})

	c.JSON(http.StatusCreated, gin.H{"fixed_saving": definition})
}

// GetUserFixedSavings handles the retrieval of fixed savings for a user
// @Summary     List fixed savings
// @Description Get a paginated list of fixed saving definitions for the authenticated user
// @Tags        fixed-savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.FixedSaving] "Paginated definitions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-savings [get]
func (h *FixedSavingHandler) GetUserFixedSavings(c *gin.Context) {
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

	result, err := h.fixedSavingService.GetUserFixedSavings(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFixedSavingByID handles the retrieval of a single fixed saving
// @Summary     Get fixed saving by ID
// @Description Get a specific fixed saving definition by ID for the authenticated user
// @Tags        fixed-savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Success     200 {object} models.FixedSaving "Definition details"
// @Failure     400 {object} ErrorResponse "Invalid definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-savings/{id} [get]
func (h *FixedSavingHandler) GetFixedSavingByID(c *gin.Context) {
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

	definition, err := h.fixedSavingService.GetFixedSavingByID(userID, definitionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fixed_saving": definition})
}

// UpdateFixedSaving handles updating a fixed saving definition
// @Summary     Update fixed saving
// @Description Partially update a fixed saving definition. Rows dated today or later are regenerated from the merged values and the asset balance adjusted; elapsed rows stay untouched.
// @Tags        fixed-savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Param       request body UpdateFixedSavingRequest true "Updated fields"
// @Success     200 {object} models.FixedSaving "Updated definition"
// @Failure     400 {object} ErrorResponse "Invalid input or definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-savings/{id} [put]
func (h *FixedSavingHandler) UpdateFixedSaving(c *gin.Context) {
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

	var req UpdateFixedSavingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	definition, err := h.fixedSavingService.UpdateFixedSaving(userID, definitionID, services.FixedSavingPatch{
		Title:        req.Title,
		Amount:       req.Amount,
		ScheduledDay: req.ScheduledDay,
		StartMonth:   req.StartMonth,
		EndMonth:     req.EndMonth,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_FIXED_SAVING", "fixed_saving", definitionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"fixed_saving": definition})
}

// DeleteFixedSaving handles deleting a fixed saving definition
// @Summary     Delete fixed saving
// @Description Delete a fixed saving definition and its generated rows dated today or later, debiting the asset for the removed deposits.
// @Tags        fixed-savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Success     204 "Definition deleted"
// @Failure     400 {object} ErrorResponse "Invalid definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-savings/{id} [delete]
func (h *FixedSavingHandler) DeleteFixedSaving(c *gin.Context) {
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

	if err := h.fixedSavingService.DeleteFixedSaving(userID, definitionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_FIXED_SAVING", "fixed_saving", definitionID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}

// ToggleFixedSavingActive handles flipping a definition's active flag
// @Summary     Toggle fixed saving active
// @Description Toggle a fixed saving between active and inactive. Deactivating removes rows dated today or later and debits the asset; activating regenerates them.
// @Tags        fixed-savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Definition ID"
// @Success     200 {object} models.FixedSaving "Toggled definition"
// @Failure     400 {object} ErrorResponse "Invalid definition ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Definition not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fixed-savings/{id}/active [patch]
func (h *FixedSavingHandler) ToggleFixedSavingActive(c *gin.Context) {
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

	definition, err := h.fixedSavingService.ToggleFixedSavingActive(userID, definitionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TOGGLE_FIXED_SAVING", "fixed_saving", definitionID, c.ClientIP(),
		map[string]interface{}{"is_active": definition.IsActive})

	c.JSON(http.StatusOK, gin.H{"fixed_saving": definition})
}
