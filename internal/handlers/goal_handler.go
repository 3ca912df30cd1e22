package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "nestegg/internal/errors"
	"nestegg/internal/services"
)

// GoalHandler handles savings goal and net worth requests.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// SetGoalRequest represents the request payload for setting the savings goal
type SetGoalRequest struct {
	TargetAmount  decimal.Decimal `json:"target_amount" binding:"required"`
	InitialAmount decimal.Decimal `json:"initial_amount"`
}

// SetGoal handles creating or replacing the user's savings goal
// @Summary     Set savings goal
// @Description Create or replace the authenticated user's single savings goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetGoalRequest true "Goal details"
// @Success     200 {object} models.Goal "Goal set"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goal [put]
func (h *GoalHandler) SetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.SetGoal(userID, req.TargetAmount, req.InitialAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"target_amount": req.TargetAmount})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// GetGoal handles the retrieval of the user's savings goal
// @Summary     Get savings goal
// @Description Get the authenticated user's savings goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Goal "Goal details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not set"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goal [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoal(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// GetNetWorth handles the computation of the user's net worth
// @Summary     Get net worth
// @Description Get the authenticated user's net worth: initial amount + total income - total expense + total asset balances.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.NetWorthSummary "Net worth summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /net-worth [get]
func (h *GoalHandler) GetNetWorth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.goalService.GetNetWorth(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"net_worth": summary})
}
