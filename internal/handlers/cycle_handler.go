package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
	"budgetbot/internal/services"
)

// CycleHandler handles pay cycle requests.
type CycleHandler struct {
	cycleService services.CycleServicer
	auditService services.AuditServicer
}

// NewCycleHandler creates a new CycleHandler.
func NewCycleHandler(cycleService services.CycleServicer, auditService services.AuditServicer) *CycleHandler {
	return &CycleHandler{cycleService: cycleService, auditService: auditService}
}

// CreateCycleRequest represents the request payload for creating a cycle
type CreateCycleRequest struct {
	PayAmount *money.Money `json:"pay_amount" binding:"required,money" swaggertype:"string" example:"2500.00"`
	StartDate string       `json:"start_date" binding:"required,iso_date" example:"2024-03-01"`
}

// CreateCycle handles creating a pay cycle
// @Summary     Create a cycle
// @Description Start a pay cycle and allocate one envelope per category. A month holds at most two cycles.
// @Tags        cycles
// @Accept      json
// @Produce     json
// @Param       request body CreateCycleRequest true "Cycle details"
// @Success     201 {object} models.Cycle "Cycle created with its envelopes"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Month already has two cycles"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles [post]
func (h *CycleHandler) CreateCycle(c *gin.Context) {
	var req CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must be YYYY-MM-DD"))
		return
	}

	cycle, err := h.cycleService.CreateCycle(startDate, *req.PayAmount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_CYCLE", "cycle", cycle.ID, c.ClientIP(),
		map[string]interface{}{"start_date": req.StartDate, "pay_amount": cycle.PayAmount.String(), "ordinal": cycle.Ordinal})

	c.JSON(http.StatusCreated, gin.H{"cycle": cycle})
}

// GetCycles handles listing cycles
// @Summary     List cycles
// @Description Get a paginated list of cycles, newest first
// @Tags        cycles
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Cycle] "Paginated cycles"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles [get]
func (h *CycleHandler) GetCycles(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.cycleService.GetCycles(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCycleByID handles the retrieval of a cycle with its envelopes
// @Summary     Get cycle by ID
// @Tags        cycles
// @Produce     json
// @Param       id path string true "Cycle ID"
// @Success     200 {object} models.Cycle "Cycle with envelopes"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id} [get]
func (h *CycleHandler) GetCycleByID(c *gin.Context) {
	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	cycle, err := h.cycleService.GetCycleByID(cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cycle": cycle})
}

// DeleteCycle handles deleting a cycle
// @Summary     Delete cycle
// @Description Delete a cycle together with its envelopes, transactions and alerts. The cashflow balance is not adjusted.
// @Tags        cycles
// @Produce     json
// @Param       id path string true "Cycle ID"
// @Success     200 {object} MessageResponse "Cycle deleted"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cycles/{id} [delete]
func (h *CycleHandler) DeleteCycle(c *gin.Context) {
	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cycleService.DeleteCycle(cycleID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_CYCLE", "cycle", cycleID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Cycle deleted successfully"})
}
