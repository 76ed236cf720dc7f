package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbot/internal/services"
)

// BudgetHandler serves the read-only budget reports.
type BudgetHandler struct {
	budgetService   services.BudgetServicer
	cashflowService services.CashflowServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, cashflowService services.CashflowServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, cashflowService: cashflowService}
}

// GetCurrentBudget handles the current budget snapshot
// @Summary     Current budget
// @Description Envelopes of the latest cycle with remaining amounts and percentage left
// @Tags        budget
// @Produce     json
// @Success     200 {object} services.BudgetSnapshot "Budget snapshot"
// @Failure     404 {object} ErrorResponse "No cycles"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget [get]
func (h *BudgetHandler) GetCurrentBudget(c *gin.Context) {
	snapshot, err := h.budgetService.GetCurrentBudget()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetCycleBudget handles the budget snapshot of one cycle
// @Summary     Cycle budget
// @Tags        budget
// @Produce     json
// @Param       id path string true "Cycle ID"
// @Success     200 {object} services.BudgetSnapshot "Budget snapshot"
// @Failure     400 {object} ErrorResponse "Invalid cycle ID"
// @Failure     404 {object} ErrorResponse "Cycle not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budget/cycles/{id} [get]
func (h *BudgetHandler) GetCycleBudget(c *gin.Context) {
	cycleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	snapshot, err := h.budgetService.GetCycleBudget(cycleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetCashflow handles the unallocated cash balance
// @Summary     Cashflow balance
// @Tags        budget
// @Produce     json
// @Success     200 {object} models.Cashflow "Cashflow balance"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /cashflow [get]
func (h *BudgetHandler) GetCashflow(c *gin.Context) {
	cashflow, err := h.cashflowService.GetCashflow()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cashflow": cashflow})
}
