package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
	"budgetbot/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	CycleID     string                 `json:"cycle_id" binding:"required,uuid"`
	CategoryID  *string                `json:"category_id" binding:"omitempty,uuid"`
	Kind        models.TransactionKind `json:"kind" binding:"omitempty,transaction_kind" enums:"expense,rent_expense,paycheck,atm"`
	Amount      *money.Money           `json:"amount" binding:"required,positive_money" swaggertype:"string" example:"30.00"`
	Description string                 `json:"description" binding:"max=500"`
}

// CreateTransaction handles applying a new transaction
// @Summary     Create a transaction
// @Description Apply an expense, rent expense, paycheck or ATM withdrawal to a cycle. Overspending is allowed and raises an alert.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input, or cycle or envelope missing"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.ApplyTransaction(services.TransactionInput{
		CycleID:     req.CycleID,
		CategoryID:  req.CategoryID,
		Kind:        req.Kind,
		Amount:      *req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondWithError(c, asBadReference(err))
		return
	}

	h.auditService.Log("CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"kind": transaction.Kind, "amount": transaction.Amount.String(), "cycle_id": transaction.CycleID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions handles listing transactions
// @Summary     List transactions
// @Description Get a paginated list of transactions, newest first, with optional filters
// @Tags        transactions
// @Produce     json
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       cycle_id    query string false "Filter by cycle ID"
// @Param       category_id query string false "Filter by category ID"
// @Param       kind        query string false "Filter by kind (expense, rent_expense, paycheck, atm)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetTransactions(page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// asBadReference turns a missing cycle or envelope into a 400: the reference
// came from the request body, not the URL.
func asBadReference(err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if appErr.Code != apperrors.ErrCycleNotFound.Code && appErr.Code != apperrors.ErrEnvelopeNotFound.Code {
		return err
	}
	return &apperrors.AppError{
		Code:       appErr.Code,
		Message:    appErr.Message,
		StatusCode: http.StatusBadRequest,
		Internal:   appErr.Internal,
	}
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.CycleID, err = parseQueryID(c, "cycle_id"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = parseQueryID(c, "category_id"); err != nil {
		return filter, err
	}

	if v := c.Query("kind"); v != "" {
		kind := models.TransactionKind(v)
		if !kind.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid kind, use expense, rent_expense, paycheck or atm")
		}
		filter.Kind = &kind
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles reversing and deleting a transaction
// @Summary     Delete transaction
// @Description Reverse a transaction's effect on its envelope and the cashflow balance, then delete it. Envelope resets done by a paycheck are not undone.
// @Tags        transactions
// @Produce     json
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.ReverseTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
