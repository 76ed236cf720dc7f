package services

import (
	"time"

	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
)

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(name string, monthlyBudget money.Money, isRent *bool) (*models.Category, error)
	GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	UpdateCategory(categoryID string, monthlyBudget *money.Money, isRent *bool) (*models.Category, error)
	DeleteCategory(categoryID string) error
}

// CycleServicer defines the contract for pay cycles and their allocation.
type CycleServicer interface {
	CreateCycle(startDate time.Time, payAmount money.Money) (*models.Cycle, error)
	GetCycles(page pagination.PageRequest) (*pagination.PageResponse[models.Cycle], error)
	GetCycleByID(cycleID string) (*models.Cycle, error)
	DeleteCycle(cycleID string) error
}

// TransactionInput carries the fields of a transaction to apply.
type TransactionInput struct {
	CycleID     string
	CategoryID  *string
	Kind        models.TransactionKind
	Amount      money.Money
	Description string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	CycleID    *string
	CategoryID *string
	Kind       *models.TransactionKind
}

// TransactionServicer defines the contract for applying and reversing transactions.
type TransactionServicer interface {
	ApplyTransaction(in TransactionInput) (*models.Transaction, error)
	GetTransactions(page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	ReverseTransaction(transactionID string) error
}

// EnvelopeSnapshot is one category line of a budget snapshot.
type EnvelopeSnapshot struct {
	CategoryID     string      `json:"category_id"`
	Category       string      `json:"category"`
	IsRent         bool        `json:"is_rent"`
	Initial        money.Money `json:"initial"`
	Remaining      money.Money `json:"remaining"`
	PercentageLeft string      `json:"percentage_left"`
}

// BudgetSnapshot is the read-only view of one cycle's envelopes.
type BudgetSnapshot struct {
	CycleID        string             `json:"cycle_id"`
	StartDate      string             `json:"start_date"`
	PayAmount      money.Money        `json:"pay_amount"`
	TotalInitial   money.Money        `json:"total_initial"`
	TotalRemaining money.Money        `json:"total_remaining"`
	Envelopes      []EnvelopeSnapshot `json:"envelopes"`
}

// BudgetServicer defines the contract for budget reporting.
type BudgetServicer interface {
	GetCurrentBudget() (*BudgetSnapshot, error)
	GetCycleBudget(cycleID string) (*BudgetSnapshot, error)
}

// CashflowServicer defines the contract for the unallocated cash balance.
type CashflowServicer interface {
	Init() error
	GetCashflow() (*models.Cashflow, error)
}

// AlertServicer defines the contract for reading budget alerts.
type AlertServicer interface {
	GetAlerts(page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
