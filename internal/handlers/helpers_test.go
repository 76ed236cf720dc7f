package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
	"budgetbot/internal/services"
	"budgetbot/internal/validator"
)

// --- mock services ---

type mockCategoryService struct {
	createCategoryFn  func(name string, monthlyBudget money.Money, isRent *bool) (*models.Category, error)
	getCategoriesFn   func(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn func(categoryID string) (*models.Category, error)
	updateCategoryFn  func(categoryID string, monthlyBudget *money.Money, isRent *bool) (*models.Category, error)
	deleteCategoryFn  func(categoryID string) error
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func (m *mockCategoryService) CreateCategory(name string, monthlyBudget money.Money, isRent *bool) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(name, monthlyBudget, isRent)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn(page)
	}
	result := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &result, nil
}

func (m *mockCategoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(categoryID string, monthlyBudget *money.Money, isRent *bool) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(categoryID, monthlyBudget, isRent)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(categoryID)
	}
	return nil
}

type mockCycleService struct {
	createCycleFn  func(startDate time.Time, payAmount money.Money) (*models.Cycle, error)
	getCyclesFn    func(page pagination.PageRequest) (*pagination.PageResponse[models.Cycle], error)
	getCycleByIDFn func(cycleID string) (*models.Cycle, error)
	deleteCycleFn  func(cycleID string) error
}

var _ services.CycleServicer = (*mockCycleService)(nil)

func (m *mockCycleService) CreateCycle(startDate time.Time, payAmount money.Money) (*models.Cycle, error) {
	if m.createCycleFn != nil {
		return m.createCycleFn(startDate, payAmount)
	}
	return &models.Cycle{}, nil
}

func (m *mockCycleService) GetCycles(page pagination.PageRequest) (*pagination.PageResponse[models.Cycle], error) {
	if m.getCyclesFn != nil {
		return m.getCyclesFn(page)
	}
	result := pagination.NewPageResponse([]models.Cycle{}, 1, 20, 0)
	return &result, nil
}

func (m *mockCycleService) GetCycleByID(cycleID string) (*models.Cycle, error) {
	if m.getCycleByIDFn != nil {
		return m.getCycleByIDFn(cycleID)
	}
	return &models.Cycle{}, nil
}

func (m *mockCycleService) DeleteCycle(cycleID string) error {
	if m.deleteCycleFn != nil {
		return m.deleteCycleFn(cycleID)
	}
	return nil
}

type mockTransactionService struct {
	applyTransactionFn   func(in services.TransactionInput) (*models.Transaction, error)
	getTransactionsFn    func(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn func(transactionID string) (*models.Transaction, error)
	reverseTransactionFn func(transactionID string) error
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func (m *mockTransactionService) ApplyTransaction(in services.TransactionInput) (*models.Transaction, error) {
	if m.applyTransactionFn != nil {
		return m.applyTransactionFn(in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactions(page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getTransactionsFn != nil {
		return m.getTransactionsFn(page, filter)
	}
	result := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &result, nil
}

func (m *mockTransactionService) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) ReverseTransaction(transactionID string) error {
	if m.reverseTransactionFn != nil {
		return m.reverseTransactionFn(transactionID)
	}
	return nil
}

type mockBudgetService struct {
	getCurrentBudgetFn func() (*services.BudgetSnapshot, error)
	getCycleBudgetFn   func(cycleID string) (*services.BudgetSnapshot, error)
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func (m *mockBudgetService) GetCurrentBudget() (*services.BudgetSnapshot, error) {
	if m.getCurrentBudgetFn != nil {
		return m.getCurrentBudgetFn()
	}
	return &services.BudgetSnapshot{}, nil
}

func (m *mockBudgetService) GetCycleBudget(cycleID string) (*services.BudgetSnapshot, error) {
	if m.getCycleBudgetFn != nil {
		return m.getCycleBudgetFn(cycleID)
	}
	return &services.BudgetSnapshot{}, nil
}

type mockCashflowService struct {
	getCashflowFn func() (*models.Cashflow, error)
}

var _ services.CashflowServicer = (*mockCashflowService)(nil)

func (m *mockCashflowService) Init() error { return nil }

func (m *mockCashflowService) GetCashflow() (*models.Cashflow, error) {
	if m.getCashflowFn != nil {
		return m.getCashflowFn()
	}
	return &models.Cashflow{}, nil
}

type mockAlertService struct {
	getAlertsFn func(page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error)
}

var _ services.AlertServicer = (*mockAlertService)(nil)

func (m *mockAlertService) GetAlerts(page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error) {
	if m.getAlertsFn != nil {
		return m.getAlertsFn(page)
	}
	result := pagination.NewPageResponse([]models.Alert{}, 1, 20, 0)
	return &result, nil
}

type mockAuditService struct {
	actions []string
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Log(action, _, _, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, action)
}

// --- test helpers ---

const (
	testCategoryID    = "0190a0c4-1111-7000-8000-000000000001"
	testCycleID       = "0190a0c4-2222-7000-8000-000000000002"
	testTransactionID = "0190a0c4-3333-7000-8000-000000000003"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
