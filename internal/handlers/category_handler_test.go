package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
)

func setupCategoryRouter(svc *mockCategoryService, audit *mockAuditService) *gin.Engine {
	r := gin.New()
	h := NewCategoryHandler(svc, audit)
	r.POST("/categories", h.CreateCategory)
	r.GET("/categories", h.GetCategories)
	r.GET("/categories/:id", h.GetCategoryByID)
	r.PUT("/categories/:id", h.UpdateCategory)
	r.DELETE("/categories/:id", h.DeleteCategory)
	return r
}

func TestCreateCategoryHandler(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotName string
		var gotBudget money.Money
		var gotRent *bool
		svc := &mockCategoryService{
			createCategoryFn: func(name string, monthlyBudget money.Money, isRent *bool) (*models.Category, error) {
				gotName, gotBudget, gotRent = name, monthlyBudget, isRent
				return &models.Category{
					Base:          models.Base{ID: testCategoryID},
					Name:          name,
					MonthlyBudget: monthlyBudget,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(svc, audit)

		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Groceries","monthly_budget":"200.00"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		if gotName != "Groceries" || gotBudget.String() != "200.00" || gotRent != nil {
			t.Errorf("unexpected service args: %q %s %v", gotName, gotBudget, gotRent)
		}

		result := parseJSON(t, rec)
		category := result["category"].(map[string]interface{})
		if category["monthly_budget"] != "200.00" {
			t.Errorf("expected monthly_budget \"200.00\", got %v", category["monthly_budget"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "CREATE_CATEGORY" {
			t.Errorf("expected CREATE_CATEGORY audit entry, got %v", audit.actions)
		}
	})

	t.Run("accepts a bare number budget and explicit rent flag", func(t *testing.T) {
		var gotRent *bool
		svc := &mockCategoryService{
			createCategoryFn: func(name string, monthlyBudget money.Money, isRent *bool) (*models.Category, error) {
				gotRent = isRent
				return &models.Category{Name: name, MonthlyBudget: monthlyBudget}, nil
			},
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Housing","monthly_budget":1800,"is_rent":true}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotRent == nil || !*gotRent {
			t.Error("expected is_rent=true to reach the service")
		}
	})

	t.Run("returns 400 when name is missing", func(t *testing.T) {
		r := setupCategoryRouter(&mockCategoryService{}, &mockAuditService{})

		rec := doRequest(r, http.MethodPost, "/categories", `{"monthly_budget":"200.00"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 for a negative budget", func(t *testing.T) {
		r := setupCategoryRouter(&mockCategoryService{}, &mockAuditService{})

		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Groceries","monthly_budget":"-5.00"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 for more than two decimals", func(t *testing.T) {
		r := setupCategoryRouter(&mockCategoryService{}, &mockAuditService{})

		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Groceries","monthly_budget":"10.005"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 when a rent category already exists", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(string, money.Money, *bool) (*models.Category, error) {
				return nil, apperrors.ErrRentCategoryExists
			},
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Flat","monthly_budget":"900.00","is_rent":true}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "RENT_CATEGORY_EXISTS")
	})

	t.Run("returns 400 on duplicate name", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(string, money.Money, *bool) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(svc, audit)

		rec := doRequest(r, http.MethodPost, "/categories", `{"name":"Groceries","monthly_budget":"200.00"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
		if len(audit.actions) != 0 {
			t.Errorf("expected no audit entry, got %v", audit.actions)
		}
	})
}

func TestGetCategoriesHandler(t *testing.T) {
	t.Run("returns paginated categories", func(t *testing.T) {
		var gotPage pagination.PageRequest
		svc := &mockCategoryService{
			getCategoriesFn: func(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				gotPage = page
				result := pagination.NewPageResponse([]models.Category{{Name: "Groceries"}}, 2, 5, 6)
				return &result, nil
			},
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodGet, "/categories?page=2&page_size=5", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2 size 5, got %+v", gotPage)
		}

		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 1 {
			t.Errorf("expected 1 category, got %d", len(data))
		}
	})
}

func TestGetCategoryByIDHandler(t *testing.T) {
	t.Run("returns 200 with category", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(id string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: id}, Name: "Groceries"}, nil
			},
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodGet, "/categories/"+testCategoryID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["id"] != testCategoryID {
			t.Errorf("expected id %s, got %v", testCategoryID, category["id"])
		}
	})

	t.Run("returns 400 for malformed id", func(t *testing.T) {
		r := setupCategoryRouter(&mockCategoryService{}, &mockAuditService{})

		rec := doRequest(r, http.MethodGet, "/categories/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodGet, "/categories/"+testCategoryID, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateCategoryHandler(t *testing.T) {
	t.Run("passes only supplied fields", func(t *testing.T) {
		var gotBudget *money.Money
		var gotRent *bool
		svc := &mockCategoryService{
			updateCategoryFn: func(id string, monthlyBudget *money.Money, isRent *bool) (*models.Category, error) {
				gotBudget, gotRent = monthlyBudget, isRent
				return &models.Category{Base: models.Base{ID: id}, MonthlyBudget: *monthlyBudget}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(svc, audit)

		rec := doRequest(r, http.MethodPut, "/categories/"+testCategoryID, `{"monthly_budget":"250.00"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotBudget == nil || gotBudget.String() != "250.00" {
			t.Errorf("expected budget 250.00, got %v", gotBudget)
		}
		if gotRent != nil {
			t.Errorf("expected nil rent flag, got %v", *gotRent)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "UPDATE_CATEGORY" {
			t.Errorf("expected UPDATE_CATEGORY audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(string, *money.Money, *bool) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodPut, "/categories/"+testCategoryID, `{"is_rent":true}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestDeleteCategoryHandler(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotID string
		svc := &mockCategoryService{
			deleteCategoryFn: func(id string) error {
				gotID = id
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(svc, audit)

		rec := doRequest(r, http.MethodDelete, "/categories/"+testCategoryID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != testCategoryID {
			t.Errorf("expected id %s, got %s", testCategoryID, gotID)
		}
		if parseJSON(t, rec)["message"] != "Category deleted successfully" {
			t.Errorf("unexpected message: %s", rec.Body.String())
		}
		if len(audit.actions) != 1 || audit.actions[0] != "DELETE_CATEGORY" {
			t.Errorf("expected DELETE_CATEGORY audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 409 when category is in use", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(string) error { return apperrors.ErrCategoryInUse },
		}
		r := setupCategoryRouter(svc, &mockAuditService{})

		rec := doRequest(r, http.MethodDelete, "/categories/"+testCategoryID, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_IN_USE")
	})
}
