package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"budgetbot/internal/config"
	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
)

const maxCategoryNameLength = 100

// categoryService handles category-related business logic.
type categoryService struct {
	db           *gorm.DB
	deletePolicy config.CategoryDeletePolicy
}

// NewCategoryService creates a new CategoryServicer. deletePolicy decides
// whether deleting a referenced category is rejected or cascades.
func NewCategoryService(db *gorm.DB, deletePolicy config.CategoryDeletePolicy) CategoryServicer {
	if deletePolicy == "" {
		deletePolicy = config.DeleteRestrict
	}
	return &categoryService{db: db, deletePolicy: deletePolicy}
}

// CreateCategory creates a new category. When isRent is nil the rent flag is
// inferred from the name. Existing cycles do not get an envelope for it.
func (s *categoryService) CreateCategory(name string, monthlyBudget money.Money, isRent *bool) (*models.Category, error) {
	// Validate input
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if len(name) > maxCategoryNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name must be at most 100 characters")
	}
	if monthlyBudget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly budget must not be negative")
	}

	// Check if a category with the same name already exists
	var count int64
	if err := s.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	rent := models.LooksLikeRent(name)
	if isRent != nil {
		rent = *isRent
	}
	if rent {
		if err := ensureNoRentCategory(s.db, ""); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:          name,
		MonthlyBudget: monthlyBudget,
		IsRent:        rent,
	}

	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrDuplicateCategory, err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories retrieves a paginated list of categories ordered by name.
func (s *categoryService) GetCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Category{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := s.db.Scopes(pagination.Paginate(page)).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory changes the monthly budget and/or rent flag. Envelopes
// already allocated keep their amounts.
func (s *categoryService) UpdateCategory(categoryID string, monthlyBudget *money.Money, isRent *bool) (*models.Category, error) {
	if monthlyBudget != nil && monthlyBudget.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "monthly budget must not be negative")
	}

	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if monthlyBudget != nil {
		updates["monthly_budget"] = *monthlyBudget
		category.MonthlyBudget = *monthlyBudget
	}
	if isRent != nil {
		if *isRent && !category.IsRent {
			if err := ensureNoRentCategory(s.db, categoryID); err != nil {
				return nil, err
			}
		}
		updates["is_rent"] = *isRent
		category.IsRent = *isRent
	}

	if len(updates) > 0 {
		if err := s.db.Model(&models.Category{}).Where("id = ?", categoryID).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// ensureNoRentCategory fails with ErrRentCategoryExists when a category other
// than exceptID is already flagged as rent.
func ensureNoRentCategory(db *gorm.DB, exceptID string) error {
	query := db.Model(&models.Category{}).Where("is_rent = ?", true)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrRentCategoryExists
	}
	return nil
}

// DeleteCategory deletes a category. Under the restrict policy a category
// that envelopes or transactions still reference is rejected; under the
// cascade policy those rows and their alerts are deleted with it.
func (s *categoryService) DeleteCategory(categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("id = ?", categoryID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if s.deletePolicy == config.DeleteRestrict {
			for _, model := range []interface{}{&models.Envelope{}, &models.Transaction{}} {
				var refs int64
				if err := tx.Model(model).Where("category_id = ?", categoryID).Count(&refs).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				if refs > 0 {
					return apperrors.ErrCategoryInUse
				}
			}
		} else {
			for _, model := range []interface{}{&models.Alert{}, &models.Transaction{}, &models.Envelope{}} {
				if err := tx.Where("category_id = ?", categoryID).Delete(model).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
		}

		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
