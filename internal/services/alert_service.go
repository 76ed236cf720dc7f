package services

import (
	"gorm.io/gorm"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/models"
	"budgetbot/internal/pagination"
)

// alertService reads alerts raised by the transaction processor.
type alertService struct {
	db *gorm.DB
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB) AlertServicer {
	return &alertService{db: db}
}

// GetAlerts retrieves a paginated list of alerts, newest first.
func (s *alertService) GetAlerts(page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Alert{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var alerts []models.Alert
	if err := s.db.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&alerts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(alerts, page.Page, page.PageSize, totalItems)
	return &result, nil
}
