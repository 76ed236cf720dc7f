package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/logger"
	"budgetbot/internal/models"
)

// cashflowService owns the single unallocated-cash row.
type cashflowService struct {
	db *gorm.DB
}

// NewCashflowService creates a new CashflowServicer.
func NewCashflowService(db *gorm.DB) CashflowServicer {
	return &cashflowService{db: db}
}

// Init creates the cashflow row with a zero balance if it does not exist yet.
// It is called once at startup; an existing balance is never touched.
func (s *cashflowService) Init() error {
	row := &models.Cashflow{ID: models.CashflowID}
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected > 0 {
		logger.Get().Info("Initialized cashflow balance")
	}
	return nil
}

// GetCashflow returns the current cashflow balance.
func (s *cashflowService) GetCashflow() (*models.Cashflow, error) {
	var cashflow models.Cashflow
	if err := s.db.First(&cashflow, models.CashflowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCashflowNotInitialized
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cashflow, nil
}

// lockCashflow reads the cashflow row for update inside tx.
func lockCashflow(tx *gorm.DB) (*models.Cashflow, error) {
	var cashflow models.Cashflow
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cashflow, models.CashflowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCashflowNotInitialized
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cashflow, nil
}

func saveCashflow(tx *gorm.DB, cashflow *models.Cashflow) error {
	if err := tx.Model(cashflow).Update("balance", cashflow.Balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
