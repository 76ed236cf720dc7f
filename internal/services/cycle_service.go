package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/events"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
	"budgetbot/internal/pagination"
	"budgetbot/internal/uuid"
)

// cycleService handles pay cycles and their envelope allocation.
type cycleService struct {
	db        *gorm.DB
	publisher events.Publisher
}

// NewCycleService creates a new CycleServicer.
func NewCycleService(db *gorm.DB, publisher events.Publisher) CycleServicer {
	return &cycleService{db: db, publisher: publisher}
}

// CreateCycle creates a cycle starting on startDate and allocates one
// envelope per category. The cycle and its envelopes are committed together.
func (s *cycleService) CreateCycle(startDate time.Time, payAmount money.Money) (*models.Cycle, error) {
	if startDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}
	if payAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "pay amount must not be negative")
	}

	year, month, day := startDate.Date()
	cycle := &models.Cycle{
		Base:      models.Base{ID: uuid.New()},
		StartDate: time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		PayAmount: payAmount,
		Year:      year,
		Month:     int(month),
	}

	// A concurrent request may take the computed ordinal between the read and
	// the insert. The second attempt sees that cycle and allocates after it.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			return allocateCycle(tx, cycle)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Wrap(apperrors.ErrCycleMonthFull, err)
		}
		return nil, err
	}

	events.Notify(context.Background(), s.publisher, cycleAllocatedEvent(cycle))
	return cycle, nil
}

// allocateCycle computes the envelopes and ordinal of cycle against the
// categories and same-month cycles visible in tx, then inserts them. A lost
// race for the ordinal is returned as gorm.ErrDuplicatedKey.
func allocateCycle(tx *gorm.DB, cycle *models.Cycle) error {
	var categories []models.Category
	if err := tx.Order("name ASC").Find(&categories).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	existing, err := lockSiblingCycles(tx, cycle.Year, cycle.Month)
	if err != nil {
		return err
	}

	envelopes, ordinal, err := Allocate(cycle, categories, existing)
	if err != nil {
		return err
	}
	cycle.Ordinal = ordinal

	if err := tx.Omit("Envelopes").Create(cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(envelopes) > 0 {
		if err := tx.Create(&envelopes).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	cycle.Envelopes = envelopes
	return nil
}

// lockSiblingCycles loads the cycles of the given month with their envelopes
// locked, so expenses on the sibling wait until the overspend has been read.
func lockSiblingCycles(tx *gorm.DB, year, month int) ([]models.Cycle, error) {
	var cycles []models.Cycle
	err := tx.Preload("Envelopes", func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}).
		Where("year = ? AND month = ?", year, month).
		Order("ordinal ASC").
		Find(&cycles).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return cycles, nil
}

func cycleAllocatedEvent(cycle *models.Cycle) events.Event {
	payload := events.CycleAllocated{
		CycleID:   cycle.ID,
		StartDate: cycle.StartDate.Format(time.DateOnly),
		Ordinal:   cycle.Ordinal,
		PayAmount: cycle.PayAmount,
		Envelopes: make([]events.EnvelopeAllocated, 0, len(cycle.Envelopes)),
	}
	for _, env := range cycle.Envelopes {
		payload.Envelopes = append(payload.Envelopes, events.EnvelopeAllocated{
			CategoryID: env.CategoryID,
			Initial:    env.Initial,
		})
	}
	return events.New(events.TypeCycleAllocated, cycle.ID, payload)
}

// GetCycles retrieves a paginated list of cycles, newest first.
func (s *cycleService) GetCycles(page pagination.PageRequest) (*pagination.PageResponse[models.Cycle], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.Cycle{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cycles []models.Cycle
	if err := s.db.Scopes(pagination.Paginate(page)).
		Order("start_date DESC").
		Order("ordinal DESC").
		Find(&cycles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cycles, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCycleByID retrieves a cycle with its envelopes and their categories.
func (s *cycleService) GetCycleByID(cycleID string) (*models.Cycle, error) {
	var cycle models.Cycle
	err := s.db.
		Preload("Envelopes").
		Preload("Envelopes.Category").
		Where("id = ?", cycleID).
		First(&cycle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &cycle, nil
}

// DeleteCycle removes a cycle together with its alerts, transactions and
// envelopes. The cashflow balance is left as it is.
func (s *cycleService) DeleteCycle(cycleID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cycle models.Cycle
		if err := tx.Where("id = ?", cycleID).First(&cycle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrCycleNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, model := range []interface{}{&models.Alert{}, &models.Transaction{}, &models.Envelope{}} {
			if err := tx.Where("cycle_id = ?", cycleID).Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := tx.Delete(&cycle).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
