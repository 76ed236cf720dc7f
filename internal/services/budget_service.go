package services

import (
	"errors"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/models"
)

// budgetService builds read-only budget snapshots.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetCurrentBudget returns the snapshot of the latest cycle. Cycles sharing a
// start date are ordered by ordinal, then by creation time.
func (s *budgetService) GetCurrentBudget() (*BudgetSnapshot, error) {
	var cycle models.Cycle
	err := s.db.
		Order("start_date DESC").
		Order("ordinal DESC").
		Order("created_at DESC").
		First(&cycle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoCycles
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.snapshot(&cycle)
}

// GetCycleBudget returns the snapshot of the given cycle.
func (s *budgetService) GetCycleBudget(cycleID string) (*BudgetSnapshot, error) {
	var cycle models.Cycle
	if err := s.db.Where("id = ?", cycleID).First(&cycle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.snapshot(&cycle)
}

func (s *budgetService) snapshot(cycle *models.Cycle) (*BudgetSnapshot, error) {
	var envelopes []models.Envelope
	if err := s.db.Preload("Category").Where("cycle_id = ?", cycle.ID).Find(&envelopes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &BudgetSnapshot{
		CycleID:   cycle.ID,
		StartDate: cycle.StartDate.Format(time.DateOnly),
		PayAmount: cycle.PayAmount,
		Envelopes: make([]EnvelopeSnapshot, 0, len(envelopes)),
	}

	for _, env := range envelopes {
		line := EnvelopeSnapshot{
			CategoryID:     env.CategoryID,
			Initial:        env.Initial,
			Remaining:      env.Current,
			PercentageLeft: env.Current.PercentOf(env.Initial),
		}
		if env.Category != nil {
			line.Category = env.Category.Name
			line.IsRent = env.Category.IsRent
		}
		result.TotalInitial = result.TotalInitial.Add(env.Initial)
		result.TotalRemaining = result.TotalRemaining.Add(env.Current)
		result.Envelopes = append(result.Envelopes, line)
	}

	slices.SortFunc(result.Envelopes, func(a, b EnvelopeSnapshot) int {
		return strings.Compare(a.Category, b.Category)
	})
	return result, nil
}
