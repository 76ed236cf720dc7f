package services

import (
	apperrors "budgetbot/internal/errors"
	"budgetbot/internal/models"
	"budgetbot/internal/money"
)

// Allocate computes the envelopes for a new cycle and the cycle's ordinal
// within its calendar month.
//
// existing must hold the other cycles of the new cycle's month with their
// envelopes loaded; cycles from other months and newCycle itself are ignored.
// Without a sibling every category gets half its monthly budget and the cycle
// is the month's first. With a sibling, a non-rent category that the sibling
// overspent gets half its budget minus the overspend, clamped at zero. A month
// already holding two cycles is rejected.
func Allocate(newCycle *models.Cycle, categories []models.Category, existing []models.Cycle) ([]models.Envelope, int, error) {
	var siblings []*models.Cycle
	for i := range existing {
		c := &existing[i]
		if c.ID == newCycle.ID || !c.SameMonth(newCycle) {
			continue
		}
		siblings = append(siblings, c)
	}
	if len(siblings) >= models.MaxCyclesPerMonth {
		return nil, 0, apperrors.ErrCycleMonthFull
	}

	ordinal := 1
	overspent := map[string]money.Money{}
	if len(siblings) == 1 {
		sibling := siblings[0]
		// The free slot is whichever ordinal the sibling does not hold.
		ordinal = models.MaxCyclesPerMonth + 1 - sibling.Ordinal
		if sibling.Ordinal < 1 || sibling.Ordinal > models.MaxCyclesPerMonth {
			ordinal = 2
		}
		for _, env := range sibling.Envelopes {
			if env.Overspent() {
				overspent[env.CategoryID] = env.Current.Abs()
			}
		}
	}

	envelopes := make([]models.Envelope, 0, len(categories))
	for _, cat := range categories {
		allocation := cat.HalfBudget()
		if over, ok := overspent[cat.ID]; ok && !cat.IsRent {
			allocation = money.Max(money.Zero, allocation.Sub(over))
		}
		envelopes = append(envelopes, models.Envelope{
			CycleID:    newCycle.ID,
			CategoryID: cat.ID,
			Initial:    allocation,
			Current:    allocation,
		})
	}
	return envelopes, ordinal, nil
}
