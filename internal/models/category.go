package models

import (
	"strings"

	"budgetbot/internal/money"
)

// RentCategoryName is the name that marks a category as rent when the
// is_rent flag is not given explicitly.
const RentCategoryName = "rent"

// Category is a recurring spending bucket with a monthly budget. Each cycle
// receives half of the monthly budget in the category's envelope.
type Category struct {
	Base
	Name          string      `gorm:"not null;uniqueIndex" json:"name"`
	MonthlyBudget money.Money `gorm:"type:numeric(12,2);not null" json:"monthly_budget"`
	IsRent        bool        `gorm:"not null;default:false" json:"is_rent"`
}

// HalfBudget is the nominal per-cycle allocation.
func (c *Category) HalfBudget() money.Money {
	return c.MonthlyBudget.Half()
}

// LooksLikeRent reports whether name matches the rent category name, ignoring case.
func LooksLikeRent(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), RentCategoryName)
}
