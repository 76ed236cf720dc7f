package models

import (
	"time"

	"budgetbot/internal/money"
)

// MaxCyclesPerMonth is the number of pay cycles a calendar month can hold.
const MaxCyclesPerMonth = 2

// Cycle is one pay period. Its envelopes are allocated once at creation and
// the cycle itself is never mutated afterwards.
type Cycle struct {
	Base
	StartDate time.Time   `gorm:"type:date;not null;index" json:"start_date"`
	PayAmount money.Money `gorm:"type:numeric(12,2);not null" json:"pay_amount"`
	Year      int         `gorm:"not null;uniqueIndex:idx_cycle_month_ordinal" json:"year"`
	Month     int         `gorm:"not null;uniqueIndex:idx_cycle_month_ordinal" json:"month"`
	Ordinal   int         `gorm:"not null;uniqueIndex:idx_cycle_month_ordinal" json:"ordinal"`

	Envelopes []Envelope `gorm:"foreignKey:CycleID" json:"envelopes,omitempty"`
}

// SameMonth reports whether other starts in the same calendar month as c.
func (c *Cycle) SameMonth(other *Cycle) bool {
	y1, m1, _ := c.StartDate.Date()
	y2, m2, _ := other.StartDate.Date()
	return y1 == y2 && m1 == m2
}
