package models

import (
	"time"

	"budgetbot/internal/money"
)

// Envelope is the allocated-and-remaining balance of one category within one
// cycle. It has no identity beyond the (cycle, category) pair. Current starts
// equal to Initial and only transactions move it; it goes negative on overspend.
type Envelope struct {
	CycleID    string      `gorm:"type:uuid;primaryKey" json:"cycle_id"`
	CategoryID string      `gorm:"type:uuid;primaryKey;index" json:"category_id"`
	Initial    money.Money `gorm:"type:numeric(12,2);not null" json:"initial"`
	Current    money.Money `gorm:"type:numeric(12,2);not null" json:"current"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Overspent reports whether the envelope balance is below zero.
func (e *Envelope) Overspent() bool {
	return e.Current.IsNegative()
}
