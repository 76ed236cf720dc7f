package models

import "budgetbot/internal/money"

// AlertKind names the condition that raised an alert.
type AlertKind string

const (
	// AlertKindOverspent is raised when a debit takes an envelope below zero.
	AlertKindOverspent AlertKind = "overspent"
)

// Alert records a budget condition worth surfacing to the user.
type Alert struct {
	Base
	CycleID       string      `gorm:"type:uuid;not null;index" json:"cycle_id"`
	CategoryID    string      `gorm:"type:uuid;not null;index" json:"category_id"`
	TransactionID string      `gorm:"type:uuid;not null" json:"transaction_id"`
	Kind          AlertKind   `gorm:"not null" json:"kind"`
	Amount        money.Money `gorm:"type:numeric(12,2);not null" json:"amount"`
	Message       string      `gorm:"not null" json:"message"`
}
