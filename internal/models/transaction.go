package models

import (
	"time"

	"budgetbot/internal/money"
)

// TransactionKind tags what a transaction does to envelopes and the cashflow balance.
type TransactionKind string

const (
	// TransactionKindExpense debits the category's envelope and the cashflow.
	TransactionKindExpense TransactionKind = "expense"
	// TransactionKindRentExpense debits the rent envelope and the cashflow.
	TransactionKindRentExpense TransactionKind = "rent_expense"
	// TransactionKindPaycheck credits the cashflow, sweeps non-rent leftovers
	// into it and resets envelopes.
	TransactionKindPaycheck TransactionKind = "paycheck"
	// TransactionKindATM credits the cashflow only.
	TransactionKindATM TransactionKind = "atm"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindExpense, TransactionKindRentExpense, TransactionKindPaycheck, TransactionKindATM:
		return true
	}
	return false
}

// DebitsEnvelope reports whether the kind spends from an envelope.
func (k TransactionKind) DebitsEnvelope() bool {
	return k == TransactionKindExpense || k == TransactionKindRentExpense
}

// Transaction is a spend or income event within a cycle. It is immutable;
// deleting it reverses its effect.
type Transaction struct {
	Base
	CycleID     string          `gorm:"type:uuid;not null;index" json:"cycle_id"`
	CategoryID  *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Kind        TransactionKind `gorm:"not null;default:expense" json:"kind"`
	Amount      money.Money     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `gorm:"not null;index" json:"timestamp"`
}
