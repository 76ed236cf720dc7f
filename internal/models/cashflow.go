package models

import (
	"time"

	"budgetbot/internal/money"
)

// CashflowID is the primary key of the single cashflow row.
const CashflowID = 1

// Cashflow holds cash that is not allocated to any envelope. There is exactly
// one row, created at startup.
type Cashflow struct {
	ID        int         `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Balance   money.Money `gorm:"type:numeric(12,2);not null" json:"balance"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TableName pins the table name; the default pluralization of Cashflow is awkward.
func (Cashflow) TableName() string { return "cashflow" }
