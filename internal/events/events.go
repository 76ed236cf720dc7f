// Package events publishes budget domain events to an external broker after
// the corresponding database transaction has committed. Publishing is best
// effort: failures are logged and never undo or fail the budget operation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"budgetbot/internal/money"
)

// Type identifies a domain event.
type Type string

const (
	TypeCycleAllocated      Type = "cycle.allocated"
	TypeTransactionApplied  Type = "transaction.applied"
	TypeTransactionReversed Type = "transaction.reversed"
	TypeEnvelopeOverspent   Type = "envelope.overspent"
)

// Event is the envelope every published message shares. Key groups related
// events on partitioned brokers; it is the cycle id.
type Event struct {
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
}

// CycleAllocated is published after a cycle and its envelopes are committed.
type CycleAllocated struct {
	CycleID   string              `json:"cycle_id"`
	StartDate string              `json:"start_date"`
	Ordinal   int                 `json:"ordinal"`
	PayAmount money.Money         `json:"pay_amount"`
	Envelopes []EnvelopeAllocated `json:"envelopes"`
}

// EnvelopeAllocated is one line of a CycleAllocated event.
type EnvelopeAllocated struct {
	CategoryID string      `json:"category_id"`
	Initial    money.Money `json:"initial"`
}

// TransactionChanged is published when a transaction is applied or reversed.
type TransactionChanged struct {
	TransactionID string      `json:"transaction_id"`
	CycleID       string      `json:"cycle_id"`
	CategoryID    *string     `json:"category_id,omitempty"`
	Kind          string      `json:"kind"`
	Amount        money.Money `json:"amount"`
}

// EnvelopeOverspent is published when a debit takes an envelope below zero.
type EnvelopeOverspent struct {
	CycleID       string      `json:"cycle_id"`
	CategoryID    string      `json:"category_id"`
	TransactionID string      `json:"transaction_id"`
	Overspent     money.Money `json:"overspent"`
}

// New stamps an event of the given type.
func New(t Type, key string, payload any) Event {
	return Event{Type: t, OccurredAt: time.Now().UTC(), Key: key, Payload: payload}
}

// Encode serializes an event to JSON.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return data, nil
}

// Publisher sends domain events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
