// Package models defines the persisted budget records: categories, pay
// cycles, per-cycle envelopes, transactions, the cashflow balance, alerts and
// the audit trail.
package models

// All lists every model, in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Cycle{},
		&Envelope{},
		&Transaction{},
		&Cashflow{},
		&Alert{},
		&AuditLog{},
	}
}
