package models

import (
	"time"

	"budgetbot/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables with a surrogate key.
// Rows are hard-deleted: deletes either cascade or are rejected, so there is
// no soft-delete column.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
