package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base holds the columns every owner-scoped record carries.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Meta exposes the shared columns so stores can handle any record generically.
func (b *Base) Meta() *Base {
	return b
}

// ValidationError reports a malformed field on an incoming record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
