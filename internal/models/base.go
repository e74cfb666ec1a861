// Package models holds the GORM models and the closed vocabularies they use.
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"spacos/internal/uuid"
)

// Base carries the id, timestamps and soft-delete column shared by every
// organization-scoped table.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a UUIDv7 when no id is set. A preset id must parse as
// a UUID and is stored in canonical lower-case form, so SQLite and Postgres
// agree on lookups.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
		return nil
	}
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", b.ID, err)
	}
	b.ID = id
	return nil
}

// IsDeleted reports whether the row has been soft-deleted.
func (b Base) IsDeleted() bool {
	return b.DeletedAt.Valid
}
