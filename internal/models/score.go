package models

import (
	"time"

	"spacos/internal/uuid"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScoreHistoryEntry is one completed scoring of a target.
// Entries are append-only: no Base embed, no soft deletes.
type ScoreHistoryEntry struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID string         `gorm:"type:uuid;not null;index" json:"organization_id"`
	TargetID       string         `gorm:"type:uuid;not null;uniqueIndex:idx_score_target_seq" json:"target_id"`
	Sequence       int64          `gorm:"not null;uniqueIndex:idx_score_target_seq" json:"sequence"`
	OverallScore   int            `gorm:"not null" json:"overall_score"`
	Management     *int           `json:"management,omitempty"`
	Market         *int           `json:"market,omitempty"`
	Financial      *int           `json:"financial,omitempty"`
	Operational    *int           `json:"operational,omitempty"`
	Transaction    *int           `json:"transaction,omitempty"`
	Thesis         string         `json:"thesis,omitempty"`
	Model          string         `json:"model,omitempty"`
	RawResponse    datatypes.JSON `json:"raw_response,omitempty" swaggertype:"object"`
	CreatedBy      *string        `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *ScoreHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}
