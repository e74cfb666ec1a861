package models

import "time"

// Task is a unit of work tied to a SPAC, a target, or both.
type Task struct {
	Base
	OrganizationID string       `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID         *string      `gorm:"column:spac_id;type:uuid;index" json:"spac_id,omitempty"`
	TargetID       *string      `gorm:"type:uuid;index" json:"target_id,omitempty"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `json:"description,omitempty"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	Status         TaskStatus   `gorm:"not null;default:NOT_STARTED" json:"status"`
	Priority       TaskPriority `gorm:"not null;default:MEDIUM" json:"priority"`
	AssigneeID     *string      `gorm:"type:uuid" json:"assignee_id,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
}
