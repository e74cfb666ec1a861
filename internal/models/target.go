package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Target is an acquisition candidate moving through the deal pipeline.
type Target struct {
	Base
	OrganizationID  string          `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID          *string         `gorm:"column:spac_id;type:uuid;index" json:"spac_id,omitempty"`
	Name            string          `gorm:"not null" json:"name"`
	Industry        string          `gorm:"index" json:"industry"`
	Stage           DealStage       `gorm:"not null;default:sourcing" json:"stage"`
	EnterpriseValue decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"enterprise_value"`
	EvaluationScore *int            `json:"evaluation_score,omitempty"`
	Description     string          `json:"description,omitempty"`
	Headquarters    string          `json:"headquarters,omitempty"`
	PassedReason    string          `json:"passed_reason,omitempty"`
	StageChangedAt  *time.Time      `json:"stage_changed_at,omitempty"`
}
