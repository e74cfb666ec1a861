package models

import (
	"time"

	"gorm.io/datatypes"
)

// BillingAccount is an organization's subscription record. Payment
// processing happens elsewhere; this only tracks plan and seats.
type BillingAccount struct {
	Base
	OrganizationID   string        `gorm:"type:uuid;not null;uniqueIndex" json:"organization_id"`
	Plan             BillingPlan   `gorm:"not null;default:starter" json:"plan"`
	Seats            int           `gorm:"not null;default:5" json:"seats"`
	Status           BillingStatus `gorm:"not null;default:active" json:"status"`
	BillingEmail     string        `json:"billing_email,omitempty"`
	CurrentPeriodEnd *time.Time    `json:"current_period_end,omitempty"`
}

// Integration is a configured third-party connection for an organization.
type Integration struct {
	Base
	OrganizationID string         `gorm:"type:uuid;not null;uniqueIndex:idx_integration_org_provider" json:"organization_id"`
	Provider       string         `gorm:"not null;uniqueIndex:idx_integration_org_provider" json:"provider"`
	Enabled        bool           `gorm:"not null;default:false" json:"enabled"`
	Settings       datatypes.JSON `json:"settings,omitempty" swaggertype:"object"`
}

// APIKey grants programmatic access to an organization. Only the SHA-256
// hash of the secret is stored.
type APIKey struct {
	Base
	OrganizationID string     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string     `gorm:"not null" json:"name"`
	Prefix         string     `gorm:"size:12;not null" json:"prefix"`
	Hash           string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	CreatedBy      string     `gorm:"type:uuid" json:"created_by"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
}
