package models

import (
	"time"

	"spacos/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TrustTransaction is one movement on a SPAC's trust account. Amount is
// always positive; the type decides the sign.
type TrustTransaction struct {
	Base
	OrganizationID string               `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID         string               `gorm:"column:spac_id;type:uuid;not null;index" json:"spac_id"`
	Type           TrustTransactionType `gorm:"not null" json:"type"`
	Amount         decimal.Decimal      `gorm:"type:numeric(20,2);not null" json:"amount"`
	OccurredAt     time.Time            `gorm:"not null" json:"occurred_at"`
	Description    string               `json:"description,omitempty"`
}

// Signed returns the amount with outflows negated.
func (t TrustTransaction) Signed() decimal.Decimal {
	if t.Type.IsOutflow() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TrustSnapshot is a point-in-time reading of the trust account.
// This is immutable time-series data: no Base embed, no soft deletes.
type TrustSnapshot struct {
	ID                string          `gorm:"type:uuid;primaryKey" json:"id"`
	SPACID            string          `gorm:"column:spac_id;type:uuid;not null;uniqueIndex:idx_trust_snapshots_spac_recorded" json:"spac_id"`
	RecordedAt        time.Time       `gorm:"not null;uniqueIndex:idx_trust_snapshots_spac_recorded" json:"recorded_at"`
	Balance           decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance"`
	SharesOutstanding *int64          `json:"shares_outstanding,omitempty"`
	Source            string          `json:"source,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (t *TrustSnapshot) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	return nil
}
