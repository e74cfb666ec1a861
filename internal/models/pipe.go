package models

import "github.com/shopspring/decimal"

// PipeInvestor is a participant in a SPAC's PIPE raise.
type PipeInvestor struct {
	Base
	OrganizationID     string             `gorm:"type:uuid;not null;index" json:"organization_id"`
	SPACID             string             `gorm:"column:spac_id;type:uuid;not null;index" json:"spac_id"`
	Name               string             `gorm:"not null" json:"name"`
	Type               InvestorType       `gorm:"not null" json:"type"`
	CommitmentAmount   decimal.Decimal    `gorm:"type:numeric(20,2);not null;default:0" json:"commitment_amount"`
	PricePerShare      decimal.Decimal    `gorm:"type:numeric(20,4);not null;default:10" json:"price_per_share"`
	Shares             int64              `gorm:"not null;default:0" json:"shares"`
	SubscriptionStatus SubscriptionStatus `gorm:"not null;default:pending" json:"subscription_status"`
	Notes              string             `json:"notes,omitempty"`
}
