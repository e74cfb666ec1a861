package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SPAC is a special purpose acquisition company managed by an organization.
type SPAC struct {
	Base
	OrganizationID              string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_spac_org_ticker" json:"organization_id"`
	Name                        string          `gorm:"not null" json:"name"`
	Ticker                      string          `gorm:"not null;uniqueIndex:idx_spac_org_ticker" json:"ticker"`
	Status                      SPACStatus      `gorm:"not null;default:draft" json:"status"`
	Phase                       SPACPhase       `gorm:"not null;default:formation" json:"phase"`
	IPODate                     *time.Time      `json:"ipo_date,omitempty"`
	DeadlineDate                *time.Time      `json:"deadline_date,omitempty"`
	TrustAmount                 decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"trust_amount"`
	SharesOutstanding           *int64          `json:"shares_outstanding,omitempty"`
	RedemptionRate              *float64        `json:"redemption_rate,omitempty"` // fraction, 0 to 1
	CIK                         *string         `gorm:"size:10" json:"cik,omitempty"`
	Exchange                    string          `json:"exchange,omitempty"`
	Sponsor                     string          `json:"sponsor,omitempty"`
	BusinessCombinationClosedAt *time.Time      `json:"business_combination_closed_at,omitempty"`

	// Populated at read time
	Counts *SPACCounts `gorm:"-" json:"counts,omitempty"`
}

// SPACCounts are the related-record counts shown alongside a SPAC.
type SPACCounts struct {
	Targets   int64 `json:"targets"`
	Documents int64 `json:"documents"`
	Filings   int64 `json:"filings"`
	Tasks     int64 `json:"tasks"`
}

// TableName overrides the table name used by SPAC to `spacs`
func (SPAC) TableName() string { return "spacs" }
