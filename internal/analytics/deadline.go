package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"spacos/internal/models"
)

const (
	UrgentWithinDays   = 30
	CriticalWithinDays = 14
)

// PlaceholderTrustPerShare is the nominal unit price shown when the share
// count is unknown.
var PlaceholderTrustPerShare = decimal.NewFromInt(10)

// DaysUntil returns the whole days left before deadline, rounded down. Any
// deadline already passed is negative, even one earlier today. A nil
// deadline gives nil.
func DaysUntil(deadline *time.Time, now time.Time) *int {
	if deadline == nil {
		return nil
	}
	days := int(math.Floor(deadline.Sub(now).Hours() / 24))
	return &days
}

// Urgency flags a countdown. IsCritical implies IsUrgent.
type Urgency struct {
	IsUrgent   bool `json:"is_urgent"`
	IsCritical bool `json:"is_critical"`
}

// ClassifyUrgency applies the 30 and 14 day thresholds. Unknown days are
// neither urgent nor critical.
func ClassifyUrgency(days *int) Urgency {
	if days == nil {
		return Urgency{}
	}
	return Urgency{
		IsUrgent:   *days <= UrgentWithinDays,
		IsCritical: *days <= CriticalWithinDays,
	}
}

// PerShare is a trust-per-share figure. IsPlaceholder is set when Value is
// the nominal unit price rather than a computed quotient.
type PerShare struct {
	Value         decimal.Decimal `json:"value"`
	IsPlaceholder bool            `json:"is_placeholder"`
}

// TrustPerShare divides the trust balance by shares outstanding, rounded to
// cents. Without a positive share count it returns the flagged placeholder.
func TrustPerShare(balance decimal.Decimal, shares *int64) PerShare {
	if shares == nil || *shares <= 0 {
		return PerShare{Value: PlaceholderTrustPerShare, IsPlaceholder: true}
	}
	return PerShare{Value: balance.Div(decimal.NewFromInt(*shares)).Round(2)}
}

// Deadline is the countdown block shown for a SPAC.
type Deadline struct {
	Days          *int     `json:"days"`
	IsUrgent      bool     `json:"is_urgent"`
	IsCritical    bool     `json:"is_critical"`
	TrustPerShare PerShare `json:"trust_per_share"`
}

// DeadlineMetrics derives the countdown and trust per share of a SPAC.
func DeadlineMetrics(spac models.SPAC, now time.Time) Deadline {
	days := DaysUntil(spac.DeadlineDate, now)
	u := ClassifyUrgency(days)
	return Deadline{
		Days:          days,
		IsUrgent:      u.IsUrgent,
		IsCritical:    u.IsCritical,
		TrustPerShare: TrustPerShare(spac.TrustAmount, spac.SharesOutstanding),
	}
}
