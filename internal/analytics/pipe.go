package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"spacos/internal/models"
)

// PipeSummary aggregates a PIPE raise against its target size.
type PipeSummary struct {
	TargetRaise       decimal.Decimal                   `json:"target_raise"`
	Committed         decimal.Decimal                   `json:"committed"`
	SoftCircled       decimal.Decimal                   `json:"soft_circled"`
	InDiligence       decimal.Decimal                   `json:"in_diligence"`
	Pending           decimal.Decimal                   `json:"pending"`
	CommittedShares   int64                             `json:"committed_shares"`
	CompletionPercent float64                           `json:"completion_percent"`
	Remaining         decimal.Decimal                   `json:"remaining"`
	InvestorCounts    map[models.SubscriptionStatus]int `json:"investor_counts"`
}

// SummarizePipe totals commitments by subscription status. Declined
// investors are counted but contribute nothing to the totals. Completion is
// committed capital as a percent of the target raise, 0 when no target is
// set.
func SummarizePipe(investors []models.PipeInvestor, targetRaise decimal.Decimal) (PipeSummary, error) {
	s := PipeSummary{
		TargetRaise:    targetRaise,
		Committed:      decimal.Zero,
		SoftCircled:    decimal.Zero,
		InDiligence:    decimal.Zero,
		Pending:        decimal.Zero,
		InvestorCounts: make(map[models.SubscriptionStatus]int, models.NumSubscriptionStatuses),
	}
	for _, st := range models.AllSubscriptionStatuses() {
		s.InvestorCounts[st] = 0
	}

	for _, inv := range investors {
		switch inv.SubscriptionStatus {
		case models.SubscriptionCommitted:
			s.Committed = s.Committed.Add(inv.CommitmentAmount)
			s.CommittedShares += inv.Shares
		case models.SubscriptionSoftCircled:
			s.SoftCircled = s.SoftCircled.Add(inv.CommitmentAmount)
		case models.SubscriptionInDiligence:
			s.InDiligence = s.InDiligence.Add(inv.CommitmentAmount)
		case models.SubscriptionPending:
			s.Pending = s.Pending.Add(inv.CommitmentAmount)
		case models.SubscriptionDeclined:
		default:
			return PipeSummary{}, fmt.Errorf("pipe investor %s: subscription status %q: %w",
				inv.ID, inv.SubscriptionStatus, models.ErrUnknownValue)
		}
		s.InvestorCounts[inv.SubscriptionStatus]++
	}

	s.CompletionPercent = Percentage(s.Committed, targetRaise)
	s.Remaining = decimal.Max(targetRaise.Sub(s.Committed), decimal.Zero)
	return s, nil
}
