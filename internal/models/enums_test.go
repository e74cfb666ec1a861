package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseKnownValues(t *testing.T) {
	for _, s := range AllSPACStatuses() {
		got, err := ParseSPACStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseSPACStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, d := range AllDealStages() {
		got, err := ParseDealStage(string(d))
		if err != nil || got != d {
			t.Errorf("ParseDealStage(%q) = %q, %v", d, got, err)
		}
	}
	for _, f := range AllFilingStatuses() {
		if _, err := ParseFilingStatus(string(f)); err != nil {
			t.Errorf("ParseFilingStatus(%q) returned %v", f, err)
		}
	}
}

func TestParseUnknownValueIsAnError(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) error
	}{
		{"spac status", func(v string) error { _, err := ParseSPACStatus(v); return err }},
		{"spac phase", func(v string) error { _, err := ParseSPACPhase(v); return err }},
		{"deal stage", func(v string) error { _, err := ParseDealStage(v); return err }},
		{"document status", func(v string) error { _, err := ParseDocumentStatus(v); return err }},
		{"task status", func(v string) error { _, err := ParseTaskStatus(v); return err }},
		{"task priority", func(v string) error { _, err := ParseTaskPriority(v); return err }},
		{"filing status", func(v string) error { _, err := ParseFilingStatus(v); return err }},
		{"investor type", func(v string) error { _, err := ParseInvestorType(v); return err }},
		{"subscription status", func(v string) error { _, err := ParseSubscriptionStatus(v); return err }},
		{"share class", func(v string) error { _, err := ParseShareClassKind(v); return err }},
		{"holder type", func(v string) error { _, err := ParseHolderType(v); return err }},
		{"role", func(v string) error { _, err := ParseRole(v); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse("bogus")
			if !errors.Is(err, ErrUnknownValue) {
				t.Fatalf("expected ErrUnknownValue, got %v", err)
			}
		})
	}
}

func TestParseIsCaseSensitive(t *testing.T) {
	if _, err := ParseTaskStatus("completed"); !errors.Is(err, ErrUnknownValue) {
		t.Errorf("expected lower-case task status to be rejected, got %v", err)
	}
	if _, err := ParseSPACStatus("ACTIVE"); !errors.Is(err, ErrUnknownValue) {
		t.Errorf("expected upper-case spac status to be rejected, got %v", err)
	}
}

func TestPhaseIndexFollowsLifecycle(t *testing.T) {
	phases := AllSPACPhases()
	for i, p := range phases {
		if p.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", p, p.Index(), i)
		}
	}
	if SPACPhase("nope").Index() != -1 {
		t.Error("expected -1 for unknown phase")
	}
	if SPACPhaseFormation.Index() >= SPACPhasePostMerger.Index() {
		t.Error("formation must precede post_merger")
	}
}

func TestAllListsAreCopies(t *testing.T) {
	list := AllDealStages()
	list[0] = "mutated"
	if AllDealStages()[0] != DealStageSourcing {
		t.Error("AllDealStages exposed its backing array")
	}
}

func TestVocabularySizes(t *testing.T) {
	sizes := map[string][2]int{
		"spac status":         {len(AllSPACStatuses()), 4},
		"spac phase":          {len(AllSPACPhases()), 9},
		"deal stage":          {len(AllDealStages()), 7},
		"document status":     {len(AllDocumentStatuses()), 8},
		"task status":         {len(AllTaskStatuses()), 5},
		"task priority":       {len(AllTaskPriorities()), 4},
		"investor type":       {len(AllInvestorTypes()), 5},
		"subscription status": {len(AllSubscriptionStatuses()), 5},
		"share class":         {len(AllShareClassKinds()), 6},
		"holder type":         {len(AllHolderTypes()), 5},
	}
	for name, s := range sizes {
		if s[0] != s[1] {
			t.Errorf("%s: got %d values, want %d", name, s[0], s[1])
		}
	}
}

func TestTerminalStates(t *testing.T) {
	if !DealStageClosed.IsTerminal() || !DealStagePassed.IsTerminal() {
		t.Error("closed and passed must be terminal")
	}
	if DealStageExecution.IsTerminal() {
		t.Error("execution must not be terminal")
	}
	if !SPACStatusCompleted.IsTerminal() || !SPACStatusLiquidated.IsTerminal() || SPACStatusActive.IsTerminal() {
		t.Error("unexpected SPAC terminal classification")
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role, min Role
		want      bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAnalyst, RoleAdmin, false},
		{RoleViewer, RoleAnalyst, false},
		{RoleAnalyst, RoleViewer, true},
		{Role("ghost"), RoleViewer, false},
	}
	for _, tt := range tests {
		if got := tt.role.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.role, tt.min, got, tt.want)
		}
	}
}

func TestTrustTransactionSigned(t *testing.T) {
	amount := decimal.NewFromInt(1000)
	deposit := TrustTransaction{Type: TrustDeposit, Amount: amount}
	redemption := TrustTransaction{Type: TrustRedemption, Amount: amount}
	if !deposit.Signed().Equal(amount) {
		t.Errorf("deposit signed = %s", deposit.Signed())
	}
	if !redemption.Signed().Equal(amount.Neg()) {
		t.Errorf("redemption signed = %s", redemption.Signed())
	}
}
