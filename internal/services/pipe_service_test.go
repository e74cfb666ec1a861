package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"spacos/internal/models"
	"spacos/internal/testutil"
)

func TestPipeInvestors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPipeService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)

	anchor, err := svc.CreateInvestor(ac, PipeInvestorInput{
		SPACID:             spac.ID,
		Name:               "Northgate Capital",
		Type:               models.InvestorTypeAnchor,
		CommitmentAmount:   decimal.NewFromInt(50_000_000),
		SubscriptionStatus: models.SubscriptionCommitted,
	})
	testutil.AssertNoError(t, err)
	if anchor.Shares != 5_000_000 {
		t.Errorf("expected 5M shares at the default $10 price, got %d", anchor.Shares)
	}

	soft, err := svc.CreateInvestor(ac, PipeInvestorInput{
		SPACID:             spac.ID,
		Name:               "Riverbend Partners",
		Type:               models.InvestorTypeHedgeFund,
		CommitmentAmount:   decimal.NewFromInt(20_000_000),
		SubscriptionStatus: models.SubscriptionSoftCircled,
	})
	testutil.AssertNoError(t, err)

	_, err = svc.CreateInvestor(ac, PipeInvestorInput{
		SPACID:             spac.ID,
		Name:               "Passed Fund",
		CommitmentAmount:   decimal.NewFromInt(10_000_000),
		SubscriptionStatus: models.SubscriptionDeclined,
	})
	testutil.AssertNoError(t, err)

	t.Run("list_by_commitment", func(t *testing.T) {
		investors, err := svc.ListInvestors(ac, spac.ID)
		testutil.AssertNoError(t, err)
		if len(investors) != 3 || investors[0].ID != anchor.ID {
			t.Errorf("expected the anchor first of 3, got %+v", investors)
		}
	})

	t.Run("summary", func(t *testing.T) {
		sum, err := svc.GetSummary(ac, spac.ID, decimal.NewFromInt(100_000_000))
		testutil.AssertNoError(t, err)
		if !sum.Committed.Equal(decimal.NewFromInt(50_000_000)) || !sum.SoftCircled.Equal(decimal.NewFromInt(20_000_000)) {
			t.Errorf("unexpected totals %+v", sum)
		}
		if sum.CompletionPercent != 50 {
			t.Errorf("expected 50%% complete, got %v", sum.CompletionPercent)
		}
		if sum.InvestorCounts[models.SubscriptionDeclined] != 1 {
			t.Errorf("expected one declined investor, got %d", sum.InvestorCounts[models.SubscriptionDeclined])
		}
	})

	t.Run("commit_soft_circle", func(t *testing.T) {
		status := models.SubscriptionCommitted
		price := decimal.NewFromInt(8)
		got, err := svc.UpdateInvestor(ac, soft.ID, PipeInvestorUpdate{SubscriptionStatus: &status, PricePerShare: &price})
		testutil.AssertNoError(t, err)
		if got.Shares != 2_500_000 {
			t.Errorf("expected shares re-derived at $8, got %d", got.Shares)
		}
	})

	t.Run("invalid_price", func(t *testing.T) {
		price := decimal.NewFromInt(-1)
		_, err := svc.UpdateInvestor(ac, soft.ID, PipeInvestorUpdate{PricePerShare: &price})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("delete", func(t *testing.T) {
		testutil.AssertNoError(t, svc.DeleteInvestor(ac, soft.ID))
		err := svc.DeleteInvestor(ac, soft.ID)
		testutil.AssertAppError(t, err, "INVESTOR_NOT_FOUND")
	})
}
