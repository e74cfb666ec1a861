package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/testutil"
)

func TestRecordTrustTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTrustService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)

	t.Run("interest_raises_balance", func(t *testing.T) {
		_, err := svc.RecordTransaction(ac, TrustTransactionInput{
			SPACID: spac.ID,
			Type:   models.TrustInterest,
			Amount: decimal.NewFromInt(1_150_000),
		})
		testutil.AssertNoError(t, err)

		bal, err := svc.GetBalance(ac, spac.ID)
		testutil.AssertNoError(t, err)
		if !bal.Balance.Equal(decimal.NewFromInt(231_150_000)) {
			t.Errorf("expected balance 231150000, got %s", bal.Balance)
		}
	})

	t.Run("redemption_lowers_balance", func(t *testing.T) {
		_, err := svc.RecordTransaction(ac, TrustTransactionInput{
			SPACID: spac.ID,
			Type:   models.TrustRedemption,
			Amount: decimal.NewFromInt(100_000_000),
		})
		testutil.AssertNoError(t, err)

		bal, err := svc.GetBalance(ac, spac.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "131150000", bal.Balance)
		testutil.AssertDecimal(t, "100000000.00", bal.Outflows)
		testutil.AssertDecimal(t, "1150000", bal.Deposits)
	})

	t.Run("overdraw_rejected", func(t *testing.T) {
		_, err := svc.RecordTransaction(ac, TrustTransactionInput{
			SPACID: spac.ID,
			Type:   models.TrustWithdrawal,
			Amount: decimal.NewFromInt(500_000_000),
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_TRUST")

		var count int64
		db.Model(&models.TrustTransaction{}).Where("spac_id = ? AND type = ?", spac.ID, models.TrustWithdrawal).Count(&count)
		if count != 0 {
			t.Errorf("expected rolled back withdrawal, found %d rows", count)
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		_, err := svc.RecordTransaction(ac, TrustTransactionInput{SPACID: spac.ID, Type: models.TrustDeposit, Amount: decimal.Zero})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_type", func(t *testing.T) {
		_, err := svc.RecordTransaction(ac, TrustTransactionInput{SPACID: spac.ID, Type: "gift", Amount: decimal.NewFromInt(1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteTrustTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTrustService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)

	txn, err := svc.RecordTransaction(ac, TrustTransactionInput{
		SPACID: spac.ID,
		Type:   models.TrustRedemption,
		Amount: decimal.NewFromInt(30_000_000),
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteTransaction(ac, txn.ID))

	bal, err := svc.GetBalance(ac, spac.ID)
	testutil.AssertNoError(t, err)
	if !bal.Balance.Equal(decimal.NewFromInt(230_000_000)) {
		t.Errorf("expected balance restored to 230000000, got %s", bal.Balance)
	}

	err = svc.DeleteTransaction(ac, txn.ID)
	testutil.AssertAppError(t, err, "NOT_FOUND")
}

func TestListTrustTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTrustService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.RecordTransaction(ac, TrustTransactionInput{
			SPACID:     spac.ID,
			Type:       models.TrustInterest,
			Amount:     decimal.NewFromInt(1000),
			OccurredAt: base.AddDate(0, i, 0),
		})
		testutil.AssertNoError(t, err)
	}

	t.Run("all", func(t *testing.T) {
		res, err := svc.ListTransactions(ac, spac.ID, pagination.PageRequest{}, TrustFilter{})
		testutil.AssertNoError(t, err)
		if res.TotalItems != 3 {
			t.Errorf("expected 3 transactions, got %d", res.TotalItems)
		}
		if !res.Data[0].OccurredAt.After(res.Data[1].OccurredAt) {
			t.Error("expected newest first")
		}
	})

	t.Run("date_range", func(t *testing.T) {
		from := base.AddDate(0, 1, 0)
		res, err := svc.ListTransactions(ac, spac.ID, pagination.PageRequest{}, TrustFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if res.TotalItems != 2 {
			t.Errorf("expected 2 transactions, got %d", res.TotalItems)
		}
	})

	t.Run("inverted_range", func(t *testing.T) {
		from, to := base.AddDate(0, 2, 0), base
		_, err := svc.ListTransactions(ac, spac.ID, pagination.PageRequest{}, TrustFilter{FromDate: &from, ToDate: &to})
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})
}

func TestTrustBalancePerShare(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTrustService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleViewer)

	spac := testutil.CreateTestSPAC(t, db, org.ID)
	db.Model(spac).Update("shares_outstanding", nil)

	bal, err := svc.GetBalance(ac, spac.ID)
	testutil.AssertNoError(t, err)
	if !bal.PerShare.IsPlaceholder {
		t.Error("expected placeholder per-share value without a share count")
	}
	if !bal.PerShare.Value.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected placeholder 10, got %s", bal.PerShare.Value)
	}
}

func TestTrustSnapshots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTrustService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleViewer)

	live := testutil.CreateTestSPAC(t, db, org.ID)
	done := testutil.CreateTestSPAC(t, db, org.ID)
	db.Model(done).Update("status", models.SPACStatusLiquidated)

	at := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	n, err := svc.RecordSnapshots(at)
	testutil.AssertNoError(t, err)
	if n != 1 {
		t.Fatalf("expected 1 snapshot, got %d", n)
	}

	db.Model(live).Update("trust_amount", decimal.NewFromInt(231_000_000))
	n, err = svc.RecordSnapshots(at)
	testutil.AssertNoError(t, err)
	if n != 1 {
		t.Fatalf("expected 1 snapshot on re-run, got %d", n)
	}

	res, err := svc.ListSnapshots(ac, live.ID, at.AddDate(0, 0, -1), at.AddDate(0, 0, 1), pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if res.TotalItems != 1 {
		t.Fatalf("expected re-run to overwrite, got %d snapshots", res.TotalItems)
	}
	if !res.Data[0].Balance.Equal(decimal.NewFromInt(231_000_000)) {
		t.Errorf("expected updated balance, got %s", res.Data[0].Balance)
	}

	_, err = svc.ListSnapshots(ac, live.ID, at, at.AddDate(0, 0, -1), pagination.PageRequest{})
	testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
}
