package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"spacos/internal/edgar"
	"spacos/internal/models"
	"spacos/internal/testutil"
)

var ctx = context.Background()

func TestTeamRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewTeamRepository(db)

	org := testutil.CreateTestOrg(t, db)
	owner := testutil.CreateTestUser(t, db)
	analyst := testutil.CreateTestUser(t, db)

	require.NoError(t, repo.AddMember(ctx, &models.TeamMember{OrganizationID: org.ID, UserID: owner.ID, Role: models.RoleOwner}))
	member := &models.TeamMember{OrganizationID: org.ID, UserID: analyst.ID, Role: models.RoleAnalyst}
	require.NoError(t, repo.AddMember(ctx, member))

	members, err := repo.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.NotNil(t, members[0].User)
	assert.Equal(t, owner.Email, members[0].User.Email)

	owners, err := repo.CountByRole(ctx, org.ID, models.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), owners)

	require.NoError(t, repo.UpdateRole(ctx, member, models.RoleAdmin))
	got, err := repo.FindMembership(ctx, org.ID, analyst.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	require.NoError(t, repo.RemoveMember(ctx, got))
	_, err = repo.GetMember(ctx, org.ID, got.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// A removed member can be added again.
	require.NoError(t, repo.AddMember(ctx, &models.TeamMember{OrganizationID: org.ID, UserID: analyst.ID, Role: models.RoleViewer}))
	n, err := repo.CountMembers(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	memberships, err := repo.MembershipsForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, org.ID, memberships[0].OrganizationID)
}

func TestBillingRepositorySaveUpserts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewBillingRepository(db)
	org := testutil.CreateTestOrg(t, db)

	_, err := repo.Get(ctx, org.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := &models.BillingAccount{OrganizationID: org.ID, Plan: models.PlanStarter, Seats: 5, Status: models.BillingActive}
	require.NoError(t, repo.Save(ctx, first))

	second := &models.BillingAccount{OrganizationID: org.ID, Plan: models.PlanEnterprise, Seats: 50, Status: models.BillingActive}
	require.NoError(t, repo.Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.Get(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanEnterprise, got.Plan)
	assert.Equal(t, 50, got.Seats)
}

func TestIntegrationRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewIntegrationRepository(db)
	org := testutil.CreateTestOrg(t, db)

	require.NoError(t, repo.Save(ctx, &models.Integration{
		OrganizationID: org.ID, Provider: "slack", Enabled: true,
		Settings: datatypes.JSON(`{"channel":"#deals"}`),
	}))
	require.NoError(t, repo.Save(ctx, &models.Integration{OrganizationID: org.ID, Provider: "slack", Enabled: false}))
	require.NoError(t, repo.Save(ctx, &models.Integration{OrganizationID: org.ID, Provider: "edgar", Enabled: true}))

	list, err := repo.List(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "edgar", list[0].Provider)
	assert.False(t, list[1].Enabled)

	require.NoError(t, repo.Delete(ctx, org.ID, "slack"))
	assert.ErrorIs(t, repo.Delete(ctx, org.ID, "slack"), ErrNotFound)
}

func TestAPIKeyRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewAPIKeyRepository(db)
	org := testutil.CreateTestOrg(t, db)

	key := &models.APIKey{OrganizationID: org.ID, Name: "CI", Prefix: "spk_abcd", Hash: "deadbeef"}
	require.NoError(t, repo.Create(ctx, key))

	found, err := repo.FindActiveByHash(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, key.ID, found.ID)

	now := time.Now().UTC()
	require.NoError(t, repo.TouchLastUsed(ctx, key.ID, now))
	require.NoError(t, repo.Revoke(ctx, key, now))

	_, err = repo.FindActiveByHash(ctx, "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err := repo.List(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].RevokedAt)
	assert.NotNil(t, keys[0].LastUsedAt)
}

func TestFilingSyncStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	store := NewFilingSyncStore(db)
	org := testutil.CreateTestOrg(t, db)

	withCIK := testutil.CreateTestSPAC(t, db, org.ID)
	cik := "1819584"
	require.NoError(t, db.Model(withCIK).Update("cik", cik).Error)
	testutil.CreateTestSPAC(t, db, org.ID) // no CIK
	closed := testutil.CreateTestSPAC(t, db, org.ID)
	require.NoError(t, db.Model(closed).Updates(map[string]interface{}{"cik": "42", "status": models.SPACStatusCompleted}).Error)

	spacs, err := store.ListSyncable(ctx)
	require.NoError(t, err)
	require.Len(t, spacs, 1)
	assert.Equal(t, withCIK.ID, spacs[0].ID)

	filed := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)
	accession := "0001819584-24-000012"
	row := func(url string) *models.Filing {
		a := accession
		return &models.Filing{
			OrganizationID: org.ID, SPACID: withCIK.ID, FormType: "10-Q", FiledDate: &filed,
			Status: models.FilingStatusAccepted, EdgarURL: url, AccessionNumber: &a,
		}
	}

	outcome, err := store.UpsertFiling(ctx, row("https://sec.example/a"))
	require.NoError(t, err)
	assert.Equal(t, edgar.Created, outcome)

	outcome, err = store.UpsertFiling(ctx, row("https://sec.example/a"))
	require.NoError(t, err)
	assert.Equal(t, edgar.Unchanged, outcome)

	outcome, err = store.UpsertFiling(ctx, row("https://sec.example/b"))
	require.NoError(t, err)
	assert.Equal(t, edgar.Updated, outcome)

	var count int64
	db.Model(&models.Filing{}).Where("spac_id = ?", withCIK.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFilingSyncStoreKeepsDeletedFilingsDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	store := NewFilingSyncStore(db)
	org := testutil.CreateTestOrg(t, db)
	spac := testutil.CreateTestSPAC(t, db, org.ID)

	filed := time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC)
	row := func() *models.Filing {
		a := "0001819584-24-000007"
		return &models.Filing{
			OrganizationID: org.ID, SPACID: spac.ID, FormType: "10-K", FiledDate: &filed,
			Status: models.FilingStatusAccepted, EdgarURL: "https://sec.example/k", AccessionNumber: &a,
		}
	}

	first := row()
	outcome, err := store.UpsertFiling(ctx, first)
	require.NoError(t, err)
	require.Equal(t, edgar.Created, outcome)
	require.NoError(t, db.Delete(&models.Filing{}, "id = ?", first.ID).Error)

	again := row()
	outcome, err = store.UpsertFiling(ctx, again)
	require.NoError(t, err, "a deleted filing must not trip the unique index")
	assert.Equal(t, edgar.Unchanged, outcome)
	assert.Equal(t, first.ID, again.ID)

	var live int64
	db.Model(&models.Filing{}).Where("spac_id = ?", spac.ID).Count(&live)
	assert.Zero(t, live, "the user's delete sticks")
	var all int64
	db.Unscoped().Model(&models.Filing{}).Where("spac_id = ?", spac.ID).Count(&all)
	assert.Equal(t, int64(1), all)
}

func TestDashboardRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	repo := NewDashboardRepository(db)

	org := testutil.CreateTestOrg(t, db)
	other := testutil.CreateTestOrg(t, db)
	spac := testutil.CreateTestSPAC(t, db, org.ID)
	draft := testutil.CreateTestSPAC(t, db, org.ID)
	require.NoError(t, db.Model(draft).Update("status", models.SPACStatusDraft).Error)
	testutil.CreateTestSPAC(t, db, other.ID)

	t.Run("status counts include empty statuses", func(t *testing.T) {
		counts, err := repo.StatusCounts(ctx, org.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[models.SPACStatusActive])
		assert.Equal(t, int64(1), counts[models.SPACStatusDraft])
		assert.Equal(t, int64(0), counts[models.SPACStatusLiquidated])
		assert.Len(t, counts, models.NumSPACStatuses)
	})

	a := testutil.CreateTestTarget(t, db, org.ID, &spac.ID)
	b := testutil.CreateTestTarget(t, db, org.ID, nil)
	score := 82
	require.NoError(t, db.Model(a).Updates(map[string]interface{}{
		"stage": models.DealStageNegotiation, "evaluation_score": score, "name": "Orbital Freight",
	}).Error)
	require.NoError(t, db.Model(b).Update("enterprise_value", decimal.NewFromInt(125_000_000)).Error)

	t.Run("funnel inputs", func(t *testing.T) {
		all, err := repo.FunnelInputs(ctx, org.ID, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		scoped, err := repo.FunnelInputs(ctx, org.ID, &spac.ID)
		require.NoError(t, err)
		require.Len(t, scoped, 1)
		assert.Equal(t, models.DealStageNegotiation, scoped[0].Stage)
		assert.True(t, scoped[0].EnterpriseValue.Equal(decimal.NewFromInt(500_000_000)))
	})

	t.Run("search targets", func(t *testing.T) {
		minScore := 80
		targets, total, err := repo.SearchTargets(ctx, TargetQuery{OrgID: org.ID, MinScore: &minScore})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, targets, 1)
		assert.Equal(t, a.ID, targets[0].ID)

		targets, total, err = repo.SearchTargets(ctx, TargetQuery{OrgID: org.ID, Search: "orbital", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, targets, 1)

		stage := models.DealStageSourcing
		_, total, err = repo.SearchTargets(ctx, TargetQuery{OrgID: org.ID, Stage: &stage})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("deadline candidates skip terminal SPACs", func(t *testing.T) {
		require.NoError(t, db.Model(draft).Update("status", models.SPACStatusLiquidated).Error)
		spacs, err := repo.DeadlineCandidates(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, spacs, 1)
		assert.Equal(t, spac.ID, spacs[0].ID)
		assert.NotNil(t, spacs[0].DeadlineDate)
	})

	t.Run("pending filings", func(t *testing.T) {
		due := time.Now().AddDate(0, 0, 10)
		testutil.CreateTestFiling(t, db, org.ID, spac.ID, "10-Q", &due)
		filed := testutil.CreateTestFiling(t, db, org.ID, spac.ID, "8-K", &due)
		require.NoError(t, db.Model(filed).Updates(map[string]interface{}{
			"status": models.FilingStatusAccepted, "filed_date": time.Now(),
		}).Error)
		testutil.CreateTestFiling(t, db, org.ID, spac.ID, "S-4", nil)

		filings, err := repo.PendingFilings(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, filings, 1)
		assert.Equal(t, "10-Q", filings[0].FormType)
	})
}
