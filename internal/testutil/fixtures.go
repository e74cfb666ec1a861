package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spacos/internal/auth"
	"spacos/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateTestOrg creates an organization with a unique slug.
func CreateTestOrg(t *testing.T, db *gorm.DB) *models.Organization {
	t.Helper()

	n := nextID()
	org := &models.Organization{
		Name: fmt.Sprintf("Test Sponsor %d", n),
		Slug: fmt.Sprintf("test-sponsor-%d", n),
	}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestMember adds user to org with the given role.
func CreateTestMember(t *testing.T, db *gorm.DB, orgID, userID string, role models.Role) *models.TeamMember {
	t.Helper()

	now := time.Now()
	member := &models.TeamMember{
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		JoinedAt:       &now,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestActor creates an organization and a member holding role, and
// returns the auth context that member acts with.
func CreateTestActor(t *testing.T, db *gorm.DB, role models.Role) (auth.Context, *models.Organization, *models.User) {
	t.Helper()

	org := CreateTestOrg(t, db)
	user := CreateTestUser(t, db)
	CreateTestMember(t, db, org.ID, user.ID, role)
	return auth.New(user.ID, org.ID, role), org, user
}

// CreateTestSPAC creates an active SPAC in the target search phase with a
// $230M trust and a deadline one year out.
func CreateTestSPAC(t *testing.T, db *gorm.DB, orgID string) *models.SPAC {
	t.Helper()

	n := nextID()
	ipo := time.Now().AddDate(-1, 0, 0).UTC().Truncate(24 * time.Hour)
	deadline := ipo.AddDate(2, 0, 0)
	shares := int64(23_000_000)
	spac := &models.SPAC{
		OrganizationID:    orgID,
		Name:              fmt.Sprintf("Test Acquisition Corp %d", n),
		Ticker:            fmt.Sprintf("T%d", n%10000),
		Status:            models.SPACStatusActive,
		Phase:             models.SPACPhaseTargetSearch,
		IPODate:           &ipo,
		DeadlineDate:      &deadline,
		TrustAmount:       decimal.NewFromInt(230_000_000),
		SharesOutstanding: &shares,
	}
	if err := db.Create(spac).Error; err != nil {
		t.Fatalf("failed to create test SPAC: %v", err)
	}
	return spac
}

// CreateTestTarget creates a target in the sourcing stage.
func CreateTestTarget(t *testing.T, db *gorm.DB, orgID string, spacID *string) *models.Target {
	t.Helper()

	target := &models.Target{
		OrganizationID:  orgID,
		SPACID:          spacID,
		Name:            fmt.Sprintf("Test Target %d", nextID()),
		Industry:        "Fintech",
		Stage:           models.DealStageSourcing,
		EnterpriseValue: decimal.NewFromInt(500_000_000),
	}
	if err := db.Create(target).Error; err != nil {
		t.Fatalf("failed to create test target: %v", err)
	}
	return target
}

// CreateTestTask creates a task on spacID with the given due date.
func CreateTestTask(t *testing.T, db *gorm.DB, orgID, spacID string, due *time.Time) *models.Task {
	t.Helper()

	task := &models.Task{
		OrganizationID: orgID,
		SPACID:         &spacID,
		Title:          fmt.Sprintf("Test Task %d", nextID()),
		DueDate:        due,
		Status:         models.TaskStatusNotStarted,
		Priority:       models.TaskPriorityMedium,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateTestFiling creates a draft filing on spacID.
func CreateTestFiling(t *testing.T, db *gorm.DB, orgID, spacID, formType string, due *time.Time) *models.Filing {
	t.Helper()

	filing := &models.Filing{
		OrganizationID: orgID,
		SPACID:         spacID,
		FormType:       formType,
		DueDate:        due,
		Status:         models.FilingStatusDraft,
	}
	if err := db.Create(filing).Error; err != nil {
		t.Fatalf("failed to create test filing: %v", err)
	}
	return filing
}
