package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	"spacos/internal/edgar"
	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/scoring"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	// Register creates the user together with a new organization the user owns.
	Register(email, password, firstName, lastName, orgName string) (*models.User, *models.TeamMember, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	// ActiveMembership returns the user's membership in orgID, or the oldest
	// membership when orgID is empty.
	ActiveMembership(userID, orgID string) (*models.TeamMember, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// SPACInput holds the fields of a new SPAC.
type SPACInput struct {
	Name              string
	Ticker            string
	IPODate           *time.Time
	DeadlineDate      *time.Time
	TrustAmount       decimal.Decimal
	SharesOutstanding *int64
	RedemptionRate    *float64
	CIK               *string
	Exchange          string
	Sponsor           string
}

// SPACUpdate holds the changed fields of a SPAC. Nil means unchanged.
type SPACUpdate struct {
	Name              *string
	Ticker            *string
	IPODate           *time.Time
	DeadlineDate      *time.Time
	SharesOutstanding *int64
	RedemptionRate    *float64
	CIK               *string
	Exchange          *string
	Sponsor           *string
}

// SPACFilter holds optional filter parameters for listing SPACs.
type SPACFilter struct {
	Status *models.SPACStatus
	Phase  *models.SPACPhase
	Search string
}

// SPACMetrics is the derived view of one SPAC.
type SPACMetrics struct {
	SPACID       string                `json:"spac_id"`
	Deadline     analytics.Deadline    `json:"deadline"`
	TrustBalance decimal.Decimal       `json:"trust_balance"`
	Redemption   *analytics.Redemption `json:"redemption,omitempty"`
	Counts       models.SPACCounts     `json:"counts"`
}

// SPACServicer defines the contract for SPAC lifecycle management.
type SPACServicer interface {
	CreateSPAC(ac auth.Context, in SPACInput) (*models.SPAC, error)
	ListSPACs(ac auth.Context, page pagination.PageRequest, filter SPACFilter) (*pagination.PageResponse[models.SPAC], error)
	GetSPAC(ac auth.Context, id string) (*models.SPAC, error)
	UpdateSPAC(ac auth.Context, id string, upd SPACUpdate) (*models.SPAC, error)
	DeleteSPAC(ac auth.Context, id string) error
	AdvancePhase(ac auth.Context, id string, to models.SPACPhase) (*models.SPAC, error)
	UpdateStatus(ac auth.Context, id string, to models.SPACStatus) (*models.SPAC, error)
	GetMetrics(ac auth.Context, id string, now time.Time) (*SPACMetrics, error)
	GetTimeline(ac auth.Context, id string, now time.Time) ([]analytics.TimelineEvent, error)
}

// TargetInput holds the fields of a new target.
type TargetInput struct {
	SPACID          *string
	Name            string
	Industry        string
	Description     string
	Headquarters    string
	EnterpriseValue decimal.Decimal
}

// TargetUpdate holds the changed fields of a target. Nil means unchanged.
type TargetUpdate struct {
	SPACID          *string
	Name            *string
	Industry        *string
	Description     *string
	Headquarters    *string
	EnterpriseValue *decimal.Decimal
}

// TargetFilter holds optional filter parameters for listing targets.
type TargetFilter struct {
	SPACID   *string
	Stage    *models.DealStage
	Industry string
	MinScore *int
	Search   string
}

// TargetServicer defines the contract for the deal pipeline.
type TargetServicer interface {
	CreateTarget(ac auth.Context, in TargetInput) (*models.Target, error)
	ListTargets(ac auth.Context, page pagination.PageRequest, filter TargetFilter) (*pagination.PageResponse[models.Target], error)
	GetTarget(ac auth.Context, id string) (*models.Target, error)
	UpdateTarget(ac auth.Context, id string, upd TargetUpdate) (*models.Target, error)
	DeleteTarget(ac auth.Context, id string) error
	MoveStage(ac auth.Context, id string, to models.DealStage, reason string) (*models.Target, error)
	GetFunnel(ac auth.Context, spacID *string) ([]analytics.FunnelStage, error)
}

// DocumentInput describes a new file or folder.
type DocumentInput struct {
	SPACID   *string
	ParentID *string
	Name     string
	MimeType string
	FileSize int64
}

// VersionInput describes a new version of an existing file.
type VersionInput struct {
	Name     string
	MimeType string
	FileSize int64
}

// DocumentServicer defines the contract for the data room.
type DocumentServicer interface {
	CreateFolder(ac auth.Context, in DocumentInput) (*models.Document, error)
	CreateFile(ac auth.Context, in DocumentInput) (*models.Document, error)
	ListDocuments(ac auth.Context, spacID, parentID *string) ([]models.Document, error)
	GetDocument(ac auth.Context, id string) (*models.Document, error)
	AddVersion(ac auth.Context, id string, in VersionInput) (*models.Document, error)
	ListVersions(ac auth.Context, id string) ([]models.Document, error)
	UpdateStatus(ac auth.Context, id string, status models.DocumentStatus) (*models.Document, error)
	DeleteDocument(ac auth.Context, id string) error
}

// FilingInput holds the fields of a new filing.
type FilingInput struct {
	SPACID          string
	FormType        string
	FiledDate       *time.Time
	DueDate         *time.Time
	Status          models.FilingStatus
	EdgarURL        string
	AccessionNumber *string
	Description     string
}

// FilingUpdate holds the changed fields of a filing. Nil means unchanged.
type FilingUpdate struct {
	FormType        *string
	FiledDate       *time.Time
	DueDate         *time.Time
	Status          *models.FilingStatus
	EdgarURL        *string
	AccessionNumber *string
	Description     *string
}

// FilingFilter holds optional filter parameters for listing filings.
type FilingFilter struct {
	SPACID *string
	Status *models.FilingStatus
}

// UpcomingFiling is an unfiled filing with its distance to the due date.
type UpcomingFiling struct {
	models.Filing
	DaysUntil  *int `json:"days_until"`
	IsUrgent   bool `json:"is_urgent"`
	IsCritical bool `json:"is_critical"`
}

// SPACSyncer syncs one SPAC's filings from EDGAR.
type SPACSyncer interface {
	SyncSPAC(ctx context.Context, spac models.SPAC) (edgar.SyncResult, error)
}

// FilingServicer defines the contract for the compliance calendar.
type FilingServicer interface {
	CreateFiling(ac auth.Context, in FilingInput) (*models.Filing, error)
	ListFilings(ac auth.Context, page pagination.PageRequest, filter FilingFilter) (*pagination.PageResponse[models.Filing], error)
	GetFiling(ac auth.Context, id string) (*models.Filing, error)
	UpdateFiling(ac auth.Context, id string, upd FilingUpdate) (*models.Filing, error)
	DeleteFiling(ac auth.Context, id string) error
	Upcoming(ac auth.Context, days int, now time.Time) ([]UpcomingFiling, error)
	SyncFromEdgar(ctx context.Context, ac auth.Context, spacID string) (*edgar.SyncResult, error)
}

// TaskInput holds the fields of a new task.
type TaskInput struct {
	SPACID      *string
	TargetID    *string
	Title       string
	Description string
	DueDate     *time.Time
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  *string
}

// TaskUpdate holds the changed fields of a task. Nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *string
}

// TaskFilter holds optional filter parameters for listing tasks.
type TaskFilter struct {
	SPACID     *string
	TargetID   *string
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	AssigneeID *string
}

// TaskServicer defines the contract for task tracking.
type TaskServicer interface {
	CreateTask(ac auth.Context, in TaskInput) (*models.Task, error)
	ListTasks(ac auth.Context, page pagination.PageRequest, filter TaskFilter) (*pagination.PageResponse[models.Task], error)
	GetTask(ac auth.Context, id string) (*models.Task, error)
	UpdateTask(ac auth.Context, id string, upd TaskUpdate) (*models.Task, error)
	DeleteTask(ac auth.Context, id string) error
}

// ScoreInput is a completed scoring to append to a target's history.
type ScoreInput struct {
	OverallScore int
	Management   *int
	Market       *int
	Financial    *int
	Operational  *int
	Transaction  *int
	Thesis       string
	Model        string
	RawResponse  json.RawMessage
}

// ScoreHistory is a target's history, newest first, with its derived trend.
type ScoreHistory struct {
	TargetID  string                     `json:"target_id"`
	Entries   []models.ScoreHistoryEntry `json:"entries"`
	Trend     analytics.ScoreTrend       `json:"trend"`
	Sparkline []int                      `json:"sparkline"`
}

// TargetScorer evaluates one target against the external scoring endpoint.
type TargetScorer interface {
	Score(ctx context.Context, in scoring.Request) (*scoring.Result, error)
}

// ScoreServicer defines the contract for target scoring.
type ScoreServicer interface {
	RecordScore(ac auth.Context, targetID string, in ScoreInput) (*ScoreHistory, error)
	ScoreTarget(ctx context.Context, ac auth.Context, targetID string) (*ScoreHistory, error)
	GetHistory(ac auth.Context, targetID string, limit int) (*ScoreHistory, error)
}

// PipeInvestorInput holds the fields of a new PIPE investor.
type PipeInvestorInput struct {
	SPACID             string
	Name               string
	Type               models.InvestorType
	CommitmentAmount   decimal.Decimal
	PricePerShare      decimal.Decimal
	Shares             int64
	SubscriptionStatus models.SubscriptionStatus
	Notes              string
}

// PipeInvestorUpdate holds the changed fields of a PIPE investor.
type PipeInvestorUpdate struct {
	Name               *string
	Type               *models.InvestorType
	CommitmentAmount   *decimal.Decimal
	PricePerShare      *decimal.Decimal
	Shares             *int64
	SubscriptionStatus *models.SubscriptionStatus
	Notes              *string
}

// PipeServicer defines the contract for PIPE investor tracking.
type PipeServicer interface {
	CreateInvestor(ac auth.Context, in PipeInvestorInput) (*models.PipeInvestor, error)
	ListInvestors(ac auth.Context, spacID string) ([]models.PipeInvestor, error)
	UpdateInvestor(ac auth.Context, id string, upd PipeInvestorUpdate) (*models.PipeInvestor, error)
	DeleteInvestor(ac auth.Context, id string) error
	GetSummary(ac auth.Context, spacID string, targetRaise decimal.Decimal) (*analytics.PipeSummary, error)
}

// HolderInput is one holder of a share class.
type HolderInput struct {
	Name       string
	HolderType models.HolderType
	Shares     int64
}

// ShareClassInput replaces one class of a SPAC's cap table.
type ShareClassInput struct {
	Class       models.ShareClassKind
	TotalShares int64
	VotingPower float64
	Holders     []HolderInput
}

// CapTableView is the computed cap table with its validation outcome.
type CapTableView struct {
	analytics.CapTableSummary
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// CapTableServicer defines the contract for cap table management.
type CapTableServicer interface {
	UpsertShareClass(ac auth.Context, spacID string, in ShareClassInput) (*models.ShareClass, error)
	DeleteShareClass(ac auth.Context, spacID string, class models.ShareClassKind) error
	GetCapTable(ac auth.Context, spacID string) (*CapTableView, error)
}

// TrustTransactionInput holds the fields of a new trust movement.
type TrustTransactionInput struct {
	SPACID      string
	Type        models.TrustTransactionType
	Amount      decimal.Decimal
	OccurredAt  time.Time
	Description string
}

// TrustFilter holds optional filter parameters for listing trust movements.
type TrustFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Type     *models.TrustTransactionType
}

// TrustBalance is the current state of a SPAC's trust account.
type TrustBalance struct {
	SPACID     string                `json:"spac_id"`
	Balance    decimal.Decimal       `json:"balance"`
	Deposits   decimal.Decimal       `json:"deposits"`
	Outflows   decimal.Decimal       `json:"outflows"`
	PerShare   analytics.PerShare    `json:"per_share"`
	Redemption *analytics.Redemption `json:"redemption,omitempty"`
}

// TrustServicer defines the contract for the trust account ledger.
type TrustServicer interface {
	RecordTransaction(ac auth.Context, in TrustTransactionInput) (*models.TrustTransaction, error)
	ListTransactions(ac auth.Context, spacID string, page pagination.PageRequest, filter TrustFilter) (*pagination.PageResponse[models.TrustTransaction], error)
	DeleteTransaction(ac auth.Context, id string) error
	GetBalance(ac auth.Context, spacID string) (*TrustBalance, error)
	// RecordSnapshots stores the balance of every live SPAC at recordedAt.
	RecordSnapshots(recordedAt time.Time) (int, error)
	ListSnapshots(ac auth.Context, spacID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.TrustSnapshot], error)
}

// DeadlineItem is a live SPAC with its deadline metrics.
type DeadlineItem struct {
	SPACID   string             `json:"spac_id"`
	Name     string             `json:"name"`
	Ticker   string             `json:"ticker"`
	Deadline analytics.Deadline `json:"deadline"`
}

// Overview is the organization dashboard.
type Overview struct {
	StatusCounts        map[models.SPACStatus]int64 `json:"status_counts"`
	TotalSPACs          int64                       `json:"total_spacs"`
	UrgentDeadlines     []DeadlineItem              `json:"urgent_deadlines"`
	Funnel              []analytics.FunnelStage     `json:"funnel"`
	ActivePipelineValue decimal.Decimal             `json:"active_pipeline_value"`
	UpcomingFilings     []UpcomingFiling            `json:"upcoming_filings"`
}

// DashboardServicer defines the contract for the overview dashboard.
type DashboardServicer interface {
	GetOverview(ctx context.Context, ac auth.Context, now time.Time) (*Overview, error)
}

// TeamServicer defines the contract for organization membership.
type TeamServicer interface {
	ListMembers(ctx context.Context, ac auth.Context) ([]models.TeamMember, error)
	AddMember(ctx context.Context, ac auth.Context, email string, role models.Role, title string) (*models.TeamMember, error)
	UpdateMemberRole(ctx context.Context, ac auth.Context, memberID string, role models.Role) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, ac auth.Context, memberID string) error
}

// BillingUpdate holds the changed fields of a billing account.
type BillingUpdate struct {
	Plan         *models.BillingPlan
	Seats        *int
	BillingEmail *string
}

// BillingServicer defines the contract for plan and seat management.
type BillingServicer interface {
	GetBilling(ctx context.Context, ac auth.Context) (*models.BillingAccount, error)
	UpdateBilling(ctx context.Context, ac auth.Context, upd BillingUpdate) (*models.BillingAccount, error)
}

// IntegrationServicer defines the contract for third-party connections.
type IntegrationServicer interface {
	ListIntegrations(ctx context.Context, ac auth.Context) ([]models.Integration, error)
	SaveIntegration(ctx context.Context, ac auth.Context, provider string, enabled bool, settings json.RawMessage) (*models.Integration, error)
	DeleteIntegration(ctx context.Context, ac auth.Context, provider string) error
}

// APIKeyServicer defines the contract for organization API keys.
type APIKeyServicer interface {
	ListKeys(ctx context.Context, ac auth.Context) ([]models.APIKey, error)
	// CreateKey returns the stored key and its secret. The secret is not
	// retrievable afterwards.
	CreateKey(ctx context.Context, ac auth.Context, name string) (*models.APIKey, string, error)
	RevokeKey(ctx context.Context, ac auth.Context, id string) error
	Authenticate(ctx context.Context, secret string) (auth.Context, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ac auth.Context, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
