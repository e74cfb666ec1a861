package models

import (
	"errors"
	"fmt"
)

// ErrUnknownValue is returned when a stored or submitted value falls outside
// its closed vocabulary.
var ErrUnknownValue = errors.New("unknown enum value")

func parseEnum[T ~string](kind string, all []T, v string) (T, error) {
	for _, candidate := range all {
		if string(candidate) == v {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", kind, v, ErrUnknownValue)
}

func indexOf[T comparable](all []T, v T) int {
	for i, candidate := range all {
		if candidate == v {
			return i
		}
	}
	return -1
}

// SPACStatus is the business status of a SPAC.
type SPACStatus string

const (
	SPACStatusDraft      SPACStatus = "draft"
	SPACStatusActive     SPACStatus = "active"
	SPACStatusCompleted  SPACStatus = "completed"
	SPACStatusLiquidated SPACStatus = "liquidated"
)

var spacStatuses = [...]SPACStatus{SPACStatusDraft, SPACStatusActive, SPACStatusCompleted, SPACStatusLiquidated}

// NumSPACStatuses is the size of the SPACStatus vocabulary.
const NumSPACStatuses = len(spacStatuses)

// AllSPACStatuses returns every SPAC status in declaration order.
func AllSPACStatuses() []SPACStatus {
	s := spacStatuses
	return s[:]
}

// Valid reports whether s is a known SPAC status.
func (s SPACStatus) Valid() bool {
	return indexOf(spacStatuses[:], s) >= 0
}

// IsTerminal reports whether the SPAC has finished its life.
func (s SPACStatus) IsTerminal() bool {
	return s == SPACStatusCompleted || s == SPACStatusLiquidated
}

// ParseSPACStatus returns the SPAC status named by v or an error wrapping ErrUnknownValue.
func ParseSPACStatus(v string) (SPACStatus, error) {
	return parseEnum("spac status", spacStatuses[:], v)
}

// SPACPhase is the lifecycle phase of a SPAC. Declaration order is the
// canonical order phases advance through.
type SPACPhase string

const (
	SPACPhaseFormation           SPACPhase = "formation"
	SPACPhasePreIPO              SPACPhase = "pre_ipo"
	SPACPhaseIPO                 SPACPhase = "ipo"
	SPACPhaseTargetSearch        SPACPhase = "target_search"
	SPACPhaseDueDiligence        SPACPhase = "due_diligence"
	SPACPhaseDefinitiveAgreement SPACPhase = "definitive_agreement"
	SPACPhaseProxyVote           SPACPhase = "proxy_vote"
	SPACPhaseClosing             SPACPhase = "closing"
	SPACPhasePostMerger          SPACPhase = "post_merger"
)

var spacPhases = [...]SPACPhase{
	SPACPhaseFormation,
	SPACPhasePreIPO,
	SPACPhaseIPO,
	SPACPhaseTargetSearch,
	SPACPhaseDueDiligence,
	SPACPhaseDefinitiveAgreement,
	SPACPhaseProxyVote,
	SPACPhaseClosing,
	SPACPhasePostMerger,
}

// NumSPACPhases is the size of the SPACPhase vocabulary.
const NumSPACPhases = len(spacPhases)

// AllSPACPhases returns every SPAC phase in declaration order.
func AllSPACPhases() []SPACPhase {
	p := spacPhases
	return p[:]
}

// Valid reports whether p is a known SPAC phase.
func (p SPACPhase) Valid() bool {
	return p.Index() >= 0
}

// Index returns the position of p in the canonical phase order, or -1.
// Index returns the position of p in declaration order, or -1.
func (p SPACPhase) Index() int {
	return indexOf(spacPhases[:], p)
}

// ParseSPACPhase returns the SPAC phase named by v or an error wrapping ErrUnknownValue.
func ParseSPACPhase(v string) (SPACPhase, error) {
	return parseEnum("spac phase", spacPhases[:], v)
}

// DealStage is the pipeline stage of an acquisition target.
type DealStage string

const (
	DealStageSourcing         DealStage = "sourcing"
	DealStageInitialScreening DealStage = "initial_screening"
	DealStageDeepEvaluation   DealStage = "deep_evaluation"
	DealStageNegotiation      DealStage = "negotiation"
	DealStageExecution        DealStage = "execution"
	DealStageClosed           DealStage = "closed"
	DealStagePassed           DealStage = "passed"
)

// dealStages lists the main line in order, followed by the passed branch.
var dealStages = [...]DealStage{
	DealStageSourcing,
	DealStageInitialScreening,
	DealStageDeepEvaluation,
	DealStageNegotiation,
	DealStageExecution,
	DealStageClosed,
	DealStagePassed,
}

// NumDealStages is the size of the DealStage vocabulary.
const NumDealStages = len(dealStages)

// AllDealStages returns every deal stage in declaration order.
func AllDealStages() []DealStage {
	d := dealStages
	return d[:]
}

// Valid reports whether d is a known deal stage.
func (d DealStage) Valid() bool {
	return d.Index() >= 0
}

// Index returns the position of d in declaration order, or -1.
func (d DealStage) Index() int {
	return indexOf(dealStages[:], d)
}

// IsTerminal reports whether no further stage change is possible.
func (d DealStage) IsTerminal() bool {
	return d == DealStageClosed || d == DealStagePassed
}

// ParseDealStage returns the deal stage named by v or an error wrapping ErrUnknownValue.
func ParseDealStage(v string) (DealStage, error) {
	return parseEnum("deal stage", dealStages[:], v)
}

// DocumentType distinguishes folders from files in the data room.
type DocumentType string

const (
	DocumentTypeFolder DocumentType = "folder"
	DocumentTypeFile   DocumentType = "file"
)

var documentTypes = [...]DocumentType{DocumentTypeFolder, DocumentTypeFile}

// NumDocumentTypes is the size of the DocumentType vocabulary.
const NumDocumentTypes = len(documentTypes)

// AllDocumentTypes returns every document type in declaration order.
func AllDocumentTypes() []DocumentType {
	d := documentTypes
	return d[:]
}

// Valid reports whether d is a known document type.
func (d DocumentType) Valid() bool {
	return indexOf(documentTypes[:], d) >= 0
}

// ParseDocumentType returns the document type named by v or an error wrapping ErrUnknownValue.
func ParseDocumentType(v string) (DocumentType, error) {
	return parseEnum("document type", documentTypes[:], v)
}

// DocumentStatus is the review state of a document.
type DocumentStatus string

const (
	DocumentStatusDraft       DocumentStatus = "DRAFT"
	DocumentStatusUnderReview DocumentStatus = "UNDER_REVIEW"
	DocumentStatusApproved    DocumentStatus = "APPROVED"
	DocumentStatusSubmitted   DocumentStatus = "SUBMITTED"
	DocumentStatusFinal       DocumentStatus = "FINAL"
	DocumentStatusAccepted    DocumentStatus = "ACCEPTED"
	DocumentStatusAmended     DocumentStatus = "AMENDED"
	DocumentStatusArchived    DocumentStatus = "ARCHIVED"
)

var documentStatuses = [...]DocumentStatus{
	DocumentStatusDraft,
	DocumentStatusUnderReview,
	DocumentStatusApproved,
	DocumentStatusSubmitted,
	DocumentStatusFinal,
	DocumentStatusAccepted,
	DocumentStatusAmended,
	DocumentStatusArchived,
}

// NumDocumentStatuses is the size of the DocumentStatus vocabulary.
const NumDocumentStatuses = len(documentStatuses)

// AllDocumentStatuses returns every document status in declaration order.
func AllDocumentStatuses() []DocumentStatus {
	d := documentStatuses
	return d[:]
}

// Valid reports whether d is a known document status.
func (d DocumentStatus) Valid() bool {
	return indexOf(documentStatuses[:], d) >= 0
}

// ParseDocumentStatus returns the document status named by v or an error wrapping ErrUnknownValue.
func ParseDocumentStatus(v string) (DocumentStatus, error) {
	return parseEnum("document status", documentStatuses[:], v)
}

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "NOT_STARTED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

var taskStatuses = [...]TaskStatus{
	TaskStatusNotStarted,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusBlocked,
	TaskStatusCancelled,
}

// NumTaskStatuses is the size of the TaskStatus vocabulary.
const NumTaskStatuses = len(taskStatuses)

// AllTaskStatuses returns every task status in declaration order.
func AllTaskStatuses() []TaskStatus {
	s := taskStatuses
	return s[:]
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	return indexOf(taskStatuses[:], s) >= 0
}

// ParseTaskStatus returns the task status named by v or an error wrapping ErrUnknownValue.
func ParseTaskStatus(v string) (TaskStatus, error) {
	return parseEnum("task status", taskStatuses[:], v)
}

// TaskPriority ranks tasks from LOW to CRITICAL.
type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "LOW"
	TaskPriorityMedium   TaskPriority = "MEDIUM"
	TaskPriorityHigh     TaskPriority = "HIGH"
	TaskPriorityCritical TaskPriority = "CRITICAL"
)

var taskPriorities = [...]TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical}

// NumTaskPriorities is the size of the TaskPriority vocabulary.
const NumTaskPriorities = len(taskPriorities)

// AllTaskPriorities returns every task priority in declaration order.
func AllTaskPriorities() []TaskPriority {
	p := taskPriorities
	return p[:]
}

// Valid reports whether p is a known task priority.
func (p TaskPriority) Valid() bool {
	return indexOf(taskPriorities[:], p) >= 0
}

// ParseTaskPriority returns the task priority named by v or an error wrapping ErrUnknownValue.
func ParseTaskPriority(v string) (TaskPriority, error) {
	return parseEnum("task priority", taskPriorities[:], v)
}

// FilingStatus is the submission state of a regulatory filing.
type FilingStatus string

const (
	FilingStatusDraft       FilingStatus = "DRAFT"
	FilingStatusUnderReview FilingStatus = "UNDER_REVIEW"
	FilingStatusSubmitted   FilingStatus = "SUBMITTED"
	FilingStatusAccepted    FilingStatus = "ACCEPTED"
	FilingStatusAmended     FilingStatus = "AMENDED"
	FilingStatusRejected    FilingStatus = "REJECTED"
)

var filingStatuses = [...]FilingStatus{
	FilingStatusDraft,
	FilingStatusUnderReview,
	FilingStatusSubmitted,
	FilingStatusAccepted,
	FilingStatusAmended,
	FilingStatusRejected,
}

// NumFilingStatuses is the size of the FilingStatus vocabulary.
const NumFilingStatuses = len(filingStatuses)

// AllFilingStatuses returns every filing status in declaration order.
func AllFilingStatuses() []FilingStatus {
	s := filingStatuses
	return s[:]
}

// Valid reports whether s is a known filing status.
func (s FilingStatus) Valid() bool {
	return indexOf(filingStatuses[:], s) >= 0
}

// IsFiled reports whether the filing has reached the SEC.
func (s FilingStatus) IsFiled() bool {
	return s == FilingStatusSubmitted || s == FilingStatusAccepted || s == FilingStatusAmended
}

// ParseFilingStatus returns the filing status named by v or an error wrapping ErrUnknownValue.
func ParseFilingStatus(v string) (FilingStatus, error) {
	return parseEnum("filing status", filingStatuses[:], v)
}

// InvestorType classifies PIPE investors.
type InvestorType string

const (
	InvestorTypeInstitutional InvestorType = "institutional"
	InvestorTypeHedgeFund     InvestorType = "hedge_fund"
	InvestorTypeFamilyOffice  InvestorType = "family_office"
	InvestorTypeStrategic     InvestorType = "strategic"
	InvestorTypeAnchor        InvestorType = "anchor"
)

var investorTypes = [...]InvestorType{
	InvestorTypeInstitutional,
	InvestorTypeHedgeFund,
	InvestorTypeFamilyOffice,
	InvestorTypeStrategic,
	InvestorTypeAnchor,
}

// NumInvestorTypes is the size of the InvestorType vocabulary.
const NumInvestorTypes = len(investorTypes)

// AllInvestorTypes returns every investor type in declaration order.
func AllInvestorTypes() []InvestorType {
	t := investorTypes
	return t[:]
}

// Valid reports whether t is a known investor type.
func (t InvestorType) Valid() bool {
	return indexOf(investorTypes[:], t) >= 0
}

// ParseInvestorType returns the investor type named by v or an error wrapping ErrUnknownValue.
func ParseInvestorType(v string) (InvestorType, error) {
	return parseEnum("investor type", investorTypes[:], v)
}

// SubscriptionStatus is where a PIPE investor stands on their commitment.
type SubscriptionStatus string

const (
	SubscriptionCommitted   SubscriptionStatus = "committed"
	SubscriptionSoftCircled SubscriptionStatus = "soft_circled"
	SubscriptionInDiligence SubscriptionStatus = "in_diligence"
	SubscriptionDeclined    SubscriptionStatus = "declined"
	SubscriptionPending     SubscriptionStatus = "pending"
)

var subscriptionStatuses = [...]SubscriptionStatus{
	SubscriptionCommitted,
	SubscriptionSoftCircled,
	SubscriptionInDiligence,
	SubscriptionDeclined,
	SubscriptionPending,
}

// NumSubscriptionStatuses is the size of the SubscriptionStatus vocabulary.
const NumSubscriptionStatuses = len(subscriptionStatuses)

// AllSubscriptionStatuses returns every subscription status in declaration order.
func AllSubscriptionStatuses() []SubscriptionStatus {
	s := subscriptionStatuses
	return s[:]
}

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	return indexOf(subscriptionStatuses[:], s) >= 0
}

// ParseSubscriptionStatus returns the subscription status named by v or an error wrapping ErrUnknownValue.
func ParseSubscriptionStatus(v string) (SubscriptionStatus, error) {
	return parseEnum("subscription status", subscriptionStatuses[:], v)
}

// ShareClassKind identifies a cap table line.
type ShareClassKind string

const (
	ShareClassA               ShareClassKind = "class_a"
	ShareClassB               ShareClassKind = "class_b"
	ShareClassPublicWarrants  ShareClassKind = "public_warrants"
	ShareClassPrivateWarrants ShareClassKind = "private_warrants"
	ShareClassOptions         ShareClassKind = "options"
	ShareClassRSUs            ShareClassKind = "rsus"
)

var shareClassKinds = [...]ShareClassKind{
	ShareClassA,
	ShareClassB,
	ShareClassPublicWarrants,
	ShareClassPrivateWarrants,
	ShareClassOptions,
	ShareClassRSUs,
}

// NumShareClassKinds is the size of the ShareClassKind vocabulary.
const NumShareClassKinds = len(shareClassKinds)

// AllShareClassKinds returns every share class kind in declaration order.
func AllShareClassKinds() []ShareClassKind {
	k := shareClassKinds
	return k[:]
}

// Valid reports whether k is a known share class kind.
func (k ShareClassKind) Valid() bool {
	return indexOf(shareClassKinds[:], k) >= 0
}

// IsBasic reports whether the class counts toward basic shares outstanding.
func (k ShareClassKind) IsBasic() bool {
	return k == ShareClassA || k == ShareClassB
}

// ParseShareClassKind returns the share class kind named by v or an error wrapping ErrUnknownValue.
func ParseShareClassKind(v string) (ShareClassKind, error) {
	return parseEnum("share class", shareClassKinds[:], v)
}

// HolderType classifies cap table holders.
type HolderType string

const (
	HolderSponsor      HolderType = "sponsor"
	HolderPublic       HolderType = "public"
	HolderInstitution  HolderType = "institution"
	HolderManagement   HolderType = "management"
	HolderPipeInvestor HolderType = "pipe_investor"
)

var holderTypes = [...]HolderType{HolderSponsor, HolderPublic, HolderInstitution, HolderManagement, HolderPipeInvestor}

// NumHolderTypes is the size of the HolderType vocabulary.
const NumHolderTypes = len(holderTypes)

// AllHolderTypes returns every holder type in declaration order.
func AllHolderTypes() []HolderType {
	h := holderTypes
	return h[:]
}

// Valid reports whether h is a known holder type.
func (h HolderType) Valid() bool {
	return indexOf(holderTypes[:], h) >= 0
}

// ParseHolderType returns the holder type named by v or an error wrapping ErrUnknownValue.
func ParseHolderType(v string) (HolderType, error) {
	return parseEnum("holder type", holderTypes[:], v)
}

// TrustTransactionType is the kind of movement on the trust account.
type TrustTransactionType string

const (
	TrustDeposit               TrustTransactionType = "deposit"
	TrustInterest              TrustTransactionType = "interest"
	TrustWithdrawal            TrustTransactionType = "withdrawal"
	TrustRedemption            TrustTransactionType = "redemption"
	TrustExtensionContribution TrustTransactionType = "extension_contribution"
)

var trustTransactionTypes = [...]TrustTransactionType{
	TrustDeposit,
	TrustInterest,
	TrustWithdrawal,
	TrustRedemption,
	TrustExtensionContribution,
}

// NumTrustTransactionTypes is the size of the TrustTransactionType vocabulary.
const NumTrustTransactionTypes = len(trustTransactionTypes)

// AllTrustTransactionTypes returns every trust transaction type in declaration order.
func AllTrustTransactionTypes() []TrustTransactionType {
	t := trustTransactionTypes
	return t[:]
}

// Valid reports whether t is a known trust transaction type.
func (t TrustTransactionType) Valid() bool {
	return indexOf(trustTransactionTypes[:], t) >= 0
}

// IsOutflow reports whether the transaction reduces the trust balance.
func (t TrustTransactionType) IsOutflow() bool {
	return t == TrustWithdrawal || t == TrustRedemption
}

// ParseTrustTransactionType returns the trust transaction type named by v or an error wrapping ErrUnknownValue.
func ParseTrustTransactionType(v string) (TrustTransactionType, error) {
	return parseEnum("trust transaction type", trustTransactionTypes[:], v)
}

// Role is a team member's permission level within an organization. Roles are
// ordered from most to least privileged.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

var roles = [...]Role{RoleOwner, RoleAdmin, RoleAnalyst, RoleViewer}

// NumRoles is the size of the Role vocabulary.
const NumRoles = len(roles)

// AllRoles returns every role, most privileged first.
func AllRoles() []Role {
	r := roles
	return r[:]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return indexOf(roles[:], r) >= 0
}

// AtLeast reports whether r grants at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	ri, mi := indexOf(roles[:], r), indexOf(roles[:], min)
	return ri >= 0 && mi >= 0 && ri <= mi
}

// ParseRole returns the role named by v or an error wrapping ErrUnknownValue.
func ParseRole(v string) (Role, error) {
	return parseEnum("role", roles[:], v)
}

// BillingPlan is the subscription tier of an organization.
type BillingPlan string

const (
	PlanStarter      BillingPlan = "starter"
	PlanProfessional BillingPlan = "professional"
	PlanEnterprise   BillingPlan = "enterprise"
)

var billingPlans = [...]BillingPlan{PlanStarter, PlanProfessional, PlanEnterprise}

// AllBillingPlans returns every billing plan in declaration order.
func AllBillingPlans() []BillingPlan {
	p := billingPlans
	return p[:]
}

// Valid reports whether p is a known billing plan.
func (p BillingPlan) Valid() bool {
	return indexOf(billingPlans[:], p) >= 0
}

// BillingStatus is the payment state of a billing account.
type BillingStatus string

const (
	BillingActive    BillingStatus = "active"
	BillingPastDue   BillingStatus = "past_due"
	BillingCancelled BillingStatus = "cancelled"
)

var billingStatuses = [...]BillingStatus{BillingActive, BillingPastDue, BillingCancelled}

// AllBillingStatuses returns every billing status in declaration order.
func AllBillingStatuses() []BillingStatus {
	s := billingStatuses
	return s[:]
}

// Valid reports whether s is a known billing status.
func (s BillingStatus) Valid() bool {
	return indexOf(billingStatuses[:], s) >= 0
}

