// Package badge maps every closed status vocabulary to a display variant.
//
// Each table is an array whose length is pinned to its vocabulary size at
// compile time, so adding a status to internal/models fails the build here
// until the new value is given a variant. Package init then checks that the
// table covers every value exactly once.
package badge

import (
	"fmt"

	"spacos/internal/models"
)

// Variant is the visual treatment a client applies to a status.
type Variant string

const (
	Default   Variant = "default"
	Secondary Variant = "secondary"
	Success   Variant = "success"
	Warning   Variant = "warning"
	Danger    Variant = "danger"
	Info      Variant = "info"
)

type entry[T ~string] struct {
	value   T
	variant Variant
}

var spacStatusVariants = [...]entry[models.SPACStatus]{
	{models.SPACStatusDraft, Secondary},
	{models.SPACStatusActive, Success},
	{models.SPACStatusCompleted, Info},
	{models.SPACStatusLiquidated, Danger},
}

var spacPhaseVariants = [...]entry[models.SPACPhase]{
	{models.SPACPhaseFormation, Secondary},
	{models.SPACPhasePreIPO, Secondary},
	{models.SPACPhaseIPO, Info},
	{models.SPACPhaseTargetSearch, Info},
	{models.SPACPhaseDueDiligence, Warning},
	{models.SPACPhaseDefinitiveAgreement, Warning},
	{models.SPACPhaseProxyVote, Warning},
	{models.SPACPhaseClosing, Success},
	{models.SPACPhasePostMerger, Default},
}

var dealStageVariants = [...]entry[models.DealStage]{
	{models.DealStageSourcing, Secondary},
	{models.DealStageInitialScreening, Info},
	{models.DealStageDeepEvaluation, Info},
	{models.DealStageNegotiation, Warning},
	{models.DealStageExecution, Warning},
	{models.DealStageClosed, Success},
	{models.DealStagePassed, Danger},
}

var documentStatusVariants = [...]entry[models.DocumentStatus]{
	{models.DocumentStatusDraft, Secondary},
	{models.DocumentStatusUnderReview, Warning},
	{models.DocumentStatusApproved, Success},
	{models.DocumentStatusSubmitted, Info},
	{models.DocumentStatusFinal, Success},
	{models.DocumentStatusAccepted, Success},
	{models.DocumentStatusAmended, Warning},
	{models.DocumentStatusArchived, Default},
}

var taskStatusVariants = [...]entry[models.TaskStatus]{
	{models.TaskStatusNotStarted, Secondary},
	{models.TaskStatusInProgress, Info},
	{models.TaskStatusCompleted, Success},
	{models.TaskStatusBlocked, Danger},
	{models.TaskStatusCancelled, Default},
}

var taskPriorityVariants = [...]entry[models.TaskPriority]{
	{models.TaskPriorityLow, Secondary},
	{models.TaskPriorityMedium, Info},
	{models.TaskPriorityHigh, Warning},
	{models.TaskPriorityCritical, Danger},
}

var filingStatusVariants = [...]entry[models.FilingStatus]{
	{models.FilingStatusDraft, Secondary},
	{models.FilingStatusUnderReview, Warning},
	{models.FilingStatusSubmitted, Info},
	{models.FilingStatusAccepted, Success},
	{models.FilingStatusAmended, Warning},
	{models.FilingStatusRejected, Danger},
}

var subscriptionStatusVariants = [...]entry[models.SubscriptionStatus]{
	{models.SubscriptionCommitted, Success},
	{models.SubscriptionSoftCircled, Info},
	{models.SubscriptionInDiligence, Warning},
	{models.SubscriptionDeclined, Danger},
	{models.SubscriptionPending, Secondary},
}

// Table sizes must equal vocabulary sizes: a negative array length in either
// direction is a compile error.
var (
	_ [len(spacStatusVariants) - models.NumSPACStatuses]struct{}
	_ [models.NumSPACStatuses - len(spacStatusVariants)]struct{}

	_ [len(spacPhaseVariants) - models.NumSPACPhases]struct{}
	_ [models.NumSPACPhases - len(spacPhaseVariants)]struct{}

	_ [len(dealStageVariants) - models.NumDealStages]struct{}
	_ [models.NumDealStages - len(dealStageVariants)]struct{}

	_ [len(documentStatusVariants) - models.NumDocumentStatuses]struct{}
	_ [models.NumDocumentStatuses - len(documentStatusVariants)]struct{}

	_ [len(taskStatusVariants) - models.NumTaskStatuses]struct{}
	_ [models.NumTaskStatuses - len(taskStatusVariants)]struct{}

	_ [len(taskPriorityVariants) - models.NumTaskPriorities]struct{}
	_ [models.NumTaskPriorities - len(taskPriorityVariants)]struct{}

	_ [len(filingStatusVariants) - models.NumFilingStatuses]struct{}
	_ [models.NumFilingStatuses - len(filingStatusVariants)]struct{}

	_ [len(subscriptionStatusVariants) - models.NumSubscriptionStatuses]struct{}
	_ [models.NumSubscriptionStatuses - len(subscriptionStatusVariants)]struct{}
)

func init() {
	mustCover("spac status", spacStatusVariants[:], models.AllSPACStatuses())
	mustCover("spac phase", spacPhaseVariants[:], models.AllSPACPhases())
	mustCover("deal stage", dealStageVariants[:], models.AllDealStages())
	mustCover("document status", documentStatusVariants[:], models.AllDocumentStatuses())
	mustCover("task status", taskStatusVariants[:], models.AllTaskStatuses())
	mustCover("task priority", taskPriorityVariants[:], models.AllTaskPriorities())
	mustCover("filing status", filingStatusVariants[:], models.AllFilingStatuses())
	mustCover("subscription status", subscriptionStatusVariants[:], models.AllSubscriptionStatuses())
}

func mustCover[T ~string](kind string, table []entry[T], all []T) {
	if err := coverage(table, all); err != nil {
		panic(fmt.Sprintf("badge: %s table: %v", kind, err))
	}
}

// coverage reports a table that misses or repeats a vocabulary value.
func coverage[T ~string](table []entry[T], all []T) error {
	seen := make(map[T]int, len(table))
	for _, e := range table {
		seen[e.value]++
	}
	for _, v := range all {
		switch seen[v] {
		case 0:
			return fmt.Errorf("missing %q", v)
		case 1:
		default:
			return fmt.Errorf("duplicate %q", v)
		}
	}
	return nil
}

func lookup[T ~string](kind string, table []entry[T], v T) (Variant, error) {
	for _, e := range table {
		if e.value == v {
			return e.variant, nil
		}
	}
	return "", fmt.Errorf("badge for %s %q: %w", kind, v, models.ErrUnknownValue)
}

func ForSPACStatus(s models.SPACStatus) (Variant, error) {
	return lookup("spac status", spacStatusVariants[:], s)
}

func ForSPACPhase(p models.SPACPhase) (Variant, error) {
	return lookup("spac phase", spacPhaseVariants[:], p)
}

func ForDealStage(d models.DealStage) (Variant, error) {
	return lookup("deal stage", dealStageVariants[:], d)
}

func ForDocumentStatus(s models.DocumentStatus) (Variant, error) {
	return lookup("document status", documentStatusVariants[:], s)
}

func ForTaskStatus(s models.TaskStatus) (Variant, error) {
	return lookup("task status", taskStatusVariants[:], s)
}

func ForTaskPriority(p models.TaskPriority) (Variant, error) {
	return lookup("task priority", taskPriorityVariants[:], p)
}

func ForFilingStatus(s models.FilingStatus) (Variant, error) {
	return lookup("filing status", filingStatusVariants[:], s)
}

func ForSubscriptionStatus(s models.SubscriptionStatus) (Variant, error) {
	return lookup("subscription status", subscriptionStatusVariants[:], s)
}

// Option is one value of a vocabulary together with its variant.
type Option struct {
	Value   string  `json:"value"`
	Variant Variant `json:"variant"`
}

func options[T ~string](table []entry[T]) []Option {
	out := make([]Option, len(table))
	for i, e := range table {
		out[i] = Option{Value: string(e.value), Variant: e.variant}
	}
	return out
}

// Vocabularies returns every badge table keyed by vocabulary name, in
// declaration order, for clients that render statuses.
func Vocabularies() map[string][]Option {
	return map[string][]Option{
		"spac_status":         options(spacStatusVariants[:]),
		"spac_phase":          options(spacPhaseVariants[:]),
		"deal_stage":          options(dealStageVariants[:]),
		"document_status":     options(documentStatusVariants[:]),
		"task_status":         options(taskStatusVariants[:]),
		"task_priority":       options(taskPriorityVariants[:]),
		"filing_status":       options(filingStatusVariants[:]),
		"subscription_status": options(subscriptionStatusVariants[:]),
	}
}
