package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"spacos/internal/models"
)

// FunnelInput is the part of a target the funnel needs.
type FunnelInput struct {
	Stage           models.DealStage
	EnterpriseValue decimal.Decimal
}

// FunnelStage is one bar of the pipeline funnel.
type FunnelStage struct {
	Stage         models.DealStage `json:"stage"`
	Count         int              `json:"count"`
	PipelineValue decimal.Decimal  `json:"pipeline_value"`
}

// Funnel groups targets by stage. The result always has one entry per deal
// stage, in canonical order, including stages with no targets. A target in
// an unknown stage is an error.
func Funnel(targets []FunnelInput) ([]FunnelStage, error) {
	stages := models.AllDealStages()
	out := make([]FunnelStage, len(stages))
	for i, s := range stages {
		out[i] = FunnelStage{Stage: s, PipelineValue: decimal.Zero}
	}
	for _, t := range targets {
		i := t.Stage.Index()
		if i < 0 {
			return nil, fmt.Errorf("funnel: deal stage %q: %w", t.Stage, models.ErrUnknownValue)
		}
		out[i].Count++
		out[i].PipelineValue = out[i].PipelineValue.Add(t.EnterpriseValue)
	}
	return out, nil
}

// ActivePipelineValue sums enterprise value over stages that are still
// live, leaving out closed and passed deals.
func ActivePipelineValue(funnel []FunnelStage) decimal.Decimal {
	total := decimal.Zero
	for _, f := range funnel {
		if !f.Stage.IsTerminal() {
			total = total.Add(f.PipelineValue)
		}
	}
	return total
}
