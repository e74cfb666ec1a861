package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacos/internal/models"
)

func TestFunnelKeepsEmptyStages(t *testing.T) {
	targets := []FunnelInput{
		{Stage: models.DealStageSourcing, EnterpriseValue: decimal.NewFromInt(100)},
		{Stage: models.DealStageSourcing, EnterpriseValue: decimal.NewFromInt(50)},
		{Stage: models.DealStageExecution, EnterpriseValue: decimal.NewFromInt(400)},
		{Stage: models.DealStagePassed, EnterpriseValue: decimal.NewFromInt(75)},
	}

	funnel, err := Funnel(targets)
	require.NoError(t, err)
	require.Len(t, funnel, models.NumDealStages)

	for i, s := range models.AllDealStages() {
		assert.Equal(t, s, funnel[i].Stage)
	}

	negotiation := funnel[models.DealStageNegotiation.Index()]
	assert.Equal(t, models.DealStageNegotiation, negotiation.Stage)
	assert.Equal(t, 0, negotiation.Count)
	assert.True(t, negotiation.PipelineValue.IsZero())

	sourcing := funnel[models.DealStageSourcing.Index()]
	assert.Equal(t, 2, sourcing.Count)
	assert.Equal(t, "150", sourcing.PipelineValue.String())

	assert.Equal(t, "550", ActivePipelineValue(funnel).String())
}

func TestFunnelEmptyInput(t *testing.T) {
	funnel, err := Funnel(nil)
	require.NoError(t, err)
	assert.Len(t, funnel, models.NumDealStages)
	for _, f := range funnel {
		assert.Zero(t, f.Count)
	}
}

func TestFunnelRejectsUnknownStage(t *testing.T) {
	_, err := Funnel([]FunnelInput{{Stage: "won"}})
	assert.ErrorIs(t, err, models.ErrUnknownValue)
}
