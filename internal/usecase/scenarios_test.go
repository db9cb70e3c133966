package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InsightHub/internal/domain/models"
)

func TestScenariosSumToOne(t *testing.T) {
	for _, base := range []float64{0.05, 0.3, 0.5, 0.7, 0.95} {
		scenarios := GenerateScenarios(models.PipelineContext{}, base)
		require.Len(t, scenarios, 3)

		sum := 0.0
		for _, s := range scenarios {
			sum += s.Probability
			assert.GreaterOrEqual(t, s.Probability, 0.0)
			assert.NotEmpty(t, s.Drivers)
			assert.LessOrEqual(t, len(s.Drivers), 3)
		}
		assert.InDelta(t, 1.0, sum, 0.01)
	}
}

func TestScenariosBullBeatsBearOnBullishBase(t *testing.T) {
	scenarios := GenerateScenarios(bullishContext(), 0.65)

	byLabel := make(map[string]models.Scenario)
	for _, s := range scenarios {
		byLabel[s.Label] = s
	}
	require.Contains(t, byLabel, "Bull Case")
	require.Contains(t, byLabel, "Bear Case")
	assert.Greater(t, byLabel["Bull Case"].Probability, byLabel["Bear Case"].Probability)
}

func TestScenarioDriversReflectSignals(t *testing.T) {
	pc := bullishContext()
	scenarios := GenerateScenarios(pc, 0.65)

	var bull models.Scenario
	for _, s := range scenarios {
		if s.Label == "Bull Case" {
			bull = s
		}
	}
	assert.Contains(t, bull.Drivers, "trend up")
}
