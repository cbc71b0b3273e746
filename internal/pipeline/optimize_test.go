package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

func optimizable() domain.Strategy {
	return domain.Strategy{
		ID:              "strat-1",
		Name:            "Original",
		Description:     "original description",
		Parameters:      map[string]float64{"rsiPeriod": 14},
		EntryConditions: []string{"RSI > 60"},
		ExitConditions:  []string{"RSI < 40"},
		Score:           0.80,
		Metrics: &domain.PerformanceMetrics{
			CAGR:         0.20,
			SharpeRatio:  1.50,
			MaxDrawdown:  0.10,
			WinRate:      0.60,
			ProfitFactor: 2.00,
		},
	}
}

func TestMergeRevision_RevisionWins(t *testing.T) {
	s := optimizable()
	name := "Tuned"
	rev := revisionDraft{
		Name:       &name,
		Parameters: map[string]float64{"rsiPeriod": 10, "emaPeriod": 21},
	}

	merged := mergeRevision(s, rev)

	assert.Equal(t, "Tuned", merged.Name)
	assert.InDelta(t, 10, merged.Parameters["rsiPeriod"], 1e-9)
	assert.InDelta(t, 21, merged.Parameters["emaPeriod"], 1e-9)

	// Lo no revisado se conserva
	assert.Equal(t, "strat-1", merged.ID)
	assert.Equal(t, "original description", merged.Description)
	assert.Equal(t, []string{"RSI > 60"}, merged.EntryConditions)
	assert.InDelta(t, 0.80, merged.Score, 1e-9)
}

func TestMergeRevision_EmptyRevisionKeepsAll(t *testing.T) {
	s := optimizable()

	merged := mergeRevision(s, revisionDraft{})

	assert.Equal(t, s.Name, merged.Name)
	assert.Equal(t, s.Parameters, merged.Parameters)
	assert.Equal(t, s.EntryConditions, merged.EntryConditions)
}

func TestMergeRevision_ReplacesIndicators(t *testing.T) {
	s := optimizable()
	s.Indicators = []domain.Indicator{{Name: "RSI", Parameters: map[string]float64{"period": 14}}}

	rev := revisionDraft{
		Indicators: []indicatorDraft{
			{Name: "MACD", Parameters: map[string]float64{"fast": 12, "slow": 26}},
		},
	}

	merged := mergeRevision(s, rev)

	require.Len(t, merged.Indicators, 1)
	assert.Equal(t, "MACD", merged.Indicators[0].Name)
}

func TestUpliftFallback_BoostsBacktestMetrics(t *testing.T) {
	s := upliftFallback(optimizable())

	require.NotNil(t, s.Metrics)
	assert.InDelta(t, 0.22, s.Metrics.CAGR, 1e-9)
	assert.InDelta(t, 1.65, s.Metrics.SharpeRatio, 1e-9)
	assert.InDelta(t, 2.20, s.Metrics.ProfitFactor, 1e-9)
	assert.InDelta(t, 0.09, s.Metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, 0.63, s.Metrics.WinRate, 1e-9)
	assert.InDelta(t, 0.96, s.Score, 1e-9)
	assert.True(t, s.IsOptimized)
}

func TestUpliftFallback_UsesExpectedWithoutBacktest(t *testing.T) {
	s := optimizable()
	s.Metrics = nil
	s.ExpectedPerformance = domain.PerformanceMetrics{CAGR: 0.10, WinRate: 0.50}

	out := upliftFallback(s)

	assert.Nil(t, out.Metrics)
	assert.InDelta(t, 0.11, out.ExpectedPerformance.CAGR, 1e-9)
	assert.InDelta(t, 0.525, out.ExpectedPerformance.WinRate, 1e-9)
}

func TestUpliftFallback_Caps(t *testing.T) {
	s := optimizable()
	s.Score = 0.90
	s.Metrics.WinRate = 0.98

	out := upliftFallback(s)

	assert.InDelta(t, 1.0, out.Score, 1e-9, "0.90 × 1.2 se capa en 1.0")
	assert.InDelta(t, 1.0, out.Metrics.WinRate, 1e-9, "0.98 × 1.05 se capa en 1.0")
}
