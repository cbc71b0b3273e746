package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func productionTargets() TradingTargets {
	return TradingTargets{
		MinCAGR:         0.15,
		MinSharpeRatio:  1.0,
		MaxDrawdown:     0.15,
		MinWinRate:      0.55,
		MinProfitFactor: 1.5,
	}
}

func TestScoreMetrics_TargetsExactlyMet(t *testing.T) {
	// Métricas clavadas en los objetivos, sin profit factor informado:
	// cada componente vale exactamente su peso y el total es 1.0.
	m := PerformanceMetrics{
		CAGR:        0.15,
		SharpeRatio: 1.0,
		MaxDrawdown: 0.15,
		WinRate:     0.55,
	}
	assert.InDelta(t, 1.0, ScoreMetrics(m, productionTargets()), 1e-9)
}

func TestScoreMetrics_MissingProfitFactorDefaults(t *testing.T) {
	targets := productionTargets()
	withPF := PerformanceMetrics{CAGR: 0.10, SharpeRatio: 0.8, MaxDrawdown: 0.20, WinRate: 0.50, ProfitFactor: 1.5}
	withoutPF := withPF
	withoutPF.ProfitFactor = 0

	assert.InDelta(t, ScoreMetrics(withPF, targets), ScoreMetrics(withoutPF, targets), 1e-9)
}

func TestScoreMetrics_CagrMonotonic(t *testing.T) {
	targets := productionTargets()
	m := PerformanceMetrics{SharpeRatio: 0.9, MaxDrawdown: 0.18, WinRate: 0.50, ProfitFactor: 1.4}

	prev := -1.0
	for cagr := 0.0; cagr <= 0.60; cagr += 0.01 {
		m.CAGR = cagr
		score := ScoreMetrics(m, targets)
		assert.GreaterOrEqual(t, score, prev, "cagr=%.2f", cagr)
		prev = score
	}
}

func TestScoreMetrics_DrawdownMonotonic(t *testing.T) {
	targets := productionTargets()
	m := PerformanceMetrics{CAGR: 0.12, SharpeRatio: 0.9, WinRate: 0.50, ProfitFactor: 1.4}

	prev := 2.0
	for dd := 0.0; dd <= 0.60; dd += 0.01 {
		m.MaxDrawdown = dd
		score := ScoreMetrics(m, targets)
		assert.LessOrEqual(t, score, prev, "maxDrawdown=%.2f", dd)
		prev = score
	}
}

func TestScoreMetrics_RatiosCappedAtDouble(t *testing.T) {
	targets := productionTargets()
	// Un CAGR 200× el objetivo no puntúa más que uno 2× el objetivo.
	atCap := PerformanceMetrics{CAGR: 0.30, SharpeRatio: 0.5, MaxDrawdown: 0.40, WinRate: 0.40}
	absurd := atCap
	absurd.CAGR = 30.0

	assert.InDelta(t, ScoreMetrics(atCap, targets), ScoreMetrics(absurd, targets), 1e-9)
}

func TestScoreMetrics_ClampedToOne(t *testing.T) {
	targets := productionTargets()
	// Todo al doble del objetivo: la suma cruda sería 2.0, el clamp la deja en 1.0.
	m := PerformanceMetrics{
		CAGR:         0.30,
		SharpeRatio:  2.0,
		MaxDrawdown:  0.05,
		WinRate:      1.0,
		ProfitFactor: 3.0,
	}
	assert.Equal(t, 1.0, ScoreMetrics(m, targets))
}

func TestScoreMetrics_ZeroDrawdownUsesFloor(t *testing.T) {
	targets := productionTargets()
	m := PerformanceMetrics{MaxDrawdown: 0}
	// 0.15/0.01 = 15, acotado a 2 → componente drawdown = 0.40. No hay NaN ni Inf.
	breakdown := ScoreBreakdown(m, targets)
	assert.InDelta(t, 0.40, breakdown.Drawdown, 1e-9)
}

func TestScoreBreakdown_TotalMatchesScore(t *testing.T) {
	targets := productionTargets()
	m := PerformanceMetrics{CAGR: 0.22, SharpeRatio: 1.3, MaxDrawdown: 0.09, WinRate: 0.61, ProfitFactor: 1.9}
	assert.InDelta(t, ScoreMetrics(m, targets), ScoreBreakdown(m, targets).Total(), 1e-9)
}
