package domain

import "math"

// Pesos del score compuesto. Suman 1.0.
const (
	weightCAGR         = 0.30
	weightSharpe       = 0.30
	weightDrawdown     = 0.20
	weightWinRate      = 0.10
	weightProfitFactor = 0.10

	// ratioCap limita cada ratio a 2× su objetivo: una métrica desorbitada
	// no puede enmascarar el fallo de las demás.
	ratioCap = 2.0
	// drawdownFloor evita la división por cero con drawdowns cercanos a 0.
	drawdownFloor = 0.01
	// defaultProfitFactor se asume cuando la fuente de métricas no lo informa.
	defaultProfitFactor = 1.5
)

// ScoreComponents es el desglose del score por métrica, ya ponderado.
type ScoreComponents struct {
	CAGR         float64
	Sharpe       float64
	Drawdown     float64
	WinRate      float64
	ProfitFactor float64
}

// Total devuelve la suma de componentes acotada a [0, 1].
func (c ScoreComponents) Total() float64 {
	return clamp(c.CAGR+c.Sharpe+c.Drawdown+c.WinRate+c.ProfitFactor, 0, 1)
}

// ScoreMetrics puntúa unas métricas de rendimiento contra los umbrales
// objetivo. Determinista, resultado en [0, 1].
//
// Fórmula (cada ratio acotado a ratioCap antes de ponderar):
//
//	cagr/minCAGR × 0.30 + sharpe/minSharpe × 0.30 +
//	maxDD_objetivo/maxDD × 0.20 + winRate/minWinRate × 0.10 +
//	profitFactor/minPF × 0.10
//
// El drawdown va invertido (menor es mejor) con suelo en drawdownFloor.
func ScoreMetrics(m PerformanceMetrics, t TradingTargets) float64 {
	return ScoreBreakdown(m, t).Total()
}

// ScoreBreakdown calcula el desglose ponderado del score. Útil para mostrar
// el paso a paso en el report de consola y en tests.
func ScoreBreakdown(m PerformanceMetrics, t TradingTargets) ScoreComponents {
	profitFactor := m.ProfitFactor
	if profitFactor <= 0 {
		profitFactor = defaultProfitFactor
	}

	return ScoreComponents{
		CAGR:         cappedRatio(m.CAGR, t.MinCAGR) * weightCAGR,
		Sharpe:       cappedRatio(m.SharpeRatio, t.MinSharpeRatio) * weightSharpe,
		Drawdown:     cappedRatio(t.MaxDrawdown, math.Max(m.MaxDrawdown, drawdownFloor)) * weightDrawdown,
		WinRate:      cappedRatio(m.WinRate, t.MinWinRate) * weightWinRate,
		ProfitFactor: cappedRatio(profitFactor, t.MinProfitFactor) * weightProfitFactor,
	}
}

// cappedRatio devuelve value/target acotado a ratioCap.
func cappedRatio(value, target float64) float64 {
	if target == 0 {
		return 0
	}
	return math.Min(value/target, ratioCap)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
