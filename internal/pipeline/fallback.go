package pipeline

// fallback.go — las dos estrategias de reserva incorporadas.
//
// Cuando la generación de una candidata falla, su hueco se rellena alternando
// entre estas dos: una de momentum y una de reversión a la media. Su
// expectativa declarada solo entra en juego si además falla su backtest; en
// ese caso se puntúan con estos números y pueden llegar al shortlist.

import (
	"github.com/google/uuid"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// fallbackStrategy devuelve la estrategia de reserva para la posición seq del
// batch: pares → momentum, impares → reversión a la media. Cada llamada
// produce un ID nuevo.
func fallbackStrategy(seq int) domain.Strategy {
	if seq%2 == 0 {
		return momentumFallback()
	}
	return meanReversionFallback()
}

func momentumFallback() domain.Strategy {
	return domain.Strategy{
		ID:          uuid.New().String(),
		Name:        "RSI Momentum Breakout",
		Description: "Enters confirmed momentum breakouts: strong RSI with price above its 50-day average.",
		Parameters: map[string]float64{
			"rsiPeriod":    14,
			"rsiEntry":     60,
			"rsiExit":      45,
			"emaPeriod":    50,
			"stopLossPct":  0.05,
			"positionSize": 0.10,
		},
		EntryConditions: []string{
			"RSI(14) crosses above 60",
			"close above EMA(50)",
			"volume above its 20-day average",
		},
		ExitConditions: []string{
			"RSI(14) drops below 45",
			"close below EMA(50)",
		},
		RiskManagement: []string{
			"5% stop loss per position",
			"max 10% of capital per position",
		},
		Indicators: []domain.Indicator{
			{Name: "RSI", Parameters: map[string]float64{"period": 14}},
			{Name: "EMA", Parameters: map[string]float64{"period": 50}},
		},
		Timeframes: []string{"1d"},
		ExpectedPerformance: domain.PerformanceMetrics{
			CAGR:          0.12,
			SharpeRatio:   0.90,
			MaxDrawdown:   0.18,
			WinRate:       0.52,
			ProfitFactor:  1.4,
			TotalTrades:   140,
			AverageProfit: 0.002,
		},
	}
}

func meanReversionFallback() domain.Strategy {
	return domain.Strategy{
		ID:          uuid.New().String(),
		Name:        "Bollinger Band Reversal",
		Description: "Buys oversold touches of the lower Bollinger band and sells the reversion to the mean.",
		Parameters: map[string]float64{
			"bbPeriod":     20,
			"bbStdDev":     2,
			"rsiPeriod":    14,
			"rsiOversold":  30,
			"stopLossPct":  0.04,
			"positionSize": 0.08,
		},
		EntryConditions: []string{
			"close below lower Bollinger(20, 2) band",
			"RSI(14) below 30",
		},
		ExitConditions: []string{
			"close crosses the 20-day moving average",
			"RSI(14) above 55",
		},
		RiskManagement: []string{
			"4% stop loss per position",
			"max 8% of capital per position",
		},
		Indicators: []domain.Indicator{
			{Name: "BollingerBands", Parameters: map[string]float64{"period": 20, "stdDev": 2}},
			{Name: "RSI", Parameters: map[string]float64{"period": 14}},
		},
		Timeframes: []string{"1d"},
		ExpectedPerformance: domain.PerformanceMetrics{
			CAGR:          0.10,
			SharpeRatio:   1.10,
			MaxDrawdown:   0.12,
			WinRate:       0.58,
			ProfitFactor:  1.5,
			TotalTrades:   210,
			AverageProfit: 0.0015,
		},
	}
}
