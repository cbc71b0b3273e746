package toolsvc

// types.go — DTOs del protocolo del tool-runner y su mapeo al dominio.
// Los payloads externos se validan aquí, en la frontera: el resto del código
// no ve JSON sin tipar.

import (
	"fmt"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// metricsPayload es el registro de métricas tal como lo emite el backtester.
type metricsPayload struct {
	CAGR          float64 `json:"cagr"`
	SharpeRatio   float64 `json:"sharpeRatio"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	WinRate       float64 `json:"winRate"`
	ProfitFactor  float64 `json:"profitFactor"`
	TotalTrades   int     `json:"totalTrades"`
	AverageProfit float64 `json:"averageProfit"`
}

func (m metricsPayload) toDomain() domain.PerformanceMetrics {
	return domain.PerformanceMetrics{
		CAGR:          m.CAGR,
		SharpeRatio:   m.SharpeRatio,
		MaxDrawdown:   m.MaxDrawdown,
		WinRate:       m.WinRate,
		ProfitFactor:  m.ProfitFactor,
		TotalTrades:   m.TotalTrades,
		AverageProfit: m.AverageProfit,
	}
}

// validate rechaza payloads con forma imposible antes de que entren al dominio.
func (m metricsPayload) validate() error {
	if m.TotalTrades < 0 {
		return fmt.Errorf("totalTrades %d is negative", m.TotalTrades)
	}
	if m.WinRate < 0 || m.WinRate > 1 {
		return fmt.Errorf("winRate %.4f outside [0,1]", m.WinRate)
	}
	if m.MaxDrawdown < 0 {
		return fmt.Errorf("maxDrawdown %.4f is negative", m.MaxDrawdown)
	}
	return nil
}

// indicatorPayload y strategyPayload son la forma en que la estrategia viaja
// hacia el backtester.
type indicatorPayload struct {
	Name       string             `json:"name"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

type strategyPayload struct {
	Name            string             `json:"name"`
	Parameters      map[string]float64 `json:"parameters,omitempty"`
	EntryConditions []string           `json:"entryConditions,omitempty"`
	ExitConditions  []string           `json:"exitConditions,omitempty"`
	Indicators      []indicatorPayload `json:"indicators,omitempty"`
	Timeframes      []string           `json:"timeframes,omitempty"`
}

func strategyToPayload(s domain.Strategy) strategyPayload {
	inds := make([]indicatorPayload, 0, len(s.Indicators))
	for _, ind := range s.Indicators {
		inds = append(inds, indicatorPayload{Name: ind.Name, Parameters: ind.Parameters})
	}
	return strategyPayload{
		Name:            s.Name,
		Parameters:      s.Parameters,
		EntryConditions: s.EntryConditions,
		ExitConditions:  s.ExitConditions,
		Indicators:      inds,
		Timeframes:      s.Timeframes,
	}
}

// snapshotPayload es la respuesta de la herramienta de datos de mercado.
type snapshotPayload struct {
	Summary string `json:"summary"`
}

// documentPayload es un documento devuelto por la búsqueda de research.
type documentPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

type searchPayload struct {
	Documents []documentPayload `json:"documents"`
}
