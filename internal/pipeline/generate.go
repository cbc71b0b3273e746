package pipeline

// generate.go — etapa de generación: el modelo propone candidatas.
//
// Cada candidata sale de una llamada estructurada al gateway. Si el modelo
// falla o su JSON no es una estrategia usable, el hueco se rellena con una de
// las dos estrategias de reserva incorporadas — el batch nunca se encoge.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// strategyDraft es la estrategia tal como la emite el modelo.
type strategyDraft struct {
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	Parameters          map[string]float64 `json:"parameters,omitempty"`
	EntryConditions     []string           `json:"entryConditions,omitempty"`
	ExitConditions      []string           `json:"exitConditions,omitempty"`
	RiskManagement      []string           `json:"riskManagement,omitempty"`
	Indicators          []indicatorDraft   `json:"indicators,omitempty"`
	Timeframes          []string           `json:"timeframes,omitempty"`
	ExpectedPerformance *metricsDraft      `json:"expectedPerformance,omitempty"`
}

type indicatorDraft struct {
	Name       string             `json:"name"`
	Parameters map[string]float64 `json:"parameters,omitempty"`
}

type metricsDraft struct {
	CAGR          float64 `json:"cagr"`
	SharpeRatio   float64 `json:"sharpeRatio"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	WinRate       float64 `json:"winRate"`
	ProfitFactor  float64 `json:"profitFactor"`
	TotalTrades   int     `json:"totalTrades"`
	AverageProfit float64 `json:"averageProfit"`
}

func (m metricsDraft) toDomain() domain.PerformanceMetrics {
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

func metricsDraftFrom(m domain.PerformanceMetrics) metricsDraft {
	return metricsDraft{
		CAGR:          m.CAGR,
		SharpeRatio:   m.SharpeRatio,
		MaxDrawdown:   m.MaxDrawdown,
		WinRate:       m.WinRate,
		ProfitFactor:  m.ProfitFactor,
		TotalTrades:   m.TotalTrades,
		AverageProfit: m.AverageProfit,
	}
}

// draftFrom serializa la estrategia de vuelta al formato del modelo,
// para incluirla en prompts de optimización.
func draftFrom(s domain.Strategy) strategyDraft {
	inds := make([]indicatorDraft, 0, len(s.Indicators))
	for _, ind := range s.Indicators {
		inds = append(inds, indicatorDraft{Name: ind.Name, Parameters: ind.Parameters})
	}
	expected := metricsDraftFrom(s.ExpectedPerformance)
	return strategyDraft{
		Name:                s.Name,
		Description:         s.Description,
		Parameters:          s.Parameters,
		EntryConditions:     s.EntryConditions,
		ExitConditions:      s.ExitConditions,
		RiskManagement:      s.RiskManagement,
		Indicators:          inds,
		Timeframes:          s.Timeframes,
		ExpectedPerformance: &expected,
	}
}

// parseStrategy valida el draft del modelo y lo convierte al dominio,
// asignando un ID nuevo.
func parseStrategy(raw json.RawMessage) (domain.Strategy, error) {
	var d strategyDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return domain.Strategy{}, fmt.Errorf("decode strategy: %w", err)
	}
	if strings.TrimSpace(d.Name) == "" {
		return domain.Strategy{}, fmt.Errorf("strategy draft has no name")
	}

	s := domain.Strategy{
		ID:              uuid.New().String(),
		Name:            strings.TrimSpace(d.Name),
		Description:     d.Description,
		Parameters:      d.Parameters,
		EntryConditions: d.EntryConditions,
		ExitConditions:  d.ExitConditions,
		RiskManagement:  d.RiskManagement,
		Timeframes:      d.Timeframes,
	}
	for _, ind := range d.Indicators {
		s.Indicators = append(s.Indicators, domain.Indicator{Name: ind.Name, Parameters: ind.Parameters})
	}
	if d.ExpectedPerformance != nil {
		s.ExpectedPerformance = d.ExpectedPerformance.toDomain()
	}
	return s, nil
}

// generate produce exactamente n candidatas. Los fallos por candidata se
// sustituyen por estrategias de reserva; solo n <= 0 es error.
func (p *Pipeline) generate(ctx context.Context, n int) ([]domain.Strategy, error) {
	if n <= 0 {
		return nil, fmt.Errorf("generate: no candidates requested (count=%d)", n)
	}

	marketContext := p.marketContext(ctx)

	out := make([]domain.Strategy, n)
	forEachIndexed(n, p.cfg.Workers, func(i int) {
		s, err := p.generateOne(ctx, marketContext, i)
		if err != nil {
			slog.Warn("strategy generation failed, using built-in fallback", "seq", i, "err", err)
			s = fallbackStrategy(i)
		}
		out[i] = s
	})
	return out, nil
}

func (p *Pipeline) generateOne(ctx context.Context, marketContext string, seq int) (domain.Strategy, error) {
	raw, err := p.gateway.GenerateStructured(ctx, generatePrompt(marketContext, p.cfg.Targets, seq))
	if err != nil {
		return domain.Strategy{}, err
	}
	return parseStrategy(raw)
}

// marketContext pide un resumen de mercado para sazonar los prompts.
// Es best-effort: sin datos de mercado se genera igual.
func (p *Pipeline) marketContext(ctx context.Context) string {
	if p.marketData == nil {
		return ""
	}
	snapshot, err := p.marketData.MarketSnapshot(ctx, p.cfg.Symbols)
	if err != nil {
		slog.Debug("market snapshot unavailable", "err", err)
		return ""
	}
	return snapshot
}
