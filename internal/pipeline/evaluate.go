package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// evaluate puntúa cada candidata contra los targets y le pide al modelo un
// análisis corto. El análisis es best-effort: si el modelo no responde, la
// estrategia queda puntuada igualmente.
func (p *Pipeline) evaluate(ctx context.Context, batch []domain.Strategy) []domain.Strategy {
	out := make([]domain.Strategy, len(batch))
	forEachIndexed(len(batch), p.cfg.Workers, func(i int) {
		s := batch[i].Clone()

		m := s.EffectiveMetrics()
		s.Score = domain.ScoreMetrics(m, p.cfg.Targets)

		text, err := p.gateway.Generate(ctx, analysisPrompt(s, m))
		if err != nil {
			slog.Debug("analysis unavailable", "strategy", s.Name, "err", err)
		} else {
			s.Analysis = strings.TrimSpace(text)
		}

		out[i] = s
	})
	return out
}

// EvaluateOnly puntúa un batch externo sin pasar por generación ni backtest.
// Las estrategias con métricas de backtest se puntúan con ellas; el resto,
// con su expectativa declarada.
func (p *Pipeline) EvaluateOnly(ctx context.Context, strategies []domain.Strategy) []domain.Strategy {
	return p.evaluate(ctx, strategies)
}
