package pipeline

import (
	"context"
	"log/slog"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// backtest ejecuta el backtester sobre cada candidata. Un backtest fallido
// deja Metrics en nil y la candidata sigue en el batch: la evaluación usará
// la expectativa del modelo.
func (p *Pipeline) backtest(ctx context.Context, batch []domain.Strategy) []domain.Strategy {
	out := make([]domain.Strategy, len(batch))
	forEachIndexed(len(batch), p.cfg.Workers, func(i int) {
		s := batch[i].Clone()

		m, err := p.backtester.RunBacktest(ctx, s)
		if err != nil {
			slog.Warn("backtest failed", "strategy", s.Name, "err", err)
		} else {
			s.Metrics = &m
		}

		out[i] = s
	})
	return out
}
