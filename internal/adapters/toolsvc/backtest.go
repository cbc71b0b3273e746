package toolsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/cache"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/ports"
)

const toolRunBacktest = "runBacktest"

// BacktestService invoca la herramienta de backtesting, memoizando los
// resultados en su propio namespace de caché. Implementa ports.Backtester.
type BacktestService struct {
	invoker ports.ToolInvoker
	cache   *cache.Cache // nil deshabilita la memoización
}

// NewBacktestService crea el wrapper del backtester.
func NewBacktestService(invoker ports.ToolInvoker, c *cache.Cache) *BacktestService {
	return &BacktestService{invoker: invoker, cache: c}
}

// RunBacktest ejecuta el backtest de la estrategia y devuelve sus métricas.
// Dos estrategias con las mismas reglas comparten entrada de caché: la clave
// se deriva del payload, no del ID.
func (b *BacktestService) RunBacktest(ctx context.Context, s domain.Strategy) (domain.PerformanceMetrics, error) {
	args := map[string]any{"strategy": strategyToPayload(s)}
	key := cache.Key(toolRunBacktest, args)

	if b.cache != nil {
		if raw, ok := b.cache.Get(key); ok {
			var p metricsPayload
			if err := json.Unmarshal(raw, &p); err == nil && p.validate() == nil {
				return p.toDomain(), nil
			}
			// entrada inservible: seguir como MISS
		}
	}

	raw, err := b.invoker.Invoke(ctx, toolRunBacktest, args)
	if err != nil {
		return domain.PerformanceMetrics{}, fmt.Errorf("toolsvc.RunBacktest: %w", err)
	}

	var p metricsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.PerformanceMetrics{}, fmt.Errorf("toolsvc.RunBacktest: decode metrics: %w", err)
	}
	if err := p.validate(); err != nil {
		return domain.PerformanceMetrics{}, fmt.Errorf("toolsvc.RunBacktest: invalid metrics: %w", err)
	}

	if b.cache != nil {
		b.cache.Set(key, p)
	}
	return p.toDomain(), nil
}
