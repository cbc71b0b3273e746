package ports

import (
	"context"
	"encoding/json"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// ToolInvoker ejecuta una herramienta externa por nombre. El tool-runner
// arranca y detiene los procesos auxiliares por su cuenta: aquí solo llega
// una llamada síncrona que devuelve JSON o falla.
type ToolInvoker interface {
	Invoke(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error)
}

// Backtester obtiene métricas de rendimiento reales para una estrategia.
type Backtester interface {
	// RunBacktest ejecuta el backtest de la estrategia y devuelve sus métricas.
	RunBacktest(ctx context.Context, s domain.Strategy) (domain.PerformanceMetrics, error)
}

// MarketData resume el estado actual del mercado para sazonar los prompts
// de generación.
type MarketData interface {
	// MarketSnapshot devuelve un resumen en texto del mercado para los símbolos.
	MarketSnapshot(ctx context.Context, symbols []string) (string, error)
}

// Researcher busca documentos de investigación en las fuentes indexadas.
type Researcher interface {
	// SearchDocuments devuelve hasta limit documentos relevantes para el query.
	SearchDocuments(ctx context.Context, query string, limit int) ([]domain.ResearchDocument, error)
}
