package toolsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/cache"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/ports"
)

const toolMarketSnapshot = "getMarketSnapshot"

// MarketDataService resume el estado del mercado para sazonar los prompts de
// generación. Implementa ports.MarketData.
type MarketDataService struct {
	invoker ports.ToolInvoker
	cache   *cache.Cache
}

// NewMarketDataService crea el wrapper de datos de mercado.
func NewMarketDataService(invoker ports.ToolInvoker, c *cache.Cache) *MarketDataService {
	return &MarketDataService{invoker: invoker, cache: c}
}

// MarketSnapshot devuelve un resumen en texto del mercado para los símbolos.
func (m *MarketDataService) MarketSnapshot(ctx context.Context, symbols []string) (string, error) {
	args := map[string]any{"symbols": symbols}
	key := cache.Key(toolMarketSnapshot, args)

	if m.cache != nil {
		if raw, ok := m.cache.Get(key); ok {
			var p snapshotPayload
			if err := json.Unmarshal(raw, &p); err == nil && p.Summary != "" {
				return p.Summary, nil
			}
			// entrada inservible: seguir como MISS
		}
	}

	raw, err := m.invoker.Invoke(ctx, toolMarketSnapshot, args)
	if err != nil {
		return "", fmt.Errorf("toolsvc.MarketSnapshot: %w", err)
	}

	var p snapshotPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("toolsvc.MarketSnapshot: decode snapshot: %w", err)
	}
	if strings.TrimSpace(p.Summary) == "" {
		return "", fmt.Errorf("toolsvc.MarketSnapshot: empty summary")
	}

	if m.cache != nil {
		m.cache.Set(key, p)
	}
	return p.Summary, nil
}
