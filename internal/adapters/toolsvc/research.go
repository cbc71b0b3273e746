package toolsvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/cache"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/ports"
)

const toolSearchDocuments = "searchDocuments"

// ResearchService busca documentos de estrategias en los índices del
// tool-runner. Implementa ports.Researcher.
type ResearchService struct {
	invoker ports.ToolInvoker
	cache   *cache.Cache
}

// NewResearchService crea el wrapper de búsqueda de documentos.
func NewResearchService(invoker ports.ToolInvoker, c *cache.Cache) *ResearchService {
	return &ResearchService{invoker: invoker, cache: c}
}

// SearchDocuments devuelve hasta limit documentos relevantes para el query.
// Los documentos sin contenido se descartan en la frontera.
func (r *ResearchService) SearchDocuments(ctx context.Context, query string, limit int) ([]domain.ResearchDocument, error) {
	args := map[string]any{"query": query, "maxResults": limit}
	key := cache.Key(toolSearchDocuments, args)

	if r.cache != nil {
		if raw, ok := r.cache.Get(key); ok {
			var p searchPayload
			if err := json.Unmarshal(raw, &p); err == nil {
				return searchToDomain(p), nil
			}
			// entrada inservible: seguir como MISS
		}
	}

	raw, err := r.invoker.Invoke(ctx, toolSearchDocuments, args)
	if err != nil {
		return nil, fmt.Errorf("toolsvc.SearchDocuments: %w", err)
	}

	var p searchPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("toolsvc.SearchDocuments: decode documents: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(key, p)
	}
	return searchToDomain(p), nil
}

func searchToDomain(p searchPayload) []domain.ResearchDocument {
	docs := make([]domain.ResearchDocument, 0, len(p.Documents))
	for _, d := range p.Documents {
		if d.Content == "" {
			continue
		}
		docs = append(docs, domain.ResearchDocument{Title: d.Title, Content: d.Content, Source: d.Source})
	}
	return docs
}
