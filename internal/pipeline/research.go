package pipeline

// research.go — modo research: descubre estrategias en documentos.
//
// En vez de pedirle candidatas al modelo desde cero, busca documentos
// (papers, posts, libros indexados) y extrae de cada uno una estrategia
// backtesteable. A diferencia de la generación, aquí un documento inservible
// se descarta sin sustituto: solo cuenta lo que de verdad está en la
// literatura.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// RunResearch ejecuta un ciclo completo partiendo de una búsqueda de
// documentos. Devuelve error si ningún documento produce una estrategia
// usable.
func (p *Pipeline) RunResearch(ctx context.Context, query string) (domain.DiscoveryResult, error) {
	if p.research == nil {
		return domain.DiscoveryResult{}, fmt.Errorf("pipeline.RunResearch: no researcher configured")
	}

	result := domain.DiscoveryResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	docs, err := p.research.SearchDocuments(ctx, query, p.cfg.CandidateCount)
	if err != nil {
		return result, fmt.Errorf("pipeline.RunResearch: search %q: %w", query, err)
	}
	slog.Info("research documents found", "query", query, "documents", len(docs))

	extracted := make([]domain.Strategy, len(docs))
	usable := make([]bool, len(docs))
	forEachIndexed(len(docs), p.cfg.Workers, func(i int) {
		s, err := p.extractOne(ctx, docs[i])
		if err != nil {
			slog.Debug("document yielded no strategy", "title", docs[i].Title, "err", err)
			return
		}
		extracted[i], usable[i] = s, true
	})

	var candidates []domain.Strategy
	for i, ok := range usable {
		if ok {
			candidates = append(candidates, extracted[i])
		}
	}
	if len(candidates) == 0 {
		return result, fmt.Errorf("pipeline.RunResearch: no usable strategies in %d documents for %q", len(docs), query)
	}
	result.Generated = candidates

	backtested := p.backtest(ctx, candidates)
	result.Evaluated = p.evaluate(ctx, backtested)
	result.Selected = selectTop(result.Evaluated, thresholdResearch, p.cfg.TopK)
	result.Optimized = p.optimize(ctx, result.Selected)

	return result, nil
}

func (p *Pipeline) extractOne(ctx context.Context, doc domain.ResearchDocument) (domain.Strategy, error) {
	raw, err := p.gateway.GenerateStructured(ctx, researchExtractPrompt(doc))
	if err != nil {
		return domain.Strategy{}, err
	}

	s, err := parseStrategy(raw)
	if err != nil {
		return domain.Strategy{}, err
	}

	if s.Description == "" {
		s.Description = fmt.Sprintf("Extracted from %q", doc.Title)
	}
	return s, nil
}
