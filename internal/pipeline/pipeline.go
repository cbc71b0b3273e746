package pipeline

// pipeline.go — orquestador del ciclo de descubrimiento de estrategias.
//
// Cada ciclo recorre cinco etapas en orden estricto:
//   generate → backtest → evaluate → select → optimize
// Dentro de una etapa los candidatos se procesan en paralelo; el fallo de un
// candidato nunca aborta el batch. Solo una generación sin ningún candidato
// usable corta el ciclo con error.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/gateway"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/ports"
)

const (
	// Umbral de selección: las candidatas frescas del modelo necesitan 0.70;
	// las extraídas de documentos de research entran con 0.60.
	thresholdGenerated = 0.70
	thresholdResearch  = 0.60

	minTopK = 3
	maxTopK = 5
)

// Config contiene la configuración del pipeline.
type Config struct {
	Interval       time.Duration
	CandidateCount int
	TopK           int
	Workers        int
	Symbols        []string
	Targets        domain.TradingTargets
	Once           bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Interval:       6 * time.Hour,
		CandidateCount: 5,
		TopK:           minTopK,
		Symbols:        []string{"SPY", "QQQ", "IWM"},
		Targets:        domain.DefaultTargets(),
	}
}

// Pipeline es el orquestador principal del loop de descubrimiento.
type Pipeline struct {
	cfg        Config
	gateway    *gateway.Gateway
	backtester ports.Backtester
	marketData ports.MarketData
	research   ports.Researcher
	storage    ports.RunStorage
	notifier   ports.Notifier
}

// New crea un Pipeline con todas las dependencias inyectadas.
// marketData, research y storage pueden ser nil; sus etapas se degradan.
func New(
	cfg Config,
	gw *gateway.Gateway,
	backtester ports.Backtester,
	marketData ports.MarketData,
	research ports.Researcher,
	storage ports.RunStorage,
	notifier ports.Notifier,
) *Pipeline {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.TopK < minTopK {
		cfg.TopK = minTopK
	}
	if cfg.TopK > maxTopK {
		cfg.TopK = maxTopK
	}
	if cfg.Targets == (domain.TradingTargets{}) {
		cfg.Targets = domain.DefaultTargets()
	}
	return &Pipeline{
		cfg:        cfg,
		gateway:    gw,
		backtester: backtester,
		marketData: marketData,
		research:   research,
		storage:    storage,
		notifier:   notifier,
	}
}

// Run ejecuta el loop de descubrimiento hasta que el contexto se cancele.
// Si cfg.Once está activo, solo ejecuta un ciclo.
func (p *Pipeline) Run(ctx context.Context) error {
	slog.Info("discovery pipeline starting",
		"interval", p.cfg.Interval,
		"candidates", p.cfg.CandidateCount,
		"top_k", p.cfg.TopK,
		"once", p.cfg.Once,
	)

	if err := p.runCycle(ctx); err != nil {
		slog.Error("discovery cycle failed", "err", err)
		if p.cfg.Once {
			return err
		}
	}

	if p.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("discovery pipeline stopped")
			return nil
		case <-ticker.C:
			if err := p.runCycle(ctx); err != nil {
				slog.Error("discovery cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo completo y devuelve el resultado.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.DiscoveryResult, error) {
	result := domain.DiscoveryResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	generated, err := p.generate(ctx, p.cfg.CandidateCount)
	if err != nil {
		return result, fmt.Errorf("pipeline.RunOnce: %w", err)
	}
	result.Generated = generated

	backtested := p.backtest(ctx, generated)
	result.Evaluated = p.evaluate(ctx, backtested)
	result.Selected = selectTop(result.Evaluated, thresholdGenerated, p.cfg.TopK)
	result.Optimized = p.optimize(ctx, result.Selected)

	return result, nil
}

// runCycle ejecuta un ciclo completo y notifica/persiste el resultado.
func (p *Pipeline) runCycle(ctx context.Context) error {
	start := time.Now()

	result, err := p.RunOnce(ctx)
	if err != nil {
		return err
	}

	if err := p.notifier.Notify(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	if p.storage != nil {
		if err := p.storage.SaveRun(ctx, result); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("discovery cycle complete",
		"run_id", result.RunID,
		"generated", len(result.Generated),
		"evaluated", len(result.Evaluated),
		"selected", len(result.Selected),
		"optimized", len(result.Optimized),
		"best_score", result.BestScore(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
