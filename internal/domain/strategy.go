package domain

import "time"

// Strategy es una estrategia de trading candidata: el conjunto de reglas más
// su registro de rendimiento. Las instancias fluyen por valor a través de las
// etapas del pipeline; cada etapa devuelve copias nuevas con campos añadidos,
// nunca comparte el mismo objeto entre etapas.
type Strategy struct {
	ID          string // asignado al crearse, nunca se reasigna
	Name        string
	Description string

	// --- Reglas ---
	Parameters      map[string]float64
	EntryConditions []string
	ExitConditions  []string
	RiskManagement  []string
	Indicators      []Indicator
	Timeframes      []string

	// --- Rendimiento ---
	ExpectedPerformance PerformanceMetrics  // estimación declarada por el generador
	Metrics             *PerformanceMetrics // métricas del backtest; nil si no hubo

	// --- Campos añadidos por el pipeline ---
	Score       float64
	Analysis    string
	IsOptimized bool
}

// Indicator es un indicador técnico usado por la estrategia.
type Indicator struct {
	Name       string
	Parameters map[string]float64
}

// PerformanceMetrics es el registro de rendimiento de una estrategia.
// Todos los valores son fracciones (0.15 = 15%), salvo TotalTrades.
type PerformanceMetrics struct {
	CAGR          float64
	SharpeRatio   float64
	MaxDrawdown   float64
	WinRate       float64
	ProfitFactor  float64
	TotalTrades   int
	AverageProfit float64
}

// TradingTargets son los umbrales objetivo contra los que se puntúa cada
// estrategia. Inmutables: se fijan al construir el pipeline y se comparten
// en lectura entre todas las evaluaciones concurrentes de un run.
type TradingTargets struct {
	MinCAGR         float64
	MinSharpeRatio  float64
	MaxDrawdown     float64
	MinWinRate      float64
	MinProfitFactor float64
}

// DefaultTargets devuelve los umbrales de producción.
func DefaultTargets() TradingTargets {
	return TradingTargets{
		MinCAGR:         0.15,
		MinSharpeRatio:  1.0,
		MaxDrawdown:     0.15,
		MinWinRate:      0.55,
		MinProfitFactor: 1.5,
	}
}

// DiscoveryResult es la salida completa de un run del pipeline: el shortlist
// optimizado más los batches intermedios, por si el caller quiere también los
// candidatos rechazados.
type DiscoveryResult struct {
	RunID     string
	StartedAt time.Time

	Generated []Strategy
	Evaluated []Strategy
	Selected  []Strategy
	Optimized []Strategy
}

// Shortlist devuelve las estrategias finales del run: las optimizadas, o las
// seleccionadas si la etapa de optimización no llegó a ejecutarse.
func (r DiscoveryResult) Shortlist() []Strategy {
	if len(r.Optimized) > 0 {
		return r.Optimized
	}
	return r.Selected
}

// BestScore devuelve el score más alto del batch evaluado.
func (r DiscoveryResult) BestScore() float64 {
	best := 0.0
	for _, s := range r.Evaluated {
		if s.Score > best {
			best = s.Score
		}
	}
	return best
}

// ResearchDocument es un documento devuelto por la búsqueda de research.
type ResearchDocument struct {
	Title   string
	Content string
	Source  string
}

// EffectiveMetrics devuelve las métricas del backtest si existen, o la
// estimación del generador en su defecto.
func (s Strategy) EffectiveMetrics() PerformanceMetrics {
	if s.Metrics != nil {
		return *s.Metrics
	}
	return s.ExpectedPerformance
}

// Clone devuelve una copia profunda de la estrategia. Mutar el clon (mapas,
// slices, métricas) no afecta al original.
func (s Strategy) Clone() Strategy {
	out := s
	out.Parameters = cloneParams(s.Parameters)
	out.EntryConditions = cloneStrings(s.EntryConditions)
	out.ExitConditions = cloneStrings(s.ExitConditions)
	out.RiskManagement = cloneStrings(s.RiskManagement)
	out.Timeframes = cloneStrings(s.Timeframes)

	if s.Indicators != nil {
		out.Indicators = make([]Indicator, len(s.Indicators))
		for i, ind := range s.Indicators {
			out.Indicators[i] = Indicator{Name: ind.Name, Parameters: cloneParams(ind.Parameters)}
		}
	}
	if s.Metrics != nil {
		m := *s.Metrics
		out.Metrics = &m
	}
	return out
}

func cloneParams(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
