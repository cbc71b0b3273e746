package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el resultado del run en el modo configurado.
func (c *Console) Notify(_ context.Context, result domain.DiscoveryResult) error {
	shortlist := result.Shortlist()
	if len(shortlist) == 0 {
		fmt.Fprintf(c.out, "[%s] run %s: no strategies made the cut\n",
			time.Now().Format("15:04:05"), shortID(result.RunID))
		return nil
	}

	if c.table {
		c.printFull(result, shortlist)
	} else {
		c.printCompact(result, shortlist)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(result domain.DiscoveryResult, shortlist []domain.Strategy) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] run %s → gen:%d eval:%d sel:%d opt:%d",
		now, shortID(result.RunID),
		len(result.Generated), len(result.Evaluated),
		len(result.Selected), len(result.Optimized))

	shown := 0
	for _, strat := range shortlist {
		if shown >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %.2f", compactName(strat.Name, 25), strat.Score)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime la tabla del shortlist con sus métricas.
func (c *Console) printFull(result domain.DiscoveryResult, shortlist []domain.Strategy) {
	now := time.Now().Format("15:04:05")

	fmt.Fprintf(c.out, "\n[%s] run %s — gen:%d eval:%d sel:%d opt:%d best:%.2f\n",
		now, shortID(result.RunID),
		len(result.Generated), len(result.Evaluated),
		len(result.Selected), len(result.Optimized),
		result.BestScore())

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Strategy", "Score", "CAGR", "Sharpe", "MaxDD", "WinRate", "PF", "Trades", "Opt")

	for i, strat := range shortlist {
		m := strat.EffectiveMetrics()

		opt := "-"
		if strat.IsOptimized {
			opt = "yes"
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(strat.Name, 38),
			fmt.Sprintf("%.2f", strat.Score),
			fmt.Sprintf("%.1f%%", m.CAGR*100),
			fmt.Sprintf("%.2f", m.SharpeRatio),
			fmt.Sprintf("%.1f%%", m.MaxDrawdown*100),
			fmt.Sprintf("%.0f%%", m.WinRate*100),
			fmt.Sprintf("%.2f", m.ProfitFactor),
			fmt.Sprintf("%d", m.TotalTrades),
			opt,
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Score = fit ponderado contra los targets (cap 1.0)")
	fmt.Fprintln(c.out, "  Métricas: backtest si lo hay, expectativa del modelo si no")
	fmt.Fprintln(c.out)
}

// Leaderboard imprime las mejores estrategias del histórico, ya ordenadas
// por peak score.
func (c *Console) Leaderboard(strategies []domain.Strategy) {
	if len(strategies) == 0 {
		fmt.Fprintln(c.out, "no strategies recorded yet")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Strategy", "Score", "CAGR", "Sharpe", "MaxDD", "WinRate", "PF", "Opt")

	for i, strat := range strategies {
		m := strat.EffectiveMetrics()

		opt := "-"
		if strat.IsOptimized {
			opt = "yes"
		}

		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(strat.Name, 38),
			fmt.Sprintf("%.2f", strat.Score),
			fmt.Sprintf("%.1f%%", m.CAGR*100),
			fmt.Sprintf("%.2f", m.SharpeRatio),
			fmt.Sprintf("%.1f%%", m.MaxDrawdown*100),
			fmt.Sprintf("%.0f%%", m.WinRate*100),
			fmt.Sprintf("%.2f", m.ProfitFactor),
			opt,
		)
	}

	table.Render()
}

// --- helpers ---

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func compactName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := s[:maxLen]
	if idx := strings.LastIndex(cut, " "); idx > maxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
