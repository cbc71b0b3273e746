package pipeline

// prompts.go — los prompts que el pipeline envía al gateway.
//
// Los prompts estructurados exigen exactamente un objeto JSON: el gateway
// extrae el primer objeto balanceado de la respuesta y descarta el resto.

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
)

// Los documentos de research se truncan antes de entrar al prompt.
const maxDocChars = 6000

const draftShape = `{
  "name": "...",
  "description": "...",
  "parameters": {"paramName": 0.0},
  "entryConditions": ["..."],
  "exitConditions": ["..."],
  "riskManagement": ["..."],
  "indicators": [{"name": "...", "parameters": {"period": 14}}],
  "timeframes": ["1d"],
  "expectedPerformance": {"cagr": 0.0, "sharpeRatio": 0.0, "maxDrawdown": 0.0, "winRate": 0.0, "profitFactor": 0.0, "totalTrades": 0, "averageProfit": 0.0}
}`

func generatePrompt(marketContext string, targets domain.TradingTargets, seq int) string {
	var sb strings.Builder

	sb.WriteString("You are a quantitative trading strategist. Design one original, fully specified trading strategy for liquid US equities and ETFs.\n\n")

	if marketContext != "" {
		fmt.Fprintf(&sb, "Current market context:\n%s\n\n", marketContext)
	}

	fmt.Fprintf(&sb,
		"Performance targets: CAGR >= %.0f%%, Sharpe >= %.1f, max drawdown <= %.0f%%, win rate >= %.0f%%, profit factor >= %.1f.\n",
		targets.MinCAGR*100, targets.MinSharpeRatio, targets.MaxDrawdown*100,
		targets.MinWinRate*100, targets.MinProfitFactor)
	fmt.Fprintf(&sb, "This is candidate #%d of the batch: make it distinct from typical momentum or mean-reversion templates.\n\n", seq+1)

	sb.WriteString("Respond with exactly one JSON object and nothing else, with this shape:\n")
	sb.WriteString(draftShape)

	return sb.String()
}

func analysisPrompt(s domain.Strategy, m domain.PerformanceMetrics) string {
	return fmt.Sprintf(`You are a trading strategy reviewer. In three or four sentences, assess the strategy below: its main strength, its main weakness, and the market regime where it breaks.

Strategy: %s
Description: %s
Metrics: CAGR %.1f%%, Sharpe %.2f, max drawdown %.1f%%, win rate %.0f%%, profit factor %.2f, trades %d.

Respond with plain prose only, no JSON.`,
		s.Name, s.Description,
		m.CAGR*100, m.SharpeRatio, m.MaxDrawdown*100,
		m.WinRate*100, m.ProfitFactor, m.TotalTrades)
}

func optimizePrompt(s domain.Strategy) string {
	current, err := json.MarshalIndent(draftFrom(s), "", "  ")
	if err != nil {
		current = []byte(s.Name)
	}

	return fmt.Sprintf(`You are a quantitative trading strategist. Improve the trading strategy below: tighten its parameters, sharpen entry and exit rules, and strengthen risk management.

Current strategy:
%s

Respond with exactly one JSON object and nothing else, using the same shape. Include only the fields you change; omitted fields keep their current values.`,
		current)
}

func researchExtractPrompt(doc domain.ResearchDocument) string {
	content := doc.Content
	if len(content) > maxDocChars {
		content = content[:maxDocChars]
	}

	var sb strings.Builder

	sb.WriteString("You are a quantitative trading strategist. Extract the trading strategy described in the document below as a fully specified, backtestable strategy.\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", doc.Title)
	if doc.Source != "" {
		fmt.Fprintf(&sb, "Source: %s\n", doc.Source)
	}
	fmt.Fprintf(&sb, "\n%s\n\n", content)

	sb.WriteString("Respond with exactly one JSON object and nothing else, with this shape:\n")
	sb.WriteString(draftShape)

	return sb.String()
}
