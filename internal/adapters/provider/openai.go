package provider

// openai.go — proveedor primario: cualquier API compatible con chat
// completions (OpenAI, Azure, proxies locales). Implementa ports.TextProvider.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBase  = "https://api.openai.com"
	defaultOpenAIModel = "gpt-4o-mini"

	// Las generaciones largas pueden tardar; el timeout corta conexiones
	// colgadas, no respuestas lentas legítimas.
	openAITimeout = 120 * time.Second

	completionTemperature = 0.7
)

// OpenAI llama al endpoint /v1/chat/completions de un servidor compatible.
type OpenAI struct {
	http   *http.Client
	base   string
	apiKey string
	model  string
}

// NewOpenAI crea el proveedor. base y model vacíos usan los de producción.
func NewOpenAI(base, apiKey, model string) *OpenAI {
	if base == "" {
		base = defaultOpenAIBase
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		http:   &http.Client{Timeout: openAITimeout},
		base:   strings.TrimRight(base, "/"),
		apiKey: apiKey,
		model:  model,
	}
}

// Name identifica al proveedor en logs y errores.
func (p *OpenAI) Name() string {
	return "openai:" + p.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete envía el prompt como un único mensaje de usuario y devuelve el
// contenido de la primera choice.
func (p *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       p.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("provider.OpenAI: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("provider.OpenAI: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider.OpenAI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("provider.OpenAI: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("provider.OpenAI: decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("provider.OpenAI: api error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("provider.OpenAI: response has no choices")
	}

	text := out.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("provider.OpenAI: empty completion")
	}
	return text, nil
}

// truncate corta s a max caracteres para no ensuciar los mensajes de error.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
