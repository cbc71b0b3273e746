package provider

// ollama.go — proveedor de respaldo: un modelo local servido por Ollama.
// Se usa solo cuando el primario falla, así el pipeline sigue produciendo
// aunque no haya salida a internet. Implementa ports.TextProvider.

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
	defaultOllamaBase  = "http://localhost:11434"
	defaultOllamaModel = "llama3.1"

	// Los modelos locales son lentos en hardware modesto.
	ollamaTimeout = 300 * time.Second
)

// Ollama llama al endpoint /api/generate del servidor local.
type Ollama struct {
	http  *http.Client
	base  string
	model string
}

// NewOllama crea el proveedor local. base y model vacíos usan los defaults.
func NewOllama(base, model string) *Ollama {
	if base == "" {
		base = defaultOllamaBase
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{
		http:  &http.Client{Timeout: ollamaTimeout},
		base:  strings.TrimRight(base, "/"),
		model: model,
	}
}

// Name identifica al proveedor en logs y errores.
func (p *Ollama) Name() string {
	return "ollama:" + p.model
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Complete genera texto con el modelo local, sin streaming.
func (p *Ollama) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   p.model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{NumPredict: maxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("provider.Ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("provider.Ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider.Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("provider.Ollama: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("provider.Ollama: decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("provider.Ollama: api error: %s", out.Error)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("provider.Ollama: empty completion")
	}
	return out.Response, nil
}
