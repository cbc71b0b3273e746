package gateway

// gateway.go — acceso unificado a los proveedores de generación de texto.
//
// Cadena estática de dos niveles: el proveedor primario y, si está
// configurado, uno local de respaldo que se intenta con el mismo prompt.
// Aquí no hay reintentos con backoff, circuit breakers ni rate limiting:
// la política de recuperación por candidato vive en las etapas del pipeline.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/ports"
)

const defaultMaxTokens = 2000

// Options ajusta una llamada de generación concreta.
type Options struct {
	// MaxTokens limita la longitud de la respuesta. <= 0 usa el default
	// del gateway.
	MaxTokens int
}

// Gateway enruta prompts hacia los proveedores de texto.
type Gateway struct {
	primary   ports.TextProvider
	fallback  ports.TextProvider // nil si el respaldo está deshabilitado
	maxTokens int
}

// New crea un Gateway. fallback puede ser nil: en ese caso el error del
// primario se propaga directamente.
func New(primary, fallback ports.TextProvider, maxTokens int) *Gateway {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Gateway{primary: primary, fallback: fallback, maxTokens: maxTokens}
}

// Generate envía el prompt al proveedor primario y, si falla y hay respaldo,
// lo reintenta con el de respaldo. Si ambos fallan, devuelve un solo error
// que nombra ambos fallos. La salida no es determinista entre llamadas:
// ningún caller debe asumir que el mismo prompt repite la misma respuesta.
func (g *Gateway) Generate(ctx context.Context, prompt string, opts ...Options) (string, error) {
	maxTokens := g.maxTokens
	if len(opts) > 0 && opts[0].MaxTokens > 0 {
		maxTokens = opts[0].MaxTokens
	}

	providers := []ports.TextProvider{g.primary}
	if g.fallback != nil {
		providers = append(providers, g.fallback)
	}
	return completeInOrder(ctx, providers, prompt, maxTokens)
}

// GenerateStructured genera texto y extrae el único objeto JSON embebido en
// la respuesta. Un fallo de extracción es un error duro: no hay más fallback
// que intentar.
func (g *Gateway) GenerateStructured(ctx context.Context, prompt string, opts ...Options) (json.RawMessage, error) {
	text, err := g.Generate(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}

	span, err := ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("gateway.GenerateStructured: %w", err)
	}
	return json.RawMessage(span), nil
}

// completeInOrder prueba los proveedores en orden y devuelve la primera
// respuesta buena. Con un solo proveedor su error se propaga envuelto; con
// varios, el error final acumula cada fallo con el nombre de su proveedor.
func completeInOrder(ctx context.Context, providers []ports.TextProvider, prompt string, maxTokens int) (string, error) {
	var failures []string
	var lastErr error

	for _, p := range providers {
		text, err := p.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		slog.Warn("text provider failed", "provider", p.Name(), "err", err)
		failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
		lastErr = err
	}

	if len(failures) == 1 {
		return "", fmt.Errorf("gateway.Generate: %s: %w", providers[0].Name(), lastErr)
	}
	return "", fmt.Errorf("gateway.Generate: all providers failed: %s", strings.Join(failures, "; "))
}
