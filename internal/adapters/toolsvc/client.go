package toolsvc

// client.go — HTTP client del tool-runner local, con rate limiting y retries.
//
// El tool-runner es el sidecar que arranca y detiene los procesos auxiliares
// (backtester, datos de mercado, búsqueda de documentos) y los expone como
// herramientas invocables por nombre: POST /invoke con {tool, args} y
// respuesta {result} o {error}.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBase = "http://localhost:8700"

	// El sidecar es local; el límite protege a los backends que hay detrás.
	invokeRatePerSec = 8

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond

	// Sondeo de arranque: acotado por número de intentos, no por reloj.
	readyAttempts = 20
	readyWait     = 250 * time.Millisecond
)

// Client es el HTTP client del tool-runner. Implementa ports.ToolInvoker.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client contra el base URL dado (vacío: el default local).
// El client no lleva timeout: un backtest largo puede tardar minutos y el
// corte por reloj queda fuera del contrato; los retries sí están acotados.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{},
		base:    base,
		limiter: rate.NewLimiter(invokeRatePerSec, 4),
	}
}

type invokeRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

type invokeResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// Invoke ejecuta la herramienta por nombre y devuelve su resultado JSON.
// Un fallo del backend llega como error normal; el caller decide si degradar.
func (c *Client) Invoke(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error) {
	var out invokeResponse
	if err := c.post(ctx, c.base+"/invoke", invokeRequest{Tool: tool, Args: args}, &out); err != nil {
		return nil, fmt.Errorf("toolsvc.Invoke: %s: %w", tool, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("toolsvc.Invoke: %s: %s", tool, out.Error)
	}
	return out.Result, nil
}

// WaitReady sondea /health hasta readyAttempts veces antes de rendirse.
func (c *Client) WaitReady(ctx context.Context) error {
	for attempt := 1; attempt <= readyAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
		if err != nil {
			return fmt.Errorf("toolsvc.WaitReady: build request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		slog.Debug("tool runner not ready yet", "attempt", attempt, "err", err)

		select {
		case <-time.After(readyWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("toolsvc.WaitReady: tool runner not ready after %d attempts", readyAttempts)
}

// post hace un POST JSON con rate limiting y retries.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
// 429 y 5xx se reintentan; otros 4xx son error duro.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by tool runner", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
