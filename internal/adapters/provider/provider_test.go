package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/adapters/provider"
)

// --- OpenAI ---

func TestOpenAI_Complete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"a momentum strategy"}}]}`))
	}))
	defer srv.Close()

	p := provider.NewOpenAI(srv.URL, "sk-test", "gpt-4o-mini")
	text, err := p.Complete(context.Background(), "propose a strategy", 512)
	require.NoError(t, err)

	assert.Equal(t, "a momentum strategy", text)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, 512.0, gotBody["max_tokens"])

	msgs := gotBody["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "propose a strategy", msgs[0].(map[string]any)["content"])
}

func TestOpenAI_Complete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := provider.NewOpenAI(srv.URL, "", "")
	_, err := p.Complete(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestOpenAI_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := provider.NewOpenAI(srv.URL, "", "")
	_, err := p.Complete(context.Background(), "x", 10)
	assert.Error(t, err)
}

func TestOpenAI_Complete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}}]}`))
	}))
	defer srv.Close()

	p := provider.NewOpenAI(srv.URL, "", "")
	_, err := p.Complete(context.Background(), "x", 10)
	assert.Error(t, err, "una completion en blanco nunca se devuelve en silencio")
}

func TestOpenAI_Name(t *testing.T) {
	assert.Equal(t, "openai:gpt-4o-mini", provider.NewOpenAI("", "", "").Name())
}

// --- Ollama ---

func TestOllama_Complete(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"response":"local completion","done":true}`))
	}))
	defer srv.Close()

	p := provider.NewOllama(srv.URL, "llama3.1")
	text, err := p.Complete(context.Background(), "hello", 128)
	require.NoError(t, err)

	assert.Equal(t, "local completion", text)
	assert.Equal(t, "/api/generate", gotPath)
	assert.Equal(t, "llama3.1", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Equal(t, 128.0, gotBody["options"].(map[string]any)["num_predict"])
}

func TestOllama_Complete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"model 'llama3.1' not found"}`))
	}))
	defer srv.Close()

	p := provider.NewOllama(srv.URL, "")
	_, err := p.Complete(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOllama_Complete_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"response":"","done":true}`))
	}))
	defer srv.Close()

	p := provider.NewOllama(srv.URL, "")
	_, err := p.Complete(context.Background(), "x", 10)
	assert.Error(t, err)
}

func TestOllama_Name(t *testing.T) {
	assert.Equal(t, "ollama:llama3.1", provider.NewOllama("", "").Name())
}
