package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache devuelve una caché con reloj congelado y manejable.
func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(t.TempDir(), ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCache_SetThenGet(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	c.Set("op_abc", map[string]any{"value": 42.5, "symbol": "SPY"})

	raw, ok := c.Get("op_abc")
	require.True(t, ok)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, 42.5, payload["value"])
	assert.Equal(t, "SPY", payload["symbol"])
}

func TestCache_GetUnknownKey(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	_, ok := c.Get("never_written")
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	c, now := newTestCache(t, time.Hour)

	c.Set("k", "payload")

	// Justo en el límite del TTL sigue siendo hit.
	*now = now.Add(time.Hour)
	_, ok := c.Get("k")
	assert.True(t, ok)

	// Pasado el TTL: miss y la entrada se borra del disco.
	*now = now.Add(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(c.dir, "k.json"))
	assert.True(t, os.IsNotExist(err))

	// La clave queda libre para un Set nuevo.
	c.Set("k", "fresh")
	raw, ok := c.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `"fresh"`, string(raw))
}

func TestCache_SetOverwrites(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	c.Set("k", "old")
	c.Set("k", "new")

	raw, ok := c.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `"new"`, string(raw))
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "bad.json"), []byte("{not json"), 0o644))

	_, ok := c.Get("bad")
	assert.False(t, ok)
}

func TestCache_UnusableDirSwallowsErrors(t *testing.T) {
	// Apuntar la caché a una ruta que es un archivo: todo I/O falla,
	// pero ni Get ni Set deben propagar nada.
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	c := New(filepath.Join(file, "sub"), time.Hour)
	c.Set("k", "v")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

// --- derivación de claves ---

func TestKey_StableAcrossKeyOrder(t *testing.T) {
	a := Key("runBacktest", json.RawMessage(`{"symbol":"SPY","window":30}`))
	b := Key("runBacktest", json.RawMessage(`{"window":30,"symbol":"SPY"}`))
	assert.Equal(t, a, b)
}

func TestKey_StableAcrossWhitespace(t *testing.T) {
	a := Key("runBacktest", json.RawMessage(`{"symbol":"SPY","window":30}`))
	b := Key("runBacktest", json.RawMessage(`{ "symbol": "SPY",
		"window": 30 }`))
	assert.Equal(t, a, b)
}

func TestKey_MapAndRawEquivalent(t *testing.T) {
	a := Key("op", map[string]any{"q": "momentum", "n": 5.0})
	b := Key("op", json.RawMessage(`{"n":5,"q":"momentum"}`))
	assert.Equal(t, a, b)
}

func TestKey_DistinguishesOpsAndArgs(t *testing.T) {
	base := Key("opA", map[string]any{"x": 1})
	assert.NotEqual(t, base, Key("opB", map[string]any{"x": 1}))
	assert.NotEqual(t, base, Key("opA", map[string]any{"x": 2}))
}

func TestKey_FilesystemSafe(t *testing.T) {
	k := Key("getMarketSnapshot", map[string]any{"symbols": []string{"SPY", "QQQ"}})
	assert.NotContains(t, k, "/")
	assert.NotContains(t, k, " ")
}
