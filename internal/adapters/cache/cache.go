package cache

// cache.go — caché de resultados en disco para las llamadas a herramientas externas.
//
// Estrategia:
//   - Un archivo JSON por clave, dentro de un subdirectorio (namespace) por
//     servicio. Nadie más lee esos archivos: cada wrapper es dueño del suyo.
//   - Expiración perezosa: la entrada caducada se borra en el momento de
//     leerla. No hay sweeper de fondo.
//   - Los errores de I/O nunca se propagan: Get degrada a MISS y Set a no-op.
//     La caché es una optimización, jamás una dependencia de corrección.

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache es un almacén clave/valor con TTL sobre el sistema de archivos.
// Escrituras concurrentes a la misma clave no se sincronizan: gana el último
// escritor, aceptable porque cada entrada es un snapshot idempotente de una
// llamada externa, no estado autoritativo.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time // inyectable en tests
}

// entry es el formato en disco: la clave, el momento de escritura en epoch
// millis y el payload tal cual se guardó.
type entry struct {
	Key        string          `json:"key"`
	StoredAtMS int64           `json:"storedAtEpochMillis"`
	Payload    json.RawMessage `json:"payload"`
}

// New crea una caché sobre el directorio dado con el TTL indicado.
// El directorio se crea si no existe; si no se puede, la caché opera
// igualmente como MISS permanente.
func New(dir string, ttl time.Duration) *Cache {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Debug("cache: mkdir failed, cache will be a no-op", "dir", dir, "err", err)
	}
	return &Cache{dir: dir, ttl: ttl, now: time.Now}
}

// Get devuelve el payload guardado bajo key si existe y no ha caducado.
// Cualquier error de lectura o parseo se trata como MISS.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Debug("cache: corrupt entry", "key", key, "err", err)
		return nil, false
	}

	if c.now().UnixMilli()-e.StoredAtMS > c.ttl.Milliseconds() {
		// Expiración perezosa: la entrada muere al ser leída.
		if err := os.Remove(path); err != nil {
			slog.Debug("cache: remove expired entry", "key", key, "err", err)
		}
		return nil, false
	}

	return e.Payload, true
}

// Set guarda payload bajo key, sobreescribiendo sin condiciones cualquier
// valor anterior. Los errores se tragan: un Set fallido es un no-op.
func (c *Cache) Set(key string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Debug("cache: marshal payload", "key", key, "err", err)
		return
	}

	e := entry{Key: key, StoredAtMS: c.now().UnixMilli(), Payload: raw}
	data, err := json.Marshal(e)
	if err != nil {
		slog.Debug("cache: marshal entry", "key", key, "err", err)
		return
	}

	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		slog.Debug("cache: write entry", "key", key, "err", err)
	}
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Key deriva una clave determinista a partir del nombre de la operación y sus
// argumentos. La serialización se canoniza (round-trip JSON: las claves de
// mapa quedan ordenadas) y se le elimina el espacio en blanco, de modo que
// argumentos que solo difieren en orden de claves o espaciado incidental
// producen la misma clave.
func Key(op string, args any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", args))
	} else {
		var v any
		if json.Unmarshal(raw, &v) == nil {
			if canon, err := json.Marshal(v); err == nil {
				raw = canon
			}
		}
	}

	normalized := strings.Join(strings.Fields(string(raw)), "")
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s_%x", op, sum[:8])
}
