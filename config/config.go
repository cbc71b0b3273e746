package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio de descubrimiento.
type Config struct {
	Discovery DiscoveryConfig `yaml:"discovery"`
	Targets   TargetsConfig   `yaml:"targets"`
	Providers ProvidersConfig `yaml:"providers"`
	Tools     ToolsConfig     `yaml:"tools"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// DiscoveryConfig controla el ciclo del pipeline.
type DiscoveryConfig struct {
	IntervalMinutes int      `yaml:"interval_minutes"`
	Candidates      int      `yaml:"candidates"` // candidatas por ciclo
	TopK            int      `yaml:"top_k"`      // tamaño del shortlist (3–5)
	Workers         int      `yaml:"workers"`    // 0 = NumCPU × 2
	Symbols         []string `yaml:"symbols"`    // universo para el snapshot de mercado
}

// TargetsConfig son los objetivos de rendimiento contra los que se puntúa.
// Fracciones, no porcentajes.
type TargetsConfig struct {
	MinCAGR         float64 `yaml:"min_cagr"`
	MinSharpeRatio  float64 `yaml:"min_sharpe_ratio"`
	MaxDrawdown     float64 `yaml:"max_drawdown"`
	MinWinRate      float64 `yaml:"min_win_rate"`
	MinProfitFactor float64 `yaml:"min_profit_factor"`
}

// ProvidersConfig describe el proveedor primario y el de reserva.
type ProvidersConfig struct {
	Primary         ProviderConfig `yaml:"primary"`
	Fallback        ProviderConfig `yaml:"fallback"`
	DisableFallback bool           `yaml:"disable_fallback"` // true: el error del primario propaga directo
	MaxTokens       int            `yaml:"max_tokens"`
}

// ProviderConfig es la conexión a un proveedor de texto.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
}

// ToolsConfig apunta al tool-runner local y su caché de resultados.
type ToolsConfig struct {
	BaseURL       string `yaml:"base_url"`
	CacheDir      string `yaml:"cache_dir"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
}

// StorageConfig controla dónde se persiste el histórico de runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// DiscoveryInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) DiscoveryInterval() time.Duration {
	return time.Duration(c.Discovery.IntervalMinutes) * time.Minute
}

// CacheTTL devuelve la vida útil de las entradas de caché como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Tools.CacheTTLHours) * time.Hour
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Providers.Primary.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Providers.Primary.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Providers.Fallback.BaseURL = v
	}
	if v := os.Getenv("TOOLS_BASE_URL"); v != "" {
		cfg.Tools.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Discovery.IntervalMinutes <= 0 {
		cfg.Discovery.IntervalMinutes = 360 // 6 horas
	}
	if cfg.Discovery.Candidates <= 0 {
		cfg.Discovery.Candidates = 5
	}
	if cfg.Discovery.TopK <= 0 {
		cfg.Discovery.TopK = 3
	}
	if len(cfg.Discovery.Symbols) == 0 {
		cfg.Discovery.Symbols = []string{"SPY", "QQQ", "IWM"}
	}

	if cfg.Targets.MinCAGR <= 0 {
		cfg.Targets.MinCAGR = 0.15
	}
	if cfg.Targets.MinSharpeRatio <= 0 {
		cfg.Targets.MinSharpeRatio = 1.0
	}
	if cfg.Targets.MaxDrawdown <= 0 {
		cfg.Targets.MaxDrawdown = 0.15
	}
	if cfg.Targets.MinWinRate <= 0 {
		cfg.Targets.MinWinRate = 0.55
	}
	if cfg.Targets.MinProfitFactor <= 0 {
		cfg.Targets.MinProfitFactor = 1.5
	}

	if cfg.Providers.Primary.BaseURL == "" {
		cfg.Providers.Primary.BaseURL = "https://api.openai.com"
	}
	if cfg.Providers.Primary.Model == "" {
		cfg.Providers.Primary.Model = "gpt-4o-mini"
	}
	if cfg.Providers.Fallback.BaseURL == "" {
		cfg.Providers.Fallback.BaseURL = "http://localhost:11434"
	}
	if cfg.Providers.Fallback.Model == "" {
		cfg.Providers.Fallback.Model = "llama3.1"
	}
	if cfg.Providers.MaxTokens <= 0 {
		cfg.Providers.MaxTokens = 2000
	}

	if cfg.Tools.BaseURL == "" {
		cfg.Tools.BaseURL = "http://localhost:8700"
	}
	if cfg.Tools.CacheDir == "" {
		cfg.Tools.CacheDir = "cache"
	}
	if cfg.Tools.CacheTTLHours <= 0 {
		cfg.Tools.CacheTTLHours = 24
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "discovery.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
