package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del screener.
type Config struct {
	Screener ScreenerConfig `yaml:"screener"`
	Feed     FeedConfig     `yaml:"feed"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// ScreenerConfig controla el comportamiento del pipeline.
type ScreenerConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"` // ventana de reuso del snapshot
	MaxExpirations  int `yaml:"max_expirations"`   // expiraciones cercanas por batch
	ChainSpacingMS  int `yaml:"chain_spacing_ms"`  // espaciado mínimo entre requests al feed

	// Banda de strikes cuando otm_only está desactivado. Las dos variantes
	// observadas en producción usaban [0.7,1.1] y [0.5,1.2] — es un tunable.
	BandLow  float64 `yaml:"band_low"`
	BandHigh float64 `yaml:"band_high"`

	// Umbrales por defecto; los flags del CLI los sobreescriben.
	MinAnnualizedReturnPct float64 `yaml:"min_annualized_return_pct"`
	MinSafetyMarginPct     float64 `yaml:"min_safety_margin_pct"`
	OTMOnly                bool    `yaml:"otm_only"`
	PriceBasis             string  `yaml:"price_basis"` // bid | last | ask
}

// FeedConfig contiene el base URL del feed de opciones.
type FeedConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StorageConfig controla dónde se persiste el histórico.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el .env si existe.
// Un archivo de config ausente no es error: se usan los defaults.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// sin archivo → defaults
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CacheTTL devuelve la ventana de cache como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Screener.CacheTTLSeconds) * time.Second
}

// ChainSpacing devuelve el espaciado entre requests como time.Duration.
func (c *Config) ChainSpacing() time.Duration {
	return time.Duration(c.Screener.ChainSpacingMS) * time.Millisecond
}

// applyEnvOverrides sobreescribe valores con variables de entorno si existen.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PUTSCAN_FEED_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("PUTSCAN_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Screener.CacheTTLSeconds <= 0 {
		cfg.Screener.CacheTTLSeconds = 300
	}
	if cfg.Screener.MaxExpirations <= 0 {
		cfg.Screener.MaxExpirations = 3
	}
	if cfg.Screener.ChainSpacingMS <= 0 {
		cfg.Screener.ChainSpacingMS = 100
	}
	if cfg.Screener.BandLow <= 0 {
		cfg.Screener.BandLow = 0.7
	}
	if cfg.Screener.BandHigh <= 0 {
		cfg.Screener.BandHigh = 1.1
	}
	if cfg.Screener.MinAnnualizedReturnPct <= 0 {
		cfg.Screener.MinAnnualizedReturnPct = 15
	}
	if cfg.Screener.MinSafetyMarginPct <= 0 {
		cfg.Screener.MinSafetyMarginPct = 10
	}
	if cfg.Screener.PriceBasis == "" {
		cfg.Screener.PriceBasis = "bid"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "putscan.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
