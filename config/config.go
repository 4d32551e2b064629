package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del scanner AuraFX.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Engine  EngineConfig  `yaml:"engine"`
	Risk    RiskConfig    `yaml:"risk"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig controla el comportamiento del loop de evaluación.
type ScannerConfig struct {
	IntervalSeconds      int      `yaml:"interval_seconds"`
	Symbols              []string `yaml:"symbols"`
	CandleInterval       string   `yaml:"candle_interval"` // p.ej. "15m", "1h"
	CandleLimit          int      `yaml:"candle_limit"`
	Workers              int      `yaml:"workers"`
	MinScore             float64  `yaml:"min_score"`
	OnlyActionable       bool     `yaml:"only_actionable"`
	IncludeInvalid       bool     `yaml:"include_invalid"`
	RequireActiveSession bool     `yaml:"require_active_session"`
}

// EngineConfig expone los parámetros del engine con defaults documentados.
type EngineConfig struct {
	TrendLookback   int     `yaml:"trend_lookback"`     // default 50
	SwingWindow     int     `yaml:"swing_window"`       // default 2
	MinSwingSizePct float64 `yaml:"min_swing_size_pct"` // reservado, default 0.05
	TzOffsetMinutes int     `yaml:"tz_offset_minutes"`
}

// RiskConfig controla el sizing de posiciones para setups VALID.
type RiskConfig struct {
	AccountBalance float64 `yaml:"account_balance"`
	RiskPercent    float64 `yaml:"risk_percent"` // fracción, p.ej. 0.01 = 1%
}

// APIConfig contiene el base URL del proveedor de velas.
type APIConfig struct {
	MarketDataBase string `yaml:"market_data_base"`
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

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
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

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MARKET_DATA_BASE"); v != "" {
		cfg.API.MarketDataBase = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 60
	}
	if len(cfg.Scanner.Symbols) == 0 {
		cfg.Scanner.Symbols = []string{"BTCUSDT"}
	}
	if cfg.Scanner.CandleInterval == "" {
		cfg.Scanner.CandleInterval = "15m"
	}
	if cfg.Scanner.CandleLimit <= 0 {
		cfg.Scanner.CandleLimit = 200
	}
	if cfg.Engine.TrendLookback <= 0 {
		cfg.Engine.TrendLookback = 50
	}
	if cfg.Engine.SwingWindow <= 0 {
		cfg.Engine.SwingWindow = 2
	}
	if cfg.Engine.MinSwingSizePct <= 0 {
		cfg.Engine.MinSwingSizePct = 0.05
	}
	if cfg.Risk.RiskPercent <= 0 {
		cfg.Risk.RiskPercent = 0.01
	}
	if cfg.API.MarketDataBase == "" {
		cfg.API.MarketDataBase = "https://api.binance.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "aurafx.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
