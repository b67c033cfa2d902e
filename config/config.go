package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradeMetrics/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Analytics
	InitialCapital      float64       // Equity curve baseline and ROI denominator
	RiskFreeRate        float64       // Annualized, e.g. 0.02 for 2%
	ClusterWindow       time.Duration // Maximum gap between trades of one cluster
	OvertradingLookback int           // Most recent trades examined for overtrading
	ReferenceTime       time.Time     // "Now" for recent-window metrics; zero means wall clock
	Location            *time.Location
	Timezone            string

	// Data sources
	DBPath    string
	TradesCSV string

	// Binance API (only needed for imports)
	APIKey    string
	SecretKey string
	IsTestnet bool
	Symbols   []string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string
}

// Now returns the reference time, or the current time in the configured location.
func (c *Config) Now() time.Time {
	if !c.ReferenceTime.IsZero() {
		return c.ReferenceTime
	}
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// fileConfig is the YAML overlay accepted by LoadFromFile. Absent keys keep the
// environment value. API credentials are only read from the environment.
type fileConfig struct {
	InitialCapital      *float64 `yaml:"initial_capital"`
	RiskFreeRate        *float64 `yaml:"risk_free_rate"`
	ClusterWindow       string   `yaml:"cluster_window"`
	OvertradingLookback *int     `yaml:"overtrading_lookback"`
	ReferenceTime       string   `yaml:"reference_time"`
	Timezone            string   `yaml:"timezone"`
	DBPath              string   `yaml:"db_path"`
	TradesCSV           string   `yaml:"trades_csv"`
	LogLevel            string   `yaml:"log_level"`
	LogFormat           string   `yaml:"log_format"`
	Binance             struct {
		Testnet *bool    `yaml:"testnet"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"binance"`
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	return load(nil)
}

// LoadFromFile loads the environment configuration and overlays the YAML file at path.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return load(&fc)
}

func load(fc *fileConfig) (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Analytics
	cfg.InitialCapital, err = getEnvAsFloatRequired("INITIAL_CAPITAL", 10000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_CAPITAL: %v", err))
	}
	cfg.RiskFreeRate, err = getEnvAsFloatRequired("RISK_FREE_RATE", 0.02)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_FREE_RATE: %v", err))
	}
	cfg.ClusterWindow, err = getEnvAsDurationRequired("CLUSTER_WINDOW", 2*time.Hour)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CLUSTER_WINDOW: %v", err))
	}
	cfg.OvertradingLookback, err = getEnvAsIntRequired("OVERTRADING_LOOKBACK", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid OVERTRADING_LOOKBACK: %v", err))
	}
	referenceTime := getEnv("REFERENCE_TIME", "")
	cfg.Timezone = getEnv("TIMEZONE", "Local")

	// Data sources
	cfg.DBPath = getEnv("DB_PATH", "./data/trades.db")
	cfg.TradesCSV = getEnv("TRADES_CSV", "")

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.Symbols = splitList(getEnv("BINANCE_SYMBOLS", "BTCUSDT"))

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogFormat = getEnv("LOG_FORMAT", logger.FormatText)

	if fc != nil {
		if fc.InitialCapital != nil {
			cfg.InitialCapital = *fc.InitialCapital
		}
		if fc.RiskFreeRate != nil {
			cfg.RiskFreeRate = *fc.RiskFreeRate
		}
		if fc.ClusterWindow != "" {
			if cfg.ClusterWindow, err = time.ParseDuration(fc.ClusterWindow); err != nil {
				errs = append(errs, fmt.Sprintf("invalid cluster_window: %v", err))
			}
		}
		if fc.OvertradingLookback != nil {
			cfg.OvertradingLookback = *fc.OvertradingLookback
		}
		referenceTime = overlay(referenceTime, fc.ReferenceTime)
		cfg.Timezone = overlay(cfg.Timezone, fc.Timezone)
		cfg.DBPath = overlay(cfg.DBPath, fc.DBPath)
		cfg.TradesCSV = overlay(cfg.TradesCSV, fc.TradesCSV)
		logLevelStr = overlay(logLevelStr, fc.LogLevel)
		cfg.LogFormat = overlay(cfg.LogFormat, fc.LogFormat)
		if fc.Binance.Testnet != nil {
			cfg.IsTestnet = *fc.Binance.Testnet
		}
		if len(fc.Binance.Symbols) > 0 {
			cfg.Symbols = fc.Binance.Symbols
		}
	}

	// Validation
	if cfg.InitialCapital <= 0 {
		errs = append(errs, "INITIAL_CAPITAL must be positive")
	}
	if cfg.RiskFreeRate < 0 || cfg.RiskFreeRate >= 1 {
		errs = append(errs, "RISK_FREE_RATE must be between 0.0 (inclusive) and 1.0 (exclusive)")
	}
	if cfg.ClusterWindow <= 0 {
		errs = append(errs, "CLUSTER_WINDOW must be positive")
	}
	if cfg.OvertradingLookback <= 0 {
		errs = append(errs, "OVERTRADING_LOOKBACK must be positive")
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TIMEZONE %q: %v", cfg.Timezone, err))
		cfg.Location = time.UTC
	}
	if referenceTime != "" {
		ts, err := time.Parse(time.RFC3339, referenceTime)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid REFERENCE_TIME (want RFC3339): %v", err))
		} else {
			cfg.ReferenceTime = ts.In(cfg.Location)
		}
	}

	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = logger.ParseFormat(cfg.LogFormat)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func overlay(current, override string) string {
	if override == "" {
		return current
	}
	return override
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsDurationRequired(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
