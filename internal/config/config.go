package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "FXWIDGET"

// Upper bounds for the synthetic trend spreads.
const (
	MaxTrendSpread   = 0.015
	MaxHistorySpread = 0.02
)

// Store backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Server      ServerConfig
	ExchangeAPI ExchangeAPIConfig
	Store       StoreConfig
	Trend       TrendConfig
	Widget      WidgetConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ExchangeAPIConfig struct {
	URL         string
	Timeout     time.Duration
	MaxRetries  int
	RefreshRate time.Duration
}

type StoreConfig struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type TrendConfig struct {
	Spread        float64
	HistorySpread float64
	HistoryDays   int
}

type WidgetConfig struct {
	DefaultBase string
}

type LogConfig struct {
	Level string
}

// LoadConfig reads an optional env file, then resolves every setting from
// FXWIDGET_* environment variables over built-in defaults.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		// a missing file is fine, the environment and defaults still apply
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		ExchangeAPI: ExchangeAPIConfig{
			URL:         v.GetString("exchange_api.url"),
			Timeout:     v.GetDuration("exchange_api.timeout"),
			MaxRetries:  v.GetInt("exchange_api.max_retries"),
			RefreshRate: v.GetDuration("exchange_api.refresh_rate"),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(v.GetString("store.backend")),
			Path:          v.GetString("store.path"),
			RedisAddr:     v.GetString("store.redis_addr"),
			RedisPassword: v.GetString("store.redis_password"),
			RedisDB:       v.GetInt("store.redis_db"),
			RedisPrefix:   v.GetString("store.redis_prefix"),
		},
		Trend: TrendConfig{
			Spread:        v.GetFloat64("trend.spread"),
			HistorySpread: v.GetFloat64("trend.history_spread"),
			HistoryDays:   v.GetInt("trend.history_days"),
		},
		Widget: WidgetConfig{
			DefaultBase: strings.ToUpper(v.GetString("widget.default_base")),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("exchange_api.url", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("exchange_api.timeout", 10*time.Second)
	v.SetDefault("exchange_api.max_retries", 2)
	v.SetDefault("exchange_api.refresh_rate", 1*time.Hour)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", ".fxwidget")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.redis_prefix", "fxwidget:")

	v.SetDefault("trend.spread", 0.015)
	v.SetDefault("trend.history_spread", 0.02)
	v.SetDefault("trend.history_days", 7)

	v.SetDefault("widget.default_base", "USD")

	v.SetDefault("log.level", "info")
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendBadger, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Widget.DefaultBase {
	case "USD", "VES", "EUR", "COP":
	default:
		return fmt.Errorf("unsupported default base currency %q", c.Widget.DefaultBase)
	}

	if c.Trend.Spread < 0 || c.Trend.HistorySpread < 0 {
		return fmt.Errorf("trend spreads must not be negative")
	}
	if c.Trend.Spread > MaxTrendSpread {
		return fmt.Errorf("trend spread %v exceeds %v", c.Trend.Spread, MaxTrendSpread)
	}
	if c.Trend.HistorySpread > MaxHistorySpread {
		return fmt.Errorf("history spread %v exceeds %v", c.Trend.HistorySpread, MaxHistorySpread)
	}
	if c.Trend.HistoryDays < 1 {
		return fmt.Errorf("trend history must cover at least one day")
	}
	if c.ExchangeAPI.RefreshRate <= 0 {
		return fmt.Errorf("refresh rate must be positive")
	}

	return nil
}
