package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"10m"`
	Holdings        Holdings
	Mood            Mood
	Quotes          Quotes
	API             API
	Light           Light
	Redis           Redis
	Status          Status
	Telegram        Telegram
}

type Holdings struct {
	File            string `env:"HOLDINGS_FILE" envDefault:"portfolio.json"`
	MergeDuplicates bool   `env:"HOLDINGS_MERGE_DUPLICATES" envDefault:"false"`
}

type Mood struct {
	FlatBandPct        decimal.Decimal `env:"FLAT_BAND_PCT" envDefault:"0.3"`
	Signal             string          `env:"MOOD_SIGNAL" envDefault:"day_change"`
	MissingQuotePolicy string          `env:"MISSING_QUOTE_POLICY" envDefault:"count_invested"`
}

type Quotes struct {
	SymbolSuffix string        `env:"SYMBOL_SUFFIX" envDefault:".NS"`
	Timeout      time.Duration `env:"QUOTES_TIMEOUT" envDefault:"30s"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	YahooApi YahooApi
	TuyaApi  TuyaApi
}

type YahooApi struct {
	Url       string `env:"YAHOO_CHART_URL" envDefault:"https://query1.finance.yahoo.com"`
	RateLimit int    `env:"YAHOO_RATE_LIMIT" envDefault:"2"`
}

type TuyaApi struct {
	Url          string `env:"TUYA_API_URL" envDefault:"https://openapi.tuyain.com"`
	ClientID     string `env:"TUYA_CLIENT_ID" envDefault:""`
	ClientSecret string `env:"TUYA_CLIENT_SECRET" envDefault:""`
	DeviceID     string `env:"TUYA_DEVICE_ID" envDefault:""`
}

type Light struct {
	Driver        string `env:"LIGHT_DRIVER" envDefault:"log"`
	MaxRetries    uint64 `env:"LIGHT_MAX_RETRIES" envDefault:"2"`
	OffOnExit     bool   `env:"LIGHT_OFF_ON_EXIT" envDefault:"true"`
	SkipUnchanged bool   `env:"LIGHT_SKIP_UNCHANGED" envDefault:"false"`
}

type Redis struct {
	Host        string        `env:"REDIS_HOST" envDefault:""`
	Port        int           `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD" envDefault:""`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	SnapshotKey string        `env:"REDIS_SNAPSHOT_KEY" envDefault:"portfolio_mood_light:snapshot"`
	SnapshotTTL time.Duration `env:"REDIS_SNAPSHOT_TTL" envDefault:"0s"`
}

type Status struct {
	Addr string `env:"STATUS_ADDR" envDefault:""`
}

type Telegram struct {
	Token  string `env:"TELEGRAM_TOKEN" envDefault:""`
	ChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
}

// Load reads an optional .env file and then the environment.
func Load(overrides ...func(*Config)) (*Config, error) {
	_ = godotenv.Load(".env")
	return Parse(overrides...)
}

// Parse reads the config from the environment without touching .env files. Overrides, such as
// command line flags, are applied before validation.
func Parse(overrides ...func(*Config)) (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	for _, override := range overrides {
		override(cfg)
	}

	if cfg.Redis.SnapshotTTL == 0 {
		cfg.Redis.SnapshotTTL = 2 * cfg.RefreshInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_INTERVAL must be positive")
	}

	if c.Mood.FlatBandPct.IsNegative() {
		return errors.New("FLAT_BAND_PCT must not be negative")
	}

	switch c.Mood.Signal {
	case "day_change", "total_return":
	default:
		return fmt.Errorf("unknown MOOD_SIGNAL %q", c.Mood.Signal)
	}

	switch c.Mood.MissingQuotePolicy {
	case "count_invested", "exclude":
	default:
		return fmt.Errorf("unknown MISSING_QUOTE_POLICY %q", c.Mood.MissingQuotePolicy)
	}

	switch c.Light.Driver {
	case "log":
	case "tuya":
		if c.API.TuyaApi.ClientID == "" || c.API.TuyaApi.ClientSecret == "" || c.API.TuyaApi.DeviceID == "" {
			return errors.New("LIGHT_DRIVER=tuya requires TUYA_CLIENT_ID, TUYA_CLIENT_SECRET and TUYA_DEVICE_ID")
		}
	default:
		return fmt.Errorf("unknown LIGHT_DRIVER %q", c.Light.Driver)
	}

	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return errors.New("TELEGRAM_TOKEN is set but TELEGRAM_CHAT_ID is empty")
	}

	return nil
}
