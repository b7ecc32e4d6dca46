package config

import (
	"fmt"
	"time"

	"economy_server/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

type Config struct {
	AppPort       string        `env:"APP_PORT" envDefault:"8080"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool          `env:"LOG_JSON" envDefault:"false"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN"`
	Version       string        `env:"APP_VERSION" envDefault:"dev"`

	StoreBackend  string        `env:"STORE_BACKEND" envDefault:"memory"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"economy.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	FlushInterval time.Duration `env:"FLUSH_INTERVAL" envDefault:"5s"`

	APIRateLimit    int           `env:"API_RATE_LIMIT" envDefault:"120"`
	APIRateWindow   time.Duration `env:"API_RATE_WINDOW" envDefault:"1m"`
	WagerRateLimit  int           `env:"WAGER_RATE_LIMIT" envDefault:"20"`
	WagerRateWindow time.Duration `env:"WAGER_RATE_WINDOW" envDefault:"1m"`

	InventorySlots int `env:"INVENTORY_SLOTS" envDefault:"36"`

	AdminBotEnabled  bool    `env:"ADMIN_BOT_ENABLED" envDefault:"false"`
	BotToken         string  `env:"BOT_TOKEN"`
	AdminTelegramIDs []int64 `env:"ADMIN_TELEGRAM_IDS" envSeparator:","`

	Economy Economy
}

// Economy holds the tunable game parameters.
type Economy struct {
	CurrencyName         string          `env:"CURRENCY_NAME" envDefault:"coins"`
	StartingBalance      decimal.Decimal `env:"STARTING_BALANCE" envDefault:"100"`
	TaxRate              decimal.Decimal `env:"TAX_RATE" envDefault:"0.05"`
	DailyBaseReward      decimal.Decimal `env:"DAILY_BASE_REWARD" envDefault:"100"`
	DailyRewardIncrement decimal.Decimal `env:"DAILY_REWARD_INCREMENT" envDefault:"50"`
	MaxStreak            int             `env:"MAX_STREAK" envDefault:"7"`
	WeeklyInterestRate   decimal.Decimal `env:"WEEKLY_INTEREST_RATE" envDefault:"0.10"`
	MaxInterestAmount    decimal.Decimal `env:"MAX_INTEREST_AMOUNT" envDefault:"500"`
	KillRewardPercent    decimal.Decimal `env:"KILL_REWARD_PERCENT" envDefault:"0"`
	MaxShopsPerPlayer    int             `env:"MAX_SHOPS_PER_PLAYER" envDefault:"1"`
	MaxItemsPerShop      int             `env:"MAX_ITEMS_PER_SHOP" envDefault:"27"`
	ChallengeTimeout     time.Duration   `env:"CHALLENGE_TIMEOUT" envDefault:"60s"`
	RevealDelay          time.Duration   `env:"REVEAL_DELAY" envDefault:"2500ms"`
	MinStake             decimal.Decimal `env:"MIN_STAKE" envDefault:"1"`
	RewardTimezone       string          `env:"REWARD_TIMEZONE" envDefault:"UTC"`
}

// DefaultEconomy returns the stock parameters.
func DefaultEconomy() Economy {
	return Economy{
		CurrencyName:         "coins",
		StartingBalance:      decimal.NewFromInt(100),
		TaxRate:              decimal.RequireFromString("0.05"),
		DailyBaseReward:      decimal.NewFromInt(100),
		DailyRewardIncrement: decimal.NewFromInt(50),
		MaxStreak:            7,
		WeeklyInterestRate:   decimal.RequireFromString("0.10"),
		MaxInterestAmount:    decimal.NewFromInt(500),
		KillRewardPercent:    decimal.Zero,
		MaxShopsPerPlayer:    1,
		MaxItemsPerShop:      27,
		ChallengeTimeout:     60 * time.Second,
		RevealDelay:          2500 * time.Millisecond,
		MinStake:             decimal.NewFromInt(1),
		RewardTimezone:       "UTC",
	}
}

// Validate clamps out-of-range values instead of rejecting them.
func (e *Economy) Validate() {
	nonNegative := func(d *decimal.Decimal) {
		if d.IsNegative() {
			*d = decimal.Zero
		}
	}
	nonNegative(&e.StartingBalance)
	nonNegative(&e.TaxRate)
	nonNegative(&e.DailyBaseReward)
	nonNegative(&e.DailyRewardIncrement)
	nonNegative(&e.WeeklyInterestRate)
	nonNegative(&e.MaxInterestAmount)
	nonNegative(&e.KillRewardPercent)
	nonNegative(&e.MinStake)

	if e.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		e.TaxRate = decimal.NewFromInt(1)
	}
	if e.KillRewardPercent.GreaterThan(decimal.NewFromInt(1)) {
		e.KillRewardPercent = decimal.NewFromInt(1)
	}
	if e.MaxStreak < 1 {
		e.MaxStreak = 1
	}
	if e.MaxShopsPerPlayer < 1 {
		e.MaxShopsPerPlayer = 1
	}
	if e.MaxItemsPerShop < 1 {
		e.MaxItemsPerShop = 1
	}
	if e.ChallengeTimeout <= 0 {
		e.ChallengeTimeout = 60 * time.Second
	}
	if e.RevealDelay < 0 {
		e.RevealDelay = 0
	}
	if e.CurrencyName == "" {
		e.CurrencyName = "coins"
	}
}

// Location resolves RewardTimezone, falling back to UTC.
func (e Economy) Location() *time.Location {
	loc, err := time.LoadLocation(e.RewardTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Parse reads configuration from the environment without touching .env files.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Economy.Validate()

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.AdminBotEnabled && cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required when ADMIN_BOT_ENABLED is set")
	}
	switch cfg.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	return cfg, nil
}

// Load reads .env if present, then the environment. Invalid configuration is fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}
