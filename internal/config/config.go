// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                 string        // e.g. "8080"
	BackofficePort       string        // e.g. "8081"
	MetricsPort          string        // e.g. "9091"; "" disables the metrics sidecar
	Env                  string        // "development" | "production"
	ReadTimeout          time.Duration // default 10s
	WriteTimeout         time.Duration // default 10s
	BackofficeAllowedIPs string        // comma-separated IPs; "" = allow all
	AuthRateRPS          int           // per-IP req/s for /api/auth; <=0 disables
	BetRateRPS           int           // per-IP req/s for /api/bets; <=0 disables
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// RedisConfig holds Redis cache settings. Addr="" disables Redis and the
// odds feed falls back to its in-process cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing settings.
type JWTConfig struct {
	AccessSecret  string        // must be set
	RefreshSecret string        // must be set
	AccessTTL     time.Duration // default 15m
	RefreshTTL    time.Duration // default 720h (30 days)
}

// OddsFeedConfig holds odds provider API settings.
type OddsFeedConfig struct {
	APIKey              string        // must be set in production
	BaseURL             string        // default "https://api.the-odds-api.com"
	DefaultSport        string        // default "basketball_nba"
	DefaultRegions      string        // default "us"
	DefaultMarkets      string        // default "h2h,spreads,totals"
	FetchTimeout        time.Duration // default 5s
	CacheTTL            time.Duration // default 30s
	RefreshInterval     time.Duration // default 60s; 0 disables the background refresher
	PreferredBookmakers []string      // first match wins when picking quotes
}

// LedgerConfig holds wager and balance settings.
type LedgerConfig struct {
	StartingBalanceUSD float64 // welcome credit for new accounts
	MinStakeUSD        float64 // minimum USD stake per bet
	MinStakeBTC        float64 // minimum BTC stake per bet
	MaxParlayLegs      int     // hard cap on parlay size
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	OddsFeed OddsFeedConfig
	Ledger   LedgerConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	// JWT secrets are mandatory
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be set"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must be set"))
	}

	// In production, DB DSN and the odds provider key must be explicit
	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}
	if c.IsProd() && c.OddsFeed.APIKey == "" {
		errs = append(errs, errors.New("ODDS_API_KEY must be set in production"))
	}

	if c.Ledger.StartingBalanceUSD < 0 {
		errs = append(errs, fmt.Errorf(
			"LEDGER_STARTING_BALANCE_USD must not be negative, got %.2f",
			c.Ledger.StartingBalanceUSD,
		))
	}
	if c.Ledger.MaxParlayLegs < 2 {
		errs = append(errs, fmt.Errorf(
			"LEDGER_MAX_PARLAY_LEGS must be at least 2, got %d",
			c.Ledger.MaxParlayLegs,
		))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	authRPS, err := getInt("RATE_LIMIT_AUTH_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_AUTH_RPS: %w", err)
	}
	betRPS, err := getInt("RATE_LIMIT_BET_RPS", 30)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BET_RPS: %w", err)
	}
	cfg.Server = ServerConfig{
		Port:                 getEnv("SERVER_PORT", "8080"),
		BackofficePort:       getEnv("BACKOFFICE_PORT", "8081"),
		MetricsPort:          getEnv("METRICS_PORT", "9091"),
		Env:                  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:          getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:         getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		BackofficeAllowedIPs: getEnv("BACKOFFICE_ALLOWED_IPS", ""),
		AuthRateRPS:          authRPS,
		BetRateRPS:           betRPS,
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "cryptobets"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// ── JWT ───────────────────────────────────────────────────────────────────
	cfg.JWT = JWTConfig{
		AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		AccessTTL:     getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    getDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
	}

	// ── Odds feed ─────────────────────────────────────────────────────────────
	var preferred []string
	if raw := os.Getenv("ODDS_PREFERRED_BOOKMAKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				preferred = append(preferred, b)
			}
		}
	} else {
		preferred = []string{"draftkings", "fanduel", "betmgm"}
	}

	cfg.OddsFeed = OddsFeedConfig{
		APIKey:              getEnv("ODDS_API_KEY", ""),
		BaseURL:             getEnv("ODDS_API_BASE_URL", "https://api.the-odds-api.com"),
		DefaultSport:        getEnv("ODDS_DEFAULT_SPORT", "basketball_nba"),
		DefaultRegions:      getEnv("ODDS_DEFAULT_REGIONS", "us"),
		DefaultMarkets:      getEnv("ODDS_DEFAULT_MARKETS", "h2h,spreads,totals"),
		FetchTimeout:        getDuration("ODDS_FETCH_TIMEOUT", 5*time.Second),
		CacheTTL:            getDuration("ODDS_CACHE_TTL", 30*time.Second),
		RefreshInterval:     getDuration("ODDS_REFRESH_INTERVAL", time.Minute),
		PreferredBookmakers: preferred,
	}

	// ── Ledger ────────────────────────────────────────────────────────────────
	startBal, err := getFloat("LEDGER_STARTING_BALANCE_USD", 1000)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_STARTING_BALANCE_USD: %w", err)
	}
	minUSD, err := getFloat("LEDGER_MIN_STAKE_USD", 1)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_MIN_STAKE_USD: %w", err)
	}
	minBTC, err := getFloat("LEDGER_MIN_STAKE_BTC", 0.0001)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_MIN_STAKE_BTC: %w", err)
	}
	maxLegs, err := getInt("LEDGER_MAX_PARLAY_LEGS", 12)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_MAX_PARLAY_LEGS: %w", err)
	}

	cfg.Ledger = LedgerConfig{
		StartingBalanceUSD: startBal,
		MinStakeUSD:        minUSD,
		MinStakeBTC:        minBTC,
		MaxParlayLegs:      maxLegs,
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q", v)
	}
	return f, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
