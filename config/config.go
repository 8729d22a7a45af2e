package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/PxPatel/pair-matching-engine/internal/types"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	API      APIConfig
	Logger   LoggerConfig
	Memory   MemoryConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// EngineConfig holds matching engine configuration
type EngineConfig struct {
	// Markets opened at startup, e.g. "BTC-USD,ETH-USD"
	Markets []types.TradingPair
}

// APIConfig holds API-specific configuration
type APIConfig struct {
	DefaultFillLimit      int
	MaxFillLimit          int
	DefaultOrderBookDepth int
	MaxOrderBookDepth     int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // DEBUG, INFO, WARN, ERROR
}

// MemoryConfig holds in-memory fill store configuration
type MemoryConfig struct {
	Enabled  bool
	MaxFills int
}

// DatabaseConfig holds PostgreSQL fill sink configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// RedisConfig holds Redis fill sink configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	TLSEnabled   bool
	KeyPrefix    string
	MaxFills     int
}

// Load reads an optional .env file, then the environment, then validates.
// Priority: ENV > .env file > defaults. A set but malformed variable is an
// error rather than a silent fallback to the default.
func Load(envFiles ...string) (*Config, error) {
	// .env is optional, a missing file is not an error
	_ = godotenv.Load(envFiles...)

	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:            env.str("PORT", "8080"),
			ReadTimeout:     env.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    env.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     env.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: env.duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  env.list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Engine: EngineConfig{
			Markets: env.markets("ENGINE_MARKETS", "BTC-USD"),
		},
		API: APIConfig{
			DefaultFillLimit:      env.integer("DEFAULT_FILL_LIMIT", 100),
			MaxFillLimit:          env.integer("MAX_FILL_LIMIT", 1000),
			DefaultOrderBookDepth: env.integer("DEFAULT_ORDERBOOK_DEPTH", 10),
			MaxOrderBookDepth:     env.integer("MAX_ORDERBOOK_DEPTH", 100),
		},
		Logger: LoggerConfig{
			Level: strings.ToUpper(env.str("LOG_LEVEL", "INFO")),
		},
		Memory: MemoryConfig{
			Enabled:  env.boolean("MEMORY_ENABLED", true),
			MaxFills: env.integer("MEMORY_MAX_FILLS", 1000),
		},
		Database: DatabaseConfig{
			Enabled:         env.boolean("DATABASE_ENABLED", false),
			Host:            env.str("DATABASE_HOST", "localhost"),
			Port:            env.integer("DATABASE_PORT", 5432),
			Name:            env.str("DATABASE_NAME", "matching_engine"),
			User:            env.str("DATABASE_USER", "postgres"),
			Password:        env.str("DATABASE_PASSWORD", ""),
			MaxConns:        env.integer("DATABASE_MAX_CONNECTIONS", 20),
			MaxIdleConns:    env.integer("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime: env.duration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			SSLMode:         env.str("DATABASE_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:      env.boolean("REDIS_ENABLED", false),
			Host:         env.str("REDIS_HOST", "localhost"),
			Port:         env.integer("REDIS_PORT", 6379),
			Password:     env.str("REDIS_PASSWORD", ""),
			DB:           env.integer("REDIS_DB", 0),
			MaxRetries:   env.integer("REDIS_MAX_RETRIES", 3),
			PoolSize:     env.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: env.integer("REDIS_MIN_IDLE_CONNS", 2),
			TLSEnabled:   env.boolean("REDIS_TLS_ENABLED", false),
			KeyPrefix:    env.str("REDIS_KEY_PREFIX", "fills"),
			MaxFills:     env.integer("REDIS_MAX_FILLS", 10000),
		},
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	// Validate API config
	if c.API.DefaultFillLimit < 1 {
		return fmt.Errorf("DEFAULT_FILL_LIMIT must be > 0")
	}
	if c.API.MaxFillLimit < c.API.DefaultFillLimit {
		return fmt.Errorf("MAX_FILL_LIMIT must be >= DEFAULT_FILL_LIMIT")
	}
	if c.API.DefaultOrderBookDepth < 1 {
		return fmt.Errorf("DEFAULT_ORDERBOOK_DEPTH must be > 0")
	}
	if c.API.MaxOrderBookDepth < c.API.DefaultOrderBookDepth {
		return fmt.Errorf("MAX_ORDERBOOK_DEPTH must be >= DEFAULT_ORDERBOOK_DEPTH")
	}

	// Validate memory config
	if c.Memory.Enabled && c.Memory.MaxFills < 1 {
		return fmt.Errorf("MEMORY_MAX_FILLS must be > 0")
	}

	// Validate logger config
	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_HOST cannot be empty when DATABASE_ENABLED")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST cannot be empty when REDIS_ENABLED")
	}

	return nil
}

func parseMarkets(value string) ([]types.TradingPair, error) {
	var pairs []types.TradingPair
	seen := make(map[types.TradingPair]bool)
	for _, raw := range strings.Split(value, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		pair, err := types.ParseTradingPair(raw)
		if err != nil {
			return nil, err
		}
		if seen[pair] {
			return nil, fmt.Errorf("%s listed twice", pair)
		}
		seen[pair] = true
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// envReader reads typed variables with defaults and collects parse errors
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (e *envReader) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (e *envReader) integer(key string, defaultValue int) int {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return n
}

func (e *envReader) boolean(key string, defaultValue bool) bool {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return b
}

func (e *envReader) duration(key string, defaultValue time.Duration) time.Duration {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return d
}

func (e *envReader) list(key string, defaultValue []string) []string {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (e *envReader) markets(key, defaultValue string) []types.TradingPair {
	value := e.str(key, defaultValue)
	pairs, err := parseMarkets(value)
	if err != nil {
		e.fail(key, value, err)
		return nil
	}
	return pairs
}
