package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

const SERVICE_LEDGER_API = "ledger-api"

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m", "30m"
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSOrigins lists allowed origins; empty allows all
	CORSOrigins []string `mapstructure:"cors_origins"`
	// MetricsEnabled serves Prometheus metrics on /metrics
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
	// DenylistFile is a JSON file of caller addresses barred from mutating routes
	DenylistFile string `mapstructure:"denylist_file"`
}

// LedgerConfig holds the genesis parameters used when no persisted state exists
type LedgerConfig struct {
	OwnerAddress         string `mapstructure:"owner_address"`
	PricePerTokenWei     string `mapstructure:"price_per_token_wei"`
	MaxSupply            string `mapstructure:"max_supply"`
	UtilityTokenName     string `mapstructure:"utility_token_name"`
	UtilityTokenSymbol   string `mapstructure:"utility_token_symbol"`
	RewardRegistryName   string `mapstructure:"reward_registry_name"`
	RewardRegistrySymbol string `mapstructure:"reward_registry_symbol"`
	// AutoBind binds the ledger as authority on the utility token and reward registry at genesis
	AutoBind bool `mapstructure:"auto_bind"`
	// GenesisBalances credits native currency at genesis, as "address=amount" entries
	GenesisBalances []string `mapstructure:"genesis_balances"`
}

// EmitterConfig holds configuration for the event emitter
type EmitterConfig struct {
	CursorName           string        `mapstructure:"cursor_name"`
	BatchSize            int           `mapstructure:"batch_size"`
	WorkerPoolSize       int           `mapstructure:"worker_pool_size"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxElapsedTime  time.Duration `mapstructure:"retry_max_elapsed_time"`
}

// RateLimitConfig holds per-caller throttling of mutating routes; zero requests_per_second disables it
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

// LedgerAPIConfig holds configuration for the ledger API server
type LedgerAPIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	NATS       NATSConfig      `mapstructure:"nats"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Ledger     LedgerConfig    `mapstructure:"ledger"`
	Emitter    EmitterConfig   `mapstructure:"emitter"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// LoadLedgerAPIConfig loads configuration for the ledger API server
func LoadLedgerAPIConfig(configFile string, envPath string) (*LedgerAPIConfig, error) {
	v := configureViper(SERVICE_LEDGER_API, configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("environment", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.stream_name", "LEDGER_EVENTS")
	v.SetDefault("nats.subject_prefix", "ledger")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", SERVICE_LEDGER_API)
	v.SetDefault("ledger.utility_token_name", domain.LABEL_UTILITY_TOKEN)
	v.SetDefault("ledger.utility_token_symbol", "NXT")
	v.SetDefault("ledger.reward_registry_name", "NFT")
	v.SetDefault("ledger.reward_registry_symbol", "NFT")
	v.SetDefault("ledger.auto_bind", true)
	v.SetDefault("emitter.cursor_name", "jetstream")
	v.SetDefault("emitter.batch_size", 500)
	v.SetDefault("emitter.worker_pool_size", 8)
	v.SetDefault("emitter.poll_interval", "5s")
	v.SetDefault("emitter.retry_initial_interval", "1s")
	v.SetDefault("emitter.retry_max_elapsed_time", "2m")
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.idle_ttl", "10m")

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config LedgerAPIConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if config.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if config.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &config, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/ledger-api/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("NXT_LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_origins",
		"server.metrics_enabled",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		"auth.denylist_file",
		// Ledger
		"ledger.owner_address",
		"ledger.price_per_token_wei",
		"ledger.max_supply",
		"ledger.utility_token_name",
		"ledger.utility_token_symbol",
		"ledger.reward_registry_name",
		"ledger.reward_registry_symbol",
		"ledger.auto_bind",
		"ledger.genesis_balances",
		// Rate limit
		"rate_limit.requests_per_second",
		"rate_limit.burst",
		"rate_limit.idle_ttl",
		// Emitter
		"emitter.cursor_name",
		"emitter.batch_size",
		"emitter.worker_pool_size",
		"emitter.poll_interval",
		"emitter.retry_initial_interval",
		"emitter.retry_max_elapsed_time",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Owner parses the configured owner address
func (c *LedgerConfig) Owner() (common.Address, error) {
	if c.OwnerAddress == "" {
		return common.Address{}, errors.New("ledger.owner_address is required")
	}
	return domain.ParseAddress(c.OwnerAddress)
}

// SaleTerms parses the configured price and max supply
func (c *LedgerConfig) SaleTerms() (price *uint256.Int, maxSupply *uint256.Int, err error) {
	price, err = domain.ParseAmount(c.PricePerTokenWei)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger.price_per_token_wei: %w", err)
	}
	maxSupply, err = domain.ParseAmount(c.MaxSupply)
	if err != nil {
		return nil, nil, fmt.Errorf("ledger.max_supply: %w", err)
	}
	return price, maxSupply, nil
}

// Balances parses the genesis balance entries
func (c *LedgerConfig) Balances() (map[common.Address]*uint256.Int, error) {
	balances := make(map[common.Address]*uint256.Int, len(c.GenesisBalances))
	for _, entry := range c.GenesisBalances {
		addr, amount, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid genesis balance %q: expected address=amount", entry)
		}
		account, err := domain.ParseAddress(strings.TrimSpace(addr))
		if err != nil {
			return nil, err
		}
		value, err := domain.ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		if existing, ok := balances[account]; ok {
			value = new(uint256.Int).Add(existing, value)
		}
		balances[account] = value
	}
	return balances, nil
}
