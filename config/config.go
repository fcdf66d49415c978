package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	AES      AESConfig      `mapstructure:"aes"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

// LedgerConfig configures the Hedera network connection and the operator
// (signing) identity shared by all orchestrated operations.
type LedgerConfig struct {
	Network           string        `mapstructure:"network"` // testnet (low-stakes), mainnet (high-stakes)
	OperatorAccount   string        `mapstructure:"operator_account"`
	OperatorKey       string        `mapstructure:"operator_key"`
	MaxTransactionFee int64         `mapstructure:"max_transaction_fee"` // Hbar ceiling per transaction
	MaxQueryPayment   int64         `mapstructure:"max_query_payment"`   // Hbar ceiling per query
	CallTimeout       time.Duration `mapstructure:"call_timeout"`        // per ledger call
	CostAckEnabled    bool          `mapstructure:"cost_ack_enabled"`    // mainnet cost-acknowledgement gate
}

// IsMainnet reports whether the configured network is the high-stakes one.
func (l LedgerConfig) IsMainnet() bool {
	return l.Network == "mainnet"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: HAG_ (Hedera Asset Gateway).
// Nested keys use underscore: HAG_DATABASE_HOST, HAG_LEDGER_NETWORK, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "asset_gateway")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "30m")
	v.SetDefault("jwt.issuer", "hedera-asset-gateway")
	v.SetDefault("aes.key", "")
	v.SetDefault("ledger.network", "testnet")
	v.SetDefault("ledger.operator_account", "")
	v.SetDefault("ledger.operator_key", "")
	v.SetDefault("ledger.max_transaction_fee", 40)
	v.SetDefault("ledger.max_query_payment", 2)
	v.SetDefault("ledger.call_timeout", "30s")
	v.SetDefault("ledger.cost_ack_enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: HAG_LEDGER_NETWORK -> ledger.network
	v.SetEnvPrefix("HAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Ledger.Network != "testnet" && cfg.Ledger.Network != "mainnet" {
		return nil, fmt.Errorf("ledger.network must be testnet or mainnet, got %q", cfg.Ledger.Network)
	}

	return &cfg, nil
}
