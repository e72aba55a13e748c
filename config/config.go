package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Relayer environments.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	AES       AESConfig       `mapstructure:"aes"`
	Log       LogConfig       `mapstructure:"log"`
	Relayer   RelayerConfig   `mapstructure:"relayer"`
	Forwarder ForwarderConfig `mapstructure:"forwarder"`
	Factory   FactoryConfig   `mapstructure:"factory"`
	Polling   PollingConfig   `mapstructure:"polling"`
	Loans     LoansConfig     `mapstructure:"loans"`
	CashOut   CashOutConfig   `mapstructure:"cashout"`
	Chains    []ChainConfig   `mapstructure:"chains"`
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

	// StatementTimeout bounds each statement server-side; 0 leaves the
	// server default.
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
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

	// Timeout applies to dial, read and write. Poll locks are refreshed
	// within one poll interval, so this stays well below it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// NATSConfig controls terminal payment event publishing. An empty URL
// disables publishing.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// RelayerEndpoint is one relayer deployment.
type RelayerEndpoint struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

type RelayerConfig struct {
	Environment string          `mapstructure:"environment"` // production, staging
	AppID       string          `mapstructure:"app_id"`
	Timeout     time.Duration   `mapstructure:"timeout"`
	Production  RelayerEndpoint `mapstructure:"production"`
	Staging     RelayerEndpoint `mapstructure:"staging"`
}

// Active returns the endpoint selected by Environment.
func (r RelayerConfig) Active() (RelayerEndpoint, error) {
	switch r.Environment {
	case EnvProduction:
		return r.Production, nil
	case EnvStaging:
		return r.Staging, nil
	default:
		return RelayerEndpoint{}, fmt.Errorf("unknown relayer environment %q", r.Environment)
	}
}

// ForwarderConfig describes the ERC-2771 forwarder and its EIP-712 domain.
type ForwarderConfig struct {
	Address     string        `mapstructure:"address"`
	Name        string        `mapstructure:"name"`
	Version     string        `mapstructure:"version"`
	Gas         uint64        `mapstructure:"gas"`
	DeadlineTTL time.Duration `mapstructure:"deadline_ttl"`
}

// FactoryConfig identifies the smart-account factory. InitCodeHash is the
// published proxy init code hash; it is never recomputed.
type FactoryConfig struct {
	Address      string `mapstructure:"address"`
	InitCodeHash string `mapstructure:"init_code_hash"`
}

type PollingConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	// BuildGrace is how long a BUILDING payment found at startup may still
	// be in the hands of another instance before it is abandoned.
	BuildGrace time.Duration `mapstructure:"build_grace"`
}

type LoansConfig struct {
	PrepaidFeePercent int64 `mapstructure:"prepaid_fee_percent"`
}

// CashOutConfig bounds the stablecoin a store-token cash-out must return.
// SlippageBps is taken off the allocation's net value to form the minimum.
type CashOutConfig struct {
	SlippageBps int64 `mapstructure:"slippage_bps"`
}

// ChainConfig holds per-chain endpoints and contract addresses.
type ChainConfig struct {
	ID         int64  `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	RPCURL     string `mapstructure:"rpc_url"`
	Stablecoin string `mapstructure:"stablecoin"`
	Terminal   string `mapstructure:"terminal"`
	Loans      string `mapstructure:"loans"`

	// StablecoinDecimals defaults to 6 when unset.
	StablecoinDecimals int32 `mapstructure:"stablecoin_decimals"`
}

// Decimals returns the stablecoin's decimals.
func (c ChainConfig) Decimals() int32 {
	if c.StablecoinDecimals == 0 {
		return 6
	}
	return c.StablecoinDecimals
}

// Chain returns the configuration for chainID.
func (c *Config) Chain(chainID int64) (ChainConfig, bool) {
	for _, ch := range c.Chains {
		if ch.ID == chainID {
			return ch, true
		}
	}
	return ChainConfig{}, false
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MCS_.
// Nested keys use underscore: MCS_RELAYER_APP_ID, MCS_FACTORY_INIT_CODE_HASH, etc.
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
	v.SetDefault("database.dbname", "settlement")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.statement_timeout", "5s")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.timeout", "500ms")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "payments")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "settlement-auth")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("relayer.environment", EnvStaging)
	v.SetDefault("relayer.app_id", "")
	v.SetDefault("relayer.timeout", "15s")
	v.SetDefault("relayer.production.url", "")
	v.SetDefault("relayer.production.api_key", "")
	v.SetDefault("relayer.staging.url", "")
	v.SetDefault("relayer.staging.api_key", "")
	v.SetDefault("forwarder.address", "")
	v.SetDefault("forwarder.name", "ERC2771Forwarder")
	v.SetDefault("forwarder.version", "1")
	v.SetDefault("forwarder.gas", 1_000_000)
	v.SetDefault("forwarder.deadline_ttl", "1h")
	v.SetDefault("factory.address", "")
	v.SetDefault("factory.init_code_hash", "")
	v.SetDefault("polling.interval", "5s")
	v.SetDefault("polling.max_attempts", 60)
	v.SetDefault("polling.lock_ttl", "30s")
	v.SetDefault("polling.build_grace", "2m")
	v.SetDefault("loans.prepaid_fee_percent", 25)
	v.SetDefault("cashout.slippage_bps", 100)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: MCS_RELAYER_APP_ID -> relayer.app_id
	v.SetEnvPrefix("MCS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate reports every missing or malformed setting the settlement
// pipeline cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Relayer.AppID == "" {
		errs = append(errs, errors.New("relayer.app_id is required"))
	}
	if ep, err := c.Relayer.Active(); err != nil {
		errs = append(errs, err)
	} else {
		if ep.URL == "" {
			errs = append(errs, fmt.Errorf("relayer.%s.url is required", c.Relayer.Environment))
		}
		if ep.APIKey == "" {
			errs = append(errs, fmt.Errorf("relayer.%s.api_key is required", c.Relayer.Environment))
		}
	}

	if !isAddress(c.Forwarder.Address) {
		errs = append(errs, errors.New("forwarder.address must be a non-zero hex address"))
	}
	if c.Forwarder.Name == "" || c.Forwarder.Version == "" {
		errs = append(errs, errors.New("forwarder.name and forwarder.version are required"))
	}
	if !isAddress(c.Factory.Address) {
		errs = append(errs, errors.New("factory.address must be a non-zero hex address"))
	}
	if !isHash(c.Factory.InitCodeHash) {
		errs = append(errs, errors.New("factory.init_code_hash must be a non-zero 32-byte hex value"))
	}

	if c.Polling.Interval <= 0 {
		errs = append(errs, errors.New("polling.interval must be positive"))
	}
	if c.Polling.MaxAttempts <= 0 {
		errs = append(errs, errors.New("polling.max_attempts must be positive"))
	}
	if c.Polling.BuildGrace < 0 {
		errs = append(errs, errors.New("polling.build_grace must not be negative"))
	}

	if c.CashOut.SlippageBps < 0 || c.CashOut.SlippageBps > 10_000 {
		errs = append(errs, errors.New("cashout.slippage_bps must be between 0 and 10000"))
	}

	if len(c.Chains) == 0 {
		errs = append(errs, errors.New("at least one chain must be configured"))
	}
	seen := make(map[int64]bool, len(c.Chains))
	for i, ch := range c.Chains {
		if ch.ID <= 0 {
			errs = append(errs, fmt.Errorf("chains[%d].id must be positive", i))
		}
		if seen[ch.ID] {
			errs = append(errs, fmt.Errorf("chains[%d].id %d is duplicated", i, ch.ID))
		}
		seen[ch.ID] = true
		if ch.RPCURL == "" {
			errs = append(errs, fmt.Errorf("chains[%d].rpc_url is required", i))
		}
		if !isAddress(ch.Stablecoin) {
			errs = append(errs, fmt.Errorf("chains[%d].stablecoin must be a non-zero hex address", i))
		}
		if !isAddress(ch.Terminal) {
			errs = append(errs, fmt.Errorf("chains[%d].terminal must be a non-zero hex address", i))
		}
		if ch.StablecoinDecimals < 0 || ch.StablecoinDecimals > 36 {
			errs = append(errs, fmt.Errorf("chains[%d].stablecoin_decimals must be between 0 and 36", i))
		}
		if ch.Loans != "" && !isAddress(ch.Loans) {
			errs = append(errs, fmt.Errorf("chains[%d].loans must be a hex address", i))
		}
	}

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if key, err := hex.DecodeString(c.AES.Key); err != nil || len(key) != 32 {
		errs = append(errs, errors.New("aes.key must be 64 hex characters"))
	}

	return errors.Join(errs...)
}

func isAddress(s string) bool {
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}

func isHash(s string) bool {
	raw := strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(raw)
	return err == nil && len(b) == common.HashLength && common.BytesToHash(b) != (common.Hash{})
}
