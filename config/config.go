package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/trivia-ledger/internal/observability"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Observability ObservabilityConfig `yaml:"observability"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	QuestionBank  QuestionBankConfig  `yaml:"question_bank"`
	Tournament    TournamentConfig    `yaml:"tournament"`
	Reward        RewardConfig        `yaml:"reward"`
	Archive       ArchiveConfig       `yaml:"archive"`
	AuthCallout   AuthCalloutConfig   `yaml:"auth_callout"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
	Stream     string `yaml:"stream"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RatePerSecond and Burst bound instruction calls per signer.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// JWTConfig holds session token configuration.
type JWTConfig struct {
	Secret       string        `yaml:"secret"`
	Issuer       string        `yaml:"issuer"`
	DefaultTTL   time.Duration `yaml:"default_ttl"`
	ChallengeTTL time.Duration `yaml:"challenge_ttl"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// LedgerConfig holds balance ledger settings.
type LedgerConfig struct {
	// MintAuthority may credit balances out of thin air. Empty disables minting.
	MintAuthority string `yaml:"mint_authority"`
	NativeAsset   string `yaml:"native_asset"`
}

// QuestionBankConfig holds curation settings.
type QuestionBankConfig struct {
	MinSubmitReputation int64 `yaml:"min_submit_reputation"`
}

// TournamentConfig holds tournament lifecycle settings.
type TournamentConfig struct {
	MinParticipants uint32 `yaml:"min_participants"`
	// RequireQuestionSupply makes creation fail when the question bank cannot supply enough
	// approved questions.
	RequireQuestionSupply bool `yaml:"require_question_supply"`
}

// RewardConfig holds reward distributor settings.
type RewardConfig struct {
	DefaultPlatformFeeBps uint16 `yaml:"default_platform_fee_bps"`
}

// ArchiveConfig configures the optional S3 export sink.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// AuthCalloutConfig configures the NATS auth callout responder.
type AuthCalloutConfig struct {
	Enabled bool `yaml:"enabled"`
	// SigningKey is the account nkey seed used to sign user JWTs.
	SigningKey     string        `yaml:"signing_key"`
	IssuerAccount  string        `yaml:"issuer_account"`
	Subject        string        `yaml:"subject"`
	UserTTL        time.Duration `yaml:"user_ttl"`
	AllowAnonymous bool          `yaml:"allow_anonymous"`
}

// LoadConfig loads the configuration from a YAML file. A .env file in the working directory
// is loaded first so its values act as environment overrides.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("DATABASE_URL", &cfg.Postgres.DSN)
	setString("NATS_URL", &cfg.NATS.URL)
	setString("NATS_QUEUE_GROUP", &cfg.NATS.QueueGroup)
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	setString("JWT_SECRET", &cfg.JWT.Secret)
	setString("JWT_ISSUER", &cfg.JWT.Issuer)
	setString("ENV", &cfg.Observability.Environment)
	setString("LOG_LEVEL", &cfg.Observability.LogLevel)
	setString("LOG_FORMAT", &cfg.Observability.LogFormat)
	setString("LEDGER_MINT_AUTHORITY", &cfg.Ledger.MintAuthority)
	setString("ARCHIVE_BUCKET", &cfg.Archive.Bucket)
	setString("ARCHIVE_REGION", &cfg.Archive.Region)
	setString("ARCHIVE_ENDPOINT", &cfg.Archive.Endpoint)
	setString("ARCHIVE_ACCESS_KEY", &cfg.Archive.AccessKey)
	setString("ARCHIVE_SECRET_KEY", &cfg.Archive.SecretKey)
	setString("AUTH_CALLOUT_SIGNING_KEY", &cfg.AuthCallout.SigningKey)
	setString("AUTH_CALLOUT_ISSUER_ACCOUNT", &cfg.AuthCallout.IssuerAccount)

	if v := os.Getenv("AUTH_CALLOUT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_CALLOUT_ENABLED value: %w", err)
		}
		cfg.AuthCallout.Enabled = enabled
	}

	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %w", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("QUESTION_BANK_MIN_SUBMIT_REPUTATION"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid QUESTION_BANK_MIN_SUBMIT_REPUTATION value: %w", err)
		}
		cfg.QuestionBank.MinSubmitReputation = n
	}
	if v := os.Getenv("TOURNAMENT_MIN_PARTICIPANTS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid TOURNAMENT_MIN_PARTICIPANTS value: %w", err)
		}
		cfg.Tournament.MinParticipants = uint32(n)
	}
	if v := os.Getenv("REWARD_DEFAULT_PLATFORM_FEE_BPS"); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid REWARD_DEFAULT_PLATFORM_FEE_BPS value: %w", err)
		}
		cfg.Reward.DefaultPlatformFeeBps = uint16(n)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RatePerSecond == 0 {
		c.HTTP.RatePerSecond = 5
	}
	if c.HTTP.Burst == 0 {
		c.HTTP.Burst = 10
	}
	if c.NATS.QueueGroup == "" {
		c.NATS.QueueGroup = "trivia-ledger"
	}
	if c.NATS.Stream == "" {
		c.NATS.Stream = "TRIVIA"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "trivia-ledger"
	}
	if c.JWT.DefaultTTL == 0 {
		c.JWT.DefaultTTL = 24 * time.Hour
	}
	if c.JWT.ChallengeTTL == 0 {
		c.JWT.ChallengeTTL = 5 * time.Minute
	}
	if c.Ledger.NativeAsset == "" {
		c.Ledger.NativeAsset = "native"
	}
	if c.Tournament.MinParticipants == 0 {
		c.Tournament.MinParticipants = 2
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
}

// ToObsConfig maps the observability section onto the telemetry builder.
func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName: "trivia-ledger",
		Environment: appCfg.Observability.Environment,
		LogLevel:    appCfg.Observability.LogLevel,
		LogFormat:   appCfg.Observability.LogFormat,
	}
}
