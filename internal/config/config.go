// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :4000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. Required to serve auth requests.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC secret used to sign access tokens. Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTExpiresIn is the access token lifetime, "<n>[smhd]" or bare seconds (e.g. "15m"). Required.
	JWTExpiresIn string `mapstructure:"JWT_EXPIRES_IN"`
	// JWTRefreshExpiresIn is the refresh token lifetime, same format (e.g. "7d"). Required.
	JWTRefreshExpiresIn string `mapstructure:"JWT_REFRESH_EXPIRES_IN"`
	// BcryptSaltRounds is the bcrypt cost factor (4-31); default 12.
	BcryptSaltRounds int `mapstructure:"BCRYPT_SALT_ROUNDS"`
	// MaxRefreshTokensPerUser caps live refresh tokens per user; oldest excess
	// rows are deleted after each login. Must be positive; default 5.
	MaxRefreshTokensPerUser int `mapstructure:"MAX_REFRESH_TOKENS_PER_USER"`
	// TokenSweepInterval is how often expired refresh tokens are hard-deleted (e.g. "1h").
	TokenSweepInterval string `mapstructure:"TOKEN_SWEEP_INTERVAL"`
	// Env is the application environment ("development" or "production").
	// Controls the Secure cookie flag and logger mode.
	Env string `mapstructure:"APP_ENV"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses.
	// Auth events are emitted only when this is non-empty.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuthEventsTopic is the Kafka topic for auth events (default worldforge-auth-events).
	AuthEventsTopic string `mapstructure:"AUTH_EVENTS_TOPIC"`

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required
// fields are missing or malformed, so the process refuses to serve auth requests rather than
// defaulting to insecure values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":4000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "")
	v.SetDefault("JWT_REFRESH_EXPIRES_IN", "")
	v.SetDefault("BCRYPT_SALT_ROUNDS", 12)
	v.SetDefault("MAX_REFRESH_TOKENS_PER_USER", 5)
	v.SetDefault("TOKEN_SWEEP_INTERVAL", "1h")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUTH_EVENTS_TOPIC", "worldforge-auth-events")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.JWTExpiresIn == "" {
		return nil, errors.New("config: JWT_EXPIRES_IN must be set")
	}
	if cfg.JWTRefreshExpiresIn == "" {
		return nil, errors.New("config: JWT_REFRESH_EXPIRES_IN must be set")
	}

	var err error
	if cfg.accessTTL, err = ParseExpiry(cfg.JWTExpiresIn); err != nil {
		return nil, fmt.Errorf("config: JWT_EXPIRES_IN: %w", err)
	}
	if cfg.refreshTTL, err = ParseExpiry(cfg.JWTRefreshExpiresIn); err != nil {
		return nil, fmt.Errorf("config: JWT_REFRESH_EXPIRES_IN: %w", err)
	}

	if cfg.BcryptSaltRounds < 4 || cfg.BcryptSaltRounds > 31 {
		return nil, errors.New("config: BCRYPT_SALT_ROUNDS must be between 4 and 31")
	}
	if cfg.MaxRefreshTokensPerUser <= 0 {
		return nil, errors.New("config: MAX_REFRESH_TOKENS_PER_USER must be positive")
	}

	return &cfg, nil
}

// AccessTTL returns the parsed access token lifetime.
func (c *Config) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the parsed refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration { return c.refreshTTL }

// SweepInterval parses TokenSweepInterval. Returns 1h if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := ParseExpiry(c.TokenSweepInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// Production reports whether the app runs in production mode (Secure cookies, JSON logs).
func (c *Config) Production() bool { return c.Env == "production" }

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseExpiry parses a token lifetime expressed as "<n><unit>" with unit in
// s, m, h, d, or as a bare integer meaning seconds. time.ParseDuration is not
// used because it has no day unit and accepts forms the env surface does not.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty expiry")
	}
	unit := time.Second
	num := s
	switch s[len(s)-1] {
	case 's':
		num = s[:len(s)-1]
	case 'm':
		unit = time.Minute
		num = s[:len(s)-1]
	case 'h':
		unit = time.Hour
		num = s[:len(s)-1]
	case 'd':
		unit = 24 * time.Hour
		num = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return time.Duration(n) * unit, nil
}
