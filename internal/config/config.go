package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string         `yaml:"addr"`
	DBPath         string         `yaml:"db_path"`
	SecretKey      string         `yaml:"secret_key"`
	Env            string         `yaml:"env"`
	SentryDSN      string         `yaml:"sentry_dsn"`
	MetricsEnabled bool           `yaml:"metrics_enabled"`
	MaxBodyBytes   int64          `yaml:"max_body_bytes"`
	TrustProxy     bool           `yaml:"trust_proxy"`
	Session        SessionConfig  `yaml:"session"`
	Password       PasswordConfig `yaml:"password"`
	Gravatar       GravatarConfig `yaml:"gravatar"`
	RateLimits     RateLimits     `yaml:"rate_limits"`
	Log            LogConfig      `yaml:"log"`
}

type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	TTL           time.Duration `yaml:"ttl"`
	Secure        bool          `yaml:"secure"`
	Store         string        `yaml:"store"`
	RedisURL      string        `yaml:"redis_url"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

type PasswordConfig struct {
	Method     string `yaml:"method"`
	Iterations int    `yaml:"iterations"`
	SaltLength int    `yaml:"salt_length"`
	BcryptCost int    `yaml:"bcrypt_cost"`
}

type GravatarConfig struct {
	Size         int    `yaml:"size"`
	Rating       string `yaml:"rating"`
	Default      string `yaml:"default"`
	ForceDefault bool   `yaml:"force_default"`
	ForceLower   bool   `yaml:"force_lower"`
	UseSSL       bool   `yaml:"use_ssl"`
	BaseURL      string `yaml:"base_url"`
}

type RateLimits struct {
	AuthPerMinute int `yaml:"auth_per_minute"`
}

type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"

	PasswordPBKDF2 = "pbkdf2"
	PasswordBcrypt = "bcrypt"

	EnvProduction = "prod"
)

const devSecretKey = "dev-secret-key-please-change-me-0123456789"

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Addr:           ":5000",
		DBPath:         "blog.db",
		SecretKey:      devSecretKey,
		Env:            "dev",
		MetricsEnabled: true,
		MaxBodyBytes:   1 << 20,
		Session: SessionConfig{
			CookieName:    "blog_session",
			TTL:           30 * 24 * time.Hour,
			Store:         SessionStoreSQLite,
			SweepSchedule: "@every 1h",
		},
		Password: PasswordConfig{
			Method:     PasswordPBKDF2,
			Iterations: 600000,
			SaltLength: 8,
			BcryptCost: 12,
		},
		Gravatar: GravatarConfig{
			Size:    100,
			Rating:  "g",
			Default: "retro",
		},
		RateLimits: RateLimits{AuthPerMinute: 10},
		Log:        LogConfig{Format: "json", Level: "info"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by BLOG_CONFIG, and environment overrides, in that order.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("BLOG_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	addr := envString("BLOG_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}
	if addr != "" {
		cfg.Addr = addr
	}
	cfg.DBPath = envString("BLOG_DB", cfg.DBPath)
	cfg.SecretKey = envString("BLOG_SECRET_KEY", cfg.SecretKey)
	cfg.Env = envString("BLOG_ENV", cfg.Env)
	cfg.SentryDSN = envString("SENTRY_DSN", cfg.SentryDSN)
	cfg.MetricsEnabled = envBool("BLOG_METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MaxBodyBytes = int64(envInt("BLOG_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.TrustProxy = envBool("BLOG_TRUST_PROXY", cfg.TrustProxy)

	cfg.Session.CookieName = envString("BLOG_SESSION_COOKIE", cfg.Session.CookieName)
	cfg.Session.TTL = envDuration("BLOG_SESSION_TTL", cfg.Session.TTL)
	cfg.Session.Secure = envBool("BLOG_SESSION_SECURE", cfg.Session.Secure)
	cfg.Session.Store = envString("BLOG_SESSION_STORE", cfg.Session.Store)
	cfg.Session.RedisURL = envString("BLOG_REDIS_URL", cfg.Session.RedisURL)
	cfg.Session.SweepSchedule = envString("BLOG_SESSION_SWEEP", cfg.Session.SweepSchedule)

	cfg.Password.Method = envString("BLOG_PASSWORD_METHOD", cfg.Password.Method)
	cfg.Password.Iterations = envInt("BLOG_PASSWORD_ITERATIONS", cfg.Password.Iterations)
	cfg.Password.SaltLength = envInt("BLOG_PASSWORD_SALT_LENGTH", cfg.Password.SaltLength)
	cfg.Password.BcryptCost = envInt("BLOG_BCRYPT_COST", cfg.Password.BcryptCost)

	cfg.Gravatar.UseSSL = envBool("BLOG_GRAVATAR_SSL", cfg.Gravatar.UseSSL)

	cfg.RateLimits.AuthPerMinute = envInt("BLOG_RL_AUTH_PER_MIN", cfg.RateLimits.AuthPerMinute)

	cfg.Log.Format = envString("BLOG_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Level = envString("BLOG_LOG_LEVEL", cfg.Log.Level)
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if len(c.SecretKey) < 32 {
		errs = append(errs, errors.New("secret key must be at least 32 bytes"))
	}
	if c.Env == EnvProduction && c.SecretKey == devSecretKey {
		errs = append(errs, errors.New("secret key must be set in production"))
	}
	switch c.Session.Store {
	case SessionStoreSQLite:
	case SessionStoreRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("redis session store requires BLOG_REDIS_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q", c.Session.Store))
	}
	switch c.Password.Method {
	case PasswordPBKDF2, PasswordBcrypt:
	default:
		errs = append(errs, fmt.Errorf("unknown password method %q", c.Password.Method))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	return errors.Join(errs...)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
