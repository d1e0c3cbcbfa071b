package app

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         int    `mapstructure:"REGAPI_PORT"`          // HTTP server port (default: 8080)
	DatabaseFile string `mapstructure:"REGAPI_DATABASE_FILE"` // SQLite database file (default: ./regapi.db)
	PepperFile   string `mapstructure:"REGAPI_PEPPER_FILE"`   // Password pepper, generated on first run (default: ./pepper)

	// SigningKeyFile holds a PKCS8 Ed25519 key. Empty or missing means an
	// ephemeral key, so tokens stop verifying after a restart.
	SigningKeyFile string   `mapstructure:"REGAPI_SIGNING_KEY_FILE"`
	KeyID          string   `mapstructure:"REGAPI_KEY_ID"`
	Issuer         string   `mapstructure:"REGAPI_ISSUER"`
	Audience       []string `mapstructure:"REGAPI_AUDIENCE"`

	// RedisURL switches the resend cooldown to Redis (redis://host:6379/0).
	RedisURL string `mapstructure:"REGAPI_REDIS_URL"`

	CodeTTL     time.Duration `mapstructure:"REGAPI_CODE_TTL"`     // Emailed code lifetime (default: 10m)
	Cooldown    time.Duration `mapstructure:"REGAPI_COOLDOWN"`     // Minimum gap between sends per email (default: 60s)
	MaxAttempts int           `mapstructure:"REGAPI_MAX_ATTEMPTS"` // Wrong codes before the challenge burns (default: 5)
	AccessTTL   time.Duration `mapstructure:"REGAPI_ACCESS_TTL"`   // Access token lifetime (default: 15m)

	// DevOTP keeps issued codes in memory, serves them on GET /dev/otp and
	// logs them. Refused when Env is production.
	DevOTP bool `mapstructure:"REGAPI_DEV_OTP"`

	// SkipOTP registers applicants as already verified.
	SkipOTP bool `mapstructure:"REGAPI_SKIP_OTP"`

	Env                  string        `mapstructure:"ENV"`                   // dev, staging, production (default: dev)
	LogLevel             string        `mapstructure:"LOG_LEVEL"`             // debug, info, warn, error (default: info)
	LogFormat            string        `mapstructure:"LOG_FORMAT"`            // json, text (default: json)
	ShutdownGracePeriod  time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"` // default: 10s
	HousekeepingInterval time.Duration `mapstructure:"HOUSEKEEPING_INTERVAL"` // default: 1h
}

// LoadConfig reads .env when present, then the environment. Environment
// variables win over .env.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("REGAPI_PORT", 8080)
	v.SetDefault("REGAPI_DATABASE_FILE", "regapi.db")
	v.SetDefault("REGAPI_PEPPER_FILE", "pepper")
	v.SetDefault("REGAPI_SIGNING_KEY_FILE", "")
	v.SetDefault("REGAPI_KEY_ID", "regapi-ed25519")
	v.SetDefault("REGAPI_ISSUER", "hireflow-regapi")
	v.SetDefault("REGAPI_AUDIENCE", "hireflow-portal")
	v.SetDefault("REGAPI_REDIS_URL", "")
	v.SetDefault("REGAPI_CODE_TTL", "10m")
	v.SetDefault("REGAPI_COOLDOWN", "60s")
	v.SetDefault("REGAPI_MAX_ATTEMPTS", 5)
	v.SetDefault("REGAPI_ACCESS_TTL", "15m")
	v.SetDefault("REGAPI_DEV_OTP", false)
	v.SetDefault("REGAPI_SKIP_OTP", false)
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", "10s")
	v.SetDefault("HOUSEKEEPING_INTERVAL", "1h")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Audience = splitList(strings.Join(cfg.Audience, ","))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return errors.New("config: REGAPI_PORT must be between 1 and 65535")
	case c.DatabaseFile == "":
		return errors.New("config: REGAPI_DATABASE_FILE must be set")
	case c.CodeTTL <= 0:
		return errors.New("config: REGAPI_CODE_TTL must be positive")
	case c.Cooldown < 0:
		return errors.New("config: REGAPI_COOLDOWN must not be negative")
	case c.MaxAttempts < 1:
		return errors.New("config: REGAPI_MAX_ATTEMPTS must be at least 1")
	case c.DevOTP && c.IsProduction():
		return errors.New("config: REGAPI_DEV_OTP must not be true when ENV=production")
	}
	return nil
}

func (c Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
