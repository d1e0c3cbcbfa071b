package app

import (
	"errors"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// APIBaseURL is the registration API every request is sent to.
	APIBaseURL string `mapstructure:"PORTAL_API_BASE_URL"`

	RequestTimeout time.Duration `mapstructure:"PORTAL_REQUEST_TIMEOUT"` // Per request timeout (default: 10s)
	StartupWait    time.Duration `mapstructure:"PORTAL_STARTUP_WAIT"`    // How long to wait for /livez, 0 skips (default: 30s)
	ResendCooldown time.Duration `mapstructure:"PORTAL_RESEND_COOLDOWN"` // Client side resend cooldown (default: 60s)

	// LogFile receives the portal's logs. Empty means stderr so stdout
	// stays with the terminal UI.
	LogFile   string `mapstructure:"PORTAL_LOG_FILE"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("PORTAL_API_BASE_URL", "http://localhost:8080")
	v.SetDefault("PORTAL_REQUEST_TIMEOUT", "10s")
	v.SetDefault("PORTAL_STARTUP_WAIT", "30s")
	v.SetDefault("PORTAL_RESEND_COOLDOWN", "60s")
	v.SetDefault("PORTAL_LOG_FILE", "")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "text")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	switch {
	case c.APIBaseURL == "":
		return errors.New("config: PORTAL_API_BASE_URL must be set")
	case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
		return errors.New("config: PORTAL_API_BASE_URL must be an absolute http(s) URL")
	case c.RequestTimeout <= 0:
		return errors.New("config: PORTAL_REQUEST_TIMEOUT must be positive")
	case c.StartupWait < 0:
		return errors.New("config: PORTAL_STARTUP_WAIT must not be negative")
	case c.ResendCooldown < time.Second:
		return errors.New("config: PORTAL_RESEND_COOLDOWN must be at least 1s")
	}
	return nil
}
