package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	ListenAddr     string `mapstructure:"listen_addr"`
	ProvidersFile  string `mapstructure:"providers_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	AttemptTimeoutMs int64         `mapstructure:"attempt_timeout_ms"`
	GlobalDeadlineMs int64         `mapstructure:"global_deadline_ms"`
	GuardBandMs      int64         `mapstructure:"guard_band_ms"`
	AttemptTimeout   time.Duration `mapstructure:"-"`
	GlobalDeadline   time.Duration `mapstructure:"-"`
	GuardBand        time.Duration `mapstructure:"-"`

	GateCookieName          string        `mapstructure:"gate_cookie_name"`
	GateCookieMaxAgeSeconds int64         `mapstructure:"gate_cookie_max_age_seconds"`
	GateCookieMaxAge        time.Duration `mapstructure:"-"`
	StaticDirsRaw           string        `mapstructure:"static_dirs"`
	StaticDirs              []string      `mapstructure:"-"`

	TelemetryQueueSize     int           `mapstructure:"telemetry_queue_size"`
	ShutdownTimeoutSeconds int64         `mapstructure:"shutdown_timeout_seconds"`
	ShutdownTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-mirror-gateway")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("providers_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("attempt_timeout_ms", 3000)
	v.SetDefault("global_deadline_ms", 10000)
	v.SetDefault("guard_band_ms", 1000)
	v.SetDefault("gate_cookie_name", "yuki")
	v.SetDefault("gate_cookie_max_age_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("static_dirs", "css,blog,game")
	v.SetDefault("telemetry_queue_size", 256)
	v.SetDefault("shutdown_timeout_seconds", 5)
}

// finalize validates raw values and derives the duration fields.
func (c *Config) finalize() error {
	if c.AttemptTimeoutMs <= 0 {
		return fmt.Errorf("invalid attempt_timeout_ms (must be positive milliseconds)")
	}
	if c.GlobalDeadlineMs <= 0 {
		return fmt.Errorf("invalid global_deadline_ms (must be positive milliseconds)")
	}
	if c.GuardBandMs < 0 {
		return fmt.Errorf("invalid guard_band_ms (must not be negative)")
	}
	if c.GuardBandMs >= c.GlobalDeadlineMs {
		return fmt.Errorf("invalid guard_band_ms (must be below global_deadline_ms)")
	}
	c.AttemptTimeout = time.Duration(c.AttemptTimeoutMs) * time.Millisecond
	c.GlobalDeadline = time.Duration(c.GlobalDeadlineMs) * time.Millisecond
	c.GuardBand = time.Duration(c.GuardBandMs) * time.Millisecond

	c.GateCookieName = strings.TrimSpace(c.GateCookieName)
	if c.GateCookieName == "" {
		return fmt.Errorf("gate_cookie_name must not be empty")
	}
	if c.GateCookieMaxAgeSeconds <= 0 {
		return fmt.Errorf("invalid gate_cookie_max_age_seconds (must be positive seconds)")
	}
	c.GateCookieMaxAge = time.Duration(c.GateCookieMaxAgeSeconds) * time.Second

	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid shutdown_timeout_seconds (must be positive seconds)")
	}
	c.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSeconds) * time.Second

	if c.TelemetryQueueSize <= 0 {
		return fmt.Errorf("invalid telemetry_queue_size (must be positive)")
	}

	c.StaticDirs = splitList(c.StaticDirsRaw)
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
