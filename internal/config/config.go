// Package config loads calbot settings from flags, environment variables
// (CALBOT_*) and an optional YAML file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "calbot"

type Config struct {
	Locale          string        `mapstructure:"locale"`
	Timezone        string        `mapstructure:"timezone"`
	CalendarID      string        `mapstructure:"calendar_id"`
	DefaultDuration time.Duration `mapstructure:"default_duration"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Google struct {
		CredentialsFile string `mapstructure:"credentials_file"`
	} `mapstructure:"google"`

	Telegram struct {
		Token string `mapstructure:"token"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"telegram"`

	Dispatcher struct {
		Workers    int     `mapstructure:"workers"`
		QueueDepth int     `mapstructure:"queue_depth"`
		Rate       float64 `mapstructure:"rate"`
		Burst      int     `mapstructure:"burst"`
	} `mapstructure:"dispatcher"`

	Metrics struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"metrics"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	location *time.Location
}

// SetDefaults registers every key, so environment variables are picked up by
// Unmarshal even when no flag or file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("locale", "es")
	v.SetDefault("timezone", "America/Argentina/Buenos_Aires")
	v.SetDefault("calendar_id", "primary")
	v.SetDefault("default_duration", time.Hour)
	v.SetDefault("database.path", "calbot.db")
	v.SetDefault("google.credentials_file", "credentials.json")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.debug", false)
	v.SetDefault("dispatcher.workers", 8)
	v.SetDefault("dispatcher.queue_depth", 64)
	v.SetDefault("dispatcher.rate", 1.0)
	v.SetDefault("dispatcher.burst", 5)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (if not empty) into v and returns the validated config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Locale == "" {
		errs = append(errs, "locale is required")
	}
	if loc, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		errs = append(errs, fmt.Sprintf("timezone %q is not a valid IANA zone", c.Timezone))
	} else {
		c.location = loc
	}
	if c.CalendarID == "" {
		errs = append(errs, "calendar_id is required")
	}
	if c.DefaultDuration <= 0 {
		errs = append(errs, "default_duration must be positive")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Dispatcher.Workers <= 0 {
		errs = append(errs, "dispatcher.workers must be positive")
	}
	if c.Dispatcher.QueueDepth <= 0 {
		errs = append(errs, "dispatcher.queue_depth must be positive")
	}
	if c.Dispatcher.Rate < 0 {
		errs = append(errs, "dispatcher.rate must not be negative")
	}
	if c.Dispatcher.Burst <= 0 {
		errs = append(errs, "dispatcher.burst must be positive")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q is unknown", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Location is the zone parsed by Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// RequireTelegram is checked only by commands talking to Telegram.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required (CALBOT_TELEGRAM_TOKEN)")
	}
	return nil
}
