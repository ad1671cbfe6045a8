// Package config loads formwizard settings from formwizard.yaml and
// FORMWIZARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FORMWIZARD_SERVER_ADDR.
const EnvPrefix = "FORMWIZARD"

// DefaultFile is the config file name searched in the working directory.
const DefaultFile = "formwizard"

// Config is the full runtime configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Submit SubmitConfig `mapstructure:"submit"`
	Forms  FormsConfig  `mapstructure:"forms"`
	Render RenderConfig `mapstructure:"render"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SubmitConfig tunes the submit coordinator.
type SubmitConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// Endpoint overrides every form's submit URL when set.
	Endpoint string `mapstructure:"endpoint"`
	// StrictContract rejects payloads that fail the OpenAPI contract instead
	// of only logging the mismatch.
	StrictContract bool `mapstructure:"strict_contract"`
}

// FormsConfig points at an on-disk definitions directory. Empty means the
// embedded definitions.
type FormsConfig struct {
	Dir string `mapstructure:"dir"`
}

// RenderConfig holds presentation defaults.
type RenderConfig struct {
	Locale       string `mapstructure:"locale"`
	Theme        string `mapstructure:"theme"`
	Variant      string `mapstructure:"variant"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.session_ttl", 2*time.Hour)
	v.SetDefault("server.sweep_interval", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("submit.timeout", 30*time.Second)
	v.SetDefault("submit.endpoint", "")
	v.SetDefault("submit.strict_contract", false)
	v.SetDefault("forms.dir", "")
	v.SetDefault("render.locale", "")
	v.SetDefault("render.theme", "")
	v.SetDefault("render.variant", "")
	v.SetDefault("render.templates_dir", "")
}

// Load reads path, or formwizard.{yaml,json,toml} from the working
// directory when path is empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultFile)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("config: log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Submit.Timeout <= 0 {
		return fmt.Errorf("config: submit.timeout must be positive, got %s", c.Submit.Timeout)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	return nil
}
