// Package config loads daemon settings from flags, environment variables
// (PHONECLEANER_*) and an optional config file through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "PHONECLEANER"
	ConfigFileName = ".phonecleaner"
)

// Config is the full set of daemon settings.
type Config struct {
	Listen          string        `mapstructure:"listen"`
	HomeDir         string        `mapstructure:"home_dir"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Plugins         PluginConfig  `mapstructure:"plugins"`
	Client          ClientConfig  `mapstructure:"client"`
}

// PluginConfig controls the generic plugin registration step.
type PluginConfig struct {
	Disabled []string `mapstructure:"disabled"`
}

// ClientConfig controls the remote channel client used by `query --remote`.
type ClientConfig struct {
	URL          string        `mapstructure:"url"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// SetDefaults installs default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("home_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("plugins.disabled", []string{})
	v.SetDefault("client.url", "http://localhost:8080")
	v.SetDefault("client.retry_max", 3)
	v.SetDefault("client.retry_wait_min", time.Second)
	v.SetDefault("client.retry_wait_max", 30*time.Second)
	v.SetDefault("client.timeout", 30*time.Second)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads cfgFile into v, or searches $HOME and the working directory
// for .phonecleaner.{yaml,toml,json}. A missing search-path file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the daemon cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("config: listen address is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.Client.RetryMax < 0 {
		return fmt.Errorf("config: client.retry_max must not be negative, got %d", c.Client.RetryMax)
	}
	if c.Client.RetryWaitMin > c.Client.RetryWaitMax {
		return fmt.Errorf("config: client.retry_wait_min %s exceeds client.retry_wait_max %s",
			c.Client.RetryWaitMin, c.Client.RetryWaitMax)
	}
	if c.Client.URL != "" && !strings.HasPrefix(c.Client.URL, "http://") && !strings.HasPrefix(c.Client.URL, "https://") {
		return fmt.Errorf("config: client.url must start with http:// or https://, got %q", c.Client.URL)
	}
	return nil
}
