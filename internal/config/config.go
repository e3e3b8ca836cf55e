// Package config loads adc-selector settings from file, environment, and .env.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/goliatone/go-adc-selector/pkg/catalog"
)

const (
	configFileName = "adc-selector"
	envPrefix      = "ADC"

	KeyBaseURL          = "base_url"
	KeyScope            = "scope"
	KeyListen           = "listen"
	KeySimulate         = "simulate"
	KeyDelay            = "delay"
	KeyToken            = "token"
	KeyRequireSelection = "require_selection"
	KeyLogLevel         = "log_level"
	KeyTheme            = "theme"
)

// Config is the resolved runtime configuration.
type Config struct {
	BaseURL          string            `mapstructure:"base_url"`
	Scope            string            `mapstructure:"scope"`
	Listen           string            `mapstructure:"listen"`
	Simulate         bool              `mapstructure:"simulate"`
	Delay            time.Duration     `mapstructure:"delay"`
	Token            string            `mapstructure:"token"`
	RequireSelection bool              `mapstructure:"require_selection"`
	LogLevel         string            `mapstructure:"log_level"`
	Theme            map[string]string `mapstructure:"theme"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, catalog.DefaultBaseURL)
	v.SetDefault(KeyScope, catalog.CloudPlatformScope)
	v.SetDefault(KeyListen, ":8080")
	v.SetDefault(KeySimulate, true)
	v.SetDefault(KeyDelay, catalog.DefaultSimulatedDelay)
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile (or ./adc-selector.yaml when empty) into v. A missing
// default config file is not an error; .env files are loaded when present.
func Load(v *viper.Viper, configFile string) (Config, error) {
	_ = godotenv.Load()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the commands rely on.
func (c Config) Validate() error {
	var missing []string
	if !c.Simulate && strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, KeyBaseURL)
	}
	if strings.TrimSpace(c.Scope) == "" {
		missing = append(missing, KeyScope)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings -> %s", strings.Join(missing, ", "))
	}
	if c.Delay < 0 {
		return fmt.Errorf("config: delay must not be negative, got %s", c.Delay)
	}
	return nil
}
