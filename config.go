// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultAuthURL is the KBase legacy login endpoint.
	DefaultAuthURL = "https://kbase.us/services/auth/api/legacy/KBase/Sessions/Login"

	envPrefix  = "TAXONAPI"
	configName = "taxonapi"
)

// Config describes how to reach a TaxonAPI service.
type Config struct {
	URL                  string `mapstructure:"url"`
	Token                string `mapstructure:"token"`
	User                 string `mapstructure:"user"`
	Password             string `mapstructure:"password"`
	AuthURL              string `mapstructure:"auth_url"`
	ReadTimeoutMS        int64  `mapstructure:"read_timeout_ms"`
	AllowInsecureHTTP    bool   `mapstructure:"allow_insecure_http"`
	TrustAllCertificates bool   `mapstructure:"trust_all_certificates"`
	StreamingMode        bool   `mapstructure:"streaming_mode"`
	ServiceVersion       string `mapstructure:"service_version"`
	Transport            string `mapstructure:"transport"`
	MaxRetries           int    `mapstructure:"max_retries"`
	LogEnvironment       string `mapstructure:"log_environment"`
}

// NewDefaultConfig returns a Config with every optional field at its default.
func NewDefaultConfig() Config {
	return Config{
		AuthURL:        DefaultAuthURL,
		Transport:      TransportJSON,
		LogEnvironment: "prod",
	}
}

// ReadTimeout converts ReadTimeoutMS to a duration.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// Validate reports the first problem that would prevent a dial.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrap(err, "config: invalid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("config: unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.Errorf("config: url %q has no host", c.URL)
	}
	if c.ReadTimeoutMS < 0 {
		return errors.Errorf("config: read_timeout_ms must not be negative, got %d", c.ReadTimeoutMS)
	}
	if c.MaxRetries < 0 {
		return errors.Errorf("config: max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.User != "" && c.Password == "" {
		return errors.New("config: user is set but password is empty")
	}
	if c.Transport == "" {
		return errors.New("config: transport is required")
	}
	return nil
}

// LoadConfig reads a YAML config file and applies TAXONAPI_* environment
// overrides. With an empty path it looks for taxonapi.yaml in the working
// directory and in $HOME/.config/taxonapi; finding none is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	defaults := NewDefaultConfig()
	v.SetDefault("url", defaults.URL)
	v.SetDefault("token", defaults.Token)
	v.SetDefault("user", defaults.User)
	v.SetDefault("password", defaults.Password)
	v.SetDefault("auth_url", defaults.AuthURL)
	v.SetDefault("read_timeout_ms", defaults.ReadTimeoutMS)
	v.SetDefault("allow_insecure_http", defaults.AllowInsecureHTTP)
	v.SetDefault("trust_all_certificates", defaults.TrustAllCertificates)
	v.SetDefault("streaming_mode", defaults.StreamingMode)
	v.SetDefault("service_version", defaults.ServiceVersion)
	v.SetDefault("transport", defaults.Transport)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("log_environment", defaults.LogEnvironment)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	return cfg, nil
}
