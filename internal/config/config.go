// Package config loads settings for the ipfs-unstable command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomblancdev/ipfsapi-go"
)

// Environment variables that override the config file.
const (
	EnvAddr    = "IPFS_API_ADDR"
	EnvToken   = "IPFS_API_TOKEN"
	EnvTimeout = "IPFS_API_TIMEOUT"
)

// Config holds the settings for the ipfs-unstable command.
type Config struct {
	// Addr is the daemon API address, URL or multiaddr.
	Addr string `yaml:"addr"`
	// Token is an optional bearer token.
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	// LogLevel is the level of the client's own "ipfsapi" logger.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Addr:     ipfsapi.DefaultAddr,
		Timeout:  30 * time.Second,
		LogLevel: "error",
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides. A missing file is an error only when path was
// given explicitly. The result is not validated, so callers can apply
// their own overrides first and then call [Config.Validate].
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks that the settings can be used to build a client.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("addr is required")
	}
	if _, err := ipfsapi.ResolveAddr(c.Addr); err != nil {
		return fmt.Errorf("addr: %w", err)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Retries < 0 {
		return errors.New("retries must not be negative")
	}
	return nil
}

// Options converts the config into client options.
func (c Config) Options() []ipfsapi.Option {
	opts := []ipfsapi.Option{
		ipfsapi.WithTimeout(c.Timeout),
		ipfsapi.WithRetries(c.Retries),
	}
	if c.Token != "" {
		opts = append(opts, ipfsapi.WithToken(c.Token))
	}
	return opts
}
