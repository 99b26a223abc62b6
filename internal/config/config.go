// Package config provides configuration management for the openaccess server.
//
// Settings come from a YAML file, then a .env file, then the process
// environment, each overriding the previous one.
//
// Config file locations (priority order):
//  1. the --config flag
//  2. $OPENACCESS_CONFIG
//  3. ./openaccess.yaml
//  4. $XDG_CONFIG_HOME/openaccess/config.yaml
//  5. ~/.config/openaccess/config.yaml
//  6. /etc/openaccess/config.yaml
package config

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvAddr      = "OPENACCESS_ADDR"
	EnvDB        = "OPENACCESS_DB"
	EnvRedisURL  = "OPENACCESS_REDIS_URL"
	EnvTenant    = "OPENACCESS_TENANT"
	EnvInventory = "OPENACCESS_INVENTORY"
)

// EnvFile is loaded from the working directory when present
const EnvFile = ".env"

// Load finds and loads the config file, or starts from defaults if none is
// found. explicit, when set, must exist. It returns the path the config was
// read from, empty when defaults were used.
func Load(explicit string) (*Config, string, error) {
	if err := loadEnvFile(EnvFile); err != nil {
		return nil, "", err
	}

	path := explicit
	if path == "" {
		var err error
		if path, err = FindConfigPath(); err != nil {
			return nil, "", err
		}
	}

	cfg := DefaultConfig()
	if path != "" {
		var err error
		cfg, err = LoadFromPath(path)
		if err != nil {
			return nil, path, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// LoadFromPath loads config from a specific path. Unknown keys are rejected.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config", j.KV("path", path))
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse config", j.KV("path", path))
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.DebugAddr == "" {
		c.Server.DebugAddr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./openaccess.db"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(5 * time.Minute)
	}
	if c.Tenant.DefaultID == 0 {
		c.Tenant.DefaultID = 1
	}
}

// applyEnv overrides file settings from the environment
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvInventory); v != "" {
		c.Inventory.Path = v
	}
	if v := os.Getenv(EnvTenant); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return errors.New("invalid tenant id", j.KV("env", EnvTenant), j.KV("value", v))
		}
		c.Tenant.DefaultID = id
	}
	return nil
}

// loadEnvFile exports the variables of a .env file that are not already set
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "failed to load env file", j.KV("path", path))
	}
	return nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	return os.WriteFile(path, data, 0o644)
}
