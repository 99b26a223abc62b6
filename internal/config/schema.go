package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Tenant    TenantConfig    `yaml:"tenant"`
	Inventory InventoryConfig `yaml:"inventory"`
	Topology  TopologyConfig  `yaml:"topology"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig holds the listen addresses
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	DebugAddr string `yaml:"debug_addr"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig selects the topology snapshot cache. An empty redis url keeps
// the cache in memory.
type CacheConfig struct {
	RedisURL string   `yaml:"redis_url,omitempty"`
	TTL      Duration `yaml:"ttl"`
}

// TenantConfig holds tenant scoping defaults
type TenantConfig struct {
	DefaultID int64 `yaml:"default_id"`
}

// InventoryConfig points at a YAML inventory imported on start
type InventoryConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"`
}

// TopologyConfig bounds topology builds
type TopologyConfig struct {
	MaxNodes int `yaml:"max_nodes"` // 0 = unlimited
}

// TracingConfig toggles the stdout span exporter
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
