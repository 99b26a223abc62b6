package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every discovery location at an empty temp dir
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvConfigPath, "")
	for _, k := range []string{EnvAddr, EnvDB, EnvRedisURL, EnvTenant, EnvInventory} {
		t.Setenv(k, "")
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, ":8080", cfg.Server.DebugAddr)
	assert.Equal(t, "./openaccess.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL.Duration())
	assert.Equal(t, int64(1), cfg.Tenant.DefaultID)
	assert.Equal(t, 0, cfg.Topology.MaxNodes)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9000"
database:
  path: /var/lib/openaccess.db
cache:
  redis_url: redis://localhost:6379
  ttl: 30s
tenant:
  default_id: 7
inventory:
  path: inventory.yaml
  watch: true
topology:
  max_nodes: 500
tracing:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromPath(path)
	jtest.RequireNil(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, ":8080", cfg.Server.DebugAddr)
	assert.Equal(t, "/var/lib/openaccess.db", cfg.Database.Path)
	assert.Equal(t, "redis://localhost:6379", cfg.Cache.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL.Duration())
	assert.Equal(t, int64(7), cfg.Tenant.DefaultID)
	assert.True(t, cfg.Inventory.Watch)
	assert.Equal(t, 500, cfg.Topology.MaxNodes)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadFromPathErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: "posture: balanced\n"},
		{name: "bad duration", content: "cache:\n  ttl: soon\n"},
		{name: "not yaml", content: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadFromPath(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadFromPath(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := LoadFromPath(path)
	jtest.RequireNil(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is found", func(t *testing.T) {
		isolate(t)

		cfg, path, err := Load("")
		jtest.RequireNil(t, err)
		assert.Empty(t, path)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("working directory file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("topology:\n  max_nodes: 3\n"), 0o644))

		cfg, path, err := Load("")
		jtest.RequireNil(t, err)
		assert.Equal(t, ConfigFileName, filepath.Base(path))
		assert.Equal(t, 3, cfg.Topology.MaxNodes)
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("topology:\n  max_nodes: 3\n"), 0o644))
		explicit := filepath.Join(dir, "other.yaml")
		require.NoError(t, os.WriteFile(explicit, []byte("topology:\n  max_nodes: 9\n"), 0o644))

		cfg, path, err := Load(explicit)
		jtest.RequireNil(t, err)
		assert.Equal(t, explicit, path)
		assert.Equal(t, 9, cfg.Topology.MaxNodes)
	})

	t.Run("config named by environment", func(t *testing.T) {
		dir := isolate(t)
		named := filepath.Join(dir, "named.yaml")
		require.NoError(t, os.WriteFile(named, []byte("topology:\n  max_nodes: 5\n"), 0o644))
		t.Setenv(EnvConfigPath, named)

		cfg, path, err := Load("")
		jtest.RequireNil(t, err)
		assert.Equal(t, named, path)
		assert.Equal(t, 5, cfg.Topology.MaxNodes)
	})

	t.Run("missing config named by environment", func(t *testing.T) {
		dir := isolate(t)
		t.Setenv(EnvConfigPath, filepath.Join(dir, "absent.yaml"))

		_, _, err := Load("")
		assert.Error(t, err)
	})

	t.Run("xdg config", func(t *testing.T) {
		dir := isolate(t)
		xdg := filepath.Join(dir, "openaccess", "config.yaml")
		require.NoError(t, os.MkdirAll(filepath.Dir(xdg), 0o755))
		require.NoError(t, os.WriteFile(xdg, []byte("topology:\n  max_nodes: 7\n"), 0o644))

		cfg, path, err := Load("")
		jtest.RequireNil(t, err)
		assert.Equal(t, xdg, path)
		assert.Equal(t, 7, cfg.Topology.MaxNodes)
	})

	t.Run("environment overrides", func(t *testing.T) {
		isolate(t)
		t.Setenv(EnvAddr, ":4000")
		t.Setenv(EnvDB, "/tmp/x.db")
		t.Setenv(EnvRedisURL, "redis://cache:6379")
		t.Setenv(EnvTenant, "42")
		t.Setenv(EnvInventory, "/srv/inventory.yaml")

		cfg, _, err := Load("")
		jtest.RequireNil(t, err)
		assert.Equal(t, ":4000", cfg.Server.Addr)
		assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
		assert.Equal(t, "redis://cache:6379", cfg.Cache.RedisURL)
		assert.Equal(t, int64(42), cfg.Tenant.DefaultID)
		assert.Equal(t, "/srv/inventory.yaml", cfg.Inventory.Path)
	})

	t.Run("invalid tenant override", func(t *testing.T) {
		isolate(t)
		t.Setenv(EnvTenant, "zero")

		_, _, err := Load("")
		assert.Error(t, err)
	})

	t.Run("env file", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte("OPENACCESS_DB=/data/from-env.db\n"), 0o644))
		// godotenv leaves variables that are already set alone
		require.NoError(t, os.Unsetenv(EnvDB))
		t.Cleanup(func() { os.Unsetenv(EnvDB) })

		cfg, _, err := Load("")
		jtest.RequireNil(t, err)
		assert.Equal(t, "/data/from-env.db", cfg.Database.Path)
	})
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/ops")

	assert.Equal(t, []string{
		ConfigFileName,
		"/xdg/openaccess/config.yaml",
		"/home/ops/.config/openaccess/config.yaml",
		"/etc/openaccess/config.yaml",
	}, SearchPaths())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	assert.Equal(t, []string{ConfigFileName, "/etc/openaccess/config.yaml"}, SearchPaths())
}

func TestFindConfigPathSkipsDirectories(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFileName), 0o755))

	path, err := FindConfigPath()
	jtest.RequireNil(t, err)
	if path != "" {
		// only a system-wide config may be picked up
		assert.Equal(t, "/etc/openaccess/config.yaml", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Topology.MaxNodes = 12
	cfg.Cache.TTL = Duration(time.Minute)

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromPath(path)
	jtest.RequireNil(t, err)
	assert.Equal(t, cfg, loaded)
}
