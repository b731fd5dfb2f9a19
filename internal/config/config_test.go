package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoader_Defaults(t *testing.T) {
	l := NewLoader(t.TempDir(), Development)
	l.getenv = envMap(nil)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Gateway.Driver)
	assert.Equal(t, 2*time.Second, cfg.Stylist.Delay)
	assert.Equal(t, time.Second, cfg.Stylist.ChatDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.TryOn.Delay)
	assert.Equal(t, 0.6, cfg.TryOn.Geometry.WidthFraction)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoader_Layering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
server:
  port: 9000
stylist:
  delay: 1s
logging:
  level: warn
`)
	writeFile(t, dir, "development.yaml", `
stylist:
  delay: 250ms
tryon:
  geometry:
    width_fraction: 0.5
    height_fraction: 0.4
    top_fraction: 0.2
    opacity: 0.8
`)
	writeFile(t, dir, "local.json", `{"logging": {"level": "debug"}}`)

	l := NewLoader(dir, Development)
	l.getenv = envMap(map[string]string{"SERVER_PORT": "9100", "CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example"})

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Stylist.Delay)
	assert.Equal(t, 0.5, cfg.TryOn.Geometry.WidthFraction)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Len(t, cfg.LoadedFrom, 5)
}

func TestLoader_LocalIgnoredOutsideDevelopment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", "logging:\n  level: debug\n")

	l := NewLoader(dir, Staging)
	l.getenv = envMap(nil)
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("bad file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "base.yaml", "server: [")
		l := NewLoader(dir, Development)
		l.getenv = envMap(nil)
		_, err := l.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "base config")
	})

	t.Run("bad env var", func(t *testing.T) {
		l := NewLoader(t.TempDir(), Development)
		l.getenv = envMap(map[string]string{"STYLIST_DELAY": "soon", "SERVER_PORT": "x"})
		_, err := l.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STYLIST_DELAY")
		assert.Contains(t, err.Error(), "SERVER_PORT")
	})

	t.Run("invalid result", func(t *testing.T) {
		l := NewLoader(t.TempDir(), Production)
		l.getenv = envMap(nil)
		_, err := l.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memory driver")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		l := NewLoader("", Development)
		return l.defaultConfig()
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port", mutate: func(c *Config) { c.Server.Port = 70000 }, errMsg: "server.port"},
		{name: "driver", mutate: func(c *Config) { c.Gateway.Driver = "mongo" }, errMsg: "gateway.driver"},
		{name: "supabase", mutate: func(c *Config) { c.Gateway.Driver = DriverSupabase }, errMsg: "supabase.url"},
		{name: "dynamodb", mutate: func(c *Config) { c.Gateway.Driver = DriverDynamoDB; c.AWS.DynamoDBTable = "" }, errMsg: "dynamodb_table"},
		{name: "geometry", mutate: func(c *Config) { c.TryOn.Geometry.Opacity = 2 }, errMsg: "tryon.geometry"},
		{name: "delay", mutate: func(c *Config) { c.Stylist.Delay = -time.Second }, errMsg: "delays"},
		{name: "chat delay", mutate: func(c *Config) { c.Stylist.ChatDelay = -time.Second }, errMsg: "delays"},
		{name: "sample rate", mutate: func(c *Config) { c.Tracing.SampleRate = 1.5 }, errMsg: "sample_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "stylist:\n  delay: 1s\n")

	l := NewLoader(dir, Staging)
	l.getenv = envMap(nil)
	initial, err := l.Load()
	require.NoError(t, err)

	w, err := NewConfigWatcher(l, initial, nil)
	require.NoError(t, err)
	defer w.Stop()

	var calls atomic.Int32
	var seen atomic.Int64
	w.OnChange(func(c *Config) {
		calls.Add(1)
		seen.Store(int64(c.Stylist.Delay))
	})

	w.Reload()
	assert.Zero(t, calls.Load(), "unchanged config must not notify")

	writeFile(t, dir, "base.yaml", "stylist:\n  delay: 3s\n")
	w.Reload()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(3*time.Second), seen.Load())
	assert.Equal(t, 3*time.Second, w.GetConfig().Stylist.Delay)

	writeFile(t, dir, "base.yaml", "server:\n  port: -1\n")
	w.Reload()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 3*time.Second, w.GetConfig().Stylist.Delay)
}

func TestConfigWatcher_WatchesInDevelopment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "logging:\n  level: info\n")

	l := NewLoader(dir, Development)
	l.getenv = envMap(nil)
	initial, err := l.Load()
	require.NoError(t, err)

	w, err := NewConfigWatcher(l, initial, nil)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	defer w.Stop()

	levels := make(chan string, 4)
	w.OnChange(func(c *Config) { levels <- c.Logging.Level })

	writeFile(t, dir, "base.yaml", "logging:\n  level: debug\n")

	select {
	case lvl := <-levels:
		assert.Equal(t, "debug", lvl)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after file change")
	}
}
