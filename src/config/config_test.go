package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

const sampleYAML = `
env: "production"
http:
  host: "127.0.0.1"
  port: "8080"
  cors_origins: ["https://halal-biye.vercel.app"]
storage:
  driver: "sqlite"
sqlite:
  path: "/tmp/halalbiye.db"
session:
  secret: "0123456789abcdef0123456789abcdef"
  ttl: "2h"
  cookie_name: "hb_session"
auth:
  bcrypt_cost: 12
`

func TestHTTPConfig_Addr(t *testing.T) {
	cfg := HTTPConfig{Host: "127.0.0.1", Port: "5000"}
	require.Equal(t, "127.0.0.1:5000", cfg.Addr())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.IsProduction())
	require.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
	require.Equal(t, []string{"https://halal-biye.vercel.app"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "/tmp/halalbiye.db", cfg.SQLite.Path)
	require.Equal(t, 2*time.Hour, cfg.Session.TTL)
	require.Equal(t, "hb_session", cfg.Session.CookieName)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, 10*time.Second, cfg.Mongo.Timeout)
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	require.False(t, cfg.IsProduction())
	require.Equal(t, DriverMongo, cfg.Storage.Driver)
	require.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	require.Equal(t, "halalbiye", cfg.Mongo.Database)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.Equal(t, "token", cfg.Session.CookieName)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.Equal(t, "0.0.0.0:5000", cfg.HTTP.Addr())
	require.Empty(t, cfg.Redis.URL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:     EnvDevelopment,
			Storage: StorageConfig{Driver: DriverMongo},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Timeout: time.Second},
			Session: SessionConfig{Secret: "s", TTL: time.Hour, CookieName: "token"},
			Auth:    AuthConfig{BcryptCost: 10},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite; c.SQLite.Path = "" }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"empty cookie name", func(c *Config) { c.Session.CookieName = "" }},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 1 }},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 40 }},
		{"short secret in production", func(c *Config) { c.Env = EnvProduction }},
		{"zero mongo timeout", func(c *Config) { c.Mongo.Timeout = 0 }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
