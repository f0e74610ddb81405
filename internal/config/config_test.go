package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Storage:  Storage{Driver: DriverPostgres, PostgresDSN: "postgres://u:p@localhost/db"},
		Session:  Session{TTL: time.Hour},
		Security: Security{BcryptCost: MinBcryptCost},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORAGE_DRIVER", DriverMemory)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: prod
storage:
  driver: memory
session:
  ttl: 2h
security:
  bcrypt_cost: 13
admin:
  email: root@example.com
  password: rootpass
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 13, cfg.Security.BcryptCost)
	assert.Equal(t, "root@example.com", cfg.Admin.Email)
	assert.Equal(t, "Administrator", cfg.Admin.FullName)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory needs no dsn", func(c *Config) { c.Storage = Storage{Driver: DriverMemory} }, ""},
		{"postgres without dsn", func(c *Config) { c.Storage.PostgresDSN = "" }, "POSTGRES_DSN is required"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, `unknown storage driver "sqlite"`},
		{"weak bcrypt", func(c *Config) { c.Security.BcryptCost = 10 }, "bcrypt cost"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session ttl"},
		{"admin without password", func(c *Config) { c.Admin.Email = "root@example.com" }, "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
