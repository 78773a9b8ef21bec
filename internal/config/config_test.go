package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"GOCRUD_PRIMARY.ENV":                   "test",
		"GOCRUD_SERVER.PORT":                   "8080",
		"GOCRUD_SERVER.READ_TIMEOUT":           "30",
		"GOCRUD_SERVER.WRITE_TIMEOUT":          "30",
		"GOCRUD_SERVER.IDLE_TIMEOUT":           "60",
		"GOCRUD_SERVER.CORS_ALLOWED_ORIGINS":   "http://localhost:3000",
		"GOCRUD_DATABASE.HOST":                 "localhost",
		"GOCRUD_DATABASE.PORT":                 "5432",
		"GOCRUD_DATABASE.USER":                 "gocrud",
		"GOCRUD_DATABASE.PASSWORD":             "p@ss:word",
		"GOCRUD_DATABASE.NAME":                 "gocrud",
		"GOCRUD_DATABASE.SSL_MODE":             "disable",
		"GOCRUD_DATABASE.MAX_OPEN_CONNS":       "10",
		"GOCRUD_DATABASE.MAX_IDLE_CONNS":       "5",
		"GOCRUD_DATABASE.CONN_MAX_LIFETIME":    "300",
		"GOCRUD_DATABASE.CONN_MAX_IDLE_TIME":   "60",
		"GOCRUD_REDIS.ADDRESS":                 "localhost:6379",
		"GOCRUD_AUTH.SECRET_KEY":               "0123456789abcdef0123",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	assert.Equal(t, DefaultTokenExpiry, cfg.Auth.TokenExpiry)
	assert.Equal(t, DefaultResetTokenExpiry, cfg.Auth.ResetTokenExpiry)
	assert.Equal(t, DefaultEmailFrom, cfg.Integration.EmailFrom)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "test", cfg.Observability.Environment)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GOCRUD_DATABASE.DIALECT", "mysql")
	t.Setenv("GOCRUD_AUTH.TOKEN_EXPIRY", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Dialect)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenExpiry)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("GOCRUD_AUTH.SECRET_KEY", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss:word", Name: "app", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%3Aword@db:5432/app?sslmode=disable", c.DSN())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	c := DefaultObservabilityConfig()
	require.NoError(t, c.Validate())

	c.Logging.Level = "verbose"
	assert.Error(t, c.Validate())

	c.Logging.Level = ""
	c.Environment = "development"
	assert.Equal(t, "debug", c.GetLogLevel())
}
