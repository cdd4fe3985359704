package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "SQLite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "AZN", cfg.Currency)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL())
	assert.Equal(t, "https://www.paytr.com/odeme/api/get-token", cfg.PayTRAPIURL)
	assert.False(t, cfg.StripeEnabled())
	assert.False(t, cfg.PayTREnabled())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestAllowedOrigins(t *testing.T) {
	c := App{AppURL: "https://avtohisse.az/"}
	assert.Equal(t, []string{"https://avtohisse.az"}, c.AllowedOrigins())
	assert.True(t, c.CORSCredentials())

	c.CORSOrigins = []string{" https://admin.avtohisse.az/ ", "", "http://localhost:3000"}
	assert.Equal(t, []string{"https://admin.avtohisse.az", "http://localhost:3000"}, c.AllowedOrigins())

	c.CORSOrigins = []string{"*"}
	assert.False(t, c.CORSCredentials())
}

func TestDSN(t *testing.T) {
	c := App{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "shop"}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5432 sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.DSN())
}
