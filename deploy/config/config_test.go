package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/langowen/currency-archive/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BD_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.HTTPServer.Port)
	assert.Equal(t, 8*time.Second, cfg.Throttle.Delay)
	assert.Equal(t, 2, cfg.Throttle.FreeFetches)
	assert.Equal(t, 3, cfg.Upstream.Attempts)
	assert.Equal(t, "week", cfg.Warmer.Period)
	assert.Equal(t, 30*time.Minute, cfg.Warmer.Timeout)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, entities.CurrencySet{"USD", "EUR"}, cfg.SupportedCurrencies())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BD_DRIVER", "memory")
	t.Setenv("RATES_SUPPORTED_CURRENCIES", " usd , eur ,gbp")
	t.Setenv("THROTTLE_DELAY", "250ms")
	t.Setenv("RATES_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, entities.CurrencySet{"USD", "EUR", "GBP"}, cfg.SupportedCurrencies())
	assert.Equal(t, 250*time.Millisecond, cfg.Throttle.Delay)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "postgres without credentials", mutate: func(c *Config) { c.Storage.Driver = "postgres" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "mongo" }},
		{name: "no currencies", mutate: func(c *Config) { c.Rates.Supported = " , " }},
		{name: "bad timezone", mutate: func(c *Config) { c.Rates.Timezone = "Mars/Olympus" }},
		{name: "zero attempts", mutate: func(c *Config) { c.Upstream.Attempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Storage:  Storage{Driver: "memory"},
				Rates:    Rates{Supported: "USD,EUR", Timezone: "UTC"},
				Upstream: Upstream{Attempts: 3},
			}
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{Storage: Storage{
		Host: "db", Port: 5432, User: "rates", Password: "secret",
		DBName: "archive", SSLMode: "disable", Schema: "public",
	}}

	assert.Equal(t, "host=db port=5432 user=rates password=secret dbname=archive sslmode=disable search_path=public", cfg.DSN())
}

func TestLogValueHidesPasswords(t *testing.T) {
	cfg := &Config{
		Storage: Storage{Password: "secret"},
		Redis:   Redis{Password: "hunter2"},
	}

	value := slog.AnyValue(cfg).Resolve().String()
	assert.NotContains(t, value, "secret")
	assert.NotContains(t, value, "hunter2")
	assert.Equal(t, "secret", cfg.Storage.Password)
}
