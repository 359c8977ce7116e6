package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "stockinsight", cfg.ServiceName)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.Forecast.HorizonDays)
	assert.Equal(t, "10000", cfg.Backtest.InitialInvestment)
	assert.Equal(t, 50, cfg.Backtest.ShortWindow)
	assert.Equal(t, 200, cfg.Backtest.LongWindow)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	content := `
service_name = "stockinsight-test"

[http]
port = 9090
prefix = "api/"

[alpha_vantage]
api_key = "from-file"

[[scheduler.watchlist]]
symbol = "AAPL"
data_type = "stock"

[[scheduler.watchlist]]
symbol = "BTC"
data_type = "crypto"
market = "USD"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_ALPHA_VANTAGE_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "stockinsight-test", cfg.ServiceName)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "api/", cfg.HTTP.Prefix)
	assert.Equal(t, "from-env", cfg.AlphaVantage.APIKey)
	require.Len(t, cfg.Scheduler.Watchlist, 2)
	assert.Equal(t, "BTC", cfg.Scheduler.Watchlist[1].Symbol)
	assert.Equal(t, "crypto", cfg.Scheduler.Watchlist[1].DataType)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"mysql without dsn", func(c *Config) { c.Database.Driver = "mysql"; c.Database.DSN = "" }},
		{"zero horizon", func(c *Config) { c.Forecast.HorizonDays = 0 }},
		{"rate limit without redis", func(c *Config) { c.RateLimit.Enabled = true; c.Redis.Enabled = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
