package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
products: [btc-usd]
trade:
  size: "0.001"
  price_above: "30000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.pro.coinbase.com", cfg.RestURL)
	assert.Equal(t, "wss://ws-feed.pro.coinbase.com", cfg.FeedURL)
	assert.Equal(t, []string{"BTC-USD"}, cfg.Products)
	assert.Equal(t, []string{"ticker"}, cfg.Channels)
	assert.Equal(t, 1, cfg.Trade.MaxTrades)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.True(t, cfg.Trade.Size.Equal(decimal.RequireFromString("0.001")))
}

func TestLoadFullDocument(t *testing.T) {
	path := writeConfig(t, `
rest_url: https://api-public.sandbox.pro.coinbase.com
feed_url: wss://ws-feed-public.sandbox.pro.coinbase.com
products: [BTC-USD, ETH-USD]
channels: [ticker, heartbeat]
trade:
  size: "0.01"
  price_above: "25000.50"
  max_trades: 5
log:
  level: debug
  file: /tmp/bot.log
  max_size_mb: 10
  max_backups: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USD", "ETH-USD"}, cfg.Products)
	assert.Equal(t, []string{"ticker", "heartbeat"}, cfg.Channels)
	assert.Equal(t, 5, cfg.Trade.MaxTrades)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/bot.log", cfg.Log.File)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
products: [BTC-USD]
trade:
  size: "0.001"
  price_abvoe: "30000"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price_abvoe")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"no products", "trade:\n  size: \"1\"\n  price_above: \"1\"\n", "at least one product"},
		{"bad product", "products: [BTCUSD]\ntrade:\n  size: \"1\"\n  price_above: \"1\"\n", "BTC-USD"},
		{"zero size", "products: [BTC-USD]\ntrade:\n  size: \"0\"\n  price_above: \"1\"\n", "size must be > 0"},
		{"bad decimal", "products: [BTC-USD]\ntrade:\n  size: \"abc\"\n  price_above: \"1\"\n", "invalid decimal"},
		{"bad level", "products: [BTC-USD]\ntrade:\n  size: \"1\"\n  price_above: \"1\"\nlog:\n  level: loud\n", "log level"},
		{"bad feed scheme", "feed_url: https://example.com\nproducts: [BTC-USD]\ntrade:\n  size: \"1\"\n  price_above: \"1\"\n", "feed_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
