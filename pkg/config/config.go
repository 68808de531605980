// Package config loads the YAML bot configuration. API credentials are
// deliberately absent from the file format; they come from the environment
// so they never end up in a committed config.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the bot configuration document.
type Config struct {
	RestURL  string   `yaml:"rest_url"`
	FeedURL  string   `yaml:"feed_url"`
	Products []string `yaml:"products"`
	Channels []string `yaml:"channels"`
	Trade    Trade    `yaml:"trade"`
	Log      Log      `yaml:"log"`
}

// Trade holds the strategy parameters of the example bot.
type Trade struct {
	Size       Decimal `yaml:"size"`
	PriceAbove Decimal `yaml:"price_above"`
	MaxTrades  int     `yaml:"max_trades"`
}

// Log configures the logger; File enables rotating file output when set.
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads, decodes, and validates the config at path. Unknown fields are
// an error so a typoed key fails loudly instead of silently using a default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.RestURL = strings.TrimSpace(c.RestURL)
	c.FeedURL = strings.TrimSpace(c.FeedURL)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.File = strings.TrimSpace(c.Log.File)
	for i, p := range c.Products {
		c.Products[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	for i, ch := range c.Channels {
		c.Channels[i] = strings.ToLower(strings.TrimSpace(ch))
	}
}

func (c *Config) applyDefaults() {
	if c.RestURL == "" {
		c.RestURL = "https://api.pro.coinbase.com"
	}
	if c.FeedURL == "" {
		c.FeedURL = "wss://ws-feed.pro.coinbase.com"
	}
	if len(c.Channels) == 0 {
		c.Channels = []string{"ticker"}
	}
	if c.Trade.MaxTrades == 0 {
		c.Trade.MaxTrades = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// Validate checks the document after defaults are applied.
func (c Config) Validate() error {
	if err := validateURL(c.RestURL, "http", "https"); err != nil {
		return fmt.Errorf("rest_url %v", err)
	}
	if err := validateURL(c.FeedURL, "ws", "wss"); err != nil {
		return fmt.Errorf("feed_url %v", err)
	}
	if len(c.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}
	for _, p := range c.Products {
		if !isValidProduct(p) {
			return fmt.Errorf("product %q must look like BTC-USD", p)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn, or error")
	}
	if c.Trade.Size.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("trade size must be > 0")
	}
	if c.Trade.PriceAbove.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("trade price_above must be > 0")
	}
	if c.Trade.MaxTrades < 1 {
		return fmt.Errorf("trade max_trades must be >= 1")
	}
	if c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log max_size_mb must be >= 1")
	}
	if c.Log.MaxBackups < 0 {
		return fmt.Errorf("log max_backups must be >= 0")
	}
	return nil
}

func isValidProduct(v string) bool {
	base, quote, found := strings.Cut(v, "-")
	if !found || base == "" || quote == "" {
		return false
	}
	for _, r := range base + quote {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

func validateURL(raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must include scheme and host")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme must be %s", strings.Join(schemes, " or "))
}
