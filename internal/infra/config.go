package infra

import (
	"errors"
	"fmt"
	"os"
	"time"

	"pricefx/internal/domain"
	"pricefx/internal/page"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string used for
	// outbound rate and asset fetches.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds the whole application configuration. Sensitive values can
// be overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Store struct {
		BaseCurrency      domain.Code     `yaml:"base_currency"`
		EnabledCurrencies []domain.Code   `yaml:"enabled_currencies"`
		PriceSelector     string          `yaml:"price_selector"`
		Attributes        page.Attributes `yaml:"attributes"`
	} `yaml:"store"`

	Pricing struct {
		Rule       domain.RoundingKind `yaml:"rule"`
		Ending     decimal.Decimal     `yaml:"ending"`
		BucketStep decimal.Decimal     `yaml:"bucket_step"`
		Template   string              `yaml:"template"`
	} `yaml:"pricing"`

	// Currencies overrides catalog entries per code; unset fields keep
	// the built-in metadata.
	Currencies map[domain.Code]CurrencyOverride `yaml:"currencies"`

	Rates struct {
		URL             string `yaml:"url"`
		APIKey          string `yaml:"api_key"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
		TTLSec          int    `yaml:"ttl_sec"`
	} `yaml:"rates"`

	Bridge struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"bridge"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// CurrencyOverride adjusts one catalog entry from config. MinorUnitDigits
// is a pointer so zero-digit currencies stay expressible.
type CurrencyOverride struct {
	Symbol          string                `yaml:"symbol"`
	SymbolPosition  domain.SymbolPosition `yaml:"symbol_position"`
	DecimalSep      string                `yaml:"decimal_sep"`
	ThousandsSep    string                `yaml:"thousands_sep"`
	MinorUnitDigits *int                  `yaml:"minor_unit_digits"`
	Template        string                `yaml:"template"`
}

func (o CurrencyOverride) applyTo(meta domain.CurrencyMeta) domain.CurrencyMeta {
	if o.Symbol != "" {
		meta.Symbol = o.Symbol
	}
	if o.SymbolPosition != "" {
		meta.SymbolPosition = o.SymbolPosition
	}
	if o.DecimalSep != "" {
		meta.DecimalSep = o.DecimalSep
	}
	if o.ThousandsSep != "" {
		meta.ThousandsSep = o.ThousandsSep
	}
	if o.MinorUnitDigits != nil {
		meta.MinorUnitDigits = *o.MinorUnitDigits
	}
	if o.Template != "" {
		meta.Template = o.Template
	}
	return meta
}

// LoadConfig reads and parses the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.PriceSelector == "" {
		cfg.Store.PriceSelector = page.DefaultSelector
	}
	if cfg.Store.Attributes.OriginalAmount == "" || cfg.Store.Attributes.Currency == "" {
		cfg.Store.Attributes = page.DefaultAttributes()
	}
	if cfg.Pricing.Rule == "" {
		cfg.Pricing.Rule = domain.RoundNone
	}
	if cfg.Rates.PollIntervalSec <= 0 {
		cfg.Rates.PollIntervalSec = 600
	}
	if cfg.Rates.TTLSec <= 0 {
		cfg.Rates.TTLSec = 3600
	}
	if cfg.Bridge.ListenAddr == "" {
		cfg.Bridge.ListenAddr = ":8787"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if len(c.Store.BaseCurrency) != 3 {
		return fmt.Errorf("base currency must be a 3-letter code: %q", c.Store.BaseCurrency)
	}
	if len(c.Store.EnabledCurrencies) == 0 {
		return fmt.Errorf("at least one enabled currency is required")
	}
	if err := c.RoundingRule().Validate(); err != nil {
		return err
	}
	if c.Rates.URL == "" {
		return fmt.Errorf("rates URL is required")
	}
	return nil
}

// RoundingRule assembles the configured pricing rule
func (c *Config) RoundingRule() domain.RoundingRule {
	switch c.Pricing.Rule {
	case domain.RoundPsychological:
		return domain.Psychological(c.Pricing.Ending)
	case domain.RoundBucket:
		return domain.Bucket(c.Pricing.BucketStep)
	default:
		return domain.RoundingRule{Kind: c.Pricing.Rule}
	}
}

// Catalog builds the currency catalog: the shared merchant template is
// applied to every enabled currency, then per-currency overrides are
// merged on top.
func (c *Config) Catalog() domain.Catalog {
	catalog := domain.DefaultCatalog()
	if c.Pricing.Template != "" {
		for _, code := range c.Store.EnabledCurrencies {
			meta := catalog.Meta(code)
			meta.Template = c.Pricing.Template
			catalog[code] = meta
		}
	}
	for code, override := range c.Currencies {
		meta := override.applyTo(catalog.Meta(code))
		meta.Code = code
		catalog[code] = meta
	}
	return catalog
}

// TTL returns the rate-table validity window
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Rates.TTLSec) * time.Second
}

// PollInterval returns how often rates are refreshed
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Rates.PollIntervalSec) * time.Second
}

// overrideWithEnv replaces config values when environment variables exist
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("PRICEFX_RATES_URL"); url != "" {
		cfg.Rates.URL = url
	}
	if key := os.Getenv("PRICEFX_RATES_API_KEY"); key != "" {
		cfg.Rates.APIKey = key
	}
	if addr := os.Getenv("PRICEFX_BRIDGE_ADDR"); addr != "" {
		cfg.Bridge.ListenAddr = addr
	}
	if level := os.Getenv("PRICEFX_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
