package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pricefx/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
store:
  base_currency: "USD"
  enabled_currencies: ["USD", "EUR"]
pricing:
  rule: "psychological"
  ending: "0.99"
rates:
  url: "https://rates.example/v6/latest/USD"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Store.PriceSelector == "" {
		t.Error("price selector default not applied")
	}
	if cfg.Store.Attributes.OriginalAmount == "" {
		t.Error("attribute defaults not applied")
	}
	if cfg.TTL() != time.Hour {
		t.Errorf("TTL = %v, want 1h default", cfg.TTL())
	}
	if cfg.PollInterval() != 10*time.Minute {
		t.Errorf("PollInterval = %v, want 10m default", cfg.PollInterval())
	}
	if cfg.Bridge.ListenAddr != ":8787" {
		t.Errorf("ListenAddr = %q, want :8787 default", cfg.Bridge.ListenAddr)
	}
}

func TestLoadConfigRoundingRule(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	rule := cfg.RoundingRule()
	if rule.Kind != domain.RoundPsychological {
		t.Errorf("Kind = %q, want psychological", rule.Kind)
	}
	if rule.Ending.String() != "0.99" {
		t.Errorf("Ending = %s, want 0.99", rule.Ending)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadConfigRejectsBadBase(t *testing.T) {
	body := `
store:
  base_currency: "DOLLARS"
  enabled_currencies: ["USD"]
rates:
  url: "https://rates.example"
`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Error("expected error for non-3-letter base currency")
	}
}

func TestLoadConfigRejectsMissingRatesURL(t *testing.T) {
	body := `
store:
  base_currency: "USD"
  enabled_currencies: ["USD"]
`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Error("expected error for missing rates url")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PRICEFX_BRIDGE_ADDR", ":9999")
	t.Setenv("PRICEFX_RATES_API_KEY", "secret")

	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Bridge.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q, want env override :9999", cfg.Bridge.ListenAddr)
	}
	if cfg.Rates.APIKey != "secret" {
		t.Errorf("APIKey = %q, want env override", cfg.Rates.APIKey)
	}
}

func TestCatalogAppliesTemplate(t *testing.T) {
	body := `
store:
  base_currency: "USD"
  enabled_currencies: ["USD", "EUR"]
pricing:
  rule: "none"
  template: "{{amount}} {{symbol}}"
rates:
  url: "https://rates.example/v6/latest/USD"
`
	cfg, err := LoadConfig(writeConfig(t, body))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	catalog := cfg.Catalog()
	if got := catalog.Meta("USD").Template; got != "{{amount}} {{symbol}}" {
		t.Errorf("USD template = %q, override not applied", got)
	}
	// currencies outside the enabled list keep their default rendering
	if got := catalog.Meta("JPY").Template; got != "" {
		t.Errorf("JPY template = %q, want default empty", got)
	}
}

func TestCatalogCurrencyOverrides(t *testing.T) {
	body := `
store:
  base_currency: "USD"
  enabled_currencies: ["USD", "CHF", "EUR"]
currencies:
  CHF:
    symbol: "Fr."
    symbol_position: "suffix"
    minor_unit_digits: 0
  EUR:
    decimal_sep: "."
    thousands_sep: ","
rates:
  url: "https://rates.example/v6/latest/USD"
`
	cfg, err := LoadConfig(writeConfig(t, body))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	catalog := cfg.Catalog()

	chf := catalog.Meta("CHF")
	if chf.Symbol != "Fr." {
		t.Errorf("CHF symbol = %q, want Fr.", chf.Symbol)
	}
	if chf.SymbolPosition != domain.SymbolSuffix {
		t.Errorf("CHF position = %q, want suffix", chf.SymbolPosition)
	}
	if chf.MinorUnitDigits != 0 {
		t.Errorf("CHF minor digits = %d, want explicit 0", chf.MinorUnitDigits)
	}
	// unset fields keep the built-in metadata
	if chf.DecimalSep != "." {
		t.Errorf("CHF decimal sep = %q, want built-in .", chf.DecimalSep)
	}

	eur := catalog.Meta("EUR")
	if eur.DecimalSep != "." || eur.ThousandsSep != "," {
		t.Errorf("EUR separators = %q/%q, overrides not applied", eur.DecimalSep, eur.ThousandsSep)
	}
	if eur.Symbol != "€" {
		t.Errorf("EUR symbol = %q, want built-in €", eur.Symbol)
	}
}
