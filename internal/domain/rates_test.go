package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRateTableBaseAlwaysOne(t *testing.T) {
	table := NewRateTable(USD, map[Code]decimal.Decimal{
		EUR: decimal.NewFromFloat(0.9),
	}, time.Now().Add(-2*time.Hour), time.Hour)

	// stale table, base still resolves
	rate, err := table.Rate(USD, time.Now())
	if err != nil {
		t.Fatalf("base lookup failed on stale table: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("base rate = %s, want 1", rate)
	}
}

func TestRateTableStale(t *testing.T) {
	table := NewRateTable(USD, map[Code]decimal.Decimal{
		EUR: decimal.NewFromFloat(0.9),
	}, time.Now().Add(-2*time.Hour), time.Hour)

	_, err := table.Rate(EUR, time.Now())
	if !errors.Is(err, ErrRateStale) {
		t.Errorf("err = %v, want ErrRateStale", err)
	}
	if table.Has(EUR, time.Now()) {
		t.Error("Has returned true for a stale rate")
	}
}

func TestRateTableMissingCurrency(t *testing.T) {
	table := NewRateTable(USD, map[Code]decimal.Decimal{
		EUR: decimal.NewFromFloat(0.9),
	}, time.Now(), time.Hour)

	_, err := table.Rate(GBP, time.Now())
	if !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("err = %v, want ErrRateUnavailable", err)
	}
}

func TestRateTableDropsNonPositiveRates(t *testing.T) {
	table := NewRateTable(USD, map[Code]decimal.Decimal{
		EUR: decimal.NewFromFloat(0.9),
		GBP: decimal.Zero,
		JPY: decimal.NewFromInt(-5),
	}, time.Now(), time.Hour)

	if len(table.Rates) != 1 {
		t.Errorf("kept %d rates, want 1", len(table.Rates))
	}
	if !table.Has(EUR, time.Now()) {
		t.Error("positive rate was dropped")
	}
}

func TestRateTableZeroTTLNeverStale(t *testing.T) {
	table := NewRateTable(USD, map[Code]decimal.Decimal{
		EUR: decimal.NewFromFloat(0.9),
	}, time.Now().Add(-24*time.Hour), 0)

	if table.StaleAt(time.Now()) {
		t.Error("zero-TTL table reported stale")
	}
}

func TestRoundingRuleValidate(t *testing.T) {
	cases := []struct {
		name    string
		rule    RoundingRule
		wantErr bool
	}{
		{"none", NoRounding(), false},
		{"nearest", RoundingRule{Kind: RoundNearest}, false},
		{"psychological", Psychological(decimal.NewFromFloat(0.99)), false},
		{"psychological ending too large", Psychological(decimal.NewFromInt(1)), true},
		{"psychological negative ending", Psychological(decimal.NewFromFloat(-0.5)), true},
		{"bucket", Bucket(decimal.NewFromInt(5)), false},
		{"bucket zero step", Bucket(decimal.Zero), true},
		{"unknown kind", RoundingRule{Kind: "weird"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCatalogMetaFallback(t *testing.T) {
	catalog := DefaultCatalog()

	meta := catalog.Meta("XYZ")
	if meta.Symbol != "XYZ " {
		t.Errorf("fallback symbol = %q, want code with trailing space", meta.Symbol)
	}
	if meta.MinorUnitDigits != 2 {
		t.Errorf("fallback minor digits = %d, want 2", meta.MinorUnitDigits)
	}

	if got := catalog.Meta(JPY).MinorUnitDigits; got != 0 {
		t.Errorf("JPY minor digits = %d, want 0", got)
	}
}
