package convert

import (
	"errors"
	"testing"
	"time"

	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

func testContext(target domain.Code, rule domain.RoundingRule) *domain.ConversionContext {
	now := time.Now()
	table := domain.NewRateTable(domain.USD, map[domain.Code]decimal.Decimal{
		domain.EUR: decimal.RequireFromString("0.9"),
		domain.JPY: decimal.RequireFromString("150"),
	}, now, time.Hour)

	return &domain.ConversionContext{
		Target:  target,
		Table:   table,
		Rule:    rule,
		Catalog: domain.DefaultCatalog(),
		Now:     now,
	}
}

func TestConvert_Pipeline(t *testing.T) {
	ctx := testContext(domain.EUR, domain.NoRounding())

	res, err := Convert(decimal.RequireFromString("100"), domain.USD, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converted.Equal(decimal.RequireFromString("90")) {
		t.Errorf("Expected 90, got %v", res.Converted)
	}
	if res.Rendered != "90,00 €" {
		t.Errorf("Expected \"90,00 €\", got %q", res.Rendered)
	}
}

func TestConvert_PsychologicalRule(t *testing.T) {
	ctx := testContext(domain.EUR, domain.Psychological(decimal.RequireFromString("0.99")))

	res, err := Convert(decimal.RequireFromString("16.93"), domain.USD, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 16.93 * 0.9 = 15.237 -> 15.99
	if !res.Converted.Equal(decimal.RequireFromString("15.99")) {
		t.Errorf("Expected 15.99, got %v", res.Converted)
	}
}

func TestResult_Instance(t *testing.T) {
	ctx := testContext(domain.EUR, domain.NoRounding())

	res, err := Convert(decimal.RequireFromString("100"), domain.USD, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := res.Instance(domain.USD)
	if !inst.ConvertedTo(domain.EUR) {
		t.Errorf("instance not marked converted to EUR: %+v", inst)
	}
	if inst.ConvertedTo(domain.GBP) {
		t.Error("instance claims GBP while showing EUR")
	}
	if inst.OriginalCurrency != domain.USD {
		t.Errorf("OriginalCurrency = %s, want USD", inst.OriginalCurrency)
	}
	if inst.Rendered != res.Rendered {
		t.Errorf("Rendered = %q, want %q", inst.Rendered, res.Rendered)
	}
}

func TestConvert_BaseCurrencyIsIdentity(t *testing.T) {
	ctx := testContext(domain.USD, domain.NoRounding())

	res, err := Convert(decimal.RequireFromString("42.5"), domain.USD, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converted.Equal(decimal.RequireFromString("42.5")) {
		t.Errorf("Expected 42.5, got %v", res.Converted)
	}
}

func TestConvert_RateMissing(t *testing.T) {
	ctx := testContext(domain.GBP, domain.NoRounding())

	_, err := Convert(decimal.RequireFromString("10"), domain.USD, ctx)
	if !errors.Is(err, domain.ErrRateUnavailable) {
		t.Fatalf("Expected ErrRateUnavailable, got %v", err)
	}
}

func TestConvert_StaleTable(t *testing.T) {
	ctx := testContext(domain.EUR, domain.NoRounding())
	ctx.Now = ctx.Table.FetchedAt.Add(2 * time.Hour)

	_, err := Convert(decimal.RequireFromString("10"), domain.USD, ctx)
	if !errors.Is(err, domain.ErrRateStale) {
		t.Fatalf("Expected ErrRateStale, got %v", err)
	}

	// the base currency never goes stale
	ctx.Target = domain.USD
	if _, err := Convert(decimal.RequireFromString("10"), domain.USD, ctx); err != nil {
		t.Errorf("base currency conversion failed on stale table: %v", err)
	}
}

func TestConvert_WrongOriginCurrency(t *testing.T) {
	ctx := testContext(domain.EUR, domain.NoRounding())

	if _, err := Convert(decimal.RequireFromString("10"), domain.GBP, ctx); err == nil {
		t.Fatal("expected error for non-base original currency")
	}
}

func TestConvert_NoDecimalDrift(t *testing.T) {
	// decimal arithmetic, not binary floats: 0.1 * 3 is exactly 0.3
	ctx := testContext(domain.JPY, domain.NoRounding())

	res, err := Convert(decimal.RequireFromString("0.1"), domain.USD, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converted.Equal(decimal.RequireFromString("15")) {
		t.Errorf("Expected 15, got %v", res.Converted)
	}
}
