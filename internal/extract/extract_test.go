package extract

import (
	"testing"

	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

func newTestExtractor() *Extractor {
	return New(domain.USD, domain.DefaultCatalog())
}

func TestFromText_USGrouping(t *testing.T) {
	e := newTestExtractor()

	amount, currency, err := e.FromText("$1,234.56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("Expected 1234.56, got %v", amount)
	}
	if currency != domain.USD {
		t.Errorf("Expected USD, got %s", currency)
	}
}

func TestFromText_EuropeanGrouping(t *testing.T) {
	e := newTestExtractor()

	amount, _, err := e.FromText("1.234,56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("Expected 1234.56, got %v", amount)
	}
}

func TestFromText_Plain(t *testing.T) {
	e := newTestExtractor()

	cases := []struct{ in, want string }{
		{"19", "19"},
		{"1234.56", "1234.56"},
		{"  $ 12.00 ", "12"},
		{"¥1,235", "1235"},
		{"1'234.50", "1234.5"},
		{"10.00 USD", "10"},
	}
	for _, c := range cases {
		amount, _, err := e.FromText(c.in)
		if err != nil {
			t.Errorf("FromText(%q): unexpected error: %v", c.in, err)
			continue
		}
		if !amount.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("FromText(%q): expected %s, got %v", c.in, c.want, amount)
		}
	}
}

func TestFromText_Failures(t *testing.T) {
	e := newTestExtractor()

	cases := []string{
		"abc",
		"",
		"1.234.56",  // decimal separator inferred twice
		"12.3456",   // four digits after separator, bad grouping
		"0.5",       // single digit after separator is ambiguous
		"1,23,456",  // inconsistent groups
		"1,234'567", // mixed thousands separators
		"12a34",
	}
	for _, in := range cases {
		if _, _, err := e.FromText(in); err == nil {
			t.Errorf("FromText(%q): expected extraction failure", in)
		} else if !domain.IsExtractionError(err) {
			t.Errorf("FromText(%q): expected ExtractionError, got %v", in, err)
		}
	}
}

func TestFromAttribute(t *testing.T) {
	e := newTestExtractor()

	amount, err := e.FromAttribute("1234.56")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("Expected 1234.56, got %v", amount)
	}

	if _, err := e.FromAttribute("$12.00"); err == nil {
		t.Error("attribute values are plain decimals, symbol should fail")
	}
}
