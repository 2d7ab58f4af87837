package domain

// Code represents an ISO 4217 currency code (e.g. "USD", "EUR")
type Code string

// Common currency codes
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	KRW Code = "KRW"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CHF Code = "CHF"
)

// SymbolPosition controls where the currency symbol is placed relative to the amount
type SymbolPosition string

const (
	SymbolPrefix SymbolPosition = "prefix" // "$1,234.56"
	SymbolSuffix SymbolPosition = "suffix" // "1.234,56 €"
)

// CurrencyMeta holds the display rules for a single currency.
// Template may be empty, in which case the symbol position decides layout.
// A non-empty template uses {{amount}} and {{symbol}} placeholders.
type CurrencyMeta struct {
	Code            Code           `json:"code" yaml:"code"`
	Symbol          string         `json:"symbol" yaml:"symbol"`
	SymbolPosition  SymbolPosition `json:"symbol_position" yaml:"symbol_position"`
	DecimalSep      string         `json:"decimal_sep" yaml:"decimal_sep"`
	ThousandsSep    string         `json:"thousands_sep" yaml:"thousands_sep"`
	MinorUnitDigits int            `json:"minor_unit_digits" yaml:"minor_unit_digits"`
	Template        string         `json:"template,omitempty" yaml:"template,omitempty"`
}

// Catalog maps currency codes to their display metadata
type Catalog map[Code]CurrencyMeta

// Meta returns the metadata for a code, falling back to a plain
// prefix-symbol layout with two minor digits for unknown codes.
func (c Catalog) Meta(code Code) CurrencyMeta {
	if meta, ok := c[code]; ok {
		return meta
	}
	return CurrencyMeta{
		Code:            code,
		Symbol:          string(code) + " ",
		SymbolPosition:  SymbolPrefix,
		DecimalSep:      ".",
		ThousandsSep:    ",",
		MinorUnitDigits: 2,
	}
}

// Symbols returns every known currency symbol, used by the extractor
// to strip symbols before numeric parsing.
func (c Catalog) Symbols() []string {
	out := make([]string, 0, len(c))
	for _, meta := range c {
		if meta.Symbol != "" {
			out = append(out, meta.Symbol)
		}
	}
	return out
}

// DefaultCatalog returns the built-in display metadata for common currencies.
// Merchant configuration can override individual entries.
func DefaultCatalog() Catalog {
	return Catalog{
		USD: {Code: USD, Symbol: "$", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: ",", MinorUnitDigits: 2},
		CAD: {Code: CAD, Symbol: "$", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: ",", MinorUnitDigits: 2},
		AUD: {Code: AUD, Symbol: "$", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: ",", MinorUnitDigits: 2},
		GBP: {Code: GBP, Symbol: "£", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: ",", MinorUnitDigits: 2},
		EUR: {Code: EUR, Symbol: "€", SymbolPosition: SymbolSuffix, DecimalSep: ",", ThousandsSep: ".", MinorUnitDigits: 2},
		CHF: {Code: CHF, Symbol: "CHF", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: "'", MinorUnitDigits: 2},
		JPY: {Code: JPY, Symbol: "¥", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: ",", MinorUnitDigits: 0},
		KRW: {Code: KRW, Symbol: "₩", SymbolPosition: SymbolPrefix, DecimalSep: ".", ThousandsSep: ",", MinorUnitDigits: 0},
	}
}
