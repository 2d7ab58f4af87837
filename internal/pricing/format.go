package pricing

import (
	"strings"

	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

// maxIntegerDigits bounds the integer part of a rendered amount. Anything
// larger is clamped to the maximum representable magnitude and flagged with
// domain.ErrFormattingOverflow instead of emitting malformed text.
const maxIntegerDigits = 15

// Format renders an amount using the currency's display metadata: exactly
// MinorUnitDigits fractional digits, thousands grouping, and the symbol
// placed per SymbolPosition. A non-empty meta.Template takes precedence,
// with {{amount}} and {{symbol}} substituted.
//
// The returned string is always well-formed; the error is only ever
// domain.ErrFormattingOverflow, reported alongside the clamped rendering.
func Format(amount decimal.Decimal, meta domain.CurrencyMeta) (string, error) {
	var overflow error

	if clamped, ok := clamp(amount, meta.MinorUnitDigits); ok {
		amount = clamped
		overflow = domain.ErrFormattingOverflow
	}

	fixed := amount.Abs().StringFixed(int32(meta.MinorUnitDigits))

	intPart := fixed
	fracPart := ""
	if i := strings.IndexByte(fixed, '.'); i >= 0 {
		intPart, fracPart = fixed[:i], fixed[i+1:]
	}

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart, meta.ThousandsSep))
	if fracPart != "" {
		b.WriteString(meta.DecimalSep)
		b.WriteString(fracPart)
	}
	rendered := b.String()

	if meta.Template != "" {
		out := strings.ReplaceAll(meta.Template, "{{amount}}", rendered)
		out = strings.ReplaceAll(out, "{{symbol}}", meta.Symbol)
		return out, overflow
	}

	if meta.SymbolPosition == domain.SymbolSuffix {
		return rendered + " " + meta.Symbol, overflow
	}
	return meta.Symbol + rendered, overflow
}

// clamp returns the maximum representable amount (sign preserved) when the
// integer part of amount exceeds maxIntegerDigits.
func clamp(amount decimal.Decimal, minorDigits int) (decimal.Decimal, bool) {
	limit := decimal.New(1, maxIntegerDigits) // 10^15
	if amount.Abs().LessThan(limit) {
		return decimal.Decimal{}, false
	}
	max := limit.Sub(decimal.New(1, -int32(minorDigits)))
	if amount.IsNegative() {
		max = max.Neg()
	}
	return max, true
}

// groupThousands inserts sep between every group of three integer digits
func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
