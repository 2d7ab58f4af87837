package pricing

import (
	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

// Apply runs one pricing rule over a raw converted amount. It is a pure
// function: same amount, rule and minor-digit count always yield the same
// result, and the result never carries more precision than minorDigits.
//
// Psychological endings keep the price just under the next whole unit:
// the integer part becomes ceil(raw)-1 before the ending is appended, so
// 15.23 -> 15.99, 15.995 -> 15.99 and 100.00 -> 99.99.
func Apply(raw decimal.Decimal, rule domain.RoundingRule, minorDigits int) decimal.Decimal {
	digits := int32(minorDigits)

	switch rule.Kind {
	case domain.RoundNearest:
		return raw.Round(0)

	case domain.RoundPsychological:
		whole := raw.Ceil().Sub(decimal.NewFromInt(1))
		if whole.IsNegative() {
			whole = decimal.Zero
		}
		return whole.Add(rule.Ending.Round(digits))

	case domain.RoundBucket:
		// round(raw/step) * step, then quantized to the minor unit
		return raw.DivRound(rule.Step, 16).Round(0).Mul(rule.Step).Round(digits)

	default: // domain.RoundNone
		return raw.Round(digits)
	}
}
