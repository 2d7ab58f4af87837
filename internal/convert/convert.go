// Package convert orchestrates a single price conversion: rate lookup,
// rounding policy, formatting. It is pure given its ConversionContext.
package convert

import (
	"errors"
	"fmt"

	"pricefx/internal/domain"
	"pricefx/internal/pricing"

	"github.com/shopspring/decimal"
)

// Result is the outcome of converting one price instance
type Result struct {
	Target     domain.Code
	Original   decimal.Decimal
	Converted  decimal.Decimal
	Rendered   string
	Overflowed bool // amount was clamped to the representable maximum
}

// Instance materializes the element-bound record for this result
func (r *Result) Instance(origin domain.Code) domain.PriceInstance {
	return domain.PriceInstance{
		Original:         r.Original,
		OriginalCurrency: origin,
		State:            domain.StateConverted,
		Displayed:        r.Target,
		Converted:        r.Converted,
		Rendered:         r.Rendered,
	}
}

// Convert turns an original amount in the store's base currency into a
// rendered price in the context's target currency.
//
// A missing or stale rate yields domain.ErrRateUnavailable /
// domain.ErrRateStale and the caller aborts the whole pass: partially
// converted pages are worse than unconverted ones.
func Convert(original decimal.Decimal, from domain.Code, ctx *domain.ConversionContext) (*Result, error) {
	if ctx.Table == nil {
		return nil, domain.ErrRateUnavailable
	}
	if from != ctx.Table.Base {
		return nil, fmt.Errorf("original currency %s is not the store base %s", from, ctx.Table.Base)
	}

	rate, err := ctx.Table.Rate(ctx.Target, ctx.Now)
	if err != nil {
		return nil, err
	}

	meta := ctx.Catalog.Meta(ctx.Target)
	raw := original.Mul(rate)
	rounded := pricing.Apply(raw, ctx.Rule, meta.MinorUnitDigits)

	rendered, fmtErr := pricing.Format(rounded, meta)
	overflowed := errors.Is(fmtErr, domain.ErrFormattingOverflow)

	return &Result{
		Target:     ctx.Target,
		Original:   original,
		Converted:  rounded,
		Rendered:   rendered,
		Overflowed: overflowed,
	}, nil
}
