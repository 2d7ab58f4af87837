package page

import (
	"pricefx/internal/domain"
)

// Updater applies a computed conversion result to one element: the
// formatted text plus both guard attributes, all within the same pass so a
// later scan sees the element as converted(target) or not at all.
type Updater struct{}

// NewUpdater creates an Updater
func NewUpdater() *Updater {
	return &Updater{}
}

// Apply serializes a price instance onto its element: the rendered text
// and both guard attributes. The original amount is persisted only if the
// element does not carry it yet, preserving the true base amount across
// any number of conversions.
func (u *Updater) Apply(el *Element, inst domain.PriceInstance) {
	el.SetOriginalAmount(inst.Original.String())
	el.SetText(inst.Rendered)
	el.SetCurrency(inst.Displayed)
}
