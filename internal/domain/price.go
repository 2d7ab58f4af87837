package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionState is the lifecycle state of a price-bearing element
type ConversionState string

const (
	StateUnconverted ConversionState = "unconverted"
	StateConverted   ConversionState = "converted"
)

// PriceInstance is the conversion unit bound to one element. The canonical
// original amount lives on the element itself (persisted attribute); this
// record is its in-memory form for a single pass.
type PriceInstance struct {
	Original         decimal.Decimal // amount in the store's base currency
	OriginalCurrency Code
	State            ConversionState
	Displayed        Code            // currency currently rendered, set when converted
	Converted        decimal.Decimal // present only when State == StateConverted
	Rendered         string          // last written display string
}

// ConvertedTo reports whether the instance already shows the target currency
func (p *PriceInstance) ConvertedTo(target Code) bool {
	return p.State == StateConverted && p.Displayed == target
}

// ConversionContext carries everything one conversion pass needs. It is
// built once per triggered scan and never mutated mid-pass, so a rate
// refresh during a scan cannot tear a pass between two tables.
type ConversionContext struct {
	Target  Code
	Table   *RateTable
	Rule    RoundingRule
	Catalog Catalog
	Now     time.Time
}

// Usable reports whether a pass can run at all with this context: the table
// must exist and serve the target currency within its validity window.
func (c *ConversionContext) Usable() bool {
	return c.Table != nil && c.Table.Has(c.Target, c.Now)
}
