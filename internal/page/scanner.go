package page

import (
	"iter"

	"pricefx/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelector matches the price markup emitted by most storefront
// themes. Merchant configuration can replace it.
const DefaultSelector = ".money, [data-price]"

// Scanner discovers candidate price elements in a subtree
type Scanner struct {
	selector string
	attrs    Attributes
}

// NewScanner builds a scanner for the given CSS selector
func NewScanner(selector string, attrs Attributes) *Scanner {
	if selector == "" {
		selector = DefaultSelector
	}
	return &Scanner{selector: selector, attrs: attrs}
}

// Scan enumerates matching elements under root in document order. The
// sequence is lazy and finite; after the tree changes a fresh Scan is
// required. Elements already marked converted for the requested target are
// skipped, while elements showing a different currency are included so
// they can be re-converted from their preserved original amount.
func (s *Scanner) Scan(root *goquery.Selection, target domain.Code) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		matches := root.Find(s.selector)
		for i := 0; i < matches.Length(); i++ {
			el := &Element{sel: matches.Eq(i), attrs: s.attrs}
			if cur, ok := el.Currency(); ok && cur == target {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

// Count returns how many elements match the selector under root,
// regardless of conversion state. Used for pass reporting.
func (s *Scanner) Count(root *goquery.Selection) int {
	return root.Find(s.selector).Length()
}
