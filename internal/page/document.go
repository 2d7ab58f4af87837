// Package page wraps a parsed HTML tree and owns the read/write contract
// with price-bearing elements: the persisted original-amount guard
// attribute and the converted-currency marker. Mutation is restricted to a
// matched element's own text and attributes, never ancestors or siblings.
package page

import (
	"io"
	"strings"

	"pricefx/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// Attributes names the persisted element attributes. The original-amount
// attribute is authoritative and write-once; the currency attribute marks
// what the element currently displays.
type Attributes struct {
	OriginalAmount string `yaml:"original_amount"`
	Currency       string `yaml:"currency"`
}

// DefaultAttributes returns the attribute names used unless the merchant
// configuration overrides them.
func DefaultAttributes() Attributes {
	return Attributes{
		OriginalAmount: "data-original-amount",
		Currency:       "data-currency",
	}
}

// Document is a parsed HTML page or fragment
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML document or fragment
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseString parses HTML from a string
func ParseString(html string) (*Document, error) {
	return Parse(strings.NewReader(html))
}

// Selection returns the whole document as a scan root
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Subtree returns the scan root for a changed subtree, or the whole
// document when the selector is empty or matches nothing.
func (d *Document) Subtree(selector string) *goquery.Selection {
	if selector == "" {
		return d.doc.Selection
	}
	sel := d.doc.Find(selector)
	if sel.Length() == 0 {
		return d.doc.Selection
	}
	return sel
}

// HTML serializes the document back to markup
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}

// Element is one price-bearing node bound to its attribute contract
type Element struct {
	sel   *goquery.Selection
	attrs Attributes
}

// Text returns the element's visible text
func (e *Element) Text() string {
	return e.sel.Text()
}

// SetText replaces the element's text content
func (e *Element) SetText(text string) {
	e.sel.SetText(text)
}

// OriginalAmount returns the persisted guard attribute, if set
func (e *Element) OriginalAmount() (string, bool) {
	v, ok := e.sel.Attr(e.attrs.OriginalAmount)
	return v, ok && v != ""
}

// SetOriginalAmount persists the canonical original amount. It refuses to
// overwrite an existing value so repeated conversion can never lose the
// true base amount.
func (e *Element) SetOriginalAmount(value string) {
	if _, ok := e.OriginalAmount(); ok {
		return
	}
	e.sel.SetAttr(e.attrs.OriginalAmount, value)
}

// Currency returns the converted-currency marker, if set
func (e *Element) Currency() (domain.Code, bool) {
	v, ok := e.sel.Attr(e.attrs.Currency)
	if !ok || v == "" {
		return "", false
	}
	return domain.Code(v), true
}

// SetCurrency writes the converted-currency marker
func (e *Element) SetCurrency(code domain.Code) {
	e.sel.SetAttr(e.attrs.Currency, string(code))
}

// State derives the element's tagged conversion state from its attributes.
// The DOM attribute is only the serialized form of this state.
func (e *Element) State() domain.ConversionState {
	if _, ok := e.Currency(); ok {
		return domain.StateConverted
	}
	return domain.StateUnconverted
}
