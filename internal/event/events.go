package event

import "pricefx/internal/domain"

// Kind identifies a trigger event type
type Kind string

const (
	KindPageLoad        Kind = "page_load"
	KindSubtreeChanged  Kind = "subtree_changed"
	KindCurrencyChanged Kind = "currency_changed"
)

// Trigger is an external signal that a conversion pass may be needed. The
// engine consumes triggers; it never produces them — the host page's
// observation mechanism is the collaborator that sends them.
type Trigger interface {
	GetKind() Kind
}

// PageLoadTrigger fires once when the page is first rendered
type PageLoadTrigger struct{}

func (t *PageLoadTrigger) GetKind() Kind { return KindPageLoad }

// SubtreeChangedTrigger fires when a DOM mutation notification arrives.
// RootSelector narrows the scan to the changed subtree; empty means the
// whole document.
type SubtreeChangedTrigger struct {
	RootSelector string
}

func (t *SubtreeChangedTrigger) GetKind() Kind { return KindSubtreeChanged }

// CurrencyChangedTrigger fires when the visitor switches display currency
type CurrencyChangedTrigger struct {
	From domain.Code
	To   domain.Code
}

func (t *CurrencyChangedTrigger) GetKind() Kind { return KindCurrencyChanged }
