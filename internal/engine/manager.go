package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pricefx/internal/convert"
	"pricefx/internal/domain"
	"pricefx/internal/event"
	"pricefx/internal/extract"
	"pricefx/internal/page"
	"pricefx/internal/pricing"

	"github.com/shopspring/decimal"
)

// State is the engine lifecycle state
type State string

const (
	StateIdle     State = "idle"     // no pass has run yet
	StateScanning State = "scanning" // a pass is in progress
	StateSettled  State = "settled"  // last pass finished
)

// Settings is the merchant-facing engine configuration, fixed for the
// lifetime of a Manager.
type Settings struct {
	BaseCurrency domain.Code
	Selector     string
	Attributes   page.Attributes
	Rule         domain.RoundingRule
	Catalog      domain.Catalog
}

// PassReport summarizes one conversion pass. A failed rate lookup is
// recorded here exactly once per pass, never once per element.
type PassReport struct {
	Trigger    event.Kind
	Target     domain.Code
	Converted  int
	Skipped    int // extraction failures, elements left untouched
	Overflows  int
	SkipReason string // set when the pass did not run at all
	Err        error
}

// RateSource supplies the immutable rate-table snapshot a pass binds into
// its ConversionContext.
type RateSource interface {
	Snapshot() *domain.RateTable
}

// Manager decides when to scan and drives scanner -> converter -> updater
// over the attached document. Run processes triggers in a single
// goroutine; triggers arriving while a pass is in flight are coalesced
// into exactly one follow-up pass (trailing-edge debounce), so a burst of
// N triggers costs at most one redundant pass.
type Manager struct {
	inbox     chan event.Trigger
	scanner   *page.Scanner
	updater   *page.Updater
	extractor *extract.Extractor
	rates     RateSource
	settings  Settings

	onPass func(PassReport)

	mu     sync.RWMutex // external reads only; passes run on one goroutine
	doc    *page.Document
	target domain.Code
	state  State
}

// NewManager creates an engine instance for one document/session.
// onPass may be nil; when set it receives every pass report.
func NewManager(settings Settings, rates RateSource, onPass func(PassReport)) *Manager {
	if settings.Catalog == nil {
		settings.Catalog = domain.DefaultCatalog()
	}
	return &Manager{
		inbox:     make(chan event.Trigger, 64),
		scanner:   page.NewScanner(settings.Selector, settings.Attributes),
		updater:   page.NewUpdater(),
		extractor: extract.New(settings.BaseCurrency, settings.Catalog),
		rates:     rates,
		settings:  settings,
		onPass:    onPass,
		state:     StateIdle,
	}
}

// Inbox returns the trigger channel. The host's observation mechanism
// (load hooks, mutation observers, switcher widget) sends triggers here.
func (m *Manager) Inbox() chan<- event.Trigger {
	return m.inbox
}

// Notify sends a trigger without exposing the channel
func (m *Manager) Notify(trig event.Trigger) {
	m.inbox <- trig
}

// SetDocument attaches the document the engine converts
func (m *Manager) SetDocument(doc *page.Document) {
	m.mu.Lock()
	m.doc = doc
	m.mu.Unlock()
}

// SetTarget sets the active display currency
func (m *Manager) SetTarget(target domain.Code) {
	m.mu.Lock()
	m.target = target
	m.mu.Unlock()
}

// Target returns the active display currency (external read)
func (m *Manager) Target() domain.Code {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.target
}

// State returns the engine state (external read)
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Run starts the trigger loop. This MUST be run in a single goroutine;
// passes never execute concurrently.
func (m *Manager) Run(ctx context.Context) {
	slog.Info("Conversion engine started")

	defer func() {
		if r := recover(); r != nil {
			// never break the host page: log and settle
			slog.Error("ENGINE_PANIC_RECOVERED", slog.Any("panic", r))
			m.setState(StateSettled)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Conversion engine stopping...")
			return
		case ev := <-m.inbox:
			m.RunPass(m.coalesce(ev))
		}
	}
}

// coalesce drains every trigger already queued behind first and folds the
// burst into one effective trigger: the newest currency change wins, and
// mixed subtree roots widen to a whole-document scan.
func (m *Manager) coalesce(first event.Trigger) event.Trigger {
	effective := first
	rootSelector, rootKnown := subtreeRoot(first)

	for {
		select {
		case next := <-m.inbox:
			switch t := next.(type) {
			case *event.CurrencyChangedTrigger:
				releaseTrigger(effective)
				effective = t
			case *event.PageLoadTrigger:
				rootSelector, rootKnown = "", true
				if _, isCurrency := effective.(*event.CurrencyChangedTrigger); !isCurrency {
					releaseTrigger(effective)
					effective = t
				}
			case *event.SubtreeChangedTrigger:
				if sel, ok := subtreeRoot(effective); !rootKnown || !ok || sel != t.RootSelector {
					rootSelector = "" // differing roots: rescan everything
				}
				rootKnown = true
				released := t
				if _, isSubtree := effective.(*event.SubtreeChangedTrigger); !isSubtree {
					// keep the currency/load trigger as the effective one
					event.ReleaseSubtreeChangedTrigger(released)
					continue
				}
				event.ReleaseSubtreeChangedTrigger(effective.(*event.SubtreeChangedTrigger))
				t.RootSelector = rootSelector
				effective = t
			}
		default:
			return effective
		}
	}
}

// releaseTrigger hands a displaced pooled trigger back; non-pooled kinds
// are a no-op
func releaseTrigger(trig event.Trigger) {
	switch t := trig.(type) {
	case *event.SubtreeChangedTrigger:
		event.ReleaseSubtreeChangedTrigger(t)
	case *event.CurrencyChangedTrigger:
		event.ReleaseCurrencyChangedTrigger(t)
	}
}

func subtreeRoot(trig event.Trigger) (string, bool) {
	if t, ok := trig.(*event.SubtreeChangedTrigger); ok {
		return t.RootSelector, true
	}
	return "", false
}

// RunPass executes one conversion pass synchronously. It is also the
// entry point for hosts that drive the engine without the trigger loop
// (the websocket bridge, tests).
func (m *Manager) RunPass(trig event.Trigger) PassReport {
	report := PassReport{Trigger: trig.GetKind()}

	rootSelector := ""
	switch t := trig.(type) {
	case *event.SubtreeChangedTrigger:
		rootSelector = t.RootSelector
		defer event.ReleaseSubtreeChangedTrigger(t)
	case *event.CurrencyChangedTrigger:
		m.SetTarget(t.To)
		defer event.ReleaseCurrencyChangedTrigger(t)
	}

	target := m.Target()
	report.Target = target

	// decision logic before entering scanning
	if target == "" {
		report.SkipReason = "no target currency selected"
		m.report(report)
		return report
	}
	m.mu.RLock()
	doc := m.doc
	m.mu.RUnlock()
	if doc == nil {
		report.Err = domain.ErrNoDocument
		m.report(report)
		return report
	}

	if target == m.settings.BaseCurrency {
		// switching back to base needs no rate table: re-render the
		// preserved originals on marked elements, leave virgin pages alone
		m.restorePass(doc, rootSelector, &report)
		m.report(report)
		return report
	}

	now := time.Now()
	cctx := &domain.ConversionContext{
		Target:  target,
		Table:   m.rates.Snapshot(),
		Rule:    m.settings.Rule,
		Catalog: m.settings.Catalog,
		Now:     now,
	}
	if !cctx.Usable() {
		// recorded once per pass; original prices stay displayed
		report.Err = rateError(cctx, now)
		m.report(report)
		return report
	}

	m.setState(StateScanning)
	defer m.setState(StateSettled)

	for el := range m.scanner.Scan(doc.Subtree(rootSelector), target) {
		original, from, err := m.originalOf(el)
		if err != nil {
			report.Skipped++
			slog.Debug("price extraction failed", slog.Any("error", err))
			continue
		}

		res, err := convert.Convert(original, from, cctx)
		if err != nil {
			report.Skipped++
			slog.Debug("conversion failed", slog.Any("error", err))
			continue
		}
		if res.Overflowed {
			report.Overflows++
			slog.Warn("converted amount clamped",
				slog.String("original", original.String()),
				slog.String("target", string(target)),
			)
		}

		m.updater.Apply(el, res.Instance(from))
		report.Converted++
	}

	m.report(report)
	return report
}

// restorePass re-renders the persisted original amount on every element
// currently showing a different currency. A page that was never converted
// has no markers, so this is the no-op the decision logic promises.
func (m *Manager) restorePass(doc *page.Document, rootSelector string, report *PassReport) {
	m.setState(StateScanning)
	defer m.setState(StateSettled)

	base := m.settings.BaseCurrency
	meta := m.settings.Catalog.Meta(base)

	for el := range m.scanner.Scan(doc.Subtree(rootSelector), base) {
		if _, marked := el.Currency(); !marked {
			continue
		}
		attr, ok := el.OriginalAmount()
		if !ok {
			report.Skipped++
			continue
		}
		original, err := m.extractor.FromAttribute(attr)
		if err != nil {
			report.Skipped++
			slog.Debug("bad original-amount attribute", slog.Any("error", err))
			continue
		}
		rendered, fmtErr := pricing.Format(original, meta)
		if fmtErr != nil {
			report.Overflows++
		}
		m.updater.Apply(el, domain.PriceInstance{
			Original:         original,
			OriginalCurrency: base,
			State:            domain.StateConverted,
			Displayed:        base,
			Converted:        original,
			Rendered:         rendered,
		})
		report.Converted++
	}

	if report.Converted == 0 && report.Skipped == 0 {
		report.SkipReason = "page already in store base currency"
	}
}

// originalOf resolves the canonical original amount for an element: the
// persisted guard attribute wins, the displayed text is parsed only on
// first contact.
func (m *Manager) originalOf(el *page.Element) (decimal.Decimal, domain.Code, error) {
	if v, ok := el.OriginalAmount(); ok {
		amount, err := m.extractor.FromAttribute(v)
		return amount, m.settings.BaseCurrency, err
	}
	if _, marked := el.Currency(); marked {
		// marker without the guard attribute: the text is converted
		// output and must never be re-read as an original amount
		return decimal.Decimal{}, "", domain.NewExtractionError(el.Text(), "converted element lost its original amount")
	}
	return m.extractor.FromText(el.Text())
}

func (m *Manager) report(r PassReport) {
	switch {
	case r.Err != nil:
		slog.Warn("conversion pass aborted",
			slog.String("trigger", string(r.Trigger)),
			slog.String("target", string(r.Target)),
			slog.Any("error", r.Err),
		)
	case r.SkipReason != "":
		slog.Debug("conversion pass skipped",
			slog.String("trigger", string(r.Trigger)),
			slog.String("reason", r.SkipReason),
		)
	default:
		slog.Info("conversion pass settled",
			slog.String("trigger", string(r.Trigger)),
			slog.String("target", string(r.Target)),
			slog.Int("converted", r.Converted),
			slog.Int("skipped", r.Skipped),
		)
	}
	if m.onPass != nil {
		m.onPass(r)
	}
}

func rateError(cctx *domain.ConversionContext, now time.Time) error {
	if cctx.Table == nil {
		return domain.ErrRateUnavailable
	}
	_, err := cctx.Table.Rate(cctx.Target, now)
	return err
}
