package event

import (
	"sync"
)

// Subtree-change triggers arrive in bursts when a theme re-renders a cart
// drawer or product grid. Pool them to reduce GC pressure.
//
// Usage:
//
//	ev := AcquireSubtreeChangedTrigger()
//	ev.RootSelector = "#cart"
//	// ... send to engine ...
//	ReleaseSubtreeChangedTrigger(ev)  // return to pool after processing
var subtreeChangedPool = sync.Pool{
	New: func() interface{} {
		return &SubtreeChangedTrigger{}
	},
}

// AcquireSubtreeChangedTrigger gets a SubtreeChangedTrigger from the pool.
// The returned trigger has zero values and must be initialized.
func AcquireSubtreeChangedTrigger() *SubtreeChangedTrigger {
	return subtreeChangedPool.Get().(*SubtreeChangedTrigger)
}

// ReleaseSubtreeChangedTrigger returns a SubtreeChangedTrigger to the pool.
// The trigger is reset to zero values before being pooled.
func ReleaseSubtreeChangedTrigger(ev *SubtreeChangedTrigger) {
	if ev == nil {
		return
	}
	ev.RootSelector = ""

	subtreeChangedPool.Put(ev)
}

// CurrencyChangedTrigger pool
var currencyChangedPool = sync.Pool{
	New: func() interface{} {
		return &CurrencyChangedTrigger{}
	},
}

// AcquireCurrencyChangedTrigger gets a CurrencyChangedTrigger from the pool.
func AcquireCurrencyChangedTrigger() *CurrencyChangedTrigger {
	return currencyChangedPool.Get().(*CurrencyChangedTrigger)
}

// ReleaseCurrencyChangedTrigger returns a CurrencyChangedTrigger to the pool.
func ReleaseCurrencyChangedTrigger(ev *CurrencyChangedTrigger) {
	if ev == nil {
		return
	}
	ev.From = ""
	ev.To = ""

	currencyChangedPool.Put(ev)
}

// Warmup pre-allocates trigger objects to reduce GC pressure at startup.
// It acquires and releases a batch of triggers.
func Warmup() {
	const batchSize = 256

	subtreeEvs := make([]*SubtreeChangedTrigger, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		subtreeEvs = append(subtreeEvs, AcquireSubtreeChangedTrigger())
	}
	for _, ev := range subtreeEvs {
		ReleaseSubtreeChangedTrigger(ev)
	}

	currencyEvs := make([]*CurrencyChangedTrigger, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		currencyEvs = append(currencyEvs, AcquireCurrencyChangedTrigger())
	}
	for _, ev := range currencyEvs {
		ReleaseCurrencyChangedTrigger(ev)
	}
}
