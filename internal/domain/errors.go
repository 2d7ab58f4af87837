package domain

import "errors"

// ExtractionError reports that an element's displayed text could not be
// parsed into a price. The element is left untouched; the engine never
// guesses and silently corrupts a price.
type ExtractionError struct {
	Text   string // the raw text that failed to parse
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extract price from " + quote(e.Text) + ": " + e.Reason
}

// NewExtractionError creates an extraction failure for the given text
func NewExtractionError(text, reason string) *ExtractionError {
	return &ExtractionError{Text: text, Reason: reason}
}

// IsExtractionError checks whether err is (or wraps) an extraction failure
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

var (
	// ErrRateUnavailable is returned when the target currency has no entry
	// in the active rate table. The whole pass aborts, nothing is mutated.
	ErrRateUnavailable = errors.New("rate unavailable for target currency")

	// ErrRateStale is returned when the rate table has outlived its TTL
	ErrRateStale = errors.New("rate table is stale")

	// ErrFormattingOverflow is returned when an amount exceeds the
	// representable magnitude. The output is clamped, not malformed.
	ErrFormattingOverflow = errors.New("amount exceeds representable magnitude")

	// ErrNoDocument is returned when a pass is triggered before any
	// document has been attached to the engine
	ErrNoDocument = errors.New("no document attached")

	// ErrConfigNotFound is returned when the configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)

// RateUnusable reports whether err means the pass could not get a usable
// rate, either because the entry is missing or the table expired.
func RateUnusable(err error) bool {
	return errors.Is(err, ErrRateUnavailable) || errors.Is(err, ErrRateStale)
}

func quote(s string) string {
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return "\"" + s + "\""
}
