// Package extract parses loosely-structured price text into a canonical
// decimal amount. It never guesses: ambiguous or non-numeric input is an
// extraction failure and the caller leaves the element untouched.
package extract

import (
	"strings"
	"unicode"

	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

// Extractor turns displayed price text into (amount, currency) pairs.
// Prices are authored in the store's base currency, so the original
// currency of parsed text is always the base.
type Extractor struct {
	base  domain.Code
	strip *strings.Replacer
}

// New builds an extractor that strips every symbol and code known to the
// catalog before numeric parsing.
func New(base domain.Code, catalog domain.Catalog) *Extractor {
	pairs := make([]string, 0, 4*len(catalog))
	for code, meta := range catalog {
		if meta.Symbol != "" {
			pairs = append(pairs, meta.Symbol, "")
		}
		pairs = append(pairs, string(code), "")
	}
	return &Extractor{base: base, strip: strings.NewReplacer(pairs...)}
}

// FromAttribute parses the persisted original-amount guard attribute.
// The attribute is the canonical source of truth and is always a plain
// decimal string, so no locale heuristics apply.
func (e *Extractor) FromAttribute(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, domain.NewExtractionError(value, "invalid amount attribute")
	}
	return amount, nil
}

// FromText parses an element's visible text. Known currency symbols and
// whitespace are stripped, then the separator heuristic decides decimal vs
// thousands: a separator followed by exactly two digits at the end of the
// string is the decimal separator, anything else is a thousands separator.
func (e *Extractor) FromText(text string) (decimal.Decimal, domain.Code, error) {
	s := e.strip.Replace(text)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return decimal.Decimal{}, "", domain.NewExtractionError(text, "no digits")
	}

	normalized, err := normalize(s, text)
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	if negative {
		normalized = "-" + normalized
	}

	amount, convErr := decimal.NewFromString(normalized)
	if convErr != nil {
		return decimal.Decimal{}, "", domain.NewExtractionError(text, "not a number")
	}
	return amount, e.base, nil
}

// normalize reduces a stripped numeric string to plain "digits[.digits]"
// form, or fails when the separator layout is ambiguous.
func normalize(s, original string) (string, error) {
	var sepIdx []int
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.' || c == ',' || c == '\'':
			sepIdx = append(sepIdx, i)
		default:
			return "", domain.NewExtractionError(original, "non-numeric residue")
		}
	}
	if len(sepIdx) == 0 {
		return s, nil
	}

	last := sepIdx[len(sepIdx)-1]
	decimalSep := byte(0)
	if len(s)-last-1 == 2 && s[last] != '\'' {
		decimalSep = s[last]
	}

	intEnd := len(s)
	if decimalSep != 0 {
		intEnd = last
		// the decimal separator must be inferred exactly once
		if strings.IndexByte(s[:last], decimalSep) >= 0 {
			return "", domain.NewExtractionError(original, "more than one decimal separator")
		}
	}

	if err := checkGrouping(s[:intEnd], original); err != nil {
		return "", err
	}

	intPart := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s[:intEnd])
	if intPart == "" {
		return "", domain.NewExtractionError(original, "no digits")
	}

	if decimalSep == 0 {
		return intPart, nil
	}
	return intPart + "." + s[last+1:], nil
}

// checkGrouping validates that every thousands separator in the integer
// part delimits a group of exactly three digits and that only one
// separator character is in use.
func checkGrouping(intPart, original string) error {
	if !strings.ContainsAny(intPart, ".,'") {
		return nil // no grouping in use, any digit run is fine
	}
	groupSep := byte(0)
	start := 0
	first := true
	for i := 0; i <= len(intPart); i++ {
		if i < len(intPart) && intPart[i] >= '0' && intPart[i] <= '9' {
			continue
		}
		size := i - start
		if first {
			if size < 1 || size > 3 {
				return domain.NewExtractionError(original, "bad digit grouping")
			}
			first = false
		} else if size != 3 {
			return domain.NewExtractionError(original, "bad digit grouping")
		}
		if i < len(intPart) {
			if groupSep == 0 {
				groupSep = intPart[i]
			} else if intPart[i] != groupSep {
				return domain.NewExtractionError(original, "mixed thousands separators")
			}
			start = i + 1
		}
	}
	return nil
}
