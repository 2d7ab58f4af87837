package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundingKind selects a pricing rule variant
type RoundingKind string

const (
	RoundNone          RoundingKind = "none"          // keep the raw converted amount
	RoundNearest       RoundingKind = "nearest"       // round half-up to a whole unit
	RoundPsychological RoundingKind = "psychological" // force a configured minor-unit ending, e.g. .99
	RoundBucket        RoundingKind = "bucket"        // round to the nearest multiple of a step
)

// RoundingRule is the tagged pricing rule applied after rate conversion.
// Ending is only meaningful for RoundPsychological, Step for RoundBucket.
type RoundingRule struct {
	Kind   RoundingKind    `json:"kind" yaml:"kind"`
	Ending decimal.Decimal `json:"ending,omitempty" yaml:"ending,omitempty"`
	Step   decimal.Decimal `json:"step,omitempty" yaml:"step,omitempty"`
}

// Validate checks that the rule's parameters make sense for its kind
func (r RoundingRule) Validate() error {
	switch r.Kind {
	case RoundNone, RoundNearest:
		return nil
	case RoundPsychological:
		if r.Ending.IsNegative() || r.Ending.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("psychological ending must be in [0, 1): %s", r.Ending)
		}
		return nil
	case RoundBucket:
		if !r.Step.IsPositive() {
			return fmt.Errorf("bucket step must be positive: %s", r.Step)
		}
		return nil
	default:
		return fmt.Errorf("unknown rounding kind: %q", r.Kind)
	}
}

// NoRounding returns the identity rule
func NoRounding() RoundingRule { return RoundingRule{Kind: RoundNone} }

// Psychological returns a rule forcing the given minor-unit ending (e.g. 0.99)
func Psychological(ending decimal.Decimal) RoundingRule {
	return RoundingRule{Kind: RoundPsychological, Ending: ending}
}

// Bucket returns a rule rounding to the nearest multiple of step
func Bucket(step decimal.Decimal) RoundingRule {
	return RoundingRule{Kind: RoundBucket, Step: step}
}
