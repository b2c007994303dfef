package screening

import (
	"errors"
	"fmt"
)

// Decision is the categorical outcome of a screening.
type Decision string

const (
	Shortlist Decision = "Shortlist"
	Maybe     Decision = "Maybe"
	Reject    Decision = "Reject"
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid decision thresholds")

// Thresholds are the minimum scores for the Shortlist and Maybe decisions.
// They are business constants that should be calibrated against real hiring data.
type Thresholds struct {
	Shortlist int `mapstructure:"shortlist" json:"shortlist"`
	Maybe     int `mapstructure:"maybe" json:"maybe"`
}

// DefaultThresholds returns the stock 75/50 split.
func DefaultThresholds() Thresholds {
	return Thresholds{Shortlist: 75, Maybe: 50}
}

// Validate requires 0 <= Maybe <= Shortlist <= 100.
func (t Thresholds) Validate() error {
	if t.Maybe < 0 || t.Shortlist > 100 || t.Maybe > t.Shortlist {
		return fmt.Errorf("%w: need 0 <= maybe (%d) <= shortlist (%d) <= 100", ErrInvalidThresholds, t.Maybe, t.Shortlist)
	}
	return nil
}

// Decide maps a score onto a decision.
func Decide(score int, t Thresholds) Decision {
	switch {
	case score >= t.Shortlist:
		return Shortlist
	case score >= t.Maybe:
		return Maybe
	default:
		return Reject
	}
}
