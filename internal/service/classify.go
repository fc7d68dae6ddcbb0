package service

import (
	"time"

	"github.com/upgraderly/redemption-code-service/internal/model"
)

// RedemptionOutcome is the eligibility classification of a stored code at a
// given instant. There is no persisted state machine; every redemption
// attempt re-derives the outcome from the code's fields.
type RedemptionOutcome int

const (
	OutcomeEligible RedemptionOutcome = iota
	OutcomeInactive
	OutcomeExpired
	OutcomeExhausted
)

// String returns the outcome name for logging.
func (o RedemptionOutcome) String() string {
	switch o {
	case OutcomeEligible:
		return "eligible"
	case OutcomeInactive:
		return "inactive"
	case OutcomeExpired:
		return "expired"
	case OutcomeExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Err maps the outcome to its sentinel error; nil for OutcomeEligible.
func (o RedemptionOutcome) Err() error {
	switch o {
	case OutcomeInactive:
		return ErrCodeInactive
	case OutcomeExpired:
		return ErrCodeExpired
	case OutcomeExhausted:
		return ErrCodeExhausted
	}
	return nil
}

// ExpiryCutoff returns the first instant at which a code expiring in
// (month, year) is no longer redeemable. A code is valid through the end of
// its expiry month, so the cutoff is the first moment of the following
// month, UTC. time.Date normalizes month 13 into January of the next year.
func ExpiryCutoff(month, year int) time.Time {
	return time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
}

// Classify evaluates a code's redemption eligibility at the given instant.
// Pure function over the code's fields; the checks run in a fixed order so
// an inactive expired code always reports inactive.
func Classify(code *model.Code, now time.Time) RedemptionOutcome {
	if !code.IsActive {
		return OutcomeInactive
	}
	if !now.Before(ExpiryCutoff(code.ExpiryMonth, code.ExpiryYear)) {
		return OutcomeExpired
	}
	if code.CurrentUses >= code.MaxUses {
		return OutcomeExhausted
	}
	return OutcomeEligible
}
