// Package domain defines the core business entities and types for the
// CryptoBets sportsbook wager lifecycle and ledger engine.
package domain

import (
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// American odds
// ──────────────────────────────────────────────────────────────────────────────

// Odds is a quoted American odds value, e.g. +150 or -110. Zero is not a
// valid quote.
type Odds int

// IsValid returns true when the quote is non-zero.
func (o Odds) IsValid() bool {
	return o != 0
}

// IsFavorite returns true for negative quotes (bookmaker favourite).
func (o Odds) IsFavorite() bool {
	return o < 0
}

var (
	oddsHundred = decimal.NewFromInt(100)
	oddsOne     = decimal.NewFromInt(1)
)

// DecimalMultiplier converts the American quote into a decimal payout
// multiplier applied to the stake.
//
//	o > 0:  o/100 + 1   (+100 → 2.0, +150 → 2.5)
//	o < 0:  100/|o| + 1 (-150 → 1.6667, -110 → 1.9091)
//
// Returns ErrInvalidOdds for a zero quote. This is the only conversion point
// in the system; everything downstream works in decimal multipliers.
func (o Odds) DecimalMultiplier() (decimal.Decimal, error) {
	if !o.IsValid() {
		return decimal.Zero, ErrInvalidOdds
	}
	q := decimal.NewFromInt(int64(o))
	if o > 0 {
		return q.Div(oddsHundred).Add(oddsOne), nil
	}
	return oddsHundred.Div(q.Abs()).Add(oddsOne), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Payout math
// ──────────────────────────────────────────────────────────────────────────────

// SinglePayout returns the total potential payout (stake included) for a
// single bet at the given quote.
func SinglePayout(odds Odds, stake decimal.Decimal) (decimal.Decimal, error) {
	mult, err := odds.DecimalMultiplier()
	if err != nil {
		return decimal.Zero, err
	}
	return stake.Mul(mult), nil
}

// ParlayCombinedMultiplier returns the product of the decimal multipliers of
// all legs. A parlay needs at least two legs; any zero quote in the set
// invalidates the whole combination.
func ParlayCombinedMultiplier(legs []Odds) (decimal.Decimal, error) {
	if len(legs) < 2 {
		return decimal.Zero, ErrInsufficientLegs
	}
	combined := oddsOne
	for _, leg := range legs {
		mult, err := leg.DecimalMultiplier()
		if err != nil {
			return decimal.Zero, err
		}
		combined = combined.Mul(mult)
	}
	return combined, nil
}

// ParlayPayout returns the total potential payout for a parlay: the single
// stake multiplied by the combined multiplier of all legs. An incomplete
// parlay (fewer than two legs) pays nothing rather than erroring, so a
// payout preview on a half-built slip simply shows zero; a zero quote in a
// complete set is still an error.
func ParlayPayout(legs []Odds, stake decimal.Decimal) (decimal.Decimal, error) {
	if len(legs) < 2 {
		return decimal.Zero, nil
	}
	combined, err := ParlayCombinedMultiplier(legs)
	if err != nil {
		return decimal.Zero, err
	}
	return stake.Mul(combined), nil
}
