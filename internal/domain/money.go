package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Currency & Money
// ──────────────────────────────────────────────────────────────────────────────

// Currency enumerates the two balances every profile carries.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyBTC Currency = "btc"
)

// IsValid returns true for a recognised currency code.
func (c Currency) IsValid() bool {
	return c == CurrencyUSD || c == CurrencyBTC
}

// Scale returns the number of decimal places persisted for the currency:
// 2 for USD cents, 8 for BTC satoshis.
func (c Currency) Scale() int32 {
	if c == CurrencyBTC {
		return 8
	}
	return 2
}

// Money is an amount denominated in exactly one of the two ledger
// currencies. Intermediate math keeps full decimal precision; rounding to
// the currency scale happens only at the persistence boundary via Round.
type Money struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewMoney builds a Money value in the given currency.
func NewMoney(c Currency, amount decimal.Decimal) Money {
	return Money{Currency: c, Amount: amount}
}

// Round returns the amount rounded half-up to the currency's ledger scale.
func (m Money) Round() Money {
	return Money{Currency: m.Currency, Amount: m.Amount.Round(m.Currency.Scale())}
}

// IsPositive returns true when the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// Neg returns the negated amount in the same currency.
func (m Money) Neg() Money {
	return Money{Currency: m.Currency, Amount: m.Amount.Neg()}
}

// String renders the amount at the currency's ledger scale, e.g. "83.33 USD".
func (m Money) String() string {
	return m.Amount.StringFixed(m.Currency.Scale()) + " " + strings.ToUpper(string(m.Currency))
}
