package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// BetType distinguishes a single-leg wager from a multi-leg parlay.
type BetType string

const (
	BetTypeSingle BetType = "single"
	BetTypeParlay BetType = "parlay"
)

// IsValid returns true for a recognised bet type.
func (t BetType) IsValid() bool {
	return t == BetTypeSingle || t == BetTypeParlay
}

// BetStatus represents the lifecycle state of a wager.
type BetStatus string

const (
	BetStatusPending  BetStatus = "pending"  // awaiting admin review, stake held
	BetStatusApproved BetStatus = "approved" // accepted, in play
	BetStatusRejected BetStatus = "rejected" // declined at review, stake refunded
	BetStatusWon      BetStatus = "won"      // settled in bettor's favour
	BetStatusLost     BetStatus = "lost"     // settled against bettor
	BetStatusVoid     BetStatus = "void"     // cancelled post-approval, stake refunded
)

// betTransitions is the complete legal transition table. Anything not listed
// here is rejected with ErrInvalidTransition.
var betTransitions = map[BetStatus][]BetStatus{
	BetStatusPending:  {BetStatusApproved, BetStatusRejected},
	BetStatusApproved: {BetStatusWon, BetStatusLost, BetStatusVoid},
}

// CanTransition reports whether moving from one status to another is legal.
func (s BetStatus) CanTransition(to BetStatus) bool {
	for _, next := range betTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions.
func (s BetStatus) IsTerminal() bool {
	return len(betTransitions[s]) == 0
}

// IsSettled returns true for the three post-approval terminal outcomes.
func (s BetStatus) IsSettled() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusVoid
}

// IsOpen returns true while the wager still awaits an outcome.
func (s BetStatus) IsOpen() bool {
	return s == BetStatusPending || s == BetStatusApproved
}

// ──────────────────────────────────────────────────────────────────────────────
// Bet
// ──────────────────────────────────────────────────────────────────────────────

// Bet is a placed wager. Stake and potential payout are persisted in dual
// columns; exactly one currency column is non-zero per bet.
type Bet struct {
	ID                 uuid.UUID        `json:"id"                   db:"id"`
	UserID             uuid.UUID        `json:"user_id"              db:"user_id"`
	Type               BetType          `json:"type"                 db:"bet_type"`
	Status             BetStatus        `json:"status"               db:"status"`
	StakeUSD           decimal.Decimal  `json:"stake_usd"            db:"stake_usd"`
	StakeBTC           decimal.Decimal  `json:"stake_btc"            db:"stake_btc"`
	PotentialPayoutUSD decimal.Decimal  `json:"potential_payout_usd" db:"potential_payout_usd"`
	PotentialPayoutBTC decimal.Decimal  `json:"potential_payout_btc" db:"potential_payout_btc"`
	PayoutUSD          *decimal.Decimal `json:"payout_usd"           db:"payout_usd"`
	PayoutBTC          *decimal.Decimal `json:"payout_btc"           db:"payout_btc"`
	Selections         []BetSelection   `json:"selections"           db:"-"`
	PlacedAt           time.Time        `json:"placed_at"            db:"placed_at"`
	SettledAt          *time.Time       `json:"settled_at"           db:"settled_at"`
}

// Currency returns the currency this bet is denominated in, determined by
// which stake column carries the amount.
func (b *Bet) Currency() Currency {
	if b.StakeBTC.IsPositive() {
		return CurrencyBTC
	}
	return CurrencyUSD
}

// Stake returns the stake as Money in the bet's currency.
func (b *Bet) Stake() Money {
	if b.Currency() == CurrencyBTC {
		return NewMoney(CurrencyBTC, b.StakeBTC)
	}
	return NewMoney(CurrencyUSD, b.StakeUSD)
}

// PotentialPayout returns the quoted payout as Money in the bet's currency.
func (b *Bet) PotentialPayout() Money {
	if b.Currency() == CurrencyBTC {
		return NewMoney(CurrencyBTC, b.PotentialPayoutBTC)
	}
	return NewMoney(CurrencyUSD, b.PotentialPayoutUSD)
}

// Payout returns the settled payout as Money, or nil when the bet has not
// paid out.
func (b *Bet) Payout() *Money {
	switch {
	case b.PayoutBTC != nil:
		m := NewMoney(CurrencyBTC, *b.PayoutBTC)
		return &m
	case b.PayoutUSD != nil:
		m := NewMoney(CurrencyUSD, *b.PayoutUSD)
		return &m
	}
	return nil
}

// BetSelection is a persisted leg of a placed bet. The odds snapshot is
// immutable once written.
type BetSelection struct {
	ID         uuid.UUID  `json:"id"          db:"id"`
	BetID      uuid.UUID  `json:"bet_id"      db:"bet_id"`
	EventID    string     `json:"event_id"    db:"event_id"`
	League     string     `json:"league"      db:"league"`
	EventLabel string     `json:"event_label" db:"event_label"`
	Market     MarketKind `json:"market"      db:"market"`
	Outcome    Outcome    `json:"outcome"     db:"outcome"`
	Line       string     `json:"line"        db:"line"`
	Odds       Odds       `json:"odds"        db:"odds"`
	CreatedAt  time.Time  `json:"created_at"  db:"created_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBetRequest — value object used by the submission/ledger services
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBetRequest carries the validated inputs for one atomic bet placement:
// one stake, one currency, one or more legs (≥2 for a parlay).
type PlaceBetRequest struct {
	UserID     uuid.UUID
	Type       BetType
	Stake      Money
	Selections []Selection
}

// PotentialPayout computes the quoted payout for the request, rounded to the
// stake currency's ledger scale.
func (r PlaceBetRequest) PotentialPayout() (Money, error) {
	if r.Type == BetTypeParlay {
		legs := make([]Odds, len(r.Selections))
		for i, sel := range r.Selections {
			legs[i] = sel.Odds
		}
		amount, err := ParlayPayout(legs, r.Stake.Amount)
		if err != nil {
			return Money{}, err
		}
		return NewMoney(r.Stake.Currency, amount).Round(), nil
	}
	if len(r.Selections) != 1 {
		return Money{}, ErrInvalidSelection
	}
	amount, err := SinglePayout(r.Selections[0].Odds, r.Stake.Amount)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(r.Stake.Currency, amount).Round(), nil
}

// BetResponse is the API-safe view of a bet.
type BetResponse struct {
	ID              uuid.UUID        `json:"id"`
	Type            BetType          `json:"type"`
	Status          BetStatus        `json:"status"`
	Currency        Currency         `json:"currency"`
	Stake           decimal.Decimal  `json:"stake"`
	PotentialPayout decimal.Decimal  `json:"potential_payout"`
	Payout          *decimal.Decimal `json:"payout,omitempty"`
	Selections      []BetSelection   `json:"selections"`
	PlacedAt        time.Time        `json:"placed_at"`
	SettledAt       *time.Time       `json:"settled_at,omitempty"`
}

// ToResponse converts a Bet to its API response form, collapsing the dual
// currency columns to the denominated side.
func (b *Bet) ToResponse() BetResponse {
	resp := BetResponse{
		ID:              b.ID,
		Type:            b.Type,
		Status:          b.Status,
		Currency:        b.Currency(),
		Stake:           b.Stake().Amount,
		PotentialPayout: b.PotentialPayout().Amount,
		Selections:      b.Selections,
		PlacedAt:        b.PlacedAt,
		SettledAt:       b.SettledAt,
	}
	if b.Currency() == CurrencyBTC {
		resp.Payout = b.PayoutBTC
	} else {
		resp.Payout = b.PayoutUSD
	}
	return resp
}
