package domain_test

import (
	"errors"
	"testing"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/shopspring/decimal"
)

// ── American odds conversion ──────────────────────────────────────────────────

func TestOdds_DecimalMultiplier(t *testing.T) {
	cases := []struct {
		odds domain.Odds
		want decimal.Decimal
	}{
		{+100, decimal.NewFromFloat(2.0)},
		{+150, decimal.NewFromFloat(2.5)},
		{+250, decimal.NewFromFloat(3.5)},
		{-110, decimal.NewFromFloat(1.9091)},
		{-150, decimal.NewFromFloat(1.6667)},
		{-200, decimal.NewFromFloat(1.5)},
	}
	tolerance := decimal.NewFromFloat(0.0001)
	for _, c := range cases {
		got, err := c.odds.DecimalMultiplier()
		if err != nil {
			t.Fatalf("DecimalMultiplier(%d) returned error: %v", c.odds, err)
		}
		if got.Sub(c.want).Abs().GreaterThan(tolerance) {
			t.Errorf("DecimalMultiplier(%d) = %s, want ~%s", c.odds, got, c.want)
		}
	}
}

func TestOdds_ZeroIsInvalid(t *testing.T) {
	if domain.Odds(0).IsValid() {
		t.Error("zero odds should not be valid")
	}
	_, err := domain.Odds(0).DecimalMultiplier()
	if !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("DecimalMultiplier(0) error = %v, want ErrInvalidOdds", err)
	}
}

// ── Single payout ─────────────────────────────────────────────────────────────

// A $50 stake at -150 pays 50 × 1.6667 ≈ $83.33 after USD rounding.
func TestSinglePayout(t *testing.T) {
	stake := decimal.NewFromInt(50)
	payout, err := domain.SinglePayout(-150, stake)
	if err != nil {
		t.Fatalf("SinglePayout: %v", err)
	}
	rounded := domain.NewMoney(domain.CurrencyUSD, payout).Round()

	want := decimal.NewFromFloat(83.33)
	if !rounded.Amount.Equal(want) {
		t.Errorf("payout = %s, want %s", rounded.Amount, want)
	}
}

// ── Parlay payout ─────────────────────────────────────────────────────────────

// Legs +100, -110, +150 combine to 2.0 × 1.9091 × 2.5 ≈ 9.5455.
func TestParlayCombinedMultiplier(t *testing.T) {
	legs := []domain.Odds{+100, -110, +150}
	combined, err := domain.ParlayCombinedMultiplier(legs)
	if err != nil {
		t.Fatalf("ParlayCombinedMultiplier: %v", err)
	}
	want := decimal.NewFromFloat(9.5455)
	if combined.Sub(want).Abs().GreaterThan(decimal.NewFromFloat(0.001)) {
		t.Errorf("combined = %s, want ~%s", combined, want)
	}
}

// A $20 parlay on +120 and -200 pays 20 × 2.2 × 1.5 = $66.00.
func TestParlayPayout(t *testing.T) {
	stake := decimal.NewFromInt(20)
	payout, err := domain.ParlayPayout([]domain.Odds{+120, -200}, stake)
	if err != nil {
		t.Fatalf("ParlayPayout: %v", err)
	}
	rounded := domain.NewMoney(domain.CurrencyUSD, payout).Round()

	want := decimal.NewFromFloat(66.00)
	if !rounded.Amount.Equal(want) {
		t.Errorf("payout = %s, want %s", rounded.Amount, want)
	}
}

// A half-built parlay previews as a zero payout; the multiplier alone is
// what rejects the incomplete set.
func TestParlayPayout_IncompleteSlipPaysZero(t *testing.T) {
	for _, legs := range [][]domain.Odds{nil, {+150}} {
		payout, err := domain.ParlayPayout(legs, decimal.NewFromInt(20))
		if err != nil {
			t.Errorf("ParlayPayout(%v) error = %v, want nil", legs, err)
		}
		if !payout.IsZero() {
			t.Errorf("ParlayPayout(%v) = %s, want 0", legs, payout)
		}
	}
}

func TestParlay_RequiresTwoLegs(t *testing.T) {
	_, err := domain.ParlayCombinedMultiplier([]domain.Odds{+100})
	if !errors.Is(err, domain.ErrInsufficientLegs) {
		t.Errorf("one-leg parlay error = %v, want ErrInsufficientLegs", err)
	}
	_, err = domain.ParlayCombinedMultiplier(nil)
	if !errors.Is(err, domain.ErrInsufficientLegs) {
		t.Errorf("empty parlay error = %v, want ErrInsufficientLegs", err)
	}
}

func TestParlay_ZeroLegInvalidatesAll(t *testing.T) {
	_, err := domain.ParlayCombinedMultiplier([]domain.Odds{+100, 0, -110})
	if !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("parlay with zero leg error = %v, want ErrInvalidOdds", err)
	}
}

// ── Currency rounding ─────────────────────────────────────────────────────────

func TestMoney_RoundPerCurrency(t *testing.T) {
	raw := decimal.NewFromFloat(83.333333333)

	usd := domain.NewMoney(domain.CurrencyUSD, raw).Round()
	if !usd.Amount.Equal(decimal.NewFromFloat(83.33)) {
		t.Errorf("USD round = %s, want 83.33", usd.Amount)
	}

	btc := domain.NewMoney(domain.CurrencyBTC, decimal.NewFromFloat(0.123456789)).Round()
	if !btc.Amount.Equal(decimal.NewFromFloat(0.12345679)) {
		t.Errorf("BTC round = %s, want 0.12345679", btc.Amount)
	}
}
