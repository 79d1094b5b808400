package domain_test

import (
	"testing"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Status state machine ──────────────────────────────────────────────────────

func TestBetStatus_TransitionTable(t *testing.T) {
	allowed := []struct{ from, to domain.BetStatus }{
		{domain.BetStatusPending, domain.BetStatusApproved},
		{domain.BetStatusPending, domain.BetStatusRejected},
		{domain.BetStatusApproved, domain.BetStatusWon},
		{domain.BetStatusApproved, domain.BetStatusLost},
		{domain.BetStatusApproved, domain.BetStatusVoid},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("%s → %s should be allowed", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to domain.BetStatus }{
		{domain.BetStatusPending, domain.BetStatusWon}, // must approve first
		{domain.BetStatusPending, domain.BetStatusVoid},
		{domain.BetStatusApproved, domain.BetStatusPending},
		{domain.BetStatusApproved, domain.BetStatusRejected},
		{domain.BetStatusWon, domain.BetStatusLost},
		{domain.BetStatusLost, domain.BetStatusWon},
		{domain.BetStatusRejected, domain.BetStatusApproved},
		{domain.BetStatusVoid, domain.BetStatusApproved},
	}
	for _, tr := range denied {
		if tr.from.CanTransition(tr.to) {
			t.Errorf("%s → %s should be denied", tr.from, tr.to)
		}
	}
}

func TestBetStatus_TerminalStates(t *testing.T) {
	terminals := []domain.BetStatus{
		domain.BetStatusRejected,
		domain.BetStatusWon,
		domain.BetStatusLost,
		domain.BetStatusVoid,
	}
	for _, s := range terminals {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if domain.BetStatusPending.IsTerminal() || domain.BetStatusApproved.IsTerminal() {
		t.Error("pending and approved are not terminal")
	}
}

func TestBetStatus_OpenSettledSplit(t *testing.T) {
	if !domain.BetStatusPending.IsOpen() || !domain.BetStatusApproved.IsOpen() {
		t.Error("pending and approved should report open")
	}
	for _, s := range []domain.BetStatus{domain.BetStatusWon, domain.BetStatusLost, domain.BetStatusVoid} {
		if !s.IsSettled() {
			t.Errorf("%s should report settled", s)
		}
		if s.IsOpen() {
			t.Errorf("%s should not report open", s)
		}
	}
	// Rejected is terminal but not a settlement outcome.
	if domain.BetStatusRejected.IsSettled() {
		t.Error("rejected is not a settlement outcome")
	}
}

// ── Currency resolution ───────────────────────────────────────────────────────

func TestBet_CurrencyFromStakeColumns(t *testing.T) {
	usdBet := &domain.Bet{StakeUSD: decimal.NewFromInt(50)}
	if usdBet.Currency() != domain.CurrencyUSD {
		t.Errorf("Currency() = %s, want usd", usdBet.Currency())
	}
	btcBet := &domain.Bet{StakeBTC: decimal.NewFromFloat(0.001)}
	if btcBet.Currency() != domain.CurrencyBTC {
		t.Errorf("Currency() = %s, want btc", btcBet.Currency())
	}
}

// ── PlaceBetRequest payout quoting ────────────────────────────────────────────

func TestPlaceBetRequest_PotentialPayout_Single(t *testing.T) {
	req := domain.PlaceBetRequest{
		UserID: uuid.New(),
		Type:   domain.BetTypeSingle,
		Stake:  domain.NewMoney(domain.CurrencyUSD, decimal.NewFromInt(50)),
		Selections: []domain.Selection{
			{EventID: "evt1", Market: domain.MarketMoneyline, Outcome: domain.OutcomeHome, Odds: -150},
		},
	}
	payout, err := req.PotentialPayout()
	if err != nil {
		t.Fatalf("PotentialPayout: %v", err)
	}
	if !payout.Amount.Equal(decimal.NewFromFloat(83.33)) {
		t.Errorf("payout = %s, want 83.33", payout.Amount)
	}
}

func TestPlaceBetRequest_PotentialPayout_Parlay(t *testing.T) {
	req := domain.PlaceBetRequest{
		UserID: uuid.New(),
		Type:   domain.BetTypeParlay,
		Stake:  domain.NewMoney(domain.CurrencyUSD, decimal.NewFromInt(20)),
		Selections: []domain.Selection{
			{EventID: "evt1", Market: domain.MarketMoneyline, Outcome: domain.OutcomeHome, Odds: +120},
			{EventID: "evt2", Market: domain.MarketSpread, Outcome: domain.OutcomeAway, Odds: -200},
		},
	}
	payout, err := req.PotentialPayout()
	if err != nil {
		t.Fatalf("PotentialPayout: %v", err)
	}
	if !payout.Amount.Equal(decimal.NewFromFloat(66.00)) {
		t.Errorf("payout = %s, want 66.00", payout.Amount)
	}
}
