package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation-order tests run the submission checks that fire before any
// ledger work, so no database is needed.

func validLeg(eventID string, odds domain.Odds, stake decimal.Decimal) service.SlipLeg {
	return service.SlipLeg{
		Selection: domain.Selection{
			EventID: eventID,
			League:  "NBA",
			Market:  domain.MarketMoneyline,
			Outcome: domain.OutcomeHome,
			Odds:    odds,
		},
		Stake: stake,
	}
}

func TestSubmit_EmptySlipRejected(t *testing.T) {
	s := service.NewSubmissionService(nil)
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeSingle,
		Currency: domain.CurrencyUSD,
	})
	if !errors.Is(err, domain.ErrInvalidSelection) {
		t.Errorf("empty slip error = %v, want ErrInvalidSelection", err)
	}
}

func TestSubmit_InvalidOddsBeforeStakeCheck(t *testing.T) {
	s := service.NewSubmissionService(nil)
	// Leg has zero odds AND no stake; the odds error must win.
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeSingle,
		Currency: domain.CurrencyUSD,
		Legs:     []service.SlipLeg{validLeg("evt1", 0, decimal.Zero)},
	})
	if !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("error = %v, want ErrInvalidOdds before stake validation", err)
	}
}

func TestSubmit_SingleWithoutStakes(t *testing.T) {
	s := service.NewSubmissionService(nil)
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeSingle,
		Currency: domain.CurrencyUSD,
		Legs: []service.SlipLeg{
			validLeg("evt1", +150, decimal.Zero),
			validLeg("evt2", -110, decimal.Zero),
		},
	})
	if !errors.Is(err, domain.ErrNoStakeEntered) {
		t.Errorf("error = %v, want ErrNoStakeEntered", err)
	}
}

func TestSubmit_ParlayWithOneLeg(t *testing.T) {
	s := service.NewSubmissionService(nil)
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:        domain.SlipModeParlay,
		Currency:    domain.CurrencyUSD,
		Legs:        []service.SlipLeg{validLeg("evt1", +150, decimal.Zero)},
		ParlayStake: decimal.NewFromInt(20),
	})
	if !errors.Is(err, domain.ErrInsufficientLegs) {
		t.Errorf("error = %v, want ErrInsufficientLegs", err)
	}
}

func TestSubmit_ParlayWithPerLegStakes(t *testing.T) {
	s := service.NewSubmissionService(nil)
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeParlay,
		Currency: domain.CurrencyUSD,
		Legs: []service.SlipLeg{
			validLeg("evt1", +150, decimal.NewFromInt(10)), // per-leg stake is malformed here
			validLeg("evt2", -110, decimal.Zero),
		},
		ParlayStake: decimal.NewFromInt(20),
	})
	if !errors.Is(err, domain.ErrInvalidParlay) {
		t.Errorf("error = %v, want ErrInvalidParlay", err)
	}
}

func TestSubmit_ParlayWithoutCombinedStake(t *testing.T) {
	s := service.NewSubmissionService(nil)
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeParlay,
		Currency: domain.CurrencyUSD,
		Legs: []service.SlipLeg{
			validLeg("evt1", +150, decimal.Zero),
			validLeg("evt2", -110, decimal.Zero),
		},
	})
	if !errors.Is(err, domain.ErrNoStakeEntered) {
		t.Errorf("error = %v, want ErrNoStakeEntered", err)
	}
}

// Single mode processes legs in slip order and stops at the first failed
// placement. Both legs here are under the USD stake floor, which PlaceBet
// rejects before touching the database; only the first leg may be attempted.
func TestSubmit_SinglesStopAtFirstFailedLeg(t *testing.T) {
	ledger := service.NewLedgerService(nil, nil, nil, config.LedgerConfig{
		MinStakeUSD:   1,
		MinStakeBTC:   0.0001,
		MaxParlayLegs: 12,
	})
	s := service.NewSubmissionService(ledger)

	result, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeSingle,
		Currency: domain.CurrencyUSD,
		Legs: []service.SlipLeg{
			validLeg("evt1", -110, decimal.NewFromFloat(0.50)),
			validLeg("evt2", +150, decimal.NewFromFloat(0.25)),
		},
	})
	if err != nil {
		t.Fatalf("Submit returned error %v, want per-leg result", err)
	}
	if len(result.LegResults) != 1 {
		t.Fatalf("attempted %d legs, want 1: a failed leg must end the run", len(result.LegResults))
	}
	if result.Placed != 0 || result.Failed != 1 {
		t.Errorf("placed=%d failed=%d, want 0/1", result.Placed, result.Failed)
	}
	lr := result.LegResults[0]
	if lr.Selection.EventID != "evt1" {
		t.Errorf("failed leg = %s, want evt1 (slip order)", lr.Selection.EventID)
	}
	if !errors.Is(lr.Err, domain.ErrStakeBelowMinimum) {
		t.Errorf("leg error = %v, want ErrStakeBelowMinimum", lr.Err)
	}
}

func TestSubmit_UnknownCurrencyRejected(t *testing.T) {
	s := service.NewSubmissionService(nil)
	_, err := s.Submit(context.Background(), uuid.New(), service.SubmitRequest{
		Mode:     domain.SlipModeSingle,
		Currency: domain.Currency("eur"),
		Legs:     []service.SlipLeg{validLeg("evt1", +150, decimal.NewFromInt(10))},
	})
	if !errors.Is(err, domain.ErrInvalidSelection) {
		t.Errorf("error = %v, want ErrInvalidSelection", err)
	}
}
