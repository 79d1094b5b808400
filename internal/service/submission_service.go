package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// SubmissionService
// ──────────────────────────────────────────────────────────────────────────────

// SubmissionService validates slip submissions and dispatches them to the
// ledger. A parlay is one atomic placement; single mode places each staked
// leg as its own independent atomic unit and stops at the first failure.
// Legs already placed stay placed, legs after the failing one are never
// attempted.
type SubmissionService struct {
	ledger *LedgerService
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(ledger *LedgerService) *SubmissionService {
	return &SubmissionService{ledger: ledger}
}

// SlipLeg is one selection with its single-mode stake. Stake is ignored in
// parlay mode, where the slip carries one combined stake.
type SlipLeg struct {
	Selection domain.Selection `json:"selection"`
	Stake     decimal.Decimal  `json:"stake"`
}

// SubmitRequest is a full slip submission.
type SubmitRequest struct {
	Mode        domain.SlipMode `json:"mode"`
	Currency    domain.Currency `json:"currency"`
	Legs        []SlipLeg       `json:"legs"`
	ParlayStake decimal.Decimal `json:"parlay_stake"`
}

// LegResult reports the outcome of one single-mode placement.
type LegResult struct {
	Selection domain.Selection `json:"selection"`
	Bet       *domain.Bet      `json:"bet,omitempty"`
	Err       error            `json:"-"`
	ErrorMsg  string           `json:"error,omitempty"`
}

// SubmitResult aggregates what a submission produced.
type SubmitResult struct {
	Bets       []*domain.Bet `json:"bets"`
	LegResults []LegResult   `json:"leg_results,omitempty"`
	Placed     int           `json:"placed"`
	Failed     int           `json:"failed"`
}

// Submit validates the slip and places its wagers. Validation order:
// authentication is the caller's concern, then structural leg checks, then
// stake presence, then per-placement funds checks inside the ledger.
func (s *SubmissionService) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	if len(req.Legs) == 0 {
		return nil, domain.ErrInvalidSelection
	}
	if !req.Currency.IsValid() {
		return nil, domain.ErrInvalidSelection
	}
	for _, leg := range req.Legs {
		if err := leg.Selection.Validate(); err != nil {
			return nil, err
		}
	}

	switch req.Mode {
	case domain.SlipModeParlay:
		return s.submitParlay(ctx, userID, req)
	case domain.SlipModeSingle:
		return s.submitSingles(ctx, userID, req)
	default:
		return nil, domain.ErrInvalidSelection
	}
}

// submitParlay places all legs as one bet with one combined stake.
func (s *SubmissionService) submitParlay(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	if len(req.Legs) < 2 {
		return nil, domain.ErrInsufficientLegs
	}
	// Per-leg stakes on a parlay slip are a malformed submission.
	for _, leg := range req.Legs {
		if leg.Stake.IsPositive() {
			return nil, domain.ErrInvalidParlay
		}
	}
	if !req.ParlayStake.IsPositive() {
		return nil, domain.ErrNoStakeEntered
	}

	selections := make([]domain.Selection, len(req.Legs))
	for i, leg := range req.Legs {
		selections[i] = leg.Selection
	}

	bet, err := s.ledger.PlaceBet(ctx, domain.PlaceBetRequest{
		UserID:     userID,
		Type:       domain.BetTypeParlay,
		Stake:      domain.NewMoney(req.Currency, req.ParlayStake),
		Selections: selections,
	})
	if err != nil {
		return nil, fmt.Errorf("submission_service.submitParlay: %w", err)
	}
	return &SubmitResult{Bets: []*domain.Bet{bet}, Placed: 1}, nil
}

// submitSingles places staked legs in slip order, each as its own ledger
// transaction. Legs without a stake are skipped; at least one staked leg is
// required. The first failed placement (e.g. funds exhausted mid-way) ends
// the run: everything placed before it stands, the failing leg is reported,
// and the remaining legs are not attempted.
func (s *SubmissionService) submitSingles(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	staked := make([]SlipLeg, 0, len(req.Legs))
	for _, leg := range req.Legs {
		if leg.Stake.IsPositive() {
			staked = append(staked, leg)
		}
	}
	if len(staked) == 0 {
		return nil, domain.ErrNoStakeEntered
	}

	result := &SubmitResult{}
	for _, leg := range staked {
		bet, err := s.ledger.PlaceBet(ctx, domain.PlaceBetRequest{
			UserID:     userID,
			Type:       domain.BetTypeSingle,
			Stake:      domain.NewMoney(req.Currency, leg.Stake),
			Selections: []domain.Selection{leg.Selection},
		})
		if err != nil {
			result.LegResults = append(result.LegResults, LegResult{
				Selection: leg.Selection,
				Err:       err,
				ErrorMsg:  publicLegError(err),
			})
			result.Failed++
			slog.Warn("single leg placement failed, remaining legs skipped",
				"user_id", userID,
				"event_id", leg.Selection.EventID,
				"error", err)
			break
		}
		result.Bets = append(result.Bets, bet)
		result.Placed++
		result.LegResults = append(result.LegResults, LegResult{Selection: leg.Selection, Bet: bet})
	}
	return result, nil
}

// publicLegError maps a placement error to a message safe for the response
// body without leaking internals.
func publicLegError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return domain.ErrInsufficientFunds.Error()
	case errors.Is(err, domain.ErrInvalidOdds):
		return domain.ErrInvalidOdds.Error()
	case errors.Is(err, domain.ErrNoStakeEntered):
		return domain.ErrNoStakeEntered.Error()
	case errors.Is(err, domain.ErrStakeBelowMinimum):
		return domain.ErrStakeBelowMinimum.Error()
	default:
		return "placement failed"
	}
}
