package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptobets/sportsbook/internal/config"
	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/metrics"
	"github.com/cryptobets/sportsbook/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// LedgerService
// ──────────────────────────────────────────────────────────────────────────────

// LedgerService is the system of record for balances, bets and the
// append-only transaction ledger. Every balance mutation runs inside a
// single PostgreSQL transaction together with exactly one audit row; a
// failure at any step rolls the whole unit back.
type LedgerService struct {
	db          *sqlx.DB
	betRepo     *repository.BetRepository
	profileRepo *repository.ProfileRepository
	limits      config.LedgerConfig
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(
	db *sqlx.DB,
	betRepo *repository.BetRepository,
	profileRepo *repository.ProfileRepository,
	limits config.LedgerConfig,
) *LedgerService {
	return &LedgerService{
		db:          db,
		betRepo:     betRepo,
		profileRepo: profileRepo,
		limits:      limits,
	}
}

// minStake returns the configured floor for the given currency.
func (s *LedgerService) minStake(c domain.Currency) decimal.Decimal {
	if c == domain.CurrencyBTC {
		return decimal.NewFromFloat(s.limits.MinStakeBTC)
	}
	return decimal.NewFromFloat(s.limits.MinStakeUSD)
}

// ──────────────────────────────────────────────────────────────────────────────
// PlaceBet
// ──────────────────────────────────────────────────────────────────────────────

// PlaceBet atomically debits the stake, records the bet with its selection
// snapshot, and writes the bet_stake ledger row. The profile row is locked
// FOR UPDATE, so concurrent placements by the same user serialise and the
// funds check cannot race. On any failure the user's balance, bet list and
// ledger are all untouched.
func (s *LedgerService) PlaceBet(ctx context.Context, req domain.PlaceBetRequest) (*domain.Bet, error) {
	stake := req.Stake.Round()
	if !stake.IsPositive() {
		return nil, domain.ErrNoStakeEntered
	}
	if stake.Amount.LessThan(s.minStake(stake.Currency)) {
		return nil, domain.ErrStakeBelowMinimum
	}
	if req.Type == domain.BetTypeParlay && len(req.Selections) < 2 {
		return nil, domain.ErrInsufficientLegs
	}
	if req.Type == domain.BetTypeParlay && s.limits.MaxParlayLegs > 0 && len(req.Selections) > s.limits.MaxParlayLegs {
		return nil, domain.ErrInvalidParlay
	}
	for _, sel := range req.Selections {
		if err := sel.Validate(); err != nil {
			return nil, err
		}
	}

	potential, err := req.PotentialPayout()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.PlaceBet: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the profile row, check funds and debit in one step.
	before, after, err := s.profileRepo.DebitBalance(ctx, tx, req.UserID, stake)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.PlaceBet: debit: %w", err)
	}

	now := time.Now().UTC()
	bet := &domain.Bet{
		ID:       uuid.New(),
		UserID:   req.UserID,
		Type:     req.Type,
		Status:   domain.BetStatusPending,
		PlacedAt: now,
	}
	if stake.Currency == domain.CurrencyBTC {
		bet.StakeBTC = stake.Amount
		bet.PotentialPayoutBTC = potential.Amount
	} else {
		bet.StakeUSD = stake.Amount
		bet.PotentialPayoutUSD = potential.Amount
	}
	for _, sel := range req.Selections {
		bet.Selections = append(bet.Selections, domain.BetSelection{
			ID:         uuid.New(),
			BetID:      bet.ID,
			EventID:    sel.EventID,
			League:     sel.League,
			EventLabel: sel.EventLabel,
			Market:     sel.Market,
			Outcome:    sel.Outcome,
			Line:       sel.Line,
			Odds:       sel.Odds,
			CreatedAt:  now,
		})
	}
	if err = s.betRepo.Create(ctx, tx, bet); err != nil {
		return nil, fmt.Errorf("ledger_service.PlaceBet: create bet: %w", err)
	}

	if err = s.logLedgerRow(ctx, tx, req.UserID, domain.TxBetStake, stake.Neg(), before, after, &bet.ID,
		fmt.Sprintf("Bet placed: %s, %d selection(s)", bet.Type, len(bet.Selections))); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledger_service.PlaceBet: commit: %w", err)
	}

	metrics.BetsPlaced.WithLabelValues(string(bet.Type), string(stake.Currency)).Inc()
	slog.Info("bet placed",
		"bet_id", bet.ID,
		"user_id", req.UserID,
		"type", bet.Type,
		"currency", stake.Currency,
		"stake", stake.Amount)
	return bet, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Review: approve / reject
// ──────────────────────────────────────────────────────────────────────────────

// Approve moves a pending bet into play. The stake stays held.
func (s *LedgerService) Approve(ctx context.Context, betID uuid.UUID) (*domain.Bet, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Approve: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bet, err := s.betRepo.GetByIDForUpdate(ctx, tx, betID)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Approve: get bet: %w", err)
	}
	if !bet.Status.CanTransition(domain.BetStatusApproved) {
		if bet.Status.IsTerminal() {
			return nil, domain.ErrAlreadySettled
		}
		return nil, domain.ErrInvalidTransition
	}

	if err = s.betRepo.TransitionStatus(ctx, tx, betID, bet.Status, domain.BetStatusApproved, nil); err != nil {
		return nil, fmt.Errorf("ledger_service.Approve: transition: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledger_service.Approve: commit: %w", err)
	}

	bet.Status = domain.BetStatusApproved
	slog.Info("bet approved", "bet_id", betID)
	return bet, nil
}

// Reject declines a pending bet and refunds exactly the original stake in
// the original currency, with an adjustment ledger row referencing the bet.
func (s *LedgerService) Reject(ctx context.Context, betID uuid.UUID) (*domain.Bet, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Reject: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bet, err := s.betRepo.GetByIDForUpdate(ctx, tx, betID)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Reject: get bet: %w", err)
	}
	if !bet.Status.CanTransition(domain.BetStatusRejected) {
		if bet.Status.IsTerminal() {
			return nil, domain.ErrAlreadySettled
		}
		return nil, domain.ErrInvalidTransition
	}

	if err = s.betRepo.TransitionStatus(ctx, tx, betID, bet.Status, domain.BetStatusRejected, nil); err != nil {
		return nil, fmt.Errorf("ledger_service.Reject: transition: %w", err)
	}

	stake := bet.Stake()
	before, after, err := s.profileRepo.CreditBalance(ctx, tx, bet.UserID, stake)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Reject: refund: %w", err)
	}
	if err = s.logLedgerRow(ctx, tx, bet.UserID, domain.TxAdjustment, stake, before, after, &bet.ID,
		"Bet rejected: stake refunded"); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledger_service.Reject: commit: %w", err)
	}

	bet.Status = domain.BetStatusRejected
	slog.Info("bet rejected", "bet_id", betID, "refund", stake.Amount, "currency", stake.Currency)
	return bet, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Settlement
// ──────────────────────────────────────────────────────────────────────────────

// Settle resolves an approved bet to won, lost or void in one atomic unit.
//
//	won:  credit the potential payout (or the override) + bet_payout row
//	lost: status change only, no balance movement
//	void: refund exactly the original stake + adjustment row
//
// The bet row is locked and the status UPDATE pins the approved state, so a
// concurrent retry of the same settlement fails with ErrAlreadySettled
// instead of paying twice.
func (s *LedgerService) Settle(ctx context.Context, betID uuid.UUID, outcome domain.BetStatus, payoutOverride *domain.Money) (*domain.Bet, error) {
	if outcome != domain.BetStatusWon && outcome != domain.BetStatusLost && outcome != domain.BetStatusVoid {
		return nil, domain.ErrInvalidTransition
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Settle: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bet, err := s.betRepo.GetByIDForUpdate(ctx, tx, betID)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.Settle: get bet: %w", err)
	}
	if !bet.Status.CanTransition(outcome) {
		if bet.Status.IsTerminal() {
			return nil, domain.ErrAlreadySettled
		}
		return nil, domain.ErrInvalidTransition
	}

	var payout *domain.Money
	switch outcome {
	case domain.BetStatusWon:
		p := bet.PotentialPayout()
		if payoutOverride != nil {
			p = payoutOverride.Round()
		}
		payout = &p
		before, after, cerr := s.profileRepo.CreditBalance(ctx, tx, bet.UserID, p)
		if cerr != nil {
			err = cerr
			return nil, fmt.Errorf("ledger_service.Settle: credit payout: %w", err)
		}
		if err = s.logLedgerRow(ctx, tx, bet.UserID, domain.TxBetPayout, p, before, after, &bet.ID,
			"Bet won: payout credited"); err != nil {
			return nil, err
		}

	case domain.BetStatusVoid:
		stake := bet.Stake()
		payout = &stake
		before, after, cerr := s.profileRepo.CreditBalance(ctx, tx, bet.UserID, stake)
		if cerr != nil {
			err = cerr
			return nil, fmt.Errorf("ledger_service.Settle: refund stake: %w", err)
		}
		if err = s.logLedgerRow(ctx, tx, bet.UserID, domain.TxAdjustment, stake, before, after, &bet.ID,
			"Bet voided: stake refunded"); err != nil {
			return nil, err
		}
	}

	if err = s.betRepo.TransitionStatus(ctx, tx, betID, bet.Status, outcome, payout); err != nil {
		return nil, fmt.Errorf("ledger_service.Settle: transition: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ledger_service.Settle: commit: %w", err)
	}

	bet.Status = outcome
	metrics.BetsSettled.WithLabelValues(string(outcome)).Inc()
	slog.Info("bet settled", "bet_id", betID, "outcome", outcome)
	return bet, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Admin adjustments
// ──────────────────────────────────────────────────────────────────────────────

// AdjustBalance applies a signed admin adjustment (deposit, withdrawal or
// correction) to one currency balance. Fails with
// ErrNegativeResultingBalance before any mutation when the result would go
// below zero; otherwise the balance change and its audit row commit together.
func (s *LedgerService) AdjustBalance(ctx context.Context, adminID, userID uuid.UUID, amount domain.Money, txType domain.TxType, note string) error {
	amount = amount.Round()
	if amount.Amount.IsZero() {
		return domain.ErrZeroAdjustment
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger_service.AdjustBalance: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	before, after, err := s.profileRepo.AdjustBalance(ctx, tx, userID, amount)
	if err != nil {
		return fmt.Errorf("ledger_service.AdjustBalance: adjust: %w", err)
	}

	if note == "" {
		note = fmt.Sprintf("Admin adjustment by %s", adminID)
	}
	if err = s.logLedgerRow(ctx, tx, userID, txType, amount, before, after, nil, note); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ledger_service.AdjustBalance: commit: %w", err)
	}

	slog.Info("balance adjusted",
		"admin_id", adminID,
		"user_id", userID,
		"type", txType,
		"currency", amount.Currency,
		"amount", amount.Amount)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// GetProfile returns the balance profile for a user.
func (s *LedgerService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.GetProfile: %w", err)
	}
	return p, nil
}

// GetMyBets returns paginated bets for a user. openOnly=nil returns all,
// otherwise the open/settled reporting split.
func (s *LedgerService) GetMyBets(ctx context.Context, userID uuid.UUID, openOnly *bool, limit, offset int) ([]*domain.Bet, error) {
	bets, err := s.betRepo.GetByUserID(ctx, userID, openOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.GetMyBets: %w", err)
	}
	return bets, nil
}

// GetBetByID returns a single bet only if it belongs to userID.
func (s *LedgerService) GetBetByID(ctx context.Context, betID, userID uuid.UUID) (*domain.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.GetBetByID: %w", err)
	}
	if bet.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return bet, nil
}

// GetTransactions returns paginated ledger history for a user.
func (s *LedgerService) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	txns, err := s.profileRepo.GetTransactions(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger_service.GetTransactions: %w", err)
	}
	return txns, nil
}

// logLedgerRow writes the audit row accompanying a balance mutation, mapping
// the signed Money onto the dual amount columns.
func (s *LedgerService) logLedgerRow(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, txType domain.TxType, amount domain.Money, before, after decimal.Decimal, refID *uuid.UUID, note string) error {
	txn := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Type:          txType,
		BalanceBefore: before,
		BalanceAfter:  after,
		RefID:         refID,
		Note:          note,
		CreatedAt:     time.Now().UTC(),
	}
	if amount.Currency == domain.CurrencyBTC {
		txn.AmountBTC = amount.Amount
	} else {
		txn.AmountUSD = amount.Amount
	}

	if err := s.profileRepo.LogTransaction(ctx, tx, txn); err != nil {
		metrics.LedgerErrors.Inc()
		return fmt.Errorf("ledger_service.logLedgerRow: %w", err)
	}
	return nil
}
