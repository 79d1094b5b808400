package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/cryptobets/sportsbook/internal/repository"
	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Authorizer
// ──────────────────────────────────────────────────────────────────────────────

// Authorizer answers whether a user may perform a privileged capability.
// Consulted once per privileged call; token claims alone are never trusted
// for settlement or balance mutation.
type Authorizer interface {
	Authorize(ctx context.Context, userID uuid.UUID, cap domain.Capability) (bool, error)
}

// RoleAuthorizer authorises against the user_roles grant table: every
// back-office capability currently requires the admin role.
type RoleAuthorizer struct {
	roleRepo *repository.RoleRepository
}

// NewRoleAuthorizer creates a RoleAuthorizer.
func NewRoleAuthorizer(roleRepo *repository.RoleRepository) *RoleAuthorizer {
	return &RoleAuthorizer{roleRepo: roleRepo}
}

// Authorize implements Authorizer.
func (a *RoleAuthorizer) Authorize(ctx context.Context, userID uuid.UUID, _ domain.Capability) (bool, error) {
	ok, err := a.roleRepo.HasRole(ctx, userID, domain.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("role_authorizer.Authorize: %w", err)
	}
	return ok, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// SettlementService
// ──────────────────────────────────────────────────────────────────────────────

// SettlementService is the back-office orchestration layer over the ledger:
// the settlement queue, lifecycle transitions, and admin account tools. All
// money movement is delegated to LedgerService. Every mutation here checks
// the Authorizer first; the admin claim inside a token is never enough.
type SettlementService struct {
	ledger     *LedgerService
	betRepo    *repository.BetRepository
	userRepo   *repository.UserRepository
	roleRepo   *repository.RoleRepository
	authorizer Authorizer
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(
	ledger *LedgerService,
	betRepo *repository.BetRepository,
	userRepo *repository.UserRepository,
	roleRepo *repository.RoleRepository,
	authorizer Authorizer,
) *SettlementService {
	return &SettlementService{
		ledger:     ledger,
		betRepo:    betRepo,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		authorizer: authorizer,
	}
}

// authorize checks the capability and maps a denial to ErrUnauthorized.
func (s *SettlementService) authorize(ctx context.Context, adminID uuid.UUID, cap domain.Capability) error {
	ok, err := s.authorizer.Authorize(ctx, adminID, cap)
	if err != nil {
		return fmt.Errorf("settlement_service.authorize: %w", err)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// ListBets returns the settlement queue for a status, oldest first.
func (s *SettlementService) ListBets(ctx context.Context, adminID uuid.UUID, status domain.BetStatus, limit, offset int) ([]*domain.Bet, int, error) {
	if err := s.authorize(ctx, adminID, domain.CapSettleBets); err != nil {
		return nil, 0, err
	}
	bets, err := s.betRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("settlement_service.ListBets: %w", err)
	}
	total, err := s.betRepo.CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, fmt.Errorf("settlement_service.ListBets: %w", err)
	}
	return bets, total, nil
}

// Approve accepts a pending bet.
func (s *SettlementService) Approve(ctx context.Context, adminID, betID uuid.UUID) (*domain.Bet, error) {
	if err := s.authorize(ctx, adminID, domain.CapSettleBets); err != nil {
		return nil, err
	}
	return s.ledger.Approve(ctx, betID)
}

// Reject declines a pending bet and refunds the stake.
func (s *SettlementService) Reject(ctx context.Context, adminID, betID uuid.UUID) (*domain.Bet, error) {
	if err := s.authorize(ctx, adminID, domain.CapSettleBets); err != nil {
		return nil, err
	}
	return s.ledger.Reject(ctx, betID)
}

// Settle resolves an approved bet to won, lost or void, optionally
// overriding the payout amount on a win.
func (s *SettlementService) Settle(ctx context.Context, adminID, betID uuid.UUID, outcome domain.BetStatus, payoutOverride *domain.Money) (*domain.Bet, error) {
	if err := s.authorize(ctx, adminID, domain.CapSettleBets); err != nil {
		return nil, err
	}
	return s.ledger.Settle(ctx, betID, outcome, payoutOverride)
}

// AdjustBalance applies an admin deposit/withdrawal/correction.
func (s *SettlementService) AdjustBalance(ctx context.Context, adminID, userID uuid.UUID, amount domain.Money, txType domain.TxType, note string) error {
	if err := s.authorize(ctx, adminID, domain.CapAdjustBalances); err != nil {
		return err
	}
	return s.ledger.AdjustBalance(ctx, adminID, userID, amount, txType, note)
}

// SetUserActive suspends or reactivates a user account.
func (s *SettlementService) SetUserActive(ctx context.Context, adminID, userID uuid.UUID, active bool) error {
	if err := s.authorize(ctx, adminID, domain.CapManageUsers); err != nil {
		return err
	}
	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("settlement_service.SetUserActive: %w", err)
	}
	return nil
}

// SetUserRole changes a user's role and keeps the user_roles grant table in
// sync with it. The grant table is what the Authorizer consults, so a
// demotion revokes privileged access immediately, not at token expiry.
func (s *SettlementService) SetUserRole(ctx context.Context, adminID, userID uuid.UUID, role domain.UserRole) error {
	if err := s.authorize(ctx, adminID, domain.CapManageUsers); err != nil {
		return err
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("settlement_service.SetUserRole: %w", err)
	}

	var err error
	if role == domain.RoleAdmin {
		err = s.roleRepo.Grant(ctx, userID, domain.RoleAdmin)
	} else {
		err = s.roleRepo.Revoke(ctx, userID, domain.RoleAdmin)
	}
	if err != nil {
		return fmt.Errorf("settlement_service.SetUserRole: sync grant: %w", err)
	}
	return nil
}

// GetLedgerReport aggregates staking and payout volumes for a date range.
func (s *SettlementService) GetLedgerReport(ctx context.Context, adminID uuid.UUID, from, to time.Time) (*repository.LedgerReport, error) {
	if err := s.authorize(ctx, adminID, domain.CapViewUsers); err != nil {
		return nil, err
	}
	report, err := s.betRepo.GetLedgerReport(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("settlement_service.GetLedgerReport: %w", err)
	}
	return report, nil
}
