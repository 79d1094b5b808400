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

// stubAuthorizer answers every capability check with a fixed verdict,
// standing in for the user_roles lookup.
type stubAuthorizer struct {
	allow bool
}

func (a stubAuthorizer) Authorize(context.Context, uuid.UUID, domain.Capability) (bool, error) {
	return a.allow, nil
}

// Every privileged mutation must consult the authorizer before touching any
// collaborator: with a denying authorizer and nil repositories, each call
// has to come back ErrUnauthorized instead of reaching the nil repo. This
// covers the account mutations (suspend, activate, role change) alongside
// settlement and balance adjustment.
func TestSettlement_DeniedAdminIsRefusedEverywhere(t *testing.T) {
	svc := service.NewSettlementService(nil, nil, nil, nil, stubAuthorizer{allow: false})
	ctx := context.Background()
	adminID, userID, betID := uuid.New(), uuid.New(), uuid.New()

	calls := map[string]func() error{
		"SetUserActive": func() error {
			return svc.SetUserActive(ctx, adminID, userID, false)
		},
		"SetUserRole": func() error {
			return svc.SetUserRole(ctx, adminID, userID, domain.RoleAdmin)
		},
		"AdjustBalance": func() error {
			return svc.AdjustBalance(ctx, adminID, userID,
				domain.NewMoney(domain.CurrencyUSD, decimal.NewFromInt(100)),
				domain.TxDeposit, "")
		},
		"Approve": func() error {
			_, err := svc.Approve(ctx, adminID, betID)
			return err
		},
		"Settle": func() error {
			_, err := svc.Settle(ctx, adminID, betID, domain.BetStatusWon, nil)
			return err
		},
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s with revoked grant: error = %v, want ErrUnauthorized", name, err)
		}
	}
}

// An adjustment that rounds to zero is rejected with its own sentinel before
// any transaction begins.
func TestSettlement_ZeroAdjustmentRejected(t *testing.T) {
	ledger := service.NewLedgerService(nil, nil, nil, config.LedgerConfig{
		MinStakeUSD: 1, MinStakeBTC: 0.0001, MaxParlayLegs: 12,
	})
	svc := service.NewSettlementService(ledger, nil, nil, nil, stubAuthorizer{allow: true})

	err := svc.AdjustBalance(context.Background(), uuid.New(), uuid.New(),
		domain.NewMoney(domain.CurrencyUSD, decimal.Zero), domain.TxAdjustment, "no-op")
	if !errors.Is(err, domain.ErrZeroAdjustment) {
		t.Errorf("zero adjustment error = %v, want ErrZeroAdjustment", err)
	}

	// Sub-cent USD amounts round to zero and are equally refused.
	err = svc.AdjustBalance(context.Background(), uuid.New(), uuid.New(),
		domain.NewMoney(domain.CurrencyUSD, decimal.NewFromFloat(0.001)), domain.TxAdjustment, "")
	if !errors.Is(err, domain.ErrZeroAdjustment) {
		t.Errorf("sub-cent adjustment error = %v, want ErrZeroAdjustment", err)
	}
}
