package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// UserRole
// ──────────────────────────────────────────────────────────────────────────────

// UserRole controls access levels in the back-office.
type UserRole string

const (
	RoleUser  UserRole = "user"  // standard bettor
	RoleAdmin UserRole = "admin" // settlement console access
)

// Capability names a privileged operation checked before it runs.
type Capability string

const (
	CapSettleBets     Capability = "settle_bets"
	CapAdjustBalances Capability = "adjust_balances"
	CapViewUsers      Capability = "view_users"
	CapManageUsers    Capability = "manage_users"
)

// IsAdmin returns true only for the admin role.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// ──────────────────────────────────────────────────────────────────────────────
// User
// ──────────────────────────────────────────────────────────────────────────────

// User is the domain entity for registered accounts.
type User struct {
	ID           uuid.UUID `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Username     string    `json:"username"   db:"username"`
	PasswordHash string    `json:"-"          db:"password_hash"` // never serialised
	Role         UserRole  `json:"role"       db:"role"`
	IsActive     bool      `json:"is_active"  db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicProfile returns a user view safe to expose via API (no password hash).
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublicProfile converts a User to its public-safe representation.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Profile — dual-currency balances
// ──────────────────────────────────────────────────────────────────────────────

// Profile holds a user's USD and BTC balances. Both are invariantly
// non-negative; every mutation happens inside a ledger transaction that also
// writes a Transaction audit row.
type Profile struct {
	UserID     uuid.UUID       `json:"user_id"     db:"user_id"`
	BalanceUSD decimal.Decimal `json:"balance_usd" db:"balance_usd"`
	BalanceBTC decimal.Decimal `json:"balance_btc" db:"balance_btc"`
	CreatedAt  time.Time       `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"  db:"updated_at"`
}

// Balance returns the balance in the requested currency.
func (p *Profile) Balance(c Currency) decimal.Decimal {
	if c == CurrencyBTC {
		return p.BalanceBTC
	}
	return p.BalanceUSD
}

// CanCover returns true when the profile balance in the money's currency is
// at least the amount.
func (p *Profile) CanCover(m Money) bool {
	return p.Balance(m.Currency).GreaterThanOrEqual(m.Amount)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transaction — append-only ledger
// ──────────────────────────────────────────────────────────────────────────────

// TxType enumerates ledger transaction kinds for auditing.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxBetStake   TxType = "bet_stake"  // negative amount, placed wager
	TxBetPayout  TxType = "bet_payout" // positive amount, winning settlement
	TxAdjustment TxType = "adjustment" // refunds, voids, admin corrections
)

// Transaction is an immutable audit record. Exactly one row exists per
// balance mutation; amounts are signed and denominated in dual columns with
// the unused currency at zero.
type Transaction struct {
	ID            uuid.UUID       `json:"id"             db:"id"`
	UserID        uuid.UUID       `json:"user_id"        db:"user_id"`
	Type          TxType          `json:"type"           db:"type"`
	AmountUSD     decimal.Decimal `json:"amount_usd"     db:"amount_usd"`
	AmountBTC     decimal.Decimal `json:"amount_btc"     db:"amount_btc"`
	BalanceBefore decimal.Decimal `json:"balance_before" db:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"  db:"balance_after"`
	RefID         *uuid.UUID      `json:"ref_id"         db:"ref_id"` // bet ID when applicable
	Note          string          `json:"note"           db:"note"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}

// Amount returns the signed transaction amount as Money, picking the
// non-zero currency column.
func (t *Transaction) Amount() Money {
	if !t.AmountBTC.IsZero() {
		return NewMoney(CurrencyBTC, t.AmountBTC)
	}
	return NewMoney(CurrencyUSD, t.AmountUSD)
}
