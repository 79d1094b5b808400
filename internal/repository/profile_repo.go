package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ProfileRepository handles all database operations for balance profiles and
// the transaction ledger.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// balanceColumn maps a currency to its profile column. Column names cannot be
// bound as query parameters, so the two queries are built per currency.
func balanceColumn(c domain.Currency) string {
	if c == domain.CurrencyBTC {
		return "balance_btc"
	}
	return "balance_usd"
}

// GetByUserID fetches the balance profile belonging to a specific user.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile_repo.GetByUserID: %w", err)
	}
	return &p, nil
}

// Create inserts a new profile inside a transaction (registration flow).
func (r *ProfileRepository) Create(ctx context.Context, tx *sqlx.Tx, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, balance_usd, balance_btc, created_at, updated_at)
		VALUES (:user_id, :balance_usd, :balance_btc, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("profile_repo.Create: %w", err)
	}
	return nil
}

// DebitBalance subtracts a stake from the profile balance in the money's
// currency inside a transaction. Uses FOR UPDATE to serialise concurrent
// placements per user; returns ErrInsufficientFunds when the balance cannot
// cover the amount, leaving the row untouched. The balance before and after
// the debit are returned for the ledger audit row.
func (r *ProfileRepository) DebitBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount domain.Money) (before, after decimal.Decimal, err error) {
	col := balanceColumn(amount.Currency)

	err = tx.GetContext(ctx, &before,
		fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1 FOR UPDATE`, col),
		userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrProfileNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("profile_repo.DebitBalance lock: %w", err)
	}

	if before.LessThan(amount.Amount) {
		return decimal.Zero, decimal.Zero, domain.ErrInsufficientFunds
	}

	after = before.Sub(amount.Amount)
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE profiles SET %s = $1, updated_at = now() WHERE user_id = $2`, col),
		after, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("profile_repo.DebitBalance update: %w", err)
	}
	return before, after, nil
}

// CreditBalance adds an amount to the profile balance in the money's currency
// inside a transaction. The row is locked so the returned before/after pair
// is consistent with the audit row written alongside.
func (r *ProfileRepository) CreditBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount domain.Money) (before, after decimal.Decimal, err error) {
	col := balanceColumn(amount.Currency)

	err = tx.GetContext(ctx, &before,
		fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1 FOR UPDATE`, col),
		userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrProfileNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("profile_repo.CreditBalance lock: %w", err)
	}

	after = before.Add(amount.Amount)
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE profiles SET %s = $1, updated_at = now() WHERE user_id = $2`, col),
		after, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("profile_repo.CreditBalance update: %w", err)
	}
	return before, after, nil
}

// AdjustBalance applies a signed adjustment (positive = credit, negative =
// debit) inside a transaction. Returns ErrNegativeResultingBalance when the
// result would go below zero, leaving the row untouched.
func (r *ProfileRepository) AdjustBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount domain.Money) (before, after decimal.Decimal, err error) {
	col := balanceColumn(amount.Currency)

	err = tx.GetContext(ctx, &before,
		fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1 FOR UPDATE`, col),
		userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, decimal.Zero, domain.ErrProfileNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("profile_repo.AdjustBalance lock: %w", err)
	}

	after = before.Add(amount.Amount)
	if after.IsNegative() {
		return decimal.Zero, decimal.Zero, domain.ErrNegativeResultingBalance
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE profiles SET %s = $1, updated_at = now() WHERE user_id = $2`, col),
		after, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("profile_repo.AdjustBalance update: %w", err)
	}
	return before, after, nil
}

// LogTransaction inserts an audit record into transactions inside a
// transaction. Every balance mutation writes exactly one of these.
func (r *ProfileRepository) LogTransaction(ctx context.Context, tx *sqlx.Tx, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions
			(id, user_id, type, amount_usd, amount_btc, balance_before, balance_after, ref_id, note, created_at)
		VALUES
			(:id, :user_id, :type, :amount_usd, :amount_btc, :balance_before, :balance_after, :ref_id, :note, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, txn); err != nil {
		return fmt.Errorf("profile_repo.LogTransaction: %w", err)
	}
	return nil
}

// GetTransactions returns paginated transaction history for a user.
func (r *ProfileRepository) GetTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	err := r.db.SelectContext(ctx, &txns, `
		SELECT * FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("profile_repo.GetTransactions: %w", err)
	}
	return txns, nil
}

// ListTransactions returns recent transactions across all users, optionally
// filtered by type. type="" means all types. Used by the back-office finance
// view.
func (r *ProfileRepository) ListTransactions(ctx context.Context, txType string, limit, offset int) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	var err error
	if txType != "" {
		err = r.db.SelectContext(ctx, &txns, `
			SELECT * FROM transactions
			WHERE type = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`,
			txType, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &txns, `
			SELECT * FROM transactions
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("profile_repo.ListTransactions: %w", err)
	}
	return txns, nil
}
