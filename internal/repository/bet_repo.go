package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// BetRepository handles all database operations for bets and their
// selections.
type BetRepository struct {
	db *sqlx.DB
}

// NewBetRepository creates a new BetRepository.
func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

// Create inserts a new bet and its selection rows inside an existing
// transaction. The selections snapshot is immutable after this point.
func (r *BetRepository) Create(ctx context.Context, tx *sqlx.Tx, b *domain.Bet) error {
	query := `
		INSERT INTO bets
			(id, user_id, bet_type, status, stake_usd, stake_btc,
			 potential_payout_usd, potential_payout_btc, placed_at)
		VALUES
			(:id, :user_id, :bet_type, :status, :stake_usd, :stake_btc,
			 :potential_payout_usd, :potential_payout_btc, :placed_at)`
	if _, err := tx.NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("bet_repo.Create: %w", err)
	}

	selQuery := `
		INSERT INTO bet_selections
			(id, bet_id, event_id, league, event_label, market, outcome, line, odds, created_at)
		VALUES
			(:id, :bet_id, :event_id, :league, :event_label, :market, :outcome, :line, :odds, :created_at)`
	for i := range b.Selections {
		if _, err := tx.NamedExecContext(ctx, selQuery, &b.Selections[i]); err != nil {
			return fmt.Errorf("bet_repo.Create selection: %w", err)
		}
	}
	return nil
}

// GetByID fetches a bet with its selections.
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bet, error) {
	var b domain.Bet
	err := r.db.GetContext(ctx, &b, `SELECT * FROM bets WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBetNotFound
		}
		return nil, fmt.Errorf("bet_repo.GetByID: %w", err)
	}
	if err := r.loadSelections(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDForUpdate fetches a bet row locked inside the given transaction.
// Used by settlement to serialise concurrent retries on the same bet.
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Bet, error) {
	var b domain.Bet
	err := tx.GetContext(ctx, &b, `SELECT * FROM bets WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBetNotFound
		}
		return nil, fmt.Errorf("bet_repo.GetByIDForUpdate: %w", err)
	}
	return &b, nil
}

// GetByUserID returns a user's bet history, newest first, paginated.
// openOnly=nil returns everything; otherwise the open/settled split.
func (r *BetRepository) GetByUserID(ctx context.Context, userID uuid.UUID, openOnly *bool, limit, offset int) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	var err error
	switch {
	case openOnly == nil:
		err = r.db.SelectContext(ctx, &bets,
			`SELECT * FROM bets WHERE user_id = $1 ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
			userID, limit, offset)
	case *openOnly:
		err = r.db.SelectContext(ctx, &bets,
			`SELECT * FROM bets WHERE user_id = $1 AND status IN ('pending', 'approved')
			 ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
			userID, limit, offset)
	default:
		err = r.db.SelectContext(ctx, &bets,
			`SELECT * FROM bets WHERE user_id = $1 AND status NOT IN ('pending', 'approved')
			 ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
			userID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetByUserID: %w", err)
	}
	for _, b := range bets {
		if err := r.loadSelections(ctx, b); err != nil {
			return nil, err
		}
	}
	return bets, nil
}

// ListByStatus returns bets in a given status across all users, oldest first
// (settlement queue ordering), paginated.
func (r *BetRepository) ListByStatus(ctx context.Context, status domain.BetStatus, limit, offset int) ([]*domain.Bet, error) {
	var bets []*domain.Bet
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bets WHERE status = $1 ORDER BY placed_at ASC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.ListByStatus: %w", err)
	}
	for _, b := range bets {
		if err := r.loadSelections(ctx, b); err != nil {
			return nil, err
		}
	}
	return bets, nil
}

// CountByStatus returns the number of bets in a given status.
func (r *BetRepository) CountByStatus(ctx context.Context, status domain.BetStatus) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bets WHERE status = $1`, string(status))
	if err != nil {
		return 0, fmt.Errorf("bet_repo.CountByStatus: %w", err)
	}
	return n, nil
}

// TransitionStatus moves a bet from one status to another inside a
// transaction. The WHERE clause pins the expected current status so a
// concurrent retry affects zero rows instead of double-applying; zero rows
// with an existing bet means the transition already happened.
func (r *BetRepository) TransitionStatus(ctx context.Context, tx *sqlx.Tx, betID uuid.UUID, from, to domain.BetStatus, payout *domain.Money) error {
	var payoutUSD, payoutBTC *decimal.Decimal
	if payout != nil {
		amt := payout.Amount
		if payout.Currency == domain.CurrencyBTC {
			payoutBTC = &amt
		} else {
			payoutUSD = &amt
		}
	}

	query := `
		UPDATE bets
		SET status     = $1,
		    payout_usd = COALESCE($2, payout_usd),
		    payout_btc = COALESCE($3, payout_btc),
		    settled_at = CASE WHEN $1 IN ('won', 'lost', 'void') THEN now() ELSE settled_at END
		WHERE id = $4 AND status = $5`
	res, err := tx.ExecContext(ctx, query, string(to), payoutUSD, payoutBTC, betID, string(from))
	if err != nil {
		return fmt.Errorf("bet_repo.TransitionStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadySettled
	}
	return nil
}

// LedgerReport holds aggregated wagering data for a date range. Sums are
// kept as strings to preserve decimal precision for JSON.
type LedgerReport struct {
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	StakedUSD       string    `json:"staked_usd"`
	StakedBTC       string    `json:"staked_btc"`
	PaidOutUSD      string    `json:"paid_out_usd"`
	PaidOutBTC      string    `json:"paid_out_btc"`
	BetCount        int       `json:"bet_count"`
	SettledBetCount int       `json:"settled_bet_count"`
}

// GetLedgerReport aggregates stakes and payouts for a date range from the
// transactions ledger.
func (r *BetRepository) GetLedgerReport(ctx context.Context, from, to time.Time) (*LedgerReport, error) {
	type row struct {
		StakedUSD  string `db:"staked_usd"`
		StakedBTC  string `db:"staked_btc"`
		PaidOutUSD string `db:"paid_out_usd"`
		PaidOutBTC string `db:"paid_out_btc"`
	}
	var fin row
	err := r.db.GetContext(ctx, &fin, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'bet_stake'  THEN -amount_usd ELSE 0 END), 0)::text AS staked_usd,
			COALESCE(SUM(CASE WHEN type = 'bet_stake'  THEN -amount_btc ELSE 0 END), 0)::text AS staked_btc,
			COALESCE(SUM(CASE WHEN type = 'bet_payout' THEN amount_usd  ELSE 0 END), 0)::text AS paid_out_usd,
			COALESCE(SUM(CASE WHEN type = 'bet_payout' THEN amount_btc  ELSE 0 END), 0)::text AS paid_out_btc
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetLedgerReport transactions: %w", err)
	}

	type brow struct {
		Count   int `db:"count"`
		Settled int `db:"settled"`
	}
	var bets brow
	err = r.db.GetContext(ctx, &bets, `
		SELECT
			COUNT(*) AS count,
			COUNT(*) FILTER (WHERE status IN ('won', 'lost', 'void')) AS settled
		FROM bets
		WHERE placed_at >= $1 AND placed_at < $2`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetLedgerReport bets: %w", err)
	}

	return &LedgerReport{
		From:            from,
		To:              to,
		StakedUSD:       fin.StakedUSD,
		StakedBTC:       fin.StakedBTC,
		PaidOutUSD:      fin.PaidOutUSD,
		PaidOutBTC:      fin.PaidOutBTC,
		BetCount:        bets.Count,
		SettledBetCount: bets.Settled,
	}, nil
}

// OpenExposure is the house liability snapshot: everything that could still
// pay out. Sums are kept as strings to preserve decimal precision for JSON.
type OpenExposure struct {
	PendingCount  int    `db:"pending_count"  json:"pending_count"`
	ApprovedCount int    `db:"approved_count" json:"approved_count"`
	HeldUSD       string `db:"held_usd"       json:"held_usd"`
	HeldBTC       string `db:"held_btc"       json:"held_btc"`
	LiabilityUSD  string `db:"liability_usd"  json:"liability_usd"`
	LiabilityBTC  string `db:"liability_btc"  json:"liability_btc"`
}

// GetOpenExposure aggregates held stakes across open bets and the maximum
// payout liability on approved bets.
func (r *BetRepository) GetOpenExposure(ctx context.Context) (*OpenExposure, error) {
	var exp OpenExposure
	err := r.db.GetContext(ctx, &exp, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending')  AS pending_count,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved_count,
			COALESCE(SUM(stake_usd) FILTER (WHERE status IN ('pending', 'approved')), 0)::text AS held_usd,
			COALESCE(SUM(stake_btc) FILTER (WHERE status IN ('pending', 'approved')), 0)::text AS held_btc,
			COALESCE(SUM(potential_payout_usd) FILTER (WHERE status = 'approved'), 0)::text    AS liability_usd,
			COALESCE(SUM(potential_payout_btc) FILTER (WHERE status = 'approved'), 0)::text    AS liability_btc
		FROM bets`)
	if err != nil {
		return nil, fmt.Errorf("bet_repo.GetOpenExposure: %w", err)
	}
	return &exp, nil
}

// loadSelections attaches the selection rows to a bet.
func (r *BetRepository) loadSelections(ctx context.Context, b *domain.Bet) error {
	err := r.db.SelectContext(ctx, &b.Selections,
		`SELECT * FROM bet_selections WHERE bet_id = $1 ORDER BY created_at ASC`, b.ID)
	if err != nil {
		return fmt.Errorf("bet_repo.loadSelections: %w", err)
	}
	return nil
}
