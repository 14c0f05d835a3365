package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/volunteer-credits/internal/model"
)

const transactionColumns = "id, user_id, type, amount, description, related_id, created_at"

// LedgerRepo owns every write to users.credits together with the
// transactions and redemptions tables.  Balance-changing methods only exist
// in Tx form: a balance update without its ledger row in the same
// transaction is never valid.
type LedgerRepo struct {
	db *sqlx.DB
}

func NewLedgerRepo(db *sqlx.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// CreditTx adds amount to the user's balance.
func (r *LedgerRepo) CreditTx(ctx context.Context, tx *sqlx.Tx, userID string, amount int) error {
	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE users SET credits = credits + ? WHERE id = ?"), amount, userID)
	if err != nil {
		return fmt.Errorf("credit user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DebitTx subtracts amount only if the balance covers it.  The check and the
// write are one statement, so two concurrent debits cannot both pass.
func (r *LedgerRepo) DebitTx(ctx context.Context, tx *sqlx.Tx, userID string, amount int) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(
		"UPDATE users SET credits = credits - ? WHERE id = ? AND credits >= ?"), amount, userID, amount)
	if err != nil {
		return fmt.Errorf("debit user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit user: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM users WHERE id = ?"), userID); err != nil {
		return fmt.Errorf("debit user: %w", err)
	}
	if exists == 0 {
		return ErrUserNotFound
	}
	return ErrInsufficientCredits
}

// BalanceTx reads the current balance inside the transaction.
func (r *LedgerRepo) BalanceTx(ctx context.Context, tx *sqlx.Tx, userID string) (int, error) {
	var credits int
	if err := tx.GetContext(ctx, &credits, tx.Rebind("SELECT credits FROM users WHERE id = ?"), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return credits, nil
}

// AppendTx writes an immutable ledger entry, filling ID and CreatedAt.
func (r *LedgerRepo) AppendTx(ctx context.Context, tx *sqlx.Tx, t *model.Transaction) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	_, err := tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?,?,?,?,?,?,?)"),
		t.ID, t.UserID, t.Type, t.Amount, t.Description, t.RelatedID, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// CreateRedemptionTx records a redemption, filling ID and RedeemedAt.
func (r *LedgerRepo) CreateRedemptionTx(ctx context.Context, tx *sqlx.Tx, rd *model.Redemption) error {
	rd.ID = uuid.NewString()
	rd.RedeemedAt = time.Now().UTC()
	_, err := tx.ExecContext(ctx, tx.Rebind(
		"INSERT INTO redemptions (id, user_id, reward_id, voucher_code, redeemed_at) VALUES (?,?,?,?,?)"),
		rd.ID, rd.UserID, rd.RewardID, rd.VoucherCode, rd.RedeemedAt)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// ListByUser returns the user's ledger, newest first.
func (r *LedgerRepo) ListByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	out := []model.Transaction{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY created_at DESC"), userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// LedgerSum returns Σ earned − Σ spent over the user's transactions.  It
// always equals users.credits when the ledger is consistent.  q may be the
// pool or an open transaction.
func (r *LedgerRepo) LedgerSum(ctx context.Context, q sqlx.QueryerContext, userID string) (int, error) {
	var sum int
	err := sqlx.GetContext(ctx, q, &sum, r.db.Rebind(`SELECT COALESCE(SUM(CASE WHEN type = 'earned' THEN amount ELSE -amount END), 0)
		FROM transactions WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return sum, nil
}
