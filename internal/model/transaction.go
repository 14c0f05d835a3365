package model

import "time"

// TransactionType distinguishes credit gains from credit spends.
type TransactionType string

const (
	TransactionEarned TransactionType = "earned"
	TransactionSpent  TransactionType = "spent"
)

// Transaction is an immutable ledger entry.  Amount is always positive; the
// sign comes from Type.  RelatedID points at the opportunity or reward that
// caused the entry.
type Transaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	Type        TransactionType `db:"type" json:"type"`
	Amount      int             `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	RelatedID   *string         `db:"related_id" json:"relatedId"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Signed returns the amount as a balance delta.
func (t Transaction) Signed() int {
	if t.Type == TransactionSpent {
		return -t.Amount
	}
	return t.Amount
}
