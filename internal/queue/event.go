// Package queue defines message payloads exchanged over the message broker.
package queue

// LedgerEvent is published after a credit or debit commits.  It carries
// enough for downstream consumers to audit or notify without querying the
// primary database.  Voucher codes are never included.
type LedgerEvent struct {
	Type        string `json:"type"`        // earned | spent
	UserID      string `json:"userId"`
	Amount      int    `json:"amount"`
	Balance     int    `json:"balance"`     // balance right after the change
	Description string `json:"description"`
	RelatedID   string `json:"relatedId"`   // opportunity or reward id
	OccurredAt  string `json:"occurredAt"`  // RFC 3339, UTC
}
