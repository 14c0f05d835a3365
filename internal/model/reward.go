package model

import "time"

// Reward is a redeemable catalog item.
type Reward struct {
	ID              string `db:"id" json:"id" yaml:"-"`
	Title           string `db:"title" json:"title" yaml:"title"`
	Description     string `db:"description" json:"description" yaml:"description"`
	Brand           string `db:"brand" json:"brand" yaml:"brand"`
	Category        string `db:"category" json:"category" yaml:"category"`
	CreditsRequired int    `db:"credits_required" json:"creditsRequired" yaml:"creditsRequired"`
	IsActive        bool   `db:"is_active" json:"isActive" yaml:"isActive"`
	IsFeatured      bool   `db:"is_featured" json:"isFeatured" yaml:"isFeatured"`
}

// Redemption records a reward exchanged for a voucher.  It is always written
// together with one spent Transaction.
type Redemption struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	RewardID    string    `db:"reward_id" json:"rewardId"`
	VoucherCode string    `db:"voucher_code" json:"voucherCode"`
	RedeemedAt  time.Time `db:"redeemed_at" json:"redeemedAt"`
}
