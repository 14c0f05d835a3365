package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/volunteer-credits/internal/model"
)

const rewardColumns = "id, title, description, brand, category, credits_required, is_active, is_featured"

// RewardRepo reads and seeds the reward catalog.
type RewardRepo struct {
	db *sqlx.DB
}

func NewRewardRepo(db *sqlx.DB) *RewardRepo { return &RewardRepo{db: db} }

// Create assigns an id and inserts the reward.
func (r *RewardRepo) Create(ctx context.Context, rw *model.Reward) error {
	rw.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO rewards ("+rewardColumns+") VALUES (?,?,?,?,?,?,?,?)"),
		rw.ID, rw.Title, rw.Description, rw.Brand, rw.Category, rw.CreditsRequired, rw.IsActive, rw.IsFeatured)
	if err != nil {
		return fmt.Errorf("insert reward: %w", err)
	}
	return nil
}

// GetByID returns ErrRewardNotFound when no row matches; inactive rewards
// are returned as-is.
func (r *RewardRepo) GetByID(ctx context.Context, id string) (*model.Reward, error) {
	var rw model.Reward
	err := r.db.GetContext(ctx, &rw, r.db.Rebind("SELECT "+rewardColumns+" FROM rewards WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return &rw, nil
}

// ListActive returns the active catalog.
func (r *RewardRepo) ListActive(ctx context.Context) ([]model.Reward, error) {
	return r.list(ctx, "SELECT "+rewardColumns+" FROM rewards WHERE is_active = TRUE ORDER BY credits_required, title")
}

// ListFeatured returns active rewards flagged as featured.
func (r *RewardRepo) ListFeatured(ctx context.Context) ([]model.Reward, error) {
	return r.list(ctx, "SELECT "+rewardColumns+" FROM rewards WHERE is_active = TRUE AND is_featured = TRUE ORDER BY credits_required, title")
}

func (r *RewardRepo) list(ctx context.Context, q string) ([]model.Reward, error) {
	out := []model.Reward{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return out, nil
}

// ExistsByBrandTitle reports whether a reward with this brand and title is
// already in the catalog.
func (r *RewardRepo) ExistsByBrandTitle(ctx context.Context, brand, title string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind("SELECT COUNT(*) FROM rewards WHERE brand = ? AND title = ?"), brand, title)
	if err != nil {
		return false, fmt.Errorf("check reward: %w", err)
	}
	return n > 0, nil
}
