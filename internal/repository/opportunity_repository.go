package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/volunteer-credits/internal/model"
)

const opportunityColumns = `id, title, description, category, location, starts_at, duration,
	volunteers_needed, credits_reward, created_by_id, is_active, created_at`

// OpportunityRepo encapsulates all queries on the opportunities table.
type OpportunityRepo struct {
	db *sqlx.DB
}

func NewOpportunityRepo(db *sqlx.DB) *OpportunityRepo { return &OpportunityRepo{db: db} }

// Create assigns an id and creation time and inserts the opportunity.  New
// opportunities are always active.
func (r *OpportunityRepo) Create(ctx context.Context, o *model.Opportunity) error {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	o.Date = o.Date.UTC()
	o.IsActive = true
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO opportunities ("+opportunityColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?)"),
		o.ID, o.Title, o.Description, o.Category, o.Location, o.Date, o.Duration,
		o.VolunteersNeeded, o.CreditsReward, o.CreatedByID, o.IsActive, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

// GetByID returns ErrOpportunityNotFound when no row matches.
func (r *OpportunityRepo) GetByID(ctx context.Context, id string) (*model.Opportunity, error) {
	return getOpportunity(ctx, r.db, id)
}

// GetByIDTx is GetByID inside the caller's transaction.
func (r *OpportunityRepo) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.Opportunity, error) {
	return getOpportunity(ctx, tx, id)
}

func getOpportunity(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Opportunity, error) {
	var o model.Opportunity
	err := sqlx.GetContext(ctx, q, &o, rebind(q, "SELECT "+opportunityColumns+" FROM opportunities WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return &o, nil
}

// ListActive returns active opportunities, newest first.
func (r *OpportunityRepo) ListActive(ctx context.Context) ([]model.Opportunity, error) {
	out := []model.Opportunity{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+opportunityColumns+" FROM opportunities WHERE is_active = TRUE ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return out, nil
}

// ListByCreator returns every opportunity the police user created, newest
// first, active or not.
func (r *OpportunityRepo) ListByCreator(ctx context.Context, creatorID string) ([]model.Opportunity, error) {
	out := []model.Opportunity{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(
		"SELECT "+opportunityColumns+" FROM opportunities WHERE created_by_id = ? ORDER BY created_at DESC"),
		creatorID)
	if err != nil {
		return nil, fmt.Errorf("list opportunities by creator: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields of p and returns the updated row.  An
// empty patch just returns the current row.
func (r *OpportunityRepo) Update(ctx context.Context, id string, p model.OpportunityPatch) (*model.Opportunity, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.Date != nil {
		add("starts_at", p.Date.UTC())
	}
	if p.Duration != nil {
		add("duration", *p.Duration)
	}
	if p.VolunteersNeeded != nil {
		add("volunteers_needed", *p.VolunteersNeeded)
	}
	if p.CreditsReward != nil {
		add("credits_reward", *p.CreditsReward)
	}
	if p.IsActive != nil {
		add("is_active", *p.IsActive)
	}
	args = append(args, id)

	q := "UPDATE opportunities SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("update opportunity: %w", err)
	}
	// RowsAffected is not used: MySQL reports 0 for unchanged values.
	return r.GetByID(ctx, id)
}
