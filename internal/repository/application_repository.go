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

const applicationColumns = "id, opportunity_id, user_id, status, applied_at, completed_at"

// ApplicationRepo stores citizen applications.  The (user_id,
// opportunity_id) pair is unique at the storage level.
type ApplicationRepo struct {
	db *sqlx.DB
}

func NewApplicationRepo(db *sqlx.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// Exists reports whether the user already applied to the opportunity.
func (r *ApplicationRepo) Exists(ctx context.Context, userID, opportunityID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(
		"SELECT COUNT(*) FROM applications WHERE user_id = ? AND opportunity_id = ?"),
		userID, opportunityID)
	if err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return n > 0, nil
}

// Create inserts a pending application.  A concurrent duplicate that slips
// past Exists surfaces here as ErrAlreadyApplied.
func (r *ApplicationRepo) Create(ctx context.Context, userID, opportunityID string) (*model.Application, error) {
	a := &model.Application{
		ID:            uuid.NewString(),
		OpportunityID: opportunityID,
		UserID:        userID,
		Status:        model.StatusPending,
		AppliedAt:     time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO applications (id, opportunity_id, user_id, status, applied_at) VALUES (?,?,?,?,?)"),
		a.ID, a.OpportunityID, a.UserID, a.Status, a.AppliedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}

// GetByID returns ErrApplicationNotFound when no row matches.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	return getApplication(ctx, r.db, id)
}

// GetByIDTx is GetByID inside the caller's transaction.
func (r *ApplicationRepo) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*model.Application, error) {
	return getApplication(ctx, tx, id)
}

func getApplication(ctx context.Context, q sqlx.QueryerContext, id string) (*model.Application, error) {
	var a model.Application
	err := sqlx.GetContext(ctx, q, &a, rebind(q, "SELECT "+applicationColumns+" FROM applications WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &a, nil
}

// ListByUser returns the user's applications, newest first.
func (r *ApplicationRepo) ListByUser(ctx context.Context, userID string) ([]model.Application, error) {
	return r.list(ctx, "user_id", userID)
}

// ListByOpportunity returns the opportunity's applications, newest first.
func (r *ApplicationRepo) ListByOpportunity(ctx context.Context, opportunityID string) ([]model.Application, error) {
	return r.list(ctx, "opportunity_id", opportunityID)
}

func (r *ApplicationRepo) list(ctx context.Context, col, val string) ([]model.Application, error) {
	out := []model.Application{}
	q := "SELECT " + applicationColumns + " FROM applications WHERE " + col + " = ? ORDER BY applied_at DESC"
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), val); err != nil {
		return nil, fmt.Errorf("list applications by %s: %w", col, err)
	}
	return out, nil
}

// UpdateStatus moves an application from one status to another without side
// effects.  The update is conditional on the current status so a concurrent
// change makes it fail with ErrInvalidTransition instead of overwriting.
// Completion goes through CompleteTx instead.
func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id string, from, to model.ApplicationStatus) (*model.Application, error) {
	if !model.CanTransition(from, to) || to == model.StatusCompleted {
		return nil, ErrInvalidTransition
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE applications SET status = ? WHERE id = ? AND status = ?"), to, id, from)
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrInvalidTransition
	}
	return r.GetByID(ctx, id)
}

// CompleteTx marks an approved application completed at the given time.  Zero
// affected rows means it was not approved (or already completed), reported
// as ErrInvalidTransition so credits are never awarded twice.
func (r *ApplicationRepo) CompleteTx(ctx context.Context, tx *sqlx.Tx, id string, at time.Time) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(
		"UPDATE applications SET status = ?, completed_at = ? WHERE id = ? AND status = ?"),
		model.StatusCompleted, at.UTC(), id, model.StatusApproved)
	if err != nil {
		return fmt.Errorf("complete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete application: %w", err)
	}
	if n == 0 {
		return ErrInvalidTransition
	}
	return nil
}
