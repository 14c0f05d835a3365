package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/volunteer-credits/internal/model"
)

// StatsRepo computes dashboard aggregates.  Nothing here is cached.
type StatsRepo struct {
	db *sqlx.DB
}

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

const policeStatsQuery = `SELECT
	(SELECT COUNT(*) FROM opportunities WHERE created_by_id = ? AND is_active = TRUE) AS active_opportunities,
	(SELECT COUNT(*) FROM applications a JOIN opportunities o ON o.id = a.opportunity_id
		WHERE o.created_by_id = ? AND a.status = 'approved') AS total_volunteers,
	(SELECT COUNT(*) FROM applications a JOIN opportunities o ON o.id = a.opportunity_id
		WHERE o.created_by_id = ? AND a.status = 'pending') AS pending_applications,
	(SELECT COUNT(*) FROM applications a JOIN opportunities o ON o.id = a.opportunity_id
		WHERE o.created_by_id = ? AND a.status = 'completed') AS completed_tasks`

// PoliceStats returns the four counts for opportunities owned by policeID.
func (r *StatsRepo) PoliceStats(ctx context.Context, policeID string) (model.PoliceStats, error) {
	var s model.PoliceStats
	err := r.db.GetContext(ctx, &s, r.db.Rebind(policeStatsQuery), policeID, policeID, policeID, policeID)
	if err != nil {
		return model.PoliceStats{}, fmt.Errorf("police stats: %w", err)
	}
	return s, nil
}
