package model

// PoliceStats aggregates a police user's owned opportunities.
type PoliceStats struct {
	ActiveOpportunities int `db:"active_opportunities" json:"activeOpportunities"`
	TotalVolunteers     int `db:"total_volunteers" json:"totalVolunteers"`         // approved applications
	PendingApplications int `db:"pending_applications" json:"pendingApplications"`
	CompletedTasks      int `db:"completed_tasks" json:"completedTasks"`
}
