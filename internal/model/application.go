package model

import "time"

// ApplicationStatus is the lifecycle state of an Application.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusCompleted ApplicationStatus = "completed"
)

// transitions lists the allowed next states.  Completed and rejected are
// terminal.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

// IsValidStatus reports whether s names a known status.
func IsValidStatus(s string) bool {
	switch ApplicationStatus(s) {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether an application may move from one status to
// another.
func CanTransition(from, to ApplicationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ApplicationStatus) IsTerminal() bool { return len(transitions[s]) == 0 }

// Application links one citizen to one opportunity.  CompletedAt is set only
// when the status becomes completed.
type Application struct {
	ID            string            `db:"id" json:"id"`
	OpportunityID string            `db:"opportunity_id" json:"opportunityId"`
	UserID        string            `db:"user_id" json:"userId"`
	Status        ApplicationStatus `db:"status" json:"status"`
	AppliedAt     time.Time         `db:"applied_at" json:"appliedAt"`
	CompletedAt   *time.Time        `db:"completed_at" json:"completedAt"`
}
