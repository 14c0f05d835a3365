package model

import "time"

// Category is the closed set of opportunity kinds.
type Category string

const (
	CategoryTrafficManagement  Category = "traffic_management"
	CategoryCommunityEvents    Category = "community_events"
	CategoryAwarenessCampaigns Category = "awareness_campaigns"
	CategoryEmergencyResponse  Category = "emergency_response"
	CategorySafetyInitiative   Category = "safety_initiative"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryTrafficManagement,
	CategoryCommunityEvents,
	CategoryAwarenessCampaigns,
	CategoryEmergencyResponse,
	CategorySafetyInitiative,
}

// IsValidCategory reports whether s is one of Categories.
func IsValidCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Opportunity is a volunteer task posted by a police user.  VolunteersNeeded
// is informational; applications do not decrement it.
type Opportunity struct {
	ID               string    `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	Category         Category  `db:"category" json:"category"`
	Location         string    `db:"location" json:"location"`
	Date             time.Time `db:"starts_at" json:"date"`
	Duration         int       `db:"duration" json:"duration"` // hours
	VolunteersNeeded int       `db:"volunteers_needed" json:"volunteersNeeded"`
	CreditsReward    int       `db:"credits_reward" json:"creditsReward"`
	CreatedByID      string    `db:"created_by_id" json:"createdById"`
	IsActive         bool      `db:"is_active" json:"isActive"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// OpportunityPatch carries the optional fields of a partial update.  Nil
// pointers leave the column untouched.
type OpportunityPatch struct {
	Title            *string
	Description      *string
	Category         *Category
	Location         *string
	Date             *time.Time
	Duration         *int
	VolunteersNeeded *int
	CreditsReward    *int
	IsActive         *bool
}

// Empty reports whether the patch changes nothing.
func (p OpportunityPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Location == nil && p.Date == nil && p.Duration == nil &&
		p.VolunteersNeeded == nil && p.CreditsReward == nil && p.IsActive == nil
}
