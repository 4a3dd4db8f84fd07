package models

import "time"

// ResearchPriority is the keyword-level ranking record the analytics
// feedback loop maintains. PriorityScore is always recomputed from the
// aggregates, never stored independently of its inputs.
type ResearchPriority struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Keyword  string `json:"keyword" gorm:"uniqueIndex;not null"`
	Category string `json:"category,omitempty" gorm:"index"`

	TotalPosts        int     `json:"total_posts"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	TotalViews        int     `json:"total_views"`
	TotalEngagement   int     `json:"total_engagement"`

	// PriorityScore is clamped to [0,100].
	PriorityScore float64 `json:"priority_score" gorm:"index"`

	// ManualBoost in [-1,1] and IsBlocked are operator-set; the recompute
	// carries them through unchanged.
	ManualBoost float64 `json:"manual_boost"`
	IsBlocked   bool    `json:"is_blocked" gorm:"default:false"`

	Notes      string     `json:"notes,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// TableName sets the explicit table name.
func (ResearchPriority) TableName() string {
	return "research_priorities"
}
