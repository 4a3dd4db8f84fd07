package models

import "time"

// PostAnalytics is one dated measurement for a content piece. Unique per
// (content_piece_id, metrics_date); ingestion upserts on that pair.
type PostAnalytics struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ContentPieceID string   `json:"content_piece_id" gorm:"type:uuid;index:idx_analytics_piece_date,unique;not null"`
	MetricsDate    string   `json:"metrics_date" gorm:"index:idx_analytics_piece_date,unique;not null"` // YYYY-MM-DD
	Platform       Platform `json:"platform" gorm:"index"`

	Views       int `json:"views"`
	Likes       int `json:"likes"`
	Comments    int `json:"comments"`
	Shares      int `json:"shares"`
	Saves       int `json:"saves"`
	Impressions int `json:"impressions"`
	Reach       int `json:"reach"`

	// EngagementRate is (likes+comments+shares+saves)/views, 0 when views=0.
	EngagementRate float64 `json:"engagement_rate"`

	WatchTimeSeconds   int `json:"watch_time_seconds"`
	AvgWatchPercentage int `json:"avg_watch_percentage"`
	NewFollowers       int `json:"new_followers"`
	ProfileVisits      int `json:"profile_visits"`
	LinkClicks         int `json:"link_clicks"`

	RawMetrics map[string]any `json:"raw_metrics" gorm:"serializer:json"`

	FetchedAt time.Time `json:"fetched_at"`
}

// TableName sets the explicit table name.
func (PostAnalytics) TableName() string {
	return "post_analytics"
}
