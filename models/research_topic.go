package models

import "time"

// TopicSource tells where a research topic was discovered.
type TopicSource string

const (
	SourceRSSFeed            TopicSource = "rss_feed"
	SourceTwitterTrending    TopicSource = "twitter_trending"
	SourceReddit             TopicSource = "reddit"
	SourceManual             TopicSource = "manual"
	SourceCompetitorAnalysis TopicSource = "competitor_analysis"
	SourceAudienceFeedback   TopicSource = "audience_feedback"
)

// ResearchTopic is a discovered topic candidate. Topics are produced by the
// external research component; the engine stores and ranks them.
type ResearchTopic struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	Source      TopicSource `json:"source" gorm:"index;default:'manual'"`
	SourceURL   string      `json:"source_url,omitempty"`

	RelevanceScore float64  `json:"relevance_score"`
	TrendingScore  float64  `json:"trending_score"`
	Keywords       []string `json:"keywords" gorm:"serializer:json"`
	Category       string   `json:"category,omitempty" gorm:"index"`

	IsApproved bool       `json:"is_approved" gorm:"index;default:false"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// TableName sets the explicit table name.
func (ResearchTopic) TableName() string {
	return "research_topics"
}
