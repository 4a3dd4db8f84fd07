package models

import "time"

// Platform identifies a target social platform.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformThreads   Platform = "threads"
)

// AllPlatforms lists every supported platform in a stable order.
var AllPlatforms = []Platform{
	PlatformYouTube,
	PlatformTikTok,
	PlatformInstagram,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformThreads,
}

// ContentFormat describes the shape a piece takes on its platform.
type ContentFormat string

const (
	FormatShortForm ContentFormat = "short_form"
	FormatLongForm  ContentFormat = "long_form"
	FormatCarousel  ContentFormat = "carousel"
	FormatThread    ContentFormat = "thread"
	FormatArticle   ContentFormat = "article"
)

// ContentPiece is one platform-specific rendering of a script or video, the
// unit that gets scheduled and published.
//
// Invariants enforced by the core: posted_at is set iff status is completed,
// error_message is set iff status is failed, and scheduled_for is only
// meaningful while status is pending.
type ContentPiece struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	VideoID  *string `json:"video_id,omitempty" gorm:"type:uuid;index"`
	ScriptID *string `json:"script_id,omitempty" gorm:"type:uuid;index"`

	Platform Platform      `json:"platform" gorm:"index;not null"`
	Format   ContentFormat `json:"format" gorm:"not null"`

	Title    string   `json:"title" gorm:"not null"`
	Caption  string   `json:"caption,omitempty" gorm:"type:text"`
	Hashtags []string `json:"hashtags" gorm:"serializer:json"`
	Mentions []string `json:"mentions" gorm:"serializer:json"`

	MediaURL     string `json:"media_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	PlatformMetadata map[string]any `json:"platform_metadata" gorm:"serializer:json"`

	Status       ContentStatus `json:"status" gorm:"index;default:'pending'"`
	ScheduledFor *time.Time    `json:"scheduled_for,omitempty" gorm:"index"`
	PostedAt     *time.Time    `json:"posted_at,omitempty"`

	PlatformPostID  string `json:"platform_post_id,omitempty"`
	PlatformPostURL string `json:"platform_post_url,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

// TableName sets the explicit table name.
func (ContentPiece) TableName() string {
	return "content_pieces"
}
