package models

import "time"

// Video is a rendered (or rendering) video for a script. The rendering
// backend is an opaque asynchronous producer; the record here is the durable
// truth about the job, the in-memory job arena is a disposable cache.
type Video struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ScriptID *string `json:"script_id,omitempty" gorm:"type:uuid;index"`

	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	Status ContentStatus `json:"status" gorm:"index;default:'pending'"`

	RenderJobID     string `json:"render_job_id,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	AudioURL        string `json:"audio_url,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Resolution      string `json:"resolution,omitempty" gorm:"default:'1080x1920'"`
	FileSizeBytes   int64  `json:"file_size_bytes,omitempty"`

	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	RetryCount   int    `json:"retry_count" gorm:"default:0"`
}

// TableName sets the explicit table name.
func (Video) TableName() string {
	return "videos"
}
