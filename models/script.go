package models

import "time"

// Script is a generated script text for a topic. Generation itself is an
// external asynchronous producer; the engine only tracks the records.
type Script struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TopicID *string `json:"topic_id,omitempty" gorm:"type:uuid;index"`

	Title        string `json:"title" gorm:"not null"`
	Hook         string `json:"hook" gorm:"type:text"`
	Body         string `json:"body" gorm:"type:text"`
	CallToAction string `json:"call_to_action,omitempty"`

	TargetFormat          ContentFormat `json:"target_format"`
	TargetDurationSeconds int           `json:"target_duration_seconds,omitempty"`
	WordCount             int           `json:"word_count,omitempty"`
	Tone                  string        `json:"tone,omitempty"`

	Status  ContentStatus `json:"status" gorm:"index;default:'pending'"`
	Version int           `json:"version" gorm:"default:1"`

	IsApproved bool       `json:"is_approved" gorm:"index;default:false"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// TableName sets the explicit table name.
func (Script) TableName() string {
	return "scripts"
}
