// Package storage provides the record store for the six content-engine
// entity kinds. Two backends exist: a gorm/postgres store (durable) and an
// in-memory store (mock-data mode and tests). Services only depend on the
// contracts here.
package storage

import (
	"context"
	"errors"
	"time"

	"content-engine/models"
)

// ErrNotFound is returned when a record does not exist for the given id or
// key. Backends translate their native not-found errors into this one.
var ErrNotFound = errors.New("record not found")

// TopicFilter narrows topic listings.
type TopicFilter struct {
	Approved *bool
	Limit    int
}

// ScriptFilter narrows script listings.
type ScriptFilter struct {
	Status   models.ContentStatus
	Approved *bool
	Limit    int
}

// VideoFilter narrows video listings.
type VideoFilter struct {
	Status models.ContentStatus
	Limit  int
}

// ContentPieceFilter narrows content piece listings.
type ContentPieceFilter struct {
	Platform models.Platform
	Status   models.ContentStatus
	Limit    int
}

// PriorityFilter narrows priority listings. Results are ordered by
// priority_score descending.
type PriorityFilter struct {
	Blocked *bool
	Limit   int
}

// TopicStore persists research topics.
type TopicStore interface {
	List(ctx context.Context, filter TopicFilter) ([]models.ResearchTopic, error)
	Get(ctx context.Context, id string) (*models.ResearchTopic, error)
	Create(ctx context.Context, topic *models.ResearchTopic) error
	Update(ctx context.Context, topic *models.ResearchTopic) error
}

// ScriptStore persists scripts.
type ScriptStore interface {
	List(ctx context.Context, filter ScriptFilter) ([]models.Script, error)
	Get(ctx context.Context, id string) (*models.Script, error)
	Create(ctx context.Context, script *models.Script) error
	Update(ctx context.Context, script *models.Script) error
}

// VideoStore persists videos.
type VideoStore interface {
	List(ctx context.Context, filter VideoFilter) ([]models.Video, error)
	Get(ctx context.Context, id string) (*models.Video, error)
	Create(ctx context.Context, video *models.Video) error
	Update(ctx context.Context, video *models.Video) error
}

// ContentPieceStore persists content pieces.
//
// ClaimProcessing is the compare-and-swap that guards the publish critical
// section: it moves a piece from pending to processing only if it is still
// pending, so two concurrent processors cannot double-publish one piece.
type ContentPieceStore interface {
	List(ctx context.Context, filter ContentPieceFilter) ([]models.ContentPiece, error)
	Get(ctx context.Context, id string) (*models.ContentPiece, error)
	Create(ctx context.Context, piece *models.ContentPiece) error
	Update(ctx context.Context, piece *models.ContentPiece) error

	// ListScheduled returns pieces whose scheduled_for lies in [from, to],
	// ordered by scheduled_for ascending.
	ListScheduled(ctx context.Context, from, to time.Time) ([]models.ContentPiece, error)

	// ClaimProcessing atomically transitions the piece pending -> processing
	// and returns the claimed piece. A piece in any other state yields an
	// *models.InvalidStateTransitionError.
	ClaimProcessing(ctx context.Context, id string) (*models.ContentPiece, error)
}

// AnalyticsStore persists post analytics samples, unique per
// (content_piece_id, metrics_date).
type AnalyticsStore interface {
	// ListForPiece returns all samples for a piece, newest metrics_date first.
	ListForPiece(ctx context.Context, pieceID string) ([]models.PostAnalytics, error)

	// Upsert inserts or replaces the sample for (ContentPieceID, MetricsDate).
	Upsert(ctx context.Context, sample *models.PostAnalytics) error
}

// PriorityStore persists keyword priority entries, unique per keyword.
type PriorityStore interface {
	List(ctx context.Context, filter PriorityFilter) ([]models.ResearchPriority, error)
	GetByKeyword(ctx context.Context, keyword string) (*models.ResearchPriority, error)

	// UpsertByKeyword inserts or replaces the entry for entry.Keyword.
	UpsertByKeyword(ctx context.Context, entry *models.ResearchPriority) error
}

// Store bundles all record stores behind one handle.
type Store struct {
	Topics     TopicStore
	Scripts    ScriptStore
	Videos     VideoStore
	Pieces     ContentPieceStore
	Analytics  AnalyticsStore
	Priorities PriorityStore
}
