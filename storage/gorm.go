package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"content-engine/models"
)

// NewGormStore builds the postgres-backed record store.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Topics:     &gormTopicStore{db: db},
		Scripts:    &gormScriptStore{db: db},
		Videos:     &gormVideoStore{db: db},
		Pieces:     &gormPieceStore{db: db},
		Analytics:  &gormAnalyticsStore{db: db},
		Priorities: &gormPriorityStore{db: db},
	}
}

// AutoMigrate creates or updates the tables for all entity kinds.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ResearchTopic{},
		&models.Script{},
		&models.Video{},
		&models.ContentPiece{},
		&models.PostAnalytics{},
		&models.ResearchPriority{},
	)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// --- topics ---

type gormTopicStore struct{ db *gorm.DB }

func (s *gormTopicStore) List(ctx context.Context, filter TopicFilter) ([]models.ResearchTopic, error) {
	query := s.db.WithContext(ctx).Model(&models.ResearchTopic{}).Order("created_at desc")
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var topics []models.ResearchTopic
	if err := query.Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (s *gormTopicStore) Get(ctx context.Context, id string) (*models.ResearchTopic, error) {
	var topic models.ResearchTopic
	if err := s.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &topic, nil
}

func (s *gormTopicStore) Create(ctx context.Context, topic *models.ResearchTopic) error {
	ensureID(&topic.ID)
	return s.db.WithContext(ctx).Create(topic).Error
}

func (s *gormTopicStore) Update(ctx context.Context, topic *models.ResearchTopic) error {
	res := s.db.WithContext(ctx).Model(&models.ResearchTopic{}).Where("id = ?", topic.ID).Select("*").Omit("id", "created_at").Updates(topic)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- scripts ---

type gormScriptStore struct{ db *gorm.DB }

func (s *gormScriptStore) List(ctx context.Context, filter ScriptFilter) ([]models.Script, error) {
	query := s.db.WithContext(ctx).Model(&models.Script{}).Order("created_at desc")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var scripts []models.Script
	if err := query.Find(&scripts).Error; err != nil {
		return nil, err
	}
	return scripts, nil
}

func (s *gormScriptStore) Get(ctx context.Context, id string) (*models.Script, error) {
	var script models.Script
	if err := s.db.WithContext(ctx).First(&script, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &script, nil
}

func (s *gormScriptStore) Create(ctx context.Context, script *models.Script) error {
	ensureID(&script.ID)
	return s.db.WithContext(ctx).Create(script).Error
}

func (s *gormScriptStore) Update(ctx context.Context, script *models.Script) error {
	res := s.db.WithContext(ctx).Model(&models.Script{}).Where("id = ?", script.ID).Select("*").Omit("id", "created_at").Updates(script)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- videos ---

type gormVideoStore struct{ db *gorm.DB }

func (s *gormVideoStore) List(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	query := s.db.WithContext(ctx).Model(&models.Video{}).Order("created_at desc")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var videos []models.Video
	if err := query.Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *gormVideoStore) Get(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := s.db.WithContext(ctx).First(&video, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &video, nil
}

func (s *gormVideoStore) Create(ctx context.Context, video *models.Video) error {
	ensureID(&video.ID)
	return s.db.WithContext(ctx).Create(video).Error
}

func (s *gormVideoStore) Update(ctx context.Context, video *models.Video) error {
	res := s.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", video.ID).Select("*").Omit("id", "created_at").Updates(video)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- content pieces ---

type gormPieceStore struct{ db *gorm.DB }

func (s *gormPieceStore) List(ctx context.Context, filter ContentPieceFilter) ([]models.ContentPiece, error) {
	query := s.db.WithContext(ctx).Model(&models.ContentPiece{}).Order("created_at desc")
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var pieces []models.ContentPiece
	if err := query.Find(&pieces).Error; err != nil {
		return nil, err
	}
	return pieces, nil
}

func (s *gormPieceStore) Get(ctx context.Context, id string) (*models.ContentPiece, error) {
	var piece models.ContentPiece
	if err := s.db.WithContext(ctx).First(&piece, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &piece, nil
}

func (s *gormPieceStore) Create(ctx context.Context, piece *models.ContentPiece) error {
	ensureID(&piece.ID)
	if piece.Status == "" {
		piece.Status = models.StatusPending
	}
	return s.db.WithContext(ctx).Create(piece).Error
}

func (s *gormPieceStore) Update(ctx context.Context, piece *models.ContentPiece) error {
	res := s.db.WithContext(ctx).Model(&models.ContentPiece{}).Where("id = ?", piece.ID).Select("*").Omit("id", "created_at").Updates(piece)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormPieceStore) ListScheduled(ctx context.Context, from, to time.Time) ([]models.ContentPiece, error) {
	var pieces []models.ContentPiece
	err := s.db.WithContext(ctx).
		Where("scheduled_for >= ? AND scheduled_for <= ?", from, to).
		Order("scheduled_for asc").
		Find(&pieces).Error
	if err != nil {
		return nil, err
	}
	return pieces, nil
}

func (s *gormPieceStore) ClaimProcessing(ctx context.Context, id string) (*models.ContentPiece, error) {
	res := s.db.WithContext(ctx).Model(&models.ContentPiece{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", models.StatusProcessing)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race or the piece was never pending. Report against the
		// state we can observe now.
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &models.InvalidStateTransitionError{From: current.Status, To: models.StatusProcessing}
	}
	return s.Get(ctx, id)
}

// --- analytics ---

type gormAnalyticsStore struct{ db *gorm.DB }

func (s *gormAnalyticsStore) ListForPiece(ctx context.Context, pieceID string) ([]models.PostAnalytics, error) {
	var samples []models.PostAnalytics
	err := s.db.WithContext(ctx).
		Where("content_piece_id = ?", pieceID).
		Order("metrics_date desc").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

func (s *gormAnalyticsStore) Upsert(ctx context.Context, sample *models.PostAnalytics) error {
	ensureID(&sample.ID)
	updateColumns := []string{
		"platform", "views", "likes", "comments", "shares", "saves",
		"impressions", "reach", "engagement_rate", "watch_time_seconds",
		"avg_watch_percentage", "new_followers", "profile_visits",
		"link_clicks", "raw_metrics", "fetched_at", "updated_at",
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_piece_id"}, {Name: "metrics_date"}},
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(sample).Error
}

// --- priorities ---

type gormPriorityStore struct{ db *gorm.DB }

func (s *gormPriorityStore) List(ctx context.Context, filter PriorityFilter) ([]models.ResearchPriority, error) {
	query := s.db.WithContext(ctx).Model(&models.ResearchPriority{}).Order("priority_score desc")
	if filter.Blocked != nil {
		query = query.Where("is_blocked = ?", *filter.Blocked)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var entries []models.ResearchPriority
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *gormPriorityStore) GetByKeyword(ctx context.Context, keyword string) (*models.ResearchPriority, error) {
	var entry models.ResearchPriority
	if err := s.db.WithContext(ctx).First(&entry, "keyword = ?", keyword).Error; err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (s *gormPriorityStore) UpsertByKeyword(ctx context.Context, entry *models.ResearchPriority) error {
	ensureID(&entry.ID)
	updateColumns := []string{
		"category", "total_posts", "avg_engagement_rate", "total_views",
		"total_engagement", "priority_score", "manual_boost", "is_blocked",
		"notes", "last_used_at", "updated_at",
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "keyword"}},
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(entry).Error
}
