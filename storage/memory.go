package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"content-engine/models"
)

// memData is the shared state behind the in-memory backend. One mutex guards
// everything; the "read state, decide, write state" sections the services
// rely on stay atomic per call.
type memData struct {
	mu         sync.RWMutex
	topics     map[string]models.ResearchTopic
	scripts    map[string]models.Script
	videos     map[string]models.Video
	pieces     map[string]models.ContentPiece
	analytics  map[string]models.PostAnalytics    // keyed by pieceID + "|" + metricsDate
	priorities map[string]models.ResearchPriority // keyed by keyword
}

// NewMemoryStore builds the in-memory record store used in mock-data mode
// and in tests. Every instance is fully isolated.
func NewMemoryStore() *Store {
	d := &memData{
		topics:     make(map[string]models.ResearchTopic),
		scripts:    make(map[string]models.Script),
		videos:     make(map[string]models.Video),
		pieces:     make(map[string]models.ContentPiece),
		analytics:  make(map[string]models.PostAnalytics),
		priorities: make(map[string]models.ResearchPriority),
	}
	return &Store{
		Topics:     &memTopicStore{d},
		Scripts:    &memScriptStore{d},
		Videos:     &memVideoStore{d},
		Pieces:     &memPieceStore{d},
		Analytics:  &memAnalyticsStore{d},
		Priorities: &memPriorityStore{d},
	}
}

func stamp(id *string, createdAt, updatedAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// --- topics ---

type memTopicStore struct{ d *memData }

func (s *memTopicStore) List(ctx context.Context, filter TopicFilter) ([]models.ResearchTopic, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.ResearchTopic
	for _, t := range s.d.topics {
		if filter.Approved != nil && t.IsApproved != *filter.Approved {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memTopicStore) Get(ctx context.Context, id string) (*models.ResearchTopic, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	t, ok := s.d.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (s *memTopicStore) Create(ctx context.Context, topic *models.ResearchTopic) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	stamp(&topic.ID, &topic.CreatedAt, &topic.UpdatedAt)
	s.d.topics[topic.ID] = *topic
	return nil
}

func (s *memTopicStore) Update(ctx context.Context, topic *models.ResearchTopic) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	existing, ok := s.d.topics[topic.ID]
	if !ok {
		return ErrNotFound
	}
	topic.CreatedAt = existing.CreatedAt
	topic.UpdatedAt = time.Now()
	s.d.topics[topic.ID] = *topic
	return nil
}

// --- scripts ---

type memScriptStore struct{ d *memData }

func (s *memScriptStore) List(ctx context.Context, filter ScriptFilter) ([]models.Script, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.Script
	for _, sc := range s.d.scripts {
		if filter.Status != "" && sc.Status != filter.Status {
			continue
		}
		if filter.Approved != nil && sc.IsApproved != *filter.Approved {
			continue
		}
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memScriptStore) Get(ctx context.Context, id string) (*models.Script, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	sc, ok := s.d.scripts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sc, nil
}

func (s *memScriptStore) Create(ctx context.Context, script *models.Script) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	stamp(&script.ID, &script.CreatedAt, &script.UpdatedAt)
	if script.Status == "" {
		script.Status = models.StatusPending
	}
	s.d.scripts[script.ID] = *script
	return nil
}

func (s *memScriptStore) Update(ctx context.Context, script *models.Script) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	existing, ok := s.d.scripts[script.ID]
	if !ok {
		return ErrNotFound
	}
	script.CreatedAt = existing.CreatedAt
	script.UpdatedAt = time.Now()
	s.d.scripts[script.ID] = *script
	return nil
}

// --- videos ---

type memVideoStore struct{ d *memData }

func (s *memVideoStore) List(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.Video
	for _, v := range s.d.videos {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memVideoStore) Get(ctx context.Context, id string) (*models.Video, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	v, ok := s.d.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *memVideoStore) Create(ctx context.Context, video *models.Video) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	stamp(&video.ID, &video.CreatedAt, &video.UpdatedAt)
	if video.Status == "" {
		video.Status = models.StatusPending
	}
	s.d.videos[video.ID] = *video
	return nil
}

func (s *memVideoStore) Update(ctx context.Context, video *models.Video) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	existing, ok := s.d.videos[video.ID]
	if !ok {
		return ErrNotFound
	}
	video.CreatedAt = existing.CreatedAt
	video.UpdatedAt = time.Now()
	s.d.videos[video.ID] = *video
	return nil
}

// --- content pieces ---

type memPieceStore struct{ d *memData }

func (s *memPieceStore) List(ctx context.Context, filter ContentPieceFilter) ([]models.ContentPiece, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.ContentPiece
	for _, p := range s.d.pieces {
		if filter.Platform != "" && p.Platform != filter.Platform {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memPieceStore) Get(ctx context.Context, id string) (*models.ContentPiece, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	p, ok := s.d.pieces[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *memPieceStore) Create(ctx context.Context, piece *models.ContentPiece) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	stamp(&piece.ID, &piece.CreatedAt, &piece.UpdatedAt)
	if piece.Status == "" {
		piece.Status = models.StatusPending
	}
	s.d.pieces[piece.ID] = *piece
	return nil
}

func (s *memPieceStore) Update(ctx context.Context, piece *models.ContentPiece) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	existing, ok := s.d.pieces[piece.ID]
	if !ok {
		return ErrNotFound
	}
	piece.CreatedAt = existing.CreatedAt
	piece.UpdatedAt = time.Now()
	s.d.pieces[piece.ID] = *piece
	return nil
}

func (s *memPieceStore) ListScheduled(ctx context.Context, from, to time.Time) ([]models.ContentPiece, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.ContentPiece
	for _, p := range s.d.pieces {
		if p.ScheduledFor == nil {
			continue
		}
		if p.ScheduledFor.Before(from) || p.ScheduledFor.After(to) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.Before(*out[j].ScheduledFor) })
	return out, nil
}

func (s *memPieceStore) ClaimProcessing(ctx context.Context, id string) (*models.ContentPiece, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	p, ok := s.d.pieces[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != models.StatusPending {
		return nil, &models.InvalidStateTransitionError{From: p.Status, To: models.StatusProcessing}
	}
	p.Status = models.StatusProcessing
	p.UpdatedAt = time.Now()
	s.d.pieces[id] = p
	return &p, nil
}

// --- analytics ---

type memAnalyticsStore struct{ d *memData }

func analyticsKey(pieceID, date string) string {
	return pieceID + "|" + date
}

func (s *memAnalyticsStore) ListForPiece(ctx context.Context, pieceID string) ([]models.PostAnalytics, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.PostAnalytics
	for _, a := range s.d.analytics {
		if a.ContentPieceID == pieceID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetricsDate > out[j].MetricsDate })
	return out, nil
}

func (s *memAnalyticsStore) Upsert(ctx context.Context, sample *models.PostAnalytics) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	key := analyticsKey(sample.ContentPieceID, sample.MetricsDate)
	if existing, ok := s.d.analytics[key]; ok {
		sample.ID = existing.ID
		sample.CreatedAt = existing.CreatedAt
		sample.UpdatedAt = time.Now()
	} else {
		stamp(&sample.ID, &sample.CreatedAt, &sample.UpdatedAt)
	}
	s.d.analytics[key] = *sample
	return nil
}

// --- priorities ---

type memPriorityStore struct{ d *memData }

func (s *memPriorityStore) List(ctx context.Context, filter PriorityFilter) ([]models.ResearchPriority, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	var out []models.ResearchPriority
	for _, e := range s.d.priorities {
		if filter.Blocked != nil && e.IsBlocked != *filter.Blocked {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityScore > out[j].PriorityScore })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memPriorityStore) GetByKeyword(ctx context.Context, keyword string) (*models.ResearchPriority, error) {
	s.d.mu.RLock()
	defer s.d.mu.RUnlock()
	e, ok := s.d.priorities[keyword]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *memPriorityStore) UpsertByKeyword(ctx context.Context, entry *models.ResearchPriority) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if existing, ok := s.d.priorities[entry.Keyword]; ok {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		entry.UpdatedAt = time.Now()
	} else {
		stamp(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	}
	s.d.priorities[entry.Keyword] = *entry
	return nil
}
