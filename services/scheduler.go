package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"content-engine/config"
	"content-engine/models"
	"content-engine/platforms"
	"content-engine/storage"
)

const (
	// conflictWindow is how far ahead existing scheduled posts are loaded
	// when resolving slot collisions.
	conflictWindow = 7 * 24 * time.Hour

	// maxScheduleHorizon caps how far conflict resolution may push a slot
	// before giving up.
	maxScheduleHorizon = 90 * 24 * time.Hour

	// dueSweepLookback is how far behind "now" the due sweep still picks up
	// slots, so a missed cron tick does not strand a post.
	dueSweepLookback = 5 * time.Minute
)

// Poster publishes a single pending piece. The executor implements it; the
// scheduler only needs this slice of it for the due sweep.
type Poster interface {
	PostNow(ctx context.Context, pieceID string) (*models.ContentPiece, error)
}

// Scheduler assigns publication slots to pending content pieces and sweeps
// due ones into the executor.
type Scheduler struct {
	Config *config.Config
	Store  *storage.Store
	Poster Poster
	Logger *zap.Logger
}

// NewScheduler creates the scheduling service.
func NewScheduler(cfg *config.Config, store *storage.Store, poster Poster, logger *zap.Logger) *Scheduler {
	return &Scheduler{Config: cfg, Store: store, Poster: poster, Logger: logger}
}

func (s *Scheduler) minGap() time.Duration {
	hours := s.Config.MinHoursBetweenPosts
	if hours <= 0 {
		hours = 4
	}
	return time.Duration(hours) * time.Hour
}

// ScheduleOptions controls slot selection. An explicit At wins and is used
// as-is. Otherwise the platform's next optimal posting window is used unless
// UseOptimalTime is set to false, which schedules for now.
type ScheduleOptions struct {
	At             *time.Time
	UseOptimalTime *bool
}

func (o ScheduleOptions) useOptimalTime() bool {
	return o.UseOptimalTime == nil || *o.UseOptimalTime
}

// Schedule assigns a publication slot to a pending piece. An explicit time is
// taken as-is, overlaps included. An optimal slot is pushed in 24h steps
// until it keeps the configured minimum gap to every other scheduled post on
// the same platform.
func (s *Scheduler) Schedule(ctx context.Context, pieceID string, opts ScheduleOptions) (*models.ContentPiece, error) {
	piece, err := s.Store.Pieces.Get(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if piece.Status != models.StatusPending {
		return nil, fmt.Errorf("cannot schedule piece %s: status is %s", pieceID, piece.Status)
	}

	now := time.Now()
	var slot time.Time
	switch {
	case opts.At != nil:
		slot = *opts.At
	case opts.useOptimalTime():
		slot, err = s.resolveConflicts(ctx, piece, platforms.NextOptimalPostTime(piece.Platform, now), now)
		if err != nil {
			return nil, err
		}
	default:
		slot = now
	}

	piece.ScheduledFor = &slot
	if err := s.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}

	s.Logger.Info("Piece scheduled",
		zap.String("piece_id", piece.ID),
		zap.String("platform", string(piece.Platform)),
		zap.Time("scheduled_for", slot))
	return piece, nil
}

// resolveConflicts pushes the candidate slot forward in whole days until no
// other scheduled post on the same platform sits closer than the minimum gap.
func (s *Scheduler) resolveConflicts(ctx context.Context, piece *models.ContentPiece, candidate, now time.Time) (time.Time, error) {
	existing, err := s.Store.Pieces.ListScheduled(ctx, now, now.Add(conflictWindow))
	if err != nil {
		return time.Time{}, err
	}

	var taken []time.Time
	for _, other := range existing {
		if other.ID == piece.ID || other.Platform != piece.Platform {
			continue
		}
		if other.Status != models.StatusPending || other.ScheduledFor == nil {
			continue
		}
		taken = append(taken, *other.ScheduledFor)
	}

	gap := s.minGap()
	deadline := now.Add(maxScheduleHorizon)
	for {
		conflict := false
		for _, t := range taken {
			d := candidate.Sub(t)
			if d < 0 {
				d = -d
			}
			if d < gap {
				conflict = true
				break
			}
		}
		if !conflict {
			return candidate, nil
		}
		candidate = candidate.Add(24 * time.Hour)
		if candidate.After(deadline) {
			return time.Time{}, ErrConflictResolutionExhausted
		}
	}
}

// BulkSchedule schedules each piece at its platform's next optimal window.
// Failures are logged and skipped; pieces scheduled earlier in the batch are
// visible to conflict resolution for the later ones.
func (s *Scheduler) BulkSchedule(ctx context.Context, pieceIDs []string) ([]models.ContentPiece, error) {
	var scheduled []models.ContentPiece
	for _, id := range pieceIDs {
		piece, err := s.Schedule(ctx, id, ScheduleOptions{})
		if err != nil {
			s.Logger.Warn("Bulk schedule: piece skipped",
				zap.String("piece_id", id),
				zap.Error(err))
			continue
		}
		scheduled = append(scheduled, *piece)
	}
	return scheduled, nil
}

// Cancel removes a pending piece's publication slot. The piece stays pending.
func (s *Scheduler) Cancel(ctx context.Context, pieceID string) (*models.ContentPiece, error) {
	piece, err := s.Store.Pieces.Get(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if piece.Status != models.StatusPending {
		return nil, fmt.Errorf("cannot cancel schedule of piece %s: status is %s", pieceID, piece.Status)
	}
	piece.ScheduledFor = nil
	if err := s.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}
	s.Logger.Info("Schedule cancelled", zap.String("piece_id", piece.ID))
	return piece, nil
}

// Reschedule overwrites a pending piece's slot with the given time without
// conflict resolution. Operators use it to force a slot.
func (s *Scheduler) Reschedule(ctx context.Context, pieceID string, at time.Time) (*models.ContentPiece, error) {
	piece, err := s.Store.Pieces.Get(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if piece.Status != models.StatusPending {
		return nil, fmt.Errorf("cannot reschedule piece %s: status is %s", pieceID, piece.Status)
	}
	piece.ScheduledFor = &at
	if err := s.Store.Pieces.Update(ctx, piece); err != nil {
		return nil, err
	}
	s.Logger.Info("Piece rescheduled",
		zap.String("piece_id", piece.ID),
		zap.Time("scheduled_for", at))
	return piece, nil
}

// SweepSummary reports one due-sweep run.
type SweepSummary struct {
	Due       int `json:"due"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

// ProcessDuePosts publishes every pending piece whose slot falls in the
// trailing lookback window. One failing piece never blocks the rest.
func (s *Scheduler) ProcessDuePosts(ctx context.Context) (SweepSummary, error) {
	now := time.Now()
	due, err := s.Store.Pieces.ListScheduled(ctx, now.Add(-dueSweepLookback), now)
	if err != nil {
		return SweepSummary{}, err
	}

	var summary SweepSummary
	for _, piece := range due {
		if piece.Status != models.StatusPending {
			continue
		}
		summary.Due++
		if _, err := s.Poster.PostNow(ctx, piece.ID); err != nil {
			summary.Failed++
			s.Logger.Error("Due sweep: publish failed",
				zap.String("piece_id", piece.ID),
				zap.String("platform", string(piece.Platform)),
				zap.Error(err))
			continue
		}
		summary.Published++
	}

	if summary.Due > 0 {
		s.Logger.Info("Due sweep finished",
			zap.Int("due", summary.Due),
			zap.Int("published", summary.Published),
			zap.Int("failed", summary.Failed))
	}
	return summary, nil
}

// QueueStats summarizes the publication queue.
type QueueStats struct {
	Pending       int                     `json:"pending"`
	Scheduled     int                     `json:"scheduled"`
	Posted        int                     `json:"posted"`
	Failed        int                     `json:"failed"`
	ByPlatform    map[models.Platform]int `json:"by_platform"`
	UpcomingToday int                     `json:"upcoming_today"`
}

// Stats computes queue counters over all content pieces. ByPlatform counts
// every piece regardless of status, and UpcomingToday counts scheduled slots
// up to the end of the day including overdue ones.
func (s *Scheduler) Stats(ctx context.Context) (QueueStats, error) {
	pieces, err := s.Store.Pieces.List(ctx, storage.ContentPieceFilter{})
	if err != nil {
		return QueueStats{}, err
	}

	now := time.Now()
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	stats := QueueStats{ByPlatform: make(map[models.Platform]int)}
	for _, p := range pieces {
		stats.ByPlatform[p.Platform]++
		switch p.Status {
		case models.StatusPending:
			if p.ScheduledFor != nil {
				stats.Scheduled++
				if !p.ScheduledFor.After(endOfDay) {
					stats.UpcomingToday++
				}
			} else {
				stats.Pending++
			}
		case models.StatusCompleted:
			stats.Posted++
		case models.StatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// Upcoming returns the next scheduled pending pieces within the conflict
// window, earliest first.
func (s *Scheduler) Upcoming(ctx context.Context, limit int) ([]models.ContentPiece, error) {
	now := time.Now()
	scheduled, err := s.Store.Pieces.ListScheduled(ctx, now, now.Add(conflictWindow))
	if err != nil {
		return nil, err
	}

	var out []models.ContentPiece
	for _, p := range scheduled {
		if p.Status != models.StatusPending {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
