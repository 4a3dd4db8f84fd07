package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/storage"
)

// VideoJob is the in-memory view of one rendering run. The video record in
// the store is the durable truth; the job only adds live progress.
type VideoJob struct {
	ID           string        `json:"id"`
	VideoID      string        `json:"video_id"`
	Status       models.ContentStatus `json:"status"`
	Progress     float64       `json:"progress"`
	VideoURL     string        `json:"video_url,omitempty"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	cancelled bool
}

// VideoGenerator renders videos from approved scripts. The rendering backend
// is mocked: progress ticks in steps and lands on completed or failed.
type VideoGenerator struct {
	Store  *storage.Store
	Logger *zap.Logger

	// StepDelay is the wait per mock progress step. Tests shrink it.
	StepDelay time.Duration

	// FailureRate is the chance per late step that the mock render breaks.
	FailureRate float64

	mu   sync.Mutex
	jobs map[string]*VideoJob
}

// NewVideoGenerator creates the video rendering service.
func NewVideoGenerator(store *storage.Store, logger *zap.Logger) *VideoGenerator {
	return &VideoGenerator{
		Store:       store,
		Logger:      logger,
		StepDelay:   500 * time.Millisecond,
		FailureRate: 0.1,
		jobs:        make(map[string]*VideoJob),
	}
}

// CreateVideo starts rendering a video for an approved script. The returned
// record is pending; rendering continues in the background.
func (g *VideoGenerator) CreateVideo(ctx context.Context, scriptID string, resolution string) (*models.Video, error) {
	script, err := g.Store.Scripts.Get(ctx, scriptID)
	if err != nil {
		return nil, err
	}
	if resolution == "" {
		resolution = "1080x1920"
	}

	video := &models.Video{
		ScriptID:    &script.ID,
		Title:       script.Title,
		Description: fmt.Sprintf("Generated from script: %s", script.Title),
		Status:      models.StatusPending,
		Resolution:  resolution,
	}
	if err := g.Store.Videos.Create(ctx, video); err != nil {
		return nil, err
	}

	g.startMockProcessing(video.ID)
	return video, nil
}

// GetJobStatus returns the live job for a video, if one is running or
// finished since startup.
func (g *VideoGenerator) GetJobStatus(videoID string) (*VideoJob, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[videoID]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

// RetryVideo restarts rendering for a failed video, bumping its retry count.
func (g *VideoGenerator) RetryVideo(ctx context.Context, videoID string) (*models.Video, error) {
	video, err := g.Store.Videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.Status != models.StatusFailed {
		return nil, fmt.Errorf("can only retry failed videos, video %s is %s", videoID, video.Status)
	}

	video.Status = models.StatusPending
	video.ErrorMessage = ""
	video.RetryCount++
	if err := g.Store.Videos.Update(ctx, video); err != nil {
		return nil, err
	}

	g.startMockProcessing(video.ID)
	return video, nil
}

// CancelVideo aborts a pending or processing video.
func (g *VideoGenerator) CancelVideo(ctx context.Context, videoID string) (*models.Video, error) {
	const reason = "Cancelled by user"

	g.mu.Lock()
	if job, ok := g.jobs[videoID]; ok {
		job.Status = models.StatusFailed
		job.ErrorMessage = reason
		job.cancelled = true
		job.UpdatedAt = time.Now()
	}
	g.mu.Unlock()

	video, err := g.Store.Videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	video.Status = models.StatusFailed
	video.ErrorMessage = reason
	if err := g.Store.Videos.Update(ctx, video); err != nil {
		return nil, err
	}
	g.Logger.Info("Video cancelled", zap.String("video_id", videoID))
	return video, nil
}

// startMockProcessing runs the fake render in the background. Progress is
// observable via GetJobStatus while the store record tracks the lifecycle.
func (g *VideoGenerator) startMockProcessing(videoID string) {
	job := &VideoJob{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	g.mu.Lock()
	g.jobs[videoID] = job
	g.mu.Unlock()

	go g.runMockRender(videoID, job.ID)
}

func (g *VideoGenerator) runMockRender(videoID, jobID string) {
	ctx := context.Background()

	if g.cancelled(videoID) {
		return
	}

	video, err := g.Store.Videos.Get(ctx, videoID)
	if err != nil {
		g.Logger.Error("Mock render: video lookup failed", zap.String("video_id", videoID), zap.Error(err))
		return
	}
	now := time.Now()
	video.Status = models.StatusProcessing
	video.ProcessingStartedAt = &now
	if err := g.Store.Videos.Update(ctx, video); err != nil {
		g.Logger.Error("Mock render: update failed", zap.String("video_id", videoID), zap.Error(err))
		return
	}
	g.setJob(videoID, func(job *VideoJob) {
		if job.Status == models.StatusPending {
			job.Status = models.StatusProcessing
		}
	})

	const totalSteps = 10
	for step := 1; step <= totalSteps; step++ {
		time.Sleep(g.StepDelay)

		if g.cancelled(videoID) {
			g.markCancelled(ctx, videoID)
			return
		}

		g.setJob(videoID, func(job *VideoJob) {
			job.Progress = float64(step) / totalSteps * 100
		})

		if step > 5 && rand.Float64() < g.FailureRate {
			msg := "Mock processing failed - random error for testing"
			g.setJob(videoID, func(job *VideoJob) {
				job.Status = models.StatusFailed
				job.ErrorMessage = msg
			})
			video.Status = models.StatusFailed
			video.ErrorMessage = msg
			if err := g.Store.Videos.Update(ctx, video); err != nil {
				g.Logger.Error("Mock render: failure update failed", zap.String("video_id", videoID), zap.Error(err))
			}
			return
		}
	}

	if g.cancelled(videoID) {
		g.markCancelled(ctx, videoID)
		return
	}

	videoURL := fmt.Sprintf("https://mock.render.example.com/videos/%s.mp4", videoID)
	thumbnailURL := fmt.Sprintf("https://mock.render.example.com/thumbnails/%s.jpg", videoID)

	g.setJob(videoID, func(job *VideoJob) {
		job.Status = models.StatusCompleted
		job.Progress = 100
		job.VideoURL = videoURL
		job.ThumbnailURL = thumbnailURL
	})

	done := time.Now()
	video.Status = models.StatusCompleted
	video.RenderJobID = jobID
	video.VideoURL = videoURL
	video.ThumbnailURL = thumbnailURL
	video.DurationSeconds = 45 + rand.Intn(60)
	video.FileSizeBytes = int64(5_000_000 + rand.Intn(10_000_000))
	video.ProcessingCompletedAt = &done
	video.ErrorMessage = ""
	if err := g.Store.Videos.Update(ctx, video); err != nil {
		g.Logger.Error("Mock render: completion update failed", zap.String("video_id", videoID), zap.Error(err))
		return
	}
	g.Logger.Info("Mock render finished",
		zap.String("video_id", videoID),
		zap.Int("duration_seconds", video.DurationSeconds))
}

func (g *VideoGenerator) setJob(videoID string, apply func(job *VideoJob)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if job, ok := g.jobs[videoID]; ok {
		apply(job)
		job.UpdatedAt = time.Now()
	}
}

func (g *VideoGenerator) cancelled(videoID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	job, ok := g.jobs[videoID]
	return ok && job.cancelled
}

// markCancelled re-asserts the cancellation on the store record, closing the
// race where the render loop marked the video processing after the cancel.
func (g *VideoGenerator) markCancelled(ctx context.Context, videoID string) {
	video, err := g.Store.Videos.Get(ctx, videoID)
	if err != nil {
		return
	}
	if video.Status == models.StatusFailed {
		return
	}
	video.Status = models.StatusFailed
	video.ErrorMessage = "Cancelled by user"
	if err := g.Store.Videos.Update(ctx, video); err != nil {
		g.Logger.Error("Mock render: cancel update failed", zap.String("video_id", videoID), zap.Error(err))
	}
}
