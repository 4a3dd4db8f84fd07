package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/storage"
)

func newTestVideoGenerator(t *testing.T) (*VideoGenerator, *storage.Store, *models.Script) {
	t.Helper()
	store := storage.NewMemoryStore()
	gen := NewVideoGenerator(store, zap.NewNop())
	gen.StepDelay = time.Millisecond
	gen.FailureRate = 0

	script := &models.Script{Title: "Render me"}
	if err := store.Scripts.Create(context.Background(), script); err != nil {
		t.Fatalf("create script: %v", err)
	}
	return gen, store, script
}

func waitForVideoStatus(t *testing.T, store *storage.Store, videoID string, want models.ContentStatus) *models.Video {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		video, err := store.Videos.Get(context.Background(), videoID)
		if err != nil {
			t.Fatalf("get video: %v", err)
		}
		if video.Status == want {
			return video
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("video %s never reached %s", videoID, want)
	return nil
}

func TestCreateVideoRendersToCompletion(t *testing.T) {
	gen, store, script := newTestVideoGenerator(t)

	video, err := gen.CreateVideo(context.Background(), script.ID, "")
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	if video.Resolution != "1080x1920" {
		t.Fatalf("expected default resolution, got %s", video.Resolution)
	}

	done := waitForVideoStatus(t, store, video.ID, models.StatusCompleted)
	if done.VideoURL == "" || done.ThumbnailURL == "" {
		t.Fatalf("completed video needs media urls: %+v", done)
	}
	if done.DurationSeconds < 45 || done.DurationSeconds > 105 {
		t.Fatalf("duration out of mock range: %d", done.DurationSeconds)
	}
	if done.ProcessingCompletedAt == nil {
		t.Fatal("completed video needs a completion timestamp")
	}

	job, ok := gen.GetJobStatus(video.ID)
	if !ok {
		t.Fatal("expected a job for the video")
	}
	if job.Status != models.StatusCompleted || job.Progress != 100 {
		t.Fatalf("unexpected job state: %+v", job)
	}
}

func TestCreateVideoUnknownScript(t *testing.T) {
	gen, _, _ := newTestVideoGenerator(t)
	if _, err := gen.CreateVideo(context.Background(), "00000000-0000-0000-0000-000000000000", ""); err == nil {
		t.Fatal("creating a video for a missing script must fail")
	}
}

func TestRetryVideo(t *testing.T) {
	gen, store, script := newTestVideoGenerator(t)
	ctx := context.Background()

	video := &models.Video{
		ScriptID:     &script.ID,
		Title:        script.Title,
		Status:       models.StatusFailed,
		ErrorMessage: "render exploded",
		RetryCount:   1,
	}
	if err := store.Videos.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}

	retried, err := gen.RetryVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.RetryCount != 2 {
		t.Fatalf("retry must increment the count, got %d", retried.RetryCount)
	}
	if retried.ErrorMessage != "" {
		t.Fatalf("retry must clear the error, got %q", retried.ErrorMessage)
	}

	waitForVideoStatus(t, store, video.ID, models.StatusCompleted)
}

func TestRetryVideoRejectsNonFailed(t *testing.T) {
	gen, store, script := newTestVideoGenerator(t)
	ctx := context.Background()

	video := &models.Video{ScriptID: &script.ID, Title: script.Title, Status: models.StatusCompleted}
	if err := store.Videos.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	if _, err := gen.RetryVideo(ctx, video.ID); err == nil {
		t.Fatal("retrying a completed video must fail")
	}
}

func TestCancelVideo(t *testing.T) {
	gen, store, script := newTestVideoGenerator(t)
	gen.StepDelay = 50 * time.Millisecond
	ctx := context.Background()

	video, err := gen.CreateVideo(ctx, script.ID, "")
	if err != nil {
		t.Fatalf("create video: %v", err)
	}

	cancelled, err := gen.CancelVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusFailed {
		t.Fatalf("cancelled video should be failed, got %s", cancelled.Status)
	}
	if cancelled.ErrorMessage == "" {
		t.Fatal("cancelled video needs a reason")
	}

	// The background render must not resurrect the video.
	time.Sleep(time.Second)
	final, err := store.Videos.Get(ctx, video.ID)
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if final.Status != models.StatusFailed {
		t.Fatalf("render overwrote the cancellation: %s", final.Status)
	}
}
