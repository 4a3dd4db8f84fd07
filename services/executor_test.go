package services

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/publishers"
	"content-engine/storage"
)

// stubPublisher returns a canned result or error.
type stubPublisher struct {
	platform models.Platform
	result   *publishers.PostResult
	err      error
}

func (s *stubPublisher) Name() models.Platform { return s.platform }

func (s *stubPublisher) Publish(ctx context.Context, piece *models.ContentPiece) (*publishers.PostResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.ContentPieceID = piece.ID
	return &result, nil
}

func newTestExecutor(t *testing.T, pubs ...publishers.Publisher) (*Executor, *storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewExecutor(store, publishers.NewRegistry(pubs...), zap.NewNop()), store
}

func TestPostNowSuccess(t *testing.T) {
	pub := &stubPublisher{
		platform: models.PlatformTikTok,
		result: &publishers.PostResult{
			Platform:        models.PlatformTikTok,
			Success:         true,
			PlatformPostID:  "tt_1",
			PlatformPostURL: "https://tiktok.com/@user/video/1",
		},
	}
	executor, store := newTestExecutor(t, pub)
	piece := createPiece(t, store, models.PlatformTikTok, models.StatusPending)

	posted, err := executor.PostNow(context.Background(), piece.ID)
	if err != nil {
		t.Fatalf("post now: %v", err)
	}
	if posted.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", posted.Status)
	}
	if posted.PostedAt == nil {
		t.Fatal("completed piece must carry posted_at")
	}
	if posted.PlatformPostID != "tt_1" || posted.PlatformPostURL == "" {
		t.Fatalf("platform ids missing: %+v", posted)
	}
	if posted.ErrorMessage != "" {
		t.Fatalf("completed piece must not carry an error, got %q", posted.ErrorMessage)
	}
}

func TestPostNowPublishError(t *testing.T) {
	pub := &stubPublisher{platform: models.PlatformTwitter, err: errors.New("rate limited")}
	executor, store := newTestExecutor(t, pub)
	piece := createPiece(t, store, models.PlatformTwitter, models.StatusPending)

	failed, err := executor.PostNow(context.Background(), piece.ID)
	var pubErr *PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if failed.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
	if failed.ErrorMessage == "" {
		t.Fatal("failed piece must carry an error message")
	}
	if failed.PostedAt != nil {
		t.Fatal("failed piece must not carry posted_at")
	}
}

func TestPostNowPlatformRejection(t *testing.T) {
	pub := &stubPublisher{
		platform: models.PlatformThreads,
		result:   &publishers.PostResult{Platform: models.PlatformThreads, Success: false, Error: "content policy"},
	}
	executor, store := newTestExecutor(t, pub)
	piece := createPiece(t, store, models.PlatformThreads, models.StatusPending)

	failed, err := executor.PostNow(context.Background(), piece.ID)
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if failed.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
}

func TestPostNowMissingPostID(t *testing.T) {
	pub := &stubPublisher{
		platform: models.PlatformTikTok,
		result:   &publishers.PostResult{Platform: models.PlatformTikTok, Success: true},
	}
	executor, store := newTestExecutor(t, pub)
	piece := createPiece(t, store, models.PlatformTikTok, models.StatusPending)

	failed, err := executor.PostNow(context.Background(), piece.ID)
	if err == nil {
		t.Fatal("a success without a post id must not complete the piece")
	}
	if failed.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
}

func TestPostNowNoPublisher(t *testing.T) {
	executor, store := newTestExecutor(t)
	piece := createPiece(t, store, models.PlatformLinkedIn, models.StatusPending)

	failed, err := executor.PostNow(context.Background(), piece.ID)
	if err == nil {
		t.Fatal("expected missing publisher error")
	}
	if failed.Status != models.StatusFailed {
		t.Fatalf("expected failed, got %s", failed.Status)
	}
}

func TestPostNowRejectsDoublePublish(t *testing.T) {
	pub := &stubPublisher{
		platform: models.PlatformTikTok,
		result:   &publishers.PostResult{Platform: models.PlatformTikTok, Success: true, PlatformPostID: "tt_2"},
	}
	executor, store := newTestExecutor(t, pub)
	piece := createPiece(t, store, models.PlatformTikTok, models.StatusPending)

	if _, err := executor.PostNow(context.Background(), piece.ID); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	_, err := executor.PostNow(context.Background(), piece.ID)
	var transitionErr *models.InvalidStateTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected InvalidStateTransitionError on double publish, got %v", err)
	}
	if transitionErr.From != models.StatusCompleted {
		t.Fatalf("error should report the observed state, got %s", transitionErr.From)
	}
}

func TestRetryFailedResetsPiece(t *testing.T) {
	pub := &stubPublisher{platform: models.PlatformTwitter, err: errors.New("boom")}
	executor, store := newTestExecutor(t, pub)
	piece := createPiece(t, store, models.PlatformTwitter, models.StatusPending)

	if _, err := executor.PostNow(context.Background(), piece.ID); err == nil {
		t.Fatal("setup: publish should fail")
	}

	reset, err := executor.RetryFailed(context.Background(), piece.ID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if reset.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", reset.Status)
	}
	if reset.ErrorMessage != "" {
		t.Fatalf("retry must clear the error, got %q", reset.ErrorMessage)
	}
}

func TestRetryFailedRejectsNonFailed(t *testing.T) {
	executor, store := newTestExecutor(t)
	piece := createPiece(t, store, models.PlatformTwitter, models.StatusPending)

	if _, err := executor.RetryFailed(context.Background(), piece.ID); err == nil {
		t.Fatal("retrying a pending piece must fail")
	}
}

func TestArchive(t *testing.T) {
	executor, store := newTestExecutor(t)

	completed := createPiece(t, store, models.PlatformTikTok, models.StatusCompleted)
	archived, err := executor.Archive(context.Background(), completed.ID)
	if err != nil {
		t.Fatalf("archive completed: %v", err)
	}
	if archived.Status != models.StatusArchived {
		t.Fatalf("expected archived, got %s", archived.Status)
	}

	pending := createPiece(t, store, models.PlatformTikTok, models.StatusPending)
	if _, err := executor.Archive(context.Background(), pending.ID); err == nil {
		t.Fatal("archiving a pending piece must fail")
	}
}
