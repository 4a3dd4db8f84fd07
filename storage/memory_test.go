package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"content-engine/models"
)

func TestMemoryPieceCRUD(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	piece := &models.ContentPiece{
		Platform: models.PlatformTikTok,
		Format:   models.FormatShortForm,
		Title:    "Hello",
	}
	if err := store.Pieces.Create(ctx, piece); err != nil {
		t.Fatalf("create: %v", err)
	}
	if piece.ID == "" {
		t.Fatal("create must assign an id")
	}
	if piece.Status != models.StatusPending {
		t.Fatalf("create must default to pending, got %s", piece.Status)
	}

	got, err := store.Pieces.Get(ctx, piece.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Hello" {
		t.Fatalf("unexpected title %q", got.Title)
	}

	got.Title = "Updated"
	if err := store.Pieces.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := store.Pieces.Get(ctx, piece.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Title != "Updated" {
		t.Fatalf("update lost, got %q", again.Title)
	}

	if _, err := store.Pieces.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Pieces.Update(ctx, &models.ContentPiece{ID: "00000000-0000-0000-0000-000000000000"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestMemoryListFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, p := range []struct {
		platform models.Platform
		status   models.ContentStatus
	}{
		{models.PlatformTikTok, models.StatusPending},
		{models.PlatformTikTok, models.StatusCompleted},
		{models.PlatformYouTube, models.StatusPending},
	} {
		piece := &models.ContentPiece{Platform: p.platform, Format: models.FormatShortForm, Title: "x", Status: p.status}
		if err := store.Pieces.Create(ctx, piece); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tiktok, err := store.Pieces.List(ctx, ContentPieceFilter{Platform: models.PlatformTikTok})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tiktok) != 2 {
		t.Fatalf("expected 2 tiktok pieces, got %d", len(tiktok))
	}

	pending, err := store.Pieces.List(ctx, ContentPieceFilter{Status: models.StatusPending})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending pieces, got %d", len(pending))
	}

	limited, err := store.Pieces.List(ctx, ContentPieceFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d", len(limited))
	}
}

func TestMemoryListScheduledOrdering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	times := []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour}
	for _, d := range times {
		at := now.Add(d)
		piece := &models.ContentPiece{
			Platform:     models.PlatformTwitter,
			Format:       models.FormatShortForm,
			Title:        "x",
			ScheduledFor: &at,
		}
		if err := store.Pieces.Create(ctx, piece); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// One outside the range.
	outside := now.Add(48 * time.Hour)
	piece := &models.ContentPiece{Platform: models.PlatformTwitter, Format: models.FormatShortForm, Title: "x", ScheduledFor: &outside}
	if err := store.Pieces.Create(ctx, piece); err != nil {
		t.Fatalf("create: %v", err)
	}

	scheduled, err := store.Pieces.ListScheduled(ctx, now, now.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(scheduled) != 3 {
		t.Fatalf("expected 3 pieces in range, got %d", len(scheduled))
	}
	for i := 1; i < len(scheduled); i++ {
		if scheduled[i].ScheduledFor.Before(*scheduled[i-1].ScheduledFor) {
			t.Fatal("scheduled pieces must be ordered ascending")
		}
	}
}

func TestMemoryClaimProcessing(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	piece := &models.ContentPiece{Platform: models.PlatformTikTok, Format: models.FormatShortForm, Title: "x"}
	if err := store.Pieces.Create(ctx, piece); err != nil {
		t.Fatalf("create: %v", err)
	}

	claimed, err := store.Pieces.ClaimProcessing(ctx, piece.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != models.StatusProcessing {
		t.Fatalf("expected processing, got %s", claimed.Status)
	}

	_, err = store.Pieces.ClaimProcessing(ctx, piece.ID)
	var transitionErr *models.InvalidStateTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("second claim must fail with a transition error, got %v", err)
	}
	if transitionErr.From != models.StatusProcessing {
		t.Fatalf("error should report the current state, got %s", transitionErr.From)
	}
}

func TestMemoryClaimProcessingConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	piece := &models.ContentPiece{Platform: models.PlatformTikTok, Format: models.FormatShortForm, Title: "x"}
	if err := store.Pieces.Create(ctx, piece); err != nil {
		t.Fatalf("create: %v", err)
	}

	const claimers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Pieces.ClaimProcessing(ctx, piece.ID); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("exactly one claimer may win, got %d", won)
	}
}

func TestMemoryAnalyticsUpsert(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sample := &models.PostAnalytics{ContentPieceID: "piece-1", MetricsDate: "2026-08-01", Views: 100}
	if err := store.Analytics.Upsert(ctx, sample); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	replacement := &models.PostAnalytics{ContentPieceID: "piece-1", MetricsDate: "2026-08-01", Views: 250}
	if err := store.Analytics.Upsert(ctx, replacement); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if replacement.ID != sample.ID {
		t.Fatal("upsert on the same day must keep the row identity")
	}

	other := &models.PostAnalytics{ContentPieceID: "piece-1", MetricsDate: "2026-08-02", Views: 300}
	if err := store.Analytics.Upsert(ctx, other); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	samples, err := store.Analytics.ListForPiece(ctx, "piece-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].MetricsDate != "2026-08-02" {
		t.Fatal("samples must be ordered newest first")
	}
	if samples[1].Views != 250 {
		t.Fatalf("same-day upsert must replace, got views %d", samples[1].Views)
	}
}

func TestMemoryPriorityStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entries := []models.ResearchPriority{
		{Keyword: "low", PriorityScore: 10},
		{Keyword: "high", PriorityScore: 90},
		{Keyword: "blocked", PriorityScore: 95, IsBlocked: true},
	}
	for i := range entries {
		if err := store.Priorities.UpsertByKeyword(ctx, &entries[i]); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	all, err := store.Priorities.List(ctx, PriorityFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Keyword != "blocked" || all[2].Keyword != "low" {
		t.Fatalf("expected score-descending order, got %+v", all)
	}

	blocked := false
	unblocked, err := store.Priorities.List(ctx, PriorityFilter{Blocked: &blocked})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(unblocked) != 2 || unblocked[0].Keyword != "high" {
		t.Fatalf("unexpected unblocked listing: %+v", unblocked)
	}

	update := models.ResearchPriority{Keyword: "high", PriorityScore: 40}
	if err := store.Priorities.UpsertByKeyword(ctx, &update); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := store.Priorities.GetByKeyword(ctx, "high")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PriorityScore != 40 {
		t.Fatalf("upsert must replace, got score %f", got.PriorityScore)
	}
	if got.ID != entries[1].ID {
		t.Fatal("keyword upsert must keep row identity")
	}
}
