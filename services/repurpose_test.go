package services

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/platforms"
	"content-engine/storage"
)

func seedScriptAndVideo(t *testing.T, store *storage.Store, durationSeconds int) (*models.Script, *models.Video) {
	t.Helper()
	ctx := context.Background()

	script := &models.Script{
		Title:        "How Agentic AI Changes Software Development",
		Hook:         "AI agents are rewriting how software gets built.",
		Body:         "First paragraph about agents.\n\nSecond paragraph about tooling.\n\nThird paragraph about teams.",
		CallToAction: "Follow for more deep dives.",
	}
	if err := store.Scripts.Create(ctx, script); err != nil {
		t.Fatalf("create script: %v", err)
	}

	video := &models.Video{
		ScriptID:        &script.ID,
		Title:           script.Title,
		Status:          models.StatusCompleted,
		VideoURL:        "https://cdn.example.com/video.mp4",
		ThumbnailURL:    "https://cdn.example.com/thumb.jpg",
		DurationSeconds: durationSeconds,
	}
	if err := store.Videos.Create(ctx, video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return script, video
}

func TestRepurposeVideoShortForm(t *testing.T) {
	store := storage.NewMemoryStore()
	repurposer := NewRepurposer(store, nil, zap.NewNop())
	_, video := seedScriptAndVideo(t, store, 45)

	result, err := repurposer.RepurposeVideo(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("repurpose: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Pieces) != len(models.AllPlatforms) {
		t.Fatalf("expected %d pieces, got %d", len(models.AllPlatforms), len(result.Pieces))
	}

	for _, piece := range result.Pieces {
		if piece.Status != models.StatusPending {
			t.Fatalf("%s piece must start pending, got %s", piece.Platform, piece.Status)
		}
		if piece.Format != models.FormatShortForm {
			t.Fatalf("%s piece should be short form, got %s", piece.Platform, piece.Format)
		}
		if piece.MediaURL != video.VideoURL {
			t.Fatalf("%s piece lost the media url", piece.Platform)
		}
		limit := platforms.ProfileFor(piece.Platform).MaxHashtags
		if len(piece.Hashtags) > limit {
			t.Fatalf("%s piece has %d hashtags, limit is %d", piece.Platform, len(piece.Hashtags), limit)
		}
	}
}

func TestRepurposeVideoLongForm(t *testing.T) {
	store := storage.NewMemoryStore()
	repurposer := NewRepurposer(store, nil, zap.NewNop())
	_, video := seedScriptAndVideo(t, store, 120)

	result, err := repurposer.RepurposeVideo(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("repurpose: %v", err)
	}

	for _, piece := range result.Pieces {
		if piece.Platform == models.PlatformYouTube {
			if piece.Format != models.FormatLongForm {
				t.Fatalf("long videos should become youtube long form, got %s", piece.Format)
			}
			if piece.PlatformMetadata["videoType"] != "regular" {
				t.Fatalf("unexpected youtube metadata: %v", piece.PlatformMetadata)
			}
			continue
		}
		if piece.Format != models.FormatShortForm {
			t.Fatalf("%s should stay short form, got %s", piece.Platform, piece.Format)
		}
	}
}

func TestRepurposeVideoRequiresScript(t *testing.T) {
	store := storage.NewMemoryStore()
	repurposer := NewRepurposer(store, nil, zap.NewNop())

	video := &models.Video{Title: "Orphan video", Status: models.StatusCompleted}
	if err := store.Videos.Create(context.Background(), video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	if _, err := repurposer.RepurposeVideo(context.Background(), video.ID); err == nil {
		t.Fatal("repurposing a video without a script must fail")
	}
}

func TestGenerateThread(t *testing.T) {
	store := storage.NewMemoryStore()
	repurposer := NewRepurposer(store, nil, zap.NewNop())
	script, _ := seedScriptAndVideo(t, store, 45)

	piece, err := repurposer.GenerateThread(context.Background(), script.ID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if piece.Platform != models.PlatformTwitter || piece.Format != models.FormatThread {
		t.Fatalf("unexpected piece: %s/%s", piece.Platform, piece.Format)
	}

	parts := strings.Split(piece.Caption, "\n---\n")
	if len(parts) < 2 {
		t.Fatalf("expected a multi-part thread, got %d parts", len(parts))
	}
	if !strings.HasPrefix(parts[0], "1/") {
		t.Fatalf("thread parts must be numbered, got %q", parts[0])
	}
	if piece.PlatformMetadata["threadParts"] != len(parts) {
		t.Fatalf("threadParts metadata mismatch: %v vs %d", piece.PlatformMetadata["threadParts"], len(parts))
	}
}

func TestGenerateCarousel(t *testing.T) {
	store := storage.NewMemoryStore()
	repurposer := NewRepurposer(store, nil, zap.NewNop())
	script, _ := seedScriptAndVideo(t, store, 45)
	ctx := context.Background()

	piece, err := repurposer.GenerateCarousel(ctx, script.ID, models.PlatformInstagram)
	if err != nil {
		t.Fatalf("carousel: %v", err)
	}
	if piece.Format != models.FormatCarousel {
		t.Fatalf("expected carousel format, got %s", piece.Format)
	}
	// Title slide + 3 paragraphs + CTA.
	if piece.PlatformMetadata["slideCount"] != 5 {
		t.Fatalf("expected 5 slides, got %v", piece.PlatformMetadata["slideCount"])
	}

	if _, err := repurposer.GenerateCarousel(ctx, script.ID, models.PlatformTwitter); err == nil {
		t.Fatal("carousels on twitter must be rejected")
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("short", 10); got != "short" {
		t.Fatalf("short text must pass through, got %q", got)
	}
	got := TruncateText("this is a long sentence", 10)
	if len(got) > 10 {
		t.Fatalf("truncated text too long: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated text needs an ellipsis, got %q", got)
	}
}

func TestGenerateHashtags(t *testing.T) {
	tags := GenerateHashtags("The Future of Quantum Computing!", models.PlatformInstagram)

	want := map[string]bool{"future": true, "quantum": true, "computing": true, "ai": true}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if strings.HasPrefix(tag, "#") {
			t.Fatalf("stored hashtags must not carry '#': %q", tag)
		}
		if seen[tag] {
			t.Fatalf("duplicate hashtag %q", tag)
		}
		seen[tag] = true
	}
	for w := range want {
		if !seen[w] {
			t.Fatalf("expected hashtag %q in %v", w, tags)
		}
	}

	twitter := GenerateHashtags("The Future of Quantum Computing!", models.PlatformTwitter)
	if len(twitter) > 3 {
		t.Fatalf("twitter hashtags exceed the limit: %v", twitter)
	}
}
