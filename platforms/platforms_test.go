package platforms

import (
	"testing"
	"time"

	"content-engine/models"
)

// Monday 2026-01-05 is the anchor; all expectations are derived from the
// twitter windows Mon 9:00, Wed 12:00, Thu 17:00.
var monday = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func TestNextOptimalPostTime(t *testing.T) {
	cases := []struct {
		name     string
		platform models.Platform
		from     time.Time
		want     time.Time
	}{
		{
			name:     "before todays window picks it",
			platform: models.PlatformTwitter,
			from:     monday.Add(8 * time.Hour),
			want:     monday.Add(9 * time.Hour),
		},
		{
			name:     "after todays window moves to next window",
			platform: models.PlatformTwitter,
			from:     monday.Add(9*time.Hour + 30*time.Minute),
			want:     monday.AddDate(0, 0, 2).Add(12 * time.Hour),
		},
		{
			name:     "exactly at the window is not strictly future",
			platform: models.PlatformTwitter,
			from:     monday.Add(9 * time.Hour),
			want:     monday.AddDate(0, 0, 2).Add(12 * time.Hour),
		},
		{
			name:     "late week wraps to next week",
			platform: models.PlatformTwitter,
			from:     monday.AddDate(0, 0, 4).Add(20 * time.Hour), // Friday 20:00
			want:     monday.AddDate(0, 0, 7).Add(9 * time.Hour),  // next Monday 9:00
		},
		{
			name:     "tiktok tuesday evening",
			platform: models.PlatformTikTok,
			from:     monday.Add(12 * time.Hour),
			want:     monday.AddDate(0, 0, 1).Add(19 * time.Hour),
		},
		{
			name:     "youtube sunday window wraps forward",
			platform: models.PlatformYouTube,
			from:     monday,
			want:     monday.AddDate(0, 0, 3).Add(15 * time.Hour), // Thursday 15:00
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextOptimalPostTime(tc.platform, tc.from)
			if !got.Equal(tc.want) {
				t.Fatalf("NextOptimalPostTime(%s, %s) = %s, want %s", tc.platform, tc.from, got, tc.want)
			}
		})
	}
}

func TestNextOptimalPostTimeUnknownPlatform(t *testing.T) {
	from := monday.Add(6 * time.Hour)
	got := NextOptimalPostTime(models.Platform("myspace"), from)
	if !got.Equal(from.Add(24 * time.Hour)) {
		t.Fatalf("unknown platform should fall back to +24h, got %s", got)
	}
}

func TestFormatHashtags(t *testing.T) {
	tags := []string{"ai", "tech", "robotics", "future", "science"}

	twitter := FormatHashtags(tags, models.PlatformTwitter)
	if len(twitter) != 3 {
		t.Fatalf("twitter allows 3 hashtags, got %d", len(twitter))
	}
	if twitter[0] != "#ai" || twitter[2] != "#robotics" {
		t.Fatalf("unexpected formatting: %v", twitter)
	}

	instagram := FormatHashtags(tags, models.PlatformInstagram)
	if len(instagram) != len(tags) {
		t.Fatalf("instagram should keep all %d tags, got %d", len(tags), len(instagram))
	}
}

func TestProfileFor(t *testing.T) {
	for _, platform := range models.AllPlatforms {
		profile := ProfileFor(platform)
		if profile.Name == "" {
			t.Fatalf("missing profile for %s", platform)
		}
		if profile.MaxCaptionLength == 0 || profile.MaxHashtags == 0 {
			t.Fatalf("incomplete limits for %s: %+v", platform, profile)
		}
		if len(profile.OptimalWindows) != 3 {
			t.Fatalf("expected 3 posting windows for %s, got %d", platform, len(profile.OptimalWindows))
		}
	}
}
