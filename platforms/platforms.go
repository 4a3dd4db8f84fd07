// Package platforms holds the per-platform posting profiles: caption and
// hashtag limits, supported formats and the historically strong time-of-week
// posting windows used as default scheduling targets.
package platforms

import (
	"time"

	"content-engine/models"
)

// PostingWindow is one historically strong (weekday, hour) posting slot.
type PostingWindow struct {
	Day  time.Weekday
	Hour int
}

// Profile describes a platform's posting constraints and preferences.
type Profile struct {
	Name             string
	MaxCaptionLength int
	MaxHashtags      int
	SupportedFormats []models.ContentFormat
	OptimalWindows   []PostingWindow
}

var profiles = map[models.Platform]Profile{
	models.PlatformYouTube: {
		Name:             "YouTube",
		MaxCaptionLength: 5000,
		MaxHashtags:      15,
		SupportedFormats: []models.ContentFormat{models.FormatShortForm, models.FormatLongForm},
		OptimalWindows: []PostingWindow{
			{Day: time.Sunday, Hour: 14},
			{Day: time.Thursday, Hour: 15},
			{Day: time.Friday, Hour: 16},
		},
	},
	models.PlatformTikTok: {
		Name:             "TikTok",
		MaxCaptionLength: 2200,
		MaxHashtags:      5,
		SupportedFormats: []models.ContentFormat{models.FormatShortForm},
		OptimalWindows: []PostingWindow{
			{Day: time.Tuesday, Hour: 19},
			{Day: time.Thursday, Hour: 12},
			{Day: time.Friday, Hour: 17},
		},
	},
	models.PlatformInstagram: {
		Name:             "Instagram",
		MaxCaptionLength: 2200,
		MaxHashtags:      30,
		SupportedFormats: []models.ContentFormat{models.FormatShortForm, models.FormatCarousel},
		OptimalWindows: []PostingWindow{
			{Day: time.Monday, Hour: 11},
			{Day: time.Wednesday, Hour: 13},
			{Day: time.Friday, Hour: 19},
		},
	},
	models.PlatformTwitter: {
		Name:             "X (Twitter)",
		MaxCaptionLength: 280,
		MaxHashtags:      3,
		SupportedFormats: []models.ContentFormat{models.FormatShortForm, models.FormatThread},
		OptimalWindows: []PostingWindow{
			{Day: time.Monday, Hour: 9},
			{Day: time.Wednesday, Hour: 12},
			{Day: time.Thursday, Hour: 17},
		},
	},
	models.PlatformLinkedIn: {
		Name:             "LinkedIn",
		MaxCaptionLength: 3000,
		MaxHashtags:      5,
		SupportedFormats: []models.ContentFormat{models.FormatShortForm, models.FormatLongForm, models.FormatArticle, models.FormatCarousel},
		OptimalWindows: []PostingWindow{
			{Day: time.Tuesday, Hour: 8},
			{Day: time.Wednesday, Hour: 10},
			{Day: time.Thursday, Hour: 12},
		},
	},
	models.PlatformThreads: {
		Name:             "Threads",
		MaxCaptionLength: 500,
		MaxHashtags:      5,
		SupportedFormats: []models.ContentFormat{models.FormatShortForm, models.FormatThread},
		OptimalWindows: []PostingWindow{
			{Day: time.Monday, Hour: 10},
			{Day: time.Wednesday, Hour: 14},
			{Day: time.Friday, Hour: 18},
		},
	},
}

// ProfileFor returns the posting profile for a platform. Unknown platforms
// get a zero profile with no windows.
func ProfileFor(platform models.Platform) Profile {
	return profiles[platform]
}

// NextOptimalPostTime returns the earliest strictly-future occurrence of any
// of the platform's optimal windows, seen from the reference instant. If a
// window's occurrence this week has already passed, it advances to the same
// weekday next week. Platforms without windows fall back to from+24h.
func NextOptimalPostTime(platform models.Platform, from time.Time) time.Time {
	profile := profiles[platform]

	var next time.Time
	for _, w := range profile.OptimalWindows {
		candidate := time.Date(from.Year(), from.Month(), from.Day(), w.Hour, 0, 0, 0, from.Location())

		daysToAdd := int(w.Day) - int(candidate.Weekday())
		if daysToAdd < 0 || (daysToAdd == 0 && !candidate.After(from)) {
			daysToAdd += 7
		}
		candidate = candidate.AddDate(0, 0, daysToAdd)

		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}

	if next.IsZero() {
		return from.Add(24 * time.Hour)
	}
	return next
}

// FormatHashtags trims a hashtag list to the platform limit and prefixes
// each tag with '#'.
func FormatHashtags(hashtags []string, platform models.Platform) []string {
	profile := profiles[platform]
	if len(hashtags) > profile.MaxHashtags {
		hashtags = hashtags[:profile.MaxHashtags]
	}
	out := make([]string, 0, len(hashtags))
	for _, tag := range hashtags {
		out = append(out, "#"+tag)
	}
	return out
}
