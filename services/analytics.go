package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/storage"
)

// Metrics is one raw measurement pulled from a platform API (or the mock
// generator) before it is turned into a stored analytics sample.
type Metrics struct {
	Views              int `json:"views"`
	Likes              int `json:"likes"`
	Comments           int `json:"comments"`
	Shares             int `json:"shares"`
	Saves              int `json:"saves"`
	Impressions        int `json:"impressions"`
	Reach              int `json:"reach"`
	WatchTimeSeconds   int `json:"watch_time_seconds"`
	AvgWatchPercentage int `json:"avg_watch_percentage"`
	NewFollowers       int `json:"new_followers"`
	ProfileVisits      int `json:"profile_visits"`
	LinkClicks         int `json:"link_clicks"`
}

// MetricsFetcher pulls current metrics for a posted piece.
type MetricsFetcher interface {
	Fetch(ctx context.Context, piece *models.ContentPiece) (Metrics, error)
}

// mockMetricsFetcher fabricates plausible metrics. Baseline reach is scaled
// per platform so TikTok mocks look like TikTok and LinkedIn like LinkedIn.
type mockMetricsFetcher struct{}

// NewMockMetricsFetcher returns the mock metrics source used when no real
// platform credentials are configured.
func NewMockMetricsFetcher() MetricsFetcher {
	return &mockMetricsFetcher{}
}

var platformReachMultipliers = map[models.Platform]float64{
	models.PlatformTikTok:    1.5,
	models.PlatformYouTube:   1.2,
	models.PlatformInstagram: 1.0,
	models.PlatformLinkedIn:  0.7,
	models.PlatformTwitter:   0.8,
	models.PlatformThreads:   0.6,
}

func (f *mockMetricsFetcher) Fetch(ctx context.Context, piece *models.ContentPiece) (Metrics, error) {
	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}

	multiplier := platformReachMultipliers[piece.Platform]
	baseViews := float64(1000 + rand.Intn(5000))

	views := int(baseViews * multiplier)
	engagementBase := float64(views) * (0.03 + rand.Float64()*0.07)

	return Metrics{
		Views:              views,
		Likes:              int(engagementBase * 0.6),
		Comments:           int(engagementBase * 0.15),
		Shares:             int(engagementBase * 0.15),
		Saves:              int(engagementBase * 0.1),
		Impressions:        int(float64(views) * 1.3),
		Reach:              int(float64(views) * 0.9),
		WatchTimeSeconds:   int(float64(views) * (15 + rand.Float64()*30)),
		AvgWatchPercentage: 40 + rand.Intn(40),
		NewFollowers:       int(float64(views) * 0.005),
		ProfileVisits:      int(float64(views) * 0.02),
		LinkClicks:         int(float64(views) * 0.01),
	}, nil
}

// EngagementRate is (likes+comments+shares+saves)/views, 0 when views is 0.
func EngagementRate(m Metrics) float64 {
	if m.Views == 0 {
		return 0
	}
	return float64(m.Likes+m.Comments+m.Shares+m.Saves) / float64(m.Views)
}

// PriorityScore combines an engagement component (rates are typically
// 0.01-0.10, scaled onto 0-50 points) with a logarithmic views component
// capped at 50 points, applies the manual boost and clamps to [0,100].
func PriorityScore(avgEngagementRate float64, totalViews int, manualBoost float64) float64 {
	engagementPoints := avgEngagementRate * 50 * 100
	viewPoints := math.Min(math.Log10(float64(totalViews)+1)*10, 50)

	score := (engagementPoints + viewPoints) * (1 + manualBoost)
	return math.Min(math.Max(score, 0), 100)
}

// Analytics ingests post metrics and maintains the keyword priority feedback
// loop that steers future topic research.
type Analytics struct {
	Store   *storage.Store
	Fetcher MetricsFetcher
	Logger  *zap.Logger
}

// NewAnalytics creates the analytics service.
func NewAnalytics(store *storage.Store, fetcher MetricsFetcher, logger *zap.Logger) *Analytics {
	return &Analytics{Store: store, Fetcher: fetcher, Logger: logger}
}

// FetchAnalytics pulls current metrics for one posted piece and upserts
// today's sample. Pieces that never went out are rejected.
func (a *Analytics) FetchAnalytics(ctx context.Context, pieceID string) (*models.PostAnalytics, error) {
	piece, err := a.Store.Pieces.Get(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if piece.PostedAt == nil {
		return nil, fmt.Errorf("piece %s has not been posted yet", pieceID)
	}

	var metrics Metrics
	err = Retry(ctx, func(ctx context.Context) error {
		var fetchErr error
		metrics, fetchErr = a.Fetcher.Fetch(ctx, piece)
		return fetchErr
	}, RetryOptions{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sample := &models.PostAnalytics{
		ContentPieceID:     piece.ID,
		MetricsDate:        now.Format("2006-01-02"),
		Platform:           piece.Platform,
		Views:              metrics.Views,
		Likes:              metrics.Likes,
		Comments:           metrics.Comments,
		Shares:             metrics.Shares,
		Saves:              metrics.Saves,
		Impressions:        metrics.Impressions,
		Reach:              metrics.Reach,
		EngagementRate:     EngagementRate(metrics),
		WatchTimeSeconds:   metrics.WatchTimeSeconds,
		AvgWatchPercentage: metrics.AvgWatchPercentage,
		NewFollowers:       metrics.NewFollowers,
		ProfileVisits:      metrics.ProfileVisits,
		LinkClicks:         metrics.LinkClicks,
		RawMetrics: map[string]any{
			"views":       metrics.Views,
			"likes":       metrics.Likes,
			"comments":    metrics.Comments,
			"shares":      metrics.Shares,
			"saves":       metrics.Saves,
			"impressions": metrics.Impressions,
			"reach":       metrics.Reach,
		},
		FetchedAt: now,
	}
	if err := a.Store.Analytics.Upsert(ctx, sample); err != nil {
		return nil, err
	}
	return sample, nil
}

// FetchAllAnalytics pulls metrics for every posted piece. One failing piece
// never blocks the rest; the number of successfully ingested samples is
// returned.
func (a *Analytics) FetchAllAnalytics(ctx context.Context) (int, error) {
	pieces, err := a.Store.Pieces.List(ctx, storage.ContentPieceFilter{Status: models.StatusCompleted})
	if err != nil {
		return 0, err
	}

	fetched := 0
	for _, piece := range pieces {
		if _, err := a.FetchAnalytics(ctx, piece.ID); err != nil {
			a.Logger.Warn("Analytics fetch failed",
				zap.String("piece_id", piece.ID),
				zap.String("platform", string(piece.Platform)),
				zap.Error(err))
			continue
		}
		fetched++
	}
	a.Logger.Info("Analytics sweep finished",
		zap.Int("posted_pieces", len(pieces)),
		zap.Int("fetched", fetched))
	return fetched, nil
}

// keywordAggregate accumulates the performance of one keyword across posts.
type keywordAggregate struct {
	totalViews      int
	totalEngagement int
	posts           int
}

// ExtractKeywords returns a piece's hashtags plus every lowercased title
// word longer than three characters.
func ExtractKeywords(piece *models.ContentPiece) []string {
	keywords := make([]string, 0, len(piece.Hashtags)+4)
	keywords = append(keywords, piece.Hashtags...)
	for _, word := range strings.Fields(strings.ToLower(piece.Title)) {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// UpdateResearchPriorities recomputes the keyword priority table from the
// most recent analytics sample of every posted piece. Operator fields
// (manual_boost, is_blocked, category, notes) are carried through unchanged;
// the boost flows into the recomputed score.
func (a *Analytics) UpdateResearchPriorities(ctx context.Context) ([]models.ResearchPriority, error) {
	pieces, err := a.Store.Pieces.List(ctx, storage.ContentPieceFilter{Status: models.StatusCompleted})
	if err != nil {
		return nil, err
	}

	performance := make(map[string]*keywordAggregate)
	order := make([]string, 0)

	for _, piece := range pieces {
		samples, err := a.Store.Analytics.ListForPiece(ctx, piece.ID)
		if err != nil {
			a.Logger.Warn("Priority update: samples unavailable",
				zap.String("piece_id", piece.ID),
				zap.Error(err))
			continue
		}
		if len(samples) == 0 {
			continue
		}
		latest := samples[0]

		for _, keyword := range ExtractKeywords(&piece) {
			agg, ok := performance[keyword]
			if !ok {
				agg = &keywordAggregate{}
				performance[keyword] = agg
				order = append(order, keyword)
			}
			agg.totalViews += latest.Views
			agg.totalEngagement += latest.Likes + latest.Comments + latest.Shares
			agg.posts++
		}
	}

	updated := make([]models.ResearchPriority, 0, len(order))
	for _, keyword := range order {
		agg := performance[keyword]

		avgEngagementRate := 0.0
		if agg.totalViews > 0 {
			avgEngagementRate = float64(agg.totalEngagement) / float64(agg.totalViews)
		}

		entry := models.ResearchPriority{Keyword: keyword}
		if existing, err := a.Store.Priorities.GetByKeyword(ctx, keyword); err == nil {
			entry = *existing
		} else if !errors.Is(err, storage.ErrNotFound) {
			a.Logger.Warn("Priority update: lookup failed",
				zap.String("keyword", keyword),
				zap.Error(err))
			continue
		}

		entry.TotalPosts = agg.posts
		entry.TotalViews = agg.totalViews
		entry.TotalEngagement = agg.totalEngagement
		entry.AvgEngagementRate = avgEngagementRate
		entry.PriorityScore = PriorityScore(avgEngagementRate, agg.totalViews, entry.ManualBoost)

		if err := a.Store.Priorities.UpsertByKeyword(ctx, &entry); err != nil {
			a.Logger.Warn("Priority update: upsert failed",
				zap.String("keyword", keyword),
				zap.Error(err))
			continue
		}
		updated = append(updated, entry)
	}

	a.Logger.Info("Research priorities updated", zap.Int("keywords", len(updated)))
	return updated, nil
}

// TopKeywords returns the highest scoring unblocked keywords.
func (a *Analytics) TopKeywords(ctx context.Context, limit int) ([]models.ResearchPriority, error) {
	blocked := false
	return a.Store.Priorities.List(ctx, storage.PriorityFilter{Blocked: &blocked, Limit: limit})
}

// PlatformReport aggregates one platform's slice of a performance report.
type PlatformReport struct {
	Views          int     `json:"views"`
	Engagement     int     `json:"engagement"`
	EngagementRate float64 `json:"engagement_rate"`
	Posts          int     `json:"posts"`
	TopContent     string  `json:"top_content,omitempty"`
}

// TopPerformer is one entry of the report's global top list.
type TopPerformer struct {
	Title          string          `json:"title"`
	Platform       models.Platform `json:"platform"`
	Views          int             `json:"views"`
	EngagementRate float64         `json:"engagement_rate"`
}

// TrendingKeyword is one entry of the report's keyword list.
type TrendingKeyword struct {
	Keyword       string  `json:"keyword"`
	Score         float64 `json:"score"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// ReportSummary holds the report's global totals.
type ReportSummary struct {
	TotalViews        int     `json:"total_views"`
	TotalEngagement   int     `json:"total_engagement"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
	TotalPosts        int     `json:"total_posts"`
	NewFollowers      int     `json:"new_followers"`
}

// PerformanceReport is the aggregated view over a posting period.
type PerformanceReport struct {
	PeriodStart      time.Time                          `json:"period_start"`
	PeriodEnd        time.Time                          `json:"period_end"`
	Summary          ReportSummary                      `json:"summary"`
	ByPlatform       map[models.Platform]*PlatformReport `json:"by_platform"`
	TopPerforming    []TopPerformer                     `json:"top_performing"`
	TrendingKeywords []TrendingKeyword                  `json:"trending_keywords"`
}

// GenerateReport builds the performance report for pieces posted in
// [start, end], based on each piece's most recent analytics sample.
func (a *Analytics) GenerateReport(ctx context.Context, start, end time.Time) (*PerformanceReport, error) {
	pieces, err := a.Store.Pieces.List(ctx, storage.ContentPieceFilter{Status: models.StatusCompleted})
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{
		PeriodStart: start,
		PeriodEnd:   end,
		ByPlatform:  make(map[models.Platform]*PlatformReport, len(models.AllPlatforms)),
	}
	for _, platform := range models.AllPlatforms {
		report.ByPlatform[platform] = &PlatformReport{}
	}

	type performer struct {
		piece  models.ContentPiece
		latest models.PostAnalytics
	}
	var performers []performer

	for _, piece := range pieces {
		if piece.PostedAt == nil || piece.PostedAt.Before(start) || piece.PostedAt.After(end) {
			continue
		}
		report.Summary.TotalPosts++

		samples, err := a.Store.Analytics.ListForPiece(ctx, piece.ID)
		if err != nil {
			return nil, err
		}
		if len(samples) == 0 {
			continue
		}
		latest := samples[0]
		performers = append(performers, performer{piece: piece, latest: latest})

		engagement := latest.Likes + latest.Comments + latest.Shares + latest.Saves
		report.Summary.TotalViews += latest.Views
		report.Summary.TotalEngagement += engagement
		report.Summary.NewFollowers += latest.NewFollowers

		platStats := report.ByPlatform[piece.Platform]
		platStats.Views += latest.Views
		platStats.Engagement += engagement
		platStats.Posts++

		// Top content per platform: first piece wins until someone beats the
		// platform's running per-post view average.
		if platStats.TopContent == "" || float64(latest.Views) > float64(platStats.Views)/float64(platStats.Posts) {
			platStats.TopContent = piece.Title
		}
	}

	for _, stats := range report.ByPlatform {
		if stats.Views > 0 {
			stats.EngagementRate = float64(stats.Engagement) / float64(stats.Views)
		}
	}
	if report.Summary.TotalViews > 0 {
		report.Summary.AvgEngagementRate = float64(report.Summary.TotalEngagement) / float64(report.Summary.TotalViews)
	}

	// Global top 5 by views of the latest sample.
	for i := 0; i < len(performers); i++ {
		for j := i + 1; j < len(performers); j++ {
			if performers[j].latest.Views > performers[i].latest.Views {
				performers[i], performers[j] = performers[j], performers[i]
			}
		}
	}
	for i, p := range performers {
		if i == 5 {
			break
		}
		report.TopPerforming = append(report.TopPerforming, TopPerformer{
			Title:          p.piece.Title,
			Platform:       p.piece.Platform,
			Views:          p.latest.Views,
			EngagementRate: p.latest.EngagementRate,
		})
	}

	keywords, err := a.TopKeywords(ctx, 10)
	if err != nil {
		return nil, err
	}
	for _, k := range keywords {
		report.TrendingKeywords = append(report.TrendingKeywords, TrendingKeyword{
			Keyword:       k.Keyword,
			Score:         k.PriorityScore,
			Posts:         k.TotalPosts,
			AvgEngagement: k.AvgEngagementRate,
		})
	}
	return report, nil
}

// GetContentHistory returns all analytics samples for a piece, newest first.
func (a *Analytics) GetContentHistory(ctx context.Context, pieceID string) ([]models.PostAnalytics, error) {
	return a.Store.Analytics.ListForPiece(ctx, pieceID)
}

// BlockKeyword excludes a keyword from priority listings. Blocking a keyword
// that was never tracked is a no-op.
func (a *Analytics) BlockKeyword(ctx context.Context, keyword string) error {
	entry, err := a.Store.Priorities.GetByKeyword(ctx, keyword)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	entry.IsBlocked = true
	return a.Store.Priorities.UpsertByKeyword(ctx, entry)
}

// BoostKeyword sets a keyword's manual boost, clamped to [-1,1]. The boost
// takes effect on the next priority recompute. Unknown keywords get a fresh
// entry so a boost can be staged before the first post.
func (a *Analytics) BoostKeyword(ctx context.Context, keyword string, boost float64) (*models.ResearchPriority, error) {
	boost = math.Min(math.Max(boost, -1), 1)

	entry, err := a.Store.Priorities.GetByKeyword(ctx, keyword)
	if errors.Is(err, storage.ErrNotFound) {
		entry = &models.ResearchPriority{Keyword: keyword}
	} else if err != nil {
		return nil, err
	}

	entry.ManualBoost = boost
	if err := a.Store.Priorities.UpsertByKeyword(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
