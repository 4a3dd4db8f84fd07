package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"content-engine/models"
	"content-engine/platforms"
	"content-engine/storage"
)

// Repurposer fans a rendered video out into pending platform-specific
// content pieces, each shaped to its platform's caption and hashtag limits.
type Repurposer struct {
	Store           *storage.Store
	TargetPlatforms []models.Platform
	Logger          *zap.Logger
}

// NewRepurposer creates the repurpose service. With no explicit targets all
// supported platforms are used.
func NewRepurposer(store *storage.Store, targets []models.Platform, logger *zap.Logger) *Repurposer {
	if len(targets) == 0 {
		targets = models.AllPlatforms
	}
	return &Repurposer{Store: store, TargetPlatforms: targets, Logger: logger}
}

// RepurposeError records one platform that could not be repurposed.
type RepurposeError struct {
	Platform models.Platform `json:"platform"`
	Error    string          `json:"error"`
}

// RepurposeResult is the outcome of fanning one video out.
type RepurposeResult struct {
	Video  *models.Video          `json:"video"`
	Pieces []models.ContentPiece  `json:"pieces"`
	Errors []RepurposeError       `json:"errors"`
}

// RepurposeVideo creates one pending content piece per target platform for a
// rendered video. Videos up to 60 seconds become short form everywhere;
// longer ones become long form on YouTube and short form elsewhere.
func (r *Repurposer) RepurposeVideo(ctx context.Context, videoID string) (*RepurposeResult, error) {
	video, err := r.Store.Videos.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.ScriptID == nil {
		return nil, fmt.Errorf("video %s has no associated script", videoID)
	}
	script, err := r.Store.Scripts.Get(ctx, *video.ScriptID)
	if err != nil {
		return nil, err
	}

	targetFormat := models.FormatShortForm
	duration := video.DurationSeconds
	if duration == 0 {
		duration = 60
	}
	if duration > 60 {
		targetFormat = models.FormatLongForm
	}

	result := &RepurposeResult{Video: video}
	for _, platform := range r.TargetPlatforms {
		format := targetFormat
		if platform != models.PlatformYouTube && format == models.FormatLongForm {
			// Only YouTube carries long form; everything else keeps short form.
			format = models.FormatShortForm
		}

		piece := r.buildPiece(video, script, platform, format)
		if err := r.Store.Pieces.Create(ctx, piece); err != nil {
			result.Errors = append(result.Errors, RepurposeError{Platform: platform, Error: err.Error()})
			r.Logger.Warn("Repurpose: piece creation failed",
				zap.String("video_id", video.ID),
				zap.String("platform", string(platform)),
				zap.Error(err))
			continue
		}
		result.Pieces = append(result.Pieces, *piece)
	}

	r.Logger.Info("Video repurposed",
		zap.String("video_id", video.ID),
		zap.Int("pieces", len(result.Pieces)),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (r *Repurposer) buildPiece(video *models.Video, script *models.Script, platform models.Platform, format models.ContentFormat) *models.ContentPiece {
	piece := &models.ContentPiece{
		VideoID:      &video.ID,
		ScriptID:     video.ScriptID,
		Platform:     platform,
		Format:       format,
		Mentions:     []string{},
		MediaURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		Status:       models.StatusPending,
		Hashtags:     GenerateHashtags(script.Title, platform),
	}

	switch platform {
	case models.PlatformYouTube:
		piece.Title = TruncateText(script.Title, 100)
		piece.Caption = youtubeDescription(script)
		videoType := "shorts"
		if format == models.FormatLongForm {
			videoType = "regular"
		}
		piece.PlatformMetadata = map[string]any{
			"videoType": videoType,
			"category":  "Science & Technology",
		}
	case models.PlatformTikTok:
		piece.Title = TruncateText(script.Title, 80)
		piece.Caption = tiktokCaption(script)
		piece.PlatformMetadata = map[string]any{
			"duetEnabled":   true,
			"stitchEnabled": true,
		}
	case models.PlatformInstagram:
		piece.Title = TruncateText(script.Title, 80)
		piece.Caption = instagramCaption(script)
		piece.PlatformMetadata = map[string]any{
			"shareToFeed":  true,
			"shareToStory": false,
		}
	case models.PlatformTwitter:
		piece.Title = TruncateText(script.Title, 60)
		piece.Caption = twitterCaption(script)
		piece.PlatformMetadata = map[string]any{}
	case models.PlatformLinkedIn:
		piece.Title = TruncateText(script.Title, 100)
		piece.Caption = linkedinCaption(script)
		piece.PlatformMetadata = map[string]any{"visibility": "PUBLIC"}
	case models.PlatformThreads:
		piece.Title = TruncateText(script.Title, 80)
		piece.Caption = threadsCaption(script)
		piece.PlatformMetadata = map[string]any{}
	}
	return piece
}

// GenerateThread turns a script into a numbered Twitter thread piece.
func (r *Repurposer) GenerateThread(ctx context.Context, scriptID string) (*models.ContentPiece, error) {
	script, err := r.Store.Scripts.Get(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	thread := splitIntoThread(script)
	piece := &models.ContentPiece{
		ScriptID: &script.ID,
		Platform: models.PlatformTwitter,
		Format:   models.FormatThread,
		Title:    script.Title,
		Caption:  thread,
		Hashtags: GenerateHashtags(script.Title, models.PlatformTwitter),
		Mentions: []string{},
		Status:   models.StatusPending,
		PlatformMetadata: map[string]any{
			"threadParts": len(strings.Split(thread, "\n---\n")),
		},
	}
	if err := r.Store.Pieces.Create(ctx, piece); err != nil {
		return nil, err
	}
	return piece, nil
}

// GenerateCarousel turns a script into a carousel piece for Instagram or
// LinkedIn.
func (r *Repurposer) GenerateCarousel(ctx context.Context, scriptID string, platform models.Platform) (*models.ContentPiece, error) {
	if platform != models.PlatformInstagram && platform != models.PlatformLinkedIn {
		return nil, fmt.Errorf("carousels are not supported on %s", platform)
	}
	script, err := r.Store.Scripts.Get(ctx, scriptID)
	if err != nil {
		return nil, err
	}

	slides := splitIntoCarousel(script)
	slideValues := make([]any, len(slides))
	for i, s := range slides {
		slideValues[i] = s
	}

	piece := &models.ContentPiece{
		ScriptID: &script.ID,
		Platform: platform,
		Format:   models.FormatCarousel,
		Title:    script.Title,
		Caption:  strings.Join(slides, "\n\n---\n\n"),
		Hashtags: GenerateHashtags(script.Title, platform),
		Mentions: []string{},
		Status:   models.StatusPending,
		PlatformMetadata: map[string]any{
			"slideCount": len(slides),
			"slides":     slideValues,
		},
	}
	if err := r.Store.Pieces.Create(ctx, piece); err != nil {
		return nil, err
	}
	return piece, nil
}

// PiecesForVideo returns every content piece derived from a video.
func (r *Repurposer) PiecesForVideo(ctx context.Context, videoID string) ([]models.ContentPiece, error) {
	all, err := r.Store.Pieces.List(ctx, storage.ContentPieceFilter{})
	if err != nil {
		return nil, err
	}
	var out []models.ContentPiece
	for _, p := range all {
		if p.VideoID != nil && *p.VideoID == videoID {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- caption generators ---

func youtubeDescription(script *models.Script) string {
	body := script.Body
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Sprintf("%s\n\n%s...\n\n%s\n\n---\nFollow for more AI content!\n",
		script.Hook, body, script.CallToAction)
}

func tiktokCaption(script *models.Script) string {
	limit := platforms.ProfileFor(models.PlatformTikTok).MaxCaptionLength
	// Leave room for hashtags.
	return TruncateText(script.Hook+" "+script.CallToAction, limit-50)
}

func instagramCaption(script *models.Script) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n.\n.\n.\n",
		script.Hook, TruncateText(script.Body, 500), script.CallToAction)
}

func twitterCaption(script *models.Script) string {
	limit := platforms.ProfileFor(models.PlatformTwitter).MaxCaptionLength
	return TruncateText(script.Hook, limit-30)
}

func linkedinCaption(script *models.Script) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\nWhat's your take? Drop your thoughts in the comments.",
		script.Hook, script.Body, script.CallToAction)
}

func threadsCaption(script *models.Script) string {
	limit := platforms.ProfileFor(models.PlatformThreads).MaxCaptionLength
	return TruncateText(script.Hook+" "+script.CallToAction, limit-30)
}

// --- text helpers ---

// TruncateText shortens text to maxLength, replacing the tail with an
// ellipsis when it has to cut.
func TruncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return strings.TrimSpace(text[:maxLength-3]) + "..."
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

var hashtagStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "in": true,
	"on": true, "for": true, "to": true, "of": true, "and": true, "or": true,
}

// GenerateHashtags derives hashtags from title keywords plus a stable set of
// AI/tech tags, deduplicated and trimmed to the platform limit.
func GenerateHashtags(title string, platform models.Platform) []string {
	var tags []string
	seen := make(map[string]bool)

	add := func(tag string) {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	for _, word := range strings.Fields(strings.ToLower(title)) {
		if len(word) <= 3 || hashtagStopWords[word] {
			continue
		}
		add(nonAlphanumeric.ReplaceAllString(word, ""))
	}
	for _, tag := range []string{"ai", "tech", "artificialintelligence", "machinelearning", "innovation"} {
		add(tag)
	}

	formatted := platforms.FormatHashtags(tags, platform)
	out := make([]string, len(formatted))
	for i, tag := range formatted {
		out[i] = strings.TrimPrefix(tag, "#")
	}
	return out
}

// --- thread/carousel splitting ---

var sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

func splitIntoThread(script *models.Script) string {
	const maxTweetLength = 280
	var parts []string

	parts = append(parts, TruncateText(script.Hook, maxTweetLength))

	var current string
	for _, sentence := range sentenceEnd.Split(script.Body, -1) {
		test := sentence
		if current != "" {
			test = current + ". " + sentence
		}
		if len(test) <= maxTweetLength-10 {
			current = test
			continue
		}
		if current != "" {
			parts = append(parts, current+".")
		}
		current = sentence
	}
	if current != "" {
		parts = append(parts, current+".")
	}

	if script.CallToAction != "" {
		parts = append(parts, TruncateText(script.CallToAction, maxTweetLength))
	}

	numbered := make([]string, len(parts))
	for i, p := range parts {
		numbered[i] = fmt.Sprintf("%d/%d %s", i+1, len(parts), p)
	}
	return strings.Join(numbered, "\n---\n")
}

var paragraphBreak = regexp.MustCompile(`\n\n+`)

func splitIntoCarousel(script *models.Script) []string {
	slides := []string{script.Title}

	paragraphs := paragraphBreak.Split(script.Body, -1)
	if len(paragraphs) > 5 {
		paragraphs = paragraphs[:5]
	}
	for _, para := range paragraphs {
		if strings.TrimSpace(para) != "" {
			slides = append(slides, TruncateText(para, 200))
		}
	}

	if script.CallToAction != "" {
		slides = append(slides, script.CallToAction)
	}
	return slides
}
