package publishers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"content-engine/models"
)

// mockDelay simulates the latency of a real platform API call.
const mockDelay = 500 * time.Millisecond

// mockPublisher fakes a platform API: it waits a moment, fabricates a post
// id/url and reports success. Each platform gets its own instance so the id
// prefixes and url shapes match the real platforms.
type mockPublisher struct {
	platform  models.Platform
	idPrefix  string
	urlFormat string // fmt pattern receiving the piece id
	logger    *zap.Logger
}

func (m *mockPublisher) Name() models.Platform {
	return m.platform
}

func (m *mockPublisher) Publish(ctx context.Context, piece *models.ContentPiece) (*PostResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(mockDelay):
	}

	m.logger.Info("Mock publish",
		zap.String("platform", string(m.platform)),
		zap.String("title", piece.Title))

	return &PostResult{
		ContentPieceID:  piece.ID,
		Platform:        m.platform,
		Success:         true,
		PlatformPostID:  fmt.Sprintf("%s_%d", m.idPrefix, time.Now().UnixMilli()),
		PlatformPostURL: fmt.Sprintf(m.urlFormat, piece.ID),
	}, nil
}

// NewMockYouTube returns a mock YouTube publisher.
func NewMockYouTube(logger *zap.Logger) Publisher {
	return &mockPublisher{models.PlatformYouTube, "yt", "https://youtube.com/shorts/mock_%s", logger}
}

// NewMockTikTok returns a mock TikTok publisher.
func NewMockTikTok(logger *zap.Logger) Publisher {
	return &mockPublisher{models.PlatformTikTok, "tt", "https://tiktok.com/@user/video/mock_%s", logger}
}

// NewMockInstagram returns a mock Instagram publisher.
func NewMockInstagram(logger *zap.Logger) Publisher {
	return &mockPublisher{models.PlatformInstagram, "ig", "https://instagram.com/reel/mock_%s", logger}
}

// NewMockTwitter returns a mock X/Twitter publisher.
func NewMockTwitter(logger *zap.Logger) Publisher {
	return &mockPublisher{models.PlatformTwitter, "tw", "https://twitter.com/user/status/mock_%s", logger}
}

// NewMockLinkedIn returns a mock LinkedIn publisher.
func NewMockLinkedIn(logger *zap.Logger) Publisher {
	return &mockPublisher{models.PlatformLinkedIn, "li", "https://linkedin.com/posts/mock_%s", logger}
}

// NewMockThreads returns a mock Threads publisher.
func NewMockThreads(logger *zap.Logger) Publisher {
	return &mockPublisher{models.PlatformThreads, "th", "https://threads.net/t/mock_%s", logger}
}

// NewMockRegistry wires one mock publisher per supported platform.
func NewMockRegistry(logger *zap.Logger) *Registry {
	return NewRegistry(
		NewMockYouTube(logger),
		NewMockTikTok(logger),
		NewMockInstagram(logger),
		NewMockTwitter(logger),
		NewMockLinkedIn(logger),
		NewMockThreads(logger),
	)
}
