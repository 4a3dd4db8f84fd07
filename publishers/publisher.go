// Package publishers defines the platform publish capability and its
// implementations. One publisher exists per platform; the registry selects
// the right one by platform tag.
package publishers

import (
	"context"

	"content-engine/models"
)

// PostResult is the outcome of a single publish attempt.
type PostResult struct {
	ContentPieceID  string          `json:"content_piece_id"`
	Platform        models.Platform `json:"platform"`
	Success         bool            `json:"success"`
	PlatformPostID  string          `json:"platform_post_id,omitempty"`
	PlatformPostURL string          `json:"platform_post_url,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// Publisher executes a publish call against one platform. Publish must be
// safe to call once per state transition; retries are the caller's business.
type Publisher interface {
	// Name returns the platform this publisher serves.
	Name() models.Platform

	// Publish posts the piece and reports the platform's verdict. A non-nil
	// error means the call itself broke (network, cancellation); a result
	// with Success=false means the platform rejected the post.
	Publish(ctx context.Context, piece *models.ContentPiece) (*PostResult, error)
}

// Registry resolves publishers by platform tag.
type Registry struct {
	byPlatform map[models.Platform]Publisher
}

// NewRegistry builds a registry from the given publishers. Later entries for
// the same platform win.
func NewRegistry(pubs ...Publisher) *Registry {
	r := &Registry{byPlatform: make(map[models.Platform]Publisher, len(pubs))}
	for _, p := range pubs {
		r.byPlatform[p.Name()] = p
	}
	return r
}

// For returns the publisher registered for a platform.
func (r *Registry) For(platform models.Platform) (Publisher, bool) {
	p, ok := r.byPlatform[platform]
	return p, ok
}
