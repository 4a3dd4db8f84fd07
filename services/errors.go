// Package services implements the content lifecycle: scheduling, publishing,
// analytics ingestion and the keyword priority feedback loop.
package services

import (
	"errors"
	"fmt"

	"content-engine/models"
)

// ErrConflictResolutionExhausted is returned when no collision-free slot
// exists within the scheduling horizon.
var ErrConflictResolutionExhausted = errors.New("no collision-free slot within scheduling horizon")

// ErrNoPublisher is returned when a piece targets a platform without a
// registered publisher.
var ErrNoPublisher = errors.New("no publisher registered for platform")

// PublishError records a failed publish attempt against one platform. It is
// also what ends up in the piece's error_message.
type PublishError struct {
	Platform models.Platform
	Reason   string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s failed: %s", e.Platform, e.Reason)
}
