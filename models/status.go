package models

import "fmt"

// ContentStatus is the lifecycle shared by scripts, videos and content pieces.
type ContentStatus string

const (
	StatusPending    ContentStatus = "pending"
	StatusProcessing ContentStatus = "processing"
	StatusCompleted  ContentStatus = "completed"
	StatusFailed     ContentStatus = "failed"
	StatusArchived   ContentStatus = "archived"
)

// legalTransitions enumerates every transition the core accepts. The store
// never enforces these; callers go through ValidateTransition.
var legalTransitions = map[ContentStatus][]ContentStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusArchived},
	StatusFailed:     {StatusPending, StatusArchived},
	StatusArchived:   {},
}

// Terminal reports whether the status ends the automatic flow.
func (s ContentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// InvalidStateTransitionError identifies a rejected lifecycle transition.
type InvalidStateTransitionError struct {
	From ContentStatus
	To   ContentStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// ValidateTransition checks that from -> to is a legal lifecycle transition.
func ValidateTransition(from, to ContentStatus) error {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidStateTransitionError{From: from, To: to}
}
