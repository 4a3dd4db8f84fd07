package models

import (
	"errors"
	"testing"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		name string
		from ContentStatus
		to   ContentStatus
		ok   bool
	}{
		{"pending to processing", StatusPending, StatusProcessing, true},
		{"processing to completed", StatusProcessing, StatusCompleted, true},
		{"processing to failed", StatusProcessing, StatusFailed, true},
		{"completed to archived", StatusCompleted, StatusArchived, true},
		{"failed to pending", StatusFailed, StatusPending, true},
		{"failed to archived", StatusFailed, StatusArchived, true},
		{"pending to completed skips processing", StatusPending, StatusCompleted, false},
		{"pending to failed skips processing", StatusPending, StatusFailed, false},
		{"completed to pending", StatusCompleted, StatusPending, false},
		{"completed to processing", StatusCompleted, StatusProcessing, false},
		{"archived is terminal", StatusArchived, StatusPending, false},
		{"processing to archived", StatusProcessing, StatusArchived, false},
		{"self transition", StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.from, tc.to)
			if tc.ok && err != nil {
				t.Fatalf("expected %s -> %s to be legal, got %v", tc.from, tc.to, err)
			}
			if !tc.ok {
				var transitionErr *InvalidStateTransitionError
				if !errors.As(err, &transitionErr) {
					t.Fatalf("expected InvalidStateTransitionError for %s -> %s, got %v", tc.from, tc.to, err)
				}
				if transitionErr.From != tc.from || transitionErr.To != tc.to {
					t.Fatalf("error carries wrong states: %v", transitionErr)
				}
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Fatal("completed and failed must be terminal")
	}
	if StatusPending.Terminal() || StatusProcessing.Terminal() || StatusArchived.Terminal() {
		t.Fatal("pending, processing and archived are not terminal outcomes")
	}
}
