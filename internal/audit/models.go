// Package audit keeps an append-only trail of engine actions. Events are
// plain data so stores and sinks can fan out without knowing the engine.
package audit

import "time"

// Actions recorded by the engine.
const (
	ActionVerificationStarted   = "verification.started"
	ActionVerificationCompleted = "verification.completed"
	ActionOverrideFired         = "override.fired"
	ActionReviewApplied         = "review.applied"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	Timestamp  time.Time
	ReportID   string
	DocumentID string
	Action     string
	Decision   string
	Actor      string
	Detail     string
}
