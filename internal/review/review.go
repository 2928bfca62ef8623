// Package review issues manual-review revisions of verification outcomes.
// An outcome is never edited in place: each review produces a new record
// carrying a fresh ReportID and a pointer back to the original.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"veridoc/internal/audit"
	"veridoc/internal/scoring"
	"veridoc/internal/verification"
	"veridoc/pkg/domain"
)

// Action is a reviewer verdict.
type Action string

const (
	ActionApprove  Action = "APPROVE"
	ActionReject   Action = "REJECT"
	ActionEscalate Action = "ESCALATE"
)

var (
	// ErrNotReviewable reports an outcome whose status accepts no review.
	ErrNotReviewable = errors.New("review: outcome is not awaiting review")
	// ErrUnknownAction reports an unrecognized reviewer action.
	ErrUnknownAction = errors.New("review: unknown action")
	// ErrMissingReviewer reports a review without an accountable actor.
	ErrMissingReviewer = errors.New("review: missing reviewer id")
)

// Review is one reviewer verdict. A zero At is stamped with the service
// clock.
type Review struct {
	Action     Action
	ReviewerID string
	Notes      string
	At         time.Time
}

// Service applies reviews. All collaborators are optional.
type Service struct {
	logger *slog.Logger
	audit  *audit.Publisher
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAudit attaches the audit trail publisher.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithClock replaces the time source; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply issues a revision of the original outcome for the review. Outcomes
// in `review` or `manual_review` accept reviews; passed and failed are
// terminal. APPROVE and REJECT settle the decision; ESCALATE keeps it and
// parks the revision in `manual_review` for a senior reviewer.
func (s *Service) Apply(ctx context.Context, original verification.Outcome, review Review) (verification.Outcome, error) {
	switch review.Action {
	case ActionApprove, ActionReject, ActionEscalate:
	default:
		return verification.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, review.Action)
	}
	if review.ReviewerID == "" {
		return verification.Outcome{}, ErrMissingReviewer
	}
	if original.Status != verification.StatusReview && original.Status != verification.StatusManualReview {
		return verification.Outcome{}, fmt.Errorf("%w: status %q", ErrNotReviewable, original.Status)
	}

	at := review.At
	if at.IsZero() {
		at = s.now()
	}

	revision := original
	revision.ReportID = domain.NewReportID()
	originalID := original.ReportID
	revision.RevisionOf = &originalID
	revision.ReviewAction = string(review.Action)
	revision.ReviewedBy = review.ReviewerID
	revision.ReviewNotes = review.Notes
	revision.ReviewedAt = &at

	switch review.Action {
	case ActionApprove:
		revision.Decision = scoring.DecisionPass
		revision.Status = verification.StatusPassed
	case ActionReject:
		revision.Decision = scoring.DecisionFail
		revision.Status = verification.StatusFailed
	case ActionEscalate:
		revision.Status = verification.StatusManualReview
	}

	if s.audit != nil {
		err := s.audit.Emit(ctx, audit.Event{
			Timestamp:  at,
			ReportID:   revision.ReportID.String(),
			DocumentID: revision.DocumentID.String(),
			Action:     audit.ActionReviewApplied,
			Decision:   string(revision.Decision),
			Actor:      review.ReviewerID,
			Detail:     fmt.Sprintf("%s revision of %s", review.Action, originalID.String()),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "audit emit failed",
				slog.String("action", audit.ActionReviewApplied),
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "review applied",
		slog.String("report_id", revision.ReportID.String()),
		slog.String("revision_of", originalID.String()),
		slog.String("action", string(review.Action)),
		slog.String("reviewer", review.ReviewerID),
		slog.String("status", string(revision.Status)),
	)

	return revision, nil
}
