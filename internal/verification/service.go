package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"veridoc/internal/audit"
	"veridoc/internal/forensic"
	"veridoc/internal/scoring"
	"veridoc/internal/verification/metrics"
	"veridoc/pkg/domain"
	platformstrings "veridoc/pkg/platform/strings"
)

// ErrNilAsset reports programmer misuse: a request must carry a loaded
// asset. Every other input combination produces a bounded Outcome.
var ErrNilAsset = errors.New("verification: request has no asset")

// Service orchestrates the pipeline. Collaborators beyond the battery and
// the profiles are optional.
type Service struct {
	battery  *forensic.Battery
	profiles scoring.ProfileSet
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
	now      func() time.Time
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

// WithMetrics attaches engine metrics. Nil disables recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches the audit trail publisher. Nil disables the trail.
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

// New builds the service. The battery and at least one profile are required.
func New(battery *forensic.Battery, profiles scoring.ProfileSet, opts ...Option) (*Service, error) {
	if battery == nil {
		return nil, errors.New("verification: nil battery")
	}
	if len(profiles) == 0 {
		return nil, errors.New("verification: empty profile set")
	}
	s := &Service{
		battery:  battery,
		profiles: profiles,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify runs the full pipeline for one request. It fails only on a missing
// asset; unreadable documents, absent registry records and empty field maps
// all come back as a bounded Outcome.
func (s *Service) Verify(ctx context.Context, req Request) (Outcome, error) {
	if req.Asset == nil {
		return Outcome{}, ErrNilAsset
	}

	startedAt := s.now()
	reportID := domain.NewReportID()

	profile, known := s.profiles.For(req.DocumentType)
	if !known {
		s.logger.WarnContext(ctx, "unknown document type, using fallback profile",
			slog.String("document_type", string(req.DocumentType)),
			slog.String("fallback", string(profile.DocumentType)))
	}

	s.emit(ctx, audit.Event{
		Timestamp:  startedAt,
		ReportID:   reportID.String(),
		DocumentID: req.DocumentID.String(),
		Action:     audit.ActionVerificationStarted,
		Detail:     string(profile.DocumentType),
	})

	report, err := s.battery.Analyze(ctx, req.Asset)
	if err != nil {
		return Outcome{}, fmt.Errorf("verification: forensic analysis: %w", err)
	}

	eval := scoring.Evaluate(scoring.Input{
		Profile:         profile,
		OCRConfidence:   req.OCR.Confidence,
		OCRFields:       req.OCR.Fields,
		MerchantFields:  merchantFields(profile, req.Merchant),
		RegistryFields:  registryFields(profile, req.Registry),
		RegistryFound:   req.Registry.Found,
		ForensicPenalty: report.Penalty,
	})

	completedAt := s.now()
	outcome := Outcome{
		ReportID:     reportID,
		DocumentID:   req.DocumentID,
		DocumentType: profile.DocumentType,
		Breakdown:    eval.Breakdown,
		Decision:     eval.Decision,
		Status:       StatusFor(eval.Decision),
		Forensic:     report,
		Comparisons:  eval.Comparisons,
		Flags:        platformstrings.DedupeAndTrim(report.Flags()),
		Overrides:    eval.Overrides,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
	}

	for _, ov := range eval.Overrides {
		s.logger.WarnContext(ctx, "decision override fired",
			slog.String("report_id", reportID.String()),
			slog.String("kind", ov.Kind),
			slog.String("reason", ov.Reason))
		s.emit(ctx, audit.Event{
			Timestamp:  completedAt,
			ReportID:   reportID.String(),
			DocumentID: req.DocumentID.String(),
			Action:     audit.ActionOverrideFired,
			Decision:   string(eval.Decision),
			Detail:     ov.Kind + ": " + ov.Reason,
		})
	}

	s.emit(ctx, audit.Event{
		Timestamp:  completedAt,
		ReportID:   reportID.String(),
		DocumentID: req.DocumentID.String(),
		Action:     audit.ActionVerificationCompleted,
		Decision:   string(eval.Decision),
		Detail:     fmt.Sprintf("final score %.1f", eval.Breakdown.FinalScore),
	})

	if s.metrics != nil {
		s.metrics.ObserveVerification(string(profile.DocumentType), string(eval.Decision), report.Penalty)
		for _, ov := range eval.Overrides {
			s.metrics.ObserveOverride(ov.Kind)
		}
	}

	s.logger.InfoContext(ctx, "verification completed",
		slog.String("report_id", reportID.String()),
		slog.String("document_id", req.DocumentID.String()),
		slog.String("document_type", string(profile.DocumentType)),
		slog.String("decision", string(eval.Decision)),
		slog.Float64("final_score", eval.Breakdown.FinalScore),
		slog.Float64("forensic_penalty", report.Penalty),
	)

	return outcome, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			slog.String("action", event.Action),
			slog.String("error", err.Error()))
	}
}

// registryFields flattens the registry input onto the profile's canonical
// keys. Explicit Fields entries win over the convenience fields.
func registryFields(p scoring.Profile, in RegistryInput) map[string]string {
	fields := make(map[string]string, len(in.Fields)+3)
	for k, v := range in.Fields {
		fields[k] = v
	}
	setField(fields, p.NameField, in.Name)
	setField(fields, p.NumberField, in.Number)
	setField(fields, p.AddressField, in.Address)
	return fields
}

func merchantFields(p scoring.Profile, in MerchantInput) map[string]string {
	fields := make(map[string]string, len(in.Fields)+3)
	for k, v := range in.Fields {
		fields[k] = v
	}
	setField(fields, p.NameField, in.Name)
	setField(fields, p.NumberField, in.Number)
	setField(fields, p.AddressField, in.Address)
	return fields
}

func setField(fields map[string]string, key, value string) {
	if key == "" || value == "" {
		return
	}
	if _, ok := fields[key]; ok {
		return
	}
	fields[key] = value
}
