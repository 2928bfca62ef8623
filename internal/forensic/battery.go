package forensic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"veridoc/internal/asset"
)

const (
	defaultCheckTimeout = 10 * time.Second
	defaultParallelism  = 4
)

// Observer receives the wall-clock duration of each completed check. The
// caller decides what to do with it (usually a histogram).
type Observer func(check string, elapsed time.Duration)

// Battery runs a fixed set of checks against a document and aggregates their
// findings. Checks run concurrently; a slow or panicking check degrades to a
// neutral result instead of failing the battery.
type Battery struct {
	checks       []Check
	log          *slog.Logger
	checkTimeout time.Duration
	parallelism  int
	observe      Observer
}

// BatteryOption configures a Battery.
type BatteryOption func(*Battery)

// WithLogger sets the battery logger.
func WithLogger(log *slog.Logger) BatteryOption {
	return func(b *Battery) {
		if log != nil {
			b.log = log
		}
	}
}

// WithCheckTimeout bounds the wall-clock time of each individual check.
func WithCheckTimeout(d time.Duration) BatteryOption {
	return func(b *Battery) {
		if d > 0 {
			b.checkTimeout = d
		}
	}
}

// WithParallelism bounds how many checks run at once.
func WithParallelism(n int) BatteryOption {
	return func(b *Battery) {
		if n > 0 {
			b.parallelism = n
		}
	}
}

// WithObserver registers a per-check duration callback.
func WithObserver(fn Observer) BatteryOption {
	return func(b *Battery) {
		if fn != nil {
			b.observe = fn
		}
	}
}

// NewBattery builds a battery over the given checks. Passing no checks runs
// the default registry.
func NewBattery(checks []Check, opts ...BatteryOption) *Battery {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	b := &Battery{
		checks:       checks,
		log:          slog.Default(),
		checkTimeout: defaultCheckTimeout,
		parallelism:  defaultParallelism,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Analyze runs every applicable check against the document and returns the
// aggregated report. Results keep registry order regardless of completion
// order so reports stay stable across runs.
func (b *Battery) Analyze(ctx context.Context, doc *asset.Document) (Report, error) {
	if doc == nil {
		return Report{}, fmt.Errorf("forensic: nil document")
	}

	results := make([]Result, len(b.checks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)

	for i, c := range b.checks {
		i, c := i, c
		g.Go(func() error {
			if !c.Applies(doc) {
				results[i] = Neutral(c.Name(), "not applicable to this document kind")
				return nil
			}
			start := time.Now()
			results[i] = b.runOne(gctx, c, doc)
			if b.observe != nil {
				b.observe(c.Name(), time.Since(start))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Aggregate(b.checks, results)
	b.log.DebugContext(ctx, "forensic battery complete",
		slog.Int("checks", len(results)),
		slog.Float64("penalty", report.Penalty),
		slog.Int("flags", len(report.Flags())),
	)
	return report, nil
}

// runOne executes a single check under its own timeout and panic guard.
func (b *Battery) runOne(ctx context.Context, c Check, doc *asset.Document) Result {
	cctx, cancel := context.WithTimeout(ctx, b.checkTimeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				b.log.ErrorContext(ctx, "forensic check panicked",
					slog.String("check", c.Name()),
					slog.Any("panic", rec),
				)
				done <- Neutral(c.Name(), fmt.Sprintf("check panicked: %v", rec))
			}
		}()
		done <- c.Run(cctx, doc)
	}()

	select {
	case res := <-done:
		return res
	case <-cctx.Done():
		b.log.WarnContext(ctx, "forensic check timed out",
			slog.String("check", c.Name()),
			slog.Duration("timeout", b.checkTimeout),
		)
		return Neutral(c.Name(), "check timed out")
	}
}
