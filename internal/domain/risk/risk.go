// Package risk classifies a security's escalation risk from its recent
// attention-flag history. The engine is read-only and safe for concurrent use.
package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/vigil/internal/domain/model"
)

// Default thresholds. The day windows approximate trading-day windows with
// calendar days: 14 calendar days for 10 trading days, 45 for 30, and a
// 3-day gap tolerance so a single weekend does not break a run. There is no
// trading calendar behind these numbers.
const (
	defaultHistoryCap   = 30
	defaultGapTolerance = 3

	defaultShortWindowDays = 14
	defaultLongWindowDays  = 45

	defaultDangerRun   = 3
	defaultDangerShort = 6
	defaultDangerLong  = 12

	defaultWarningRun   = 2
	defaultWarningShort = 4
	defaultWarningLong  = 9
)

// warningReason is the fixed reason attached to Warning assessments.
const warningReason = "Approaching threshold"

// EventSource supplies a security's attention history, newest first.
type EventSource interface {
	// RecentAttention returns up to limit events for code with date <= ref,
	// ordered by date descending.
	RecentAttention(ctx context.Context, code string, ref time.Time, limit int) ([]model.AttentionEvent, error)
}

// Assessor computes risk assessments from an EventSource.
type Assessor struct {
	source EventSource

	historyCap   int
	gapTolerance int

	shortWindowDays int
	longWindowDays  int

	dangerRun, dangerShort, dangerLong    int
	warningRun, warningShort, warningLong int
}

// Option applies a configuration option to the Assessor.
type Option func(*Assessor)

// WithHistoryCap bounds how many recent events a single assessment reads.
func WithHistoryCap(n int) Option {
	return func(a *Assessor) {
		if n > 0 {
			a.historyCap = n
		}
	}
}

// WithGapTolerance sets the maximum day gap that still extends a run.
func WithGapTolerance(days int) Option {
	return func(a *Assessor) {
		if days > 0 {
			a.gapTolerance = days
		}
	}
}

// WithWindows sets the short and long calendar-day window widths.
func WithWindows(shortDays, longDays int) Option {
	return func(a *Assessor) {
		if shortDays > 0 && longDays > shortDays {
			a.shortWindowDays = shortDays
			a.longWindowDays = longDays
		}
	}
}

// WithDangerThresholds sets the run/short/long counts that trigger Danger.
func WithDangerThresholds(run, short, long int) Option {
	return func(a *Assessor) {
		if run > 0 && short > 0 && long > 0 {
			a.dangerRun = run
			a.dangerShort = short
			a.dangerLong = long
		}
	}
}

// WithWarningThresholds sets the run/short/long counts that trigger Warning.
func WithWarningThresholds(run, short, long int) Option {
	return func(a *Assessor) {
		if run > 0 && short > 0 && long > 0 {
			a.warningRun = run
			a.warningShort = short
			a.warningLong = long
		}
	}
}

// NewAssessor creates an Assessor reading from source, with the default
// thresholds unless overridden by options.
func NewAssessor(source EventSource, opts ...Option) *Assessor {
	a := &Assessor{
		source:          source,
		historyCap:      defaultHistoryCap,
		gapTolerance:    defaultGapTolerance,
		shortWindowDays: defaultShortWindowDays,
		longWindowDays:  defaultLongWindowDays,
		dangerRun:       defaultDangerRun,
		dangerShort:     defaultDangerShort,
		dangerLong:      defaultDangerLong,
		warningRun:      defaultWarningRun,
		warningShort:    defaultWarningShort,
		warningLong:     defaultWarningLong,
	}

	// Apply all options
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Assess classifies code as of ref. The three raw counters are always
// populated so callers can re-derive or override the tiering policy without
// another query. Window counts are computed from the same capped fetch as
// the run, so a history longer than the cap can under-count them.
func (a *Assessor) Assess(ctx context.Context, code string, ref time.Time) (model.RiskAssessment, error) {
	events, err := a.source.RecentAttention(ctx, code, ref, a.historyCap)
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("load attention history for %s: %w", code, err)
	}

	out := model.RiskAssessment{Code: code, Tier: model.TierSafe}
	if len(events) == 0 {
		return out, nil
	}

	out.ConsecutiveRun = consecutiveRun(events, a.gapTolerance)
	out.ShortWindowCount = countSince(events, ref.AddDate(0, 0, -a.shortWindowDays))
	out.LongWindowCount = countSince(events, ref.AddDate(0, 0, -a.longWindowDays))

	switch {
	case out.ConsecutiveRun >= a.dangerRun ||
		out.ShortWindowCount >= a.dangerShort ||
		out.LongWindowCount >= a.dangerLong:
		out.Tier = model.TierDanger
		out.Reason = fmt.Sprintf("Consecutive: %d, In 10 Days: %d, In 30 Days: %d",
			out.ConsecutiveRun, out.ShortWindowCount, out.LongWindowCount)
	case out.ConsecutiveRun == a.warningRun ||
		out.ShortWindowCount >= a.warningShort ||
		out.LongWindowCount >= a.warningLong:
		out.Tier = model.TierWarning
		out.Reason = warningReason
	}

	return out, nil
}

// consecutiveRun walks the descending-ordered events from the most recent
// and counts how many are separated by gaps within the tolerance. The walk
// stops at the first larger gap.
func consecutiveRun(events []model.AttentionEvent, tolerance int) int {
	run := 1
	for i := 1; i < len(events); i++ {
		gap := daysBetween(events[i].Date, events[i-1].Date)
		if gap > tolerance {
			break
		}
		run++
	}
	return run
}

// countSince counts events on or after cutoff.
func countSince(events []model.AttentionEvent, cutoff time.Time) int {
	n := 0
	for _, e := range events {
		if !e.Date.Before(cutoff) {
			n++
		}
	}
	return n
}

// daysBetween returns the whole-day difference from earlier to later.
func daysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier).Hours() / 24)
}
