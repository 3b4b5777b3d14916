// Package app wires the ingestion pipeline and the read-side operations
// required by the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/vigil/internal/adapters/fetch"
	"github.com/okian/vigil/internal/adapters/repository"
	"github.com/okian/vigil/internal/domain/model"
	"github.com/okian/vigil/internal/domain/risk"
	"github.com/okian/vigil/internal/domain/rocdate"
	"github.com/okian/vigil/pkg/logger"
	"github.com/okian/vigil/pkg/metrics"
)

// Metrics label values for the two event logs.
const (
	logAttention   = "attention"
	logDisposition = "disposition"
)

// defaultCandidateWindowDays bounds the risk report scan: only securities
// flagged within this many days are assessed.
const defaultCandidateWindowDays = 10

// Fetcher abstracts the upstream feed client.
type Fetcher interface {
	FetchAttention(ctx context.Context) ([]fetch.AttentionRecord, error)
	FetchDisposition(ctx context.Context) ([]fetch.DispositionRecord, error)
}

// Service runs ingestion passes and serves the read-side queries.
type Service struct {
	store    repository.Store
	fetcher  Fetcher
	assessor *risk.Assessor

	assessorOpts        []risk.Option
	candidateWindowDays int

	// Pass state. The in-flight flag serializes passes: the merge phase's
	// check-then-insert is only safe with a single writer.
	passMu   sync.Mutex
	running  bool
	lastPass time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAssessorOptions forwards options to the risk assessor.
func WithAssessorOptions(opts ...risk.Option) Option {
	return func(s *Service) {
		s.assessorOpts = append(s.assessorOpts, opts...)
	}
}

// WithCandidateWindowDays sets how far back the risk report looks for
// candidate securities.
func WithCandidateWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.candidateWindowDays = days
		}
	}
}

// New constructs the service over a store and a feed fetcher.
func New(store repository.Store, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		store:               store,
		fetcher:             fetcher,
		candidateWindowDays: defaultCandidateWindowDays,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}
	s.assessor = risk.NewAssessor(store, s.assessorOpts...)

	return s
}

// ErrPassInProgress is returned when a pass is requested while another is
// still executing. The caller must skip, not queue.
var ErrPassInProgress = errors.New("ingestion pass already in progress")

// RunPass executes one full ingestion pass: attention batch, then
// disposition batch. Each feed fails in isolation: a fetch failure
// degrades that feed to zero records, and a commit failure in one batch
// does not lose the other batch. Re-running the same inputs is idempotent.
func (s *Service) RunPass(ctx context.Context) error {
	s.passMu.Lock()
	if s.running {
		s.passMu.Unlock()
		metrics.RecordPass("skipped")
		return ErrPassInProgress
	}
	s.running = true
	s.passMu.Unlock()

	defer func() {
		s.passMu.Lock()
		s.running = false
		s.passMu.Unlock()
	}()

	runID := uuid.NewString()
	start := time.Now()
	s.logger.Info(ctx, "starting ingestion pass", logger.String("run_id", runID))

	attErr := s.mergeAttention(ctx, runID)
	dispErr := s.mergeDisposition(ctx, runID)

	elapsed := time.Since(start)
	metrics.RecordPassDuration(elapsed.Seconds())

	if err := errors.Join(attErr, dispErr); err != nil {
		metrics.RecordPass("failed")
		return fmt.Errorf("ingestion pass %s: %w", runID, err)
	}

	s.passMu.Lock()
	s.lastPass = time.Now()
	s.passMu.Unlock()

	metrics.RecordPass("completed")
	metrics.UpdateLastPassUnix(float64(time.Now().Unix()))
	s.logger.Info(ctx, "ingestion pass completed",
		logger.String("run_id", runID),
		logger.Duration("elapsed", elapsed),
	)
	return nil
}

// mergeAttention fetches the attention feed and merges new events.
func (s *Service) mergeAttention(ctx context.Context, runID string) error {
	records, err := s.fetcher.FetchAttention(ctx)
	if err != nil {
		// Degrade to an empty batch; the next pass picks the feed up again.
		s.logger.Warn(ctx, "attention fetch failed",
			logger.String("run_id", runID),
			logger.Error(err),
		)
		records = nil
	}

	seen := make(map[string]struct{}, len(records))
	pending := make([]model.AttentionEvent, 0, len(records))
	duplicates := 0

	for _, rec := range records {
		if rec.Code == "" {
			continue
		}

		if err := s.ensureSecurity(ctx, rec.Code, rec.Name); err != nil {
			return err
		}

		date := rocdate.Parse(rec.Date)
		if rocdate.IsUndefined(date) {
			metrics.RecordSentinelDate()
			s.logger.Warn(ctx, "skipping attention record with malformed date",
				logger.String("run_id", runID),
				logger.String("code", rec.Code),
				logger.String("date", rec.Date),
			)
			continue
		}

		key := attentionKey(rec.Code, date)
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}

		exists, err := s.store.HasAttention(ctx, rec.Code, date)
		if err != nil {
			return fmt.Errorf("attention existence check: %w", err)
		}
		if exists {
			duplicates++
			continue
		}

		pending = append(pending, model.AttentionEvent{
			Code:   rec.Code,
			Date:   date,
			Reason: rec.Reason,
		})
	}

	// One commit for the whole batch.
	if err := s.store.InsertAttention(ctx, pending); err != nil {
		return err
	}

	metrics.RecordRowsInserted(logAttention, len(pending))
	metrics.RecordRowsDuplicate(logAttention, duplicates)
	s.logger.Info(ctx, "attention batch merged",
		logger.String("run_id", runID),
		logger.Int("fetched", len(records)),
		logger.Int("inserted", len(pending)),
		logger.Int("duplicates", duplicates),
	)
	return nil
}

// mergeDisposition fetches the disposition feed and merges new intervals.
func (s *Service) mergeDisposition(ctx context.Context, runID string) error {
	records, err := s.fetcher.FetchDisposition(ctx)
	if err != nil {
		s.logger.Warn(ctx, "disposition fetch failed",
			logger.String("run_id", runID),
			logger.Error(err),
		)
		records = nil
	}

	seen := make(map[string]struct{}, len(records))
	pending := make([]model.DispositionInterval, 0, len(records))
	duplicates := 0

	for _, rec := range records {
		if rec.Code == "" {
			continue
		}

		// The disposition feed's name cell is unreliable; the registry
		// falls back to the code when it is blank.
		if err := s.ensureSecurity(ctx, rec.Code, rec.Name); err != nil {
			return err
		}

		start, end := rocdate.ParseRange(rec.PeriodRaw)
		if rocdate.IsUndefined(start) {
			metrics.RecordSentinelDate()
			s.logger.Warn(ctx, "disposition period start is malformed",
				logger.String("run_id", runID),
				logger.String("code", rec.Code),
				logger.String("period", rec.PeriodRaw),
			)
		}

		// Identity is (code, start) only: a later row with the same start
		// but a different end or measures is dropped, first write wins.
		key := attentionKey(rec.Code, start)
		if _, dup := seen[key]; dup {
			duplicates++
			continue
		}
		seen[key] = struct{}{}

		exists, err := s.store.HasDisposition(ctx, rec.Code, start)
		if err != nil {
			return fmt.Errorf("disposition existence check: %w", err)
		}
		if exists {
			duplicates++
			continue
		}

		pending = append(pending, model.DispositionInterval{
			Code:      rec.Code,
			StartDate: start,
			EndDate:   end,
			Measures:  rec.Measures,
		})
	}

	if err := s.store.InsertDispositions(ctx, pending); err != nil {
		return err
	}

	metrics.RecordRowsInserted(logDisposition, len(pending))
	metrics.RecordRowsDuplicate(logDisposition, duplicates)
	s.logger.Info(ctx, "disposition batch merged",
		logger.String("run_id", runID),
		logger.Int("fetched", len(records)),
		logger.Int("inserted", len(pending)),
		logger.Int("duplicates", duplicates),
	)
	return nil
}

// ensureSecurity registers the security on first sighting. The creation is
// committed immediately so the rest of the pass sees it.
func (s *Service) ensureSecurity(ctx context.Context, code, name string) error {
	created, err := s.store.EnsureSecurity(ctx, code, name)
	if err != nil {
		return fmt.Errorf("ensure security %s: %w", code, err)
	}
	if created {
		metrics.RecordSecurityCreated()
	}
	return nil
}

// attentionKey builds the per-pass idempotency key for a (code, date) pair.
func attentionKey(code string, date time.Time) string {
	return code + "|" + date.Format(time.DateOnly)
}

// AttentionOn returns all attention events on date.
func (s *Service) AttentionOn(ctx context.Context, date time.Time) ([]model.AttentionEvent, error) {
	return s.store.AttentionOn(ctx, date)
}

// DispositionsCovering returns intervals containing date.
func (s *Service) DispositionsCovering(ctx context.Context, date time.Time) ([]model.DispositionInterval, error) {
	return s.store.DispositionsCovering(ctx, date)
}

// Assess classifies a single security as of ref.
func (s *Service) Assess(ctx context.Context, code string, ref time.Time) (model.RiskAssessment, error) {
	a, err := s.assessor.Assess(ctx, code, ref)
	if err != nil {
		return model.RiskAssessment{}, err
	}
	metrics.RecordRiskAssessment(a.Tier.String())
	return a, nil
}

// RiskReport assesses every security flagged within the candidate window
// and returns the non-Safe ones, most severe first, ties broken by longer
// consecutive runs.
func (s *Service) RiskReport(ctx context.Context, ref time.Time) ([]model.RiskAssessment, error) {
	since := ref.AddDate(0, 0, -s.candidateWindowDays)
	codes, err := s.store.ActiveCodes(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list risk candidates: %w", err)
	}

	report := make([]model.RiskAssessment, 0, len(codes))
	for _, code := range codes {
		a, err := s.Assess(ctx, code, ref)
		if err != nil {
			return nil, err
		}
		if a.Tier != model.TierSafe {
			report = append(report, a)
		}
	}

	sort.SliceStable(report, func(i, j int) bool {
		if report[i].Tier != report[j].Tier {
			return report[i].Tier > report[j].Tier
		}
		return report[i].ConsecutiveRun > report[j].ConsecutiveRun
	})
	return report, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{}

	s.passMu.Lock()
	stats["pass_running"] = s.running
	if !s.lastPass.IsZero() {
		stats["last_pass"] = s.lastPass.UTC().Format(time.RFC3339)
	}
	s.passMu.Unlock()

	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "stats count failed", logger.Error(err))
		return stats
	}
	stats["securities"] = counts.Securities
	stats["attention_events"] = counts.AttentionEvents
	stats["disposition_intervals"] = counts.DispositionIntervals

	metrics.UpdateSecuritiesTotal(counts.Securities)
	metrics.UpdateAttentionTotal(counts.AttentionEvents)
	metrics.UpdateDispositionsTotal(counts.DispositionIntervals)

	return stats
}
