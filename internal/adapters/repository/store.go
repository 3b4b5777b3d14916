// Package repository defines the surveillance store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/vigil/internal/domain/model"
)

// Counts summarizes table sizes for reporting.
type Counts struct {
	Securities           int64 `json:"securities"`
	AttentionEvents      int64 `json:"attention_events"`
	DispositionIntervals int64 `json:"disposition_intervals"`
}

// Store provides read/write access to the security registry and the two
// event logs. Writers are expected to be serialized by the caller: the
// existence-check-then-insert sequences are not safe under concurrent
// writers to the same key.
type Store interface {
	// EnsureSecurity creates the security if absent, visible immediately to
	// subsequent calls in the same ingestion pass. Returns whether a row was
	// created.
	EnsureSecurity(ctx context.Context, code, name string) (bool, error)

	// HasAttention reports whether an event exists for (code, date).
	HasAttention(ctx context.Context, code string, date time.Time) (bool, error)

	// InsertAttention writes a batch of new attention events in one
	// transaction. A nil or empty batch is a no-op.
	InsertAttention(ctx context.Context, events []model.AttentionEvent) error

	// HasDisposition reports whether an interval exists for (code, start).
	// The end date and measures are not part of the identity key.
	HasDisposition(ctx context.Context, code string, start time.Time) (bool, error)

	// InsertDispositions writes a batch of new intervals in one transaction.
	InsertDispositions(ctx context.Context, intervals []model.DispositionInterval) error

	// AttentionOn returns all events flagged exactly on date.
	AttentionOn(ctx context.Context, date time.Time) ([]model.AttentionEvent, error)

	// DispositionsCovering returns intervals where start <= date <= end.
	DispositionsCovering(ctx context.Context, date time.Time) ([]model.DispositionInterval, error)

	// RecentAttention returns up to limit events for code with date <= ref,
	// ordered by date descending.
	RecentAttention(ctx context.Context, code string, ref time.Time, limit int) ([]model.AttentionEvent, error)

	// ActiveCodes returns the distinct codes with at least one attention
	// event on or after since.
	ActiveCodes(ctx context.Context, since time.Time) ([]string, error)

	// SecurityName returns the registered display name for code.
	// Returns ErrNotFound for unknown codes.
	SecurityName(ctx context.Context, code string) (string, error)

	// Counts returns current table sizes.
	Counts(ctx context.Context) (Counts, error)
}
