// Package model contains domain models passed between layers.
package model

import "time"

// Security is the registry entry for a listed security. It is created on
// first sighting from either feed and never deleted. The disposition feed
// does not reliably carry a name, so Name may hold the code itself as a
// placeholder.
type Security struct {
	Code string `gorm:"primaryKey;size:16" json:"code"`
	Name string `gorm:"size:128" json:"name"`
}

// AttentionEvent records "security Code was flagged on Date". At most one
// event exists per (Code, Date) pair; the merger enforces this, not the
// schema. Events are immutable once written.
type AttentionEvent struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Code   string    `gorm:"index;size:16" json:"code"`
	Date   time.Time `gorm:"index" json:"date"`
	Reason string    `json:"reason"`
}

// DispositionInterval records a trading restriction over [StartDate, EndDate]
// inclusive. At most one interval exists per (Code, StartDate); later rows
// with the same start are dropped even when the end date or measures differ.
type DispositionInterval struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"index;size:16" json:"code"`
	StartDate time.Time `gorm:"index" json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Measures  string    `json:"measures"`
}

// RiskAssessment is the classification engine's output. It is derived from
// the attention log on every query and never persisted.
type RiskAssessment struct {
	Code             string `json:"code"`
	Tier             Tier   `json:"tier"`
	Reason           string `json:"reason,omitempty"`
	ConsecutiveRun   int    `json:"consecutive_run"`
	ShortWindowCount int    `json:"short_window_count"`
	LongWindowCount  int    `json:"long_window_count"`
}
