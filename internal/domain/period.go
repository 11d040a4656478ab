package domain

import (
	"fmt"
	"time"
)

// BillingPeriod is the reconciliation window: usage from the prior calendar
// month, billed during the current one. All boundaries are UTC.
//
// Invariant: PriorStart <= PriorEnd < CurrentStart <= CurrentEnd and
// PriorEnd = CurrentStart - 1s.
type BillingPeriod struct {
	PriorStart   time.Time
	PriorEnd     time.Time
	CurrentStart time.Time
	CurrentEnd   time.Time
}

// NewBillingPeriod derives the four boundaries from a reference date, which
// is normalized to the first day of its month at 00:00:00 UTC.
func NewBillingPeriod(reference time.Time) BillingPeriod {
	currentStart := time.Date(reference.Year(), reference.Month(), 1, 0, 0, 0, 0, time.UTC)
	return BillingPeriod{
		PriorStart:   currentStart.AddDate(0, -1, 0),
		PriorEnd:     currentStart.Add(-time.Second),
		CurrentStart: currentStart,
		CurrentEnd:   currentStart.AddDate(0, 1, 0).Add(-time.Second),
	}
}

// DefaultReference returns the default billing reference date: the first day
// of the month containing now, in UTC.
func DefaultReference(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Label is the prior-month period label used for snapshot lookup and archive
// file naming: "YYYY-M" with no zero padding (October 2025 bills as "2025-9").
func (p BillingPeriod) Label() string {
	return fmt.Sprintf("%d-%d", p.PriorStart.Year(), int(p.PriorStart.Month()))
}

// AssistantWindow is the inclusive window assistant runs are metered over:
// the prior month only.
func (p BillingPeriod) AssistantWindow() (time.Time, time.Time) {
	return p.PriorStart, p.PriorEnd
}

// UnattendedWindow is the inclusive window unattended process runs are
// metered over. The upper bound is CurrentEnd, one month past the assistant
// window, matching the upstream data semantics; if that ever turns out to be
// unintended, changing the bound here is the whole fix.
func (p BillingPeriod) UnattendedWindow() (time.Time, time.Time) {
	return p.PriorStart, p.CurrentEnd
}

// Contains reports whether t falls inside the inclusive [start, end] window.
func Contains(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
