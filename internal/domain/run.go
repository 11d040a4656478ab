package domain

import (
	"math"
	"time"
)

// RunSource distinguishes the two metering paths: scheduled unattended runs
// (summed from step durations) and interactive assistant runs (one top-level
// duration each).
type RunSource string

const (
	SourceUnattended RunSource = "unattended"
	SourceAssistant  RunSource = "assistant"
)

// RunRecord is one completed automation execution, normalized to whole
// billable minutes. StartedAt is always UTC; records without an explicit
// offset never make it this far.
type RunRecord struct {
	ProcessID      string
	ProcessName    string
	StartedAt      time.Time
	RuntimeMinutes int
	Source         RunSource
}

// CeilMinutes converts a duration in seconds to billable minutes, rounding
// up to the next whole minute. Each constituent duration is rounded before
// summing, so 61s bills as 2 minutes.
func CeilMinutes(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds / 60))
}

// Month returns the calendar-month bucket ("YYYY-MM") the record falls in.
func (r RunRecord) Month() string {
	return r.StartedAt.UTC().Format("2006-01")
}
