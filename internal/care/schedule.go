package care

import "time"

// NextDue computes the next watering deadline: lastWatered plus intervalDays
// whole days of elapsed time. No calendar or timezone adjustment — a 2-day
// interval means exactly 48 hours, regardless of DST or wall-clock day
// boundaries.
//
// Always call this from the current lastWatered, never by adding an interval
// to the previous deadline.
func NextDue(lastWatered time.Time, intervalDays int) time.Time {
	if intervalDays < 1 {
		intervalDays = DefaultIntervalDays
	}
	return lastWatered.Add(time.Duration(intervalDays) * 24 * time.Hour)
}

// AdvanceAfter returns the first due date strictly after now, stepping in
// whole intervals from lastWatered.
//
// This is the backlog policy for entries overdue by more than one interval
// (e.g. after process downtime): the schedule skips ahead to the next future
// deadline instead of remaining in the past and re-notifying every tick.
func AdvanceAfter(lastWatered time.Time, intervalDays int, now time.Time) time.Time {
	if intervalDays < 1 {
		intervalDays = DefaultIntervalDays
	}
	step := time.Duration(intervalDays) * 24 * time.Hour

	next := lastWatered.Add(step)
	if next.After(now) {
		return next
	}
	// Jump in one shot rather than looping — an entry untouched for years
	// should not cost years/interval iterations.
	intervals := now.Sub(lastWatered)/step + 1
	return lastWatered.Add(intervals * step)
}
