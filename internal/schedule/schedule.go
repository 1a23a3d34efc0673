// Package schedule implements the availability engine: slot grid
// generation, interval overlap, booked-span resolution and the availability
// calculation. Everything here is a pure function over its inputs; callers
// load the booking collection and decide what to do with the result.
package schedule

import (
	"time"

	"maidbook/internal/models"
)

// SlotStep is the booking grid resolution. All slots start on a SlotStep
// boundary relative to the worker's daily start, and every duration is a
// positive multiple of it.
const SlotStep = 30 * time.Minute

// Span is an occupied [Start, End) interval on a worker's day.
type Span struct {
	Start models.Clock
	End   models.Clock
}

// ValidDuration reports whether d is bookable: at least one slot long and
// quantized to the grid.
func ValidDuration(d time.Duration) bool {
	return d >= SlotStep && d%SlotStep == 0
}

// Grid returns the ordered slot start times for a working window. The last
// slot is the latest start whose single step still fits before the window
// end; a window shorter than one step yields nothing.
func Grid(dayStart, dayEnd models.Clock) []models.Clock {
	var slots []models.Clock
	for cur := dayStart; cur.Add(SlotStep) <= dayEnd; cur = cur.Add(SlotStep) {
		slots = append(slots, cur)
	}
	return slots
}

// Overlaps is the half-open interval intersection test. Intervals that only
// touch at an endpoint do not overlap, which is what permits back-to-back
// bookings.
func Overlaps(start1, end1, start2, end2 models.Clock) bool {
	return max(start1, start2) < min(end1, end2)
}

// BookedSpans resolves the occupied intervals for a worker on a date.
// Cancelled bookings free their slot immediately and are skipped.
func BookedSpans(bookings []models.Booking, worker string, date models.Date) []Span {
	var spans []Span
	for _, b := range bookings {
		if !models.SameHandle(b.Worker, worker) || b.Date != date || b.Cancelled() {
			continue
		}
		spans = append(spans, Span{Start: b.Start, End: b.End})
	}
	return spans
}

// AvailableStarts computes the grid starts on which a booking of the given
// duration fits inside the worker's daily window without overlapping any
// booked span. An empty result is a valid answer meaning fully booked or
// nothing fits. The caller validates the duration with ValidDuration.
func AvailableStarts(profile *models.WorkerProfile, bookings []models.Booking, date models.Date, duration time.Duration) []models.Clock {
	spans := BookedSpans(bookings, profile.Username, date)

	var avail []models.Clock
	for _, start := range Grid(profile.DailyStart, profile.DailyEnd) {
		end := start.Add(duration)
		if start < profile.DailyStart || end > profile.DailyEnd {
			continue
		}
		if overlapsAny(start, end, spans) {
			continue
		}
		avail = append(avail, start)
	}
	return avail
}

func overlapsAny(start, end models.Clock, spans []Span) bool {
	for _, s := range spans {
		if Overlaps(start, end, s.Start, s.End) {
			return true
		}
	}
	return false
}
