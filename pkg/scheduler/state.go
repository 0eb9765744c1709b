package scheduler

import (
	"time"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

type interval struct {
	start models.Clock
	end   models.Clock
	day   time.Weekday
}

// Overlap checks if two half-open time ranges intersect. Touching endpoints
// do not count.
func Overlap(aStart, aEnd, bStart, bEnd models.Clock) bool {
	return aStart < bEnd && bStart < aEnd
}

// dayKey identifies one booking day. Undated slots are keyed by weekday.
type dayKey struct {
	date    models.Date
	weekday time.Weekday
}

func keyOf(slot models.Session) dayKey {
	if slot.Date.IsZero() {
		return dayKey{weekday: slot.Day}
	}
	return dayKey{date: slot.Date}
}

// ScheduleState tracks, per staff member, the intervals booked on each date.
// Primary and backup bookings share it.
type ScheduleState struct {
	days map[string]map[dayKey][]interval
}

// NewScheduleState creates an empty schedule
func NewScheduleState() *ScheduleState {
	return &ScheduleState{days: make(map[string]map[dayKey][]interval)}
}

// HasOverlap checks if a slot would overlap anything already booked for staff
// on the slot's date, or its weekday when the slot is undated
func (st *ScheduleState) HasOverlap(staff string, slot models.Session) bool {
	for _, iv := range st.days[staff][keyOf(slot)] {
		if Overlap(iv.start, iv.end, slot.Start, slot.End) {
			return true
		}
	}
	return false
}

func (st *ScheduleState) booked(staff string, d models.Date) bool {
	return len(st.days[staff][dayKey{date: d}]) > 0
}

// RespectsConsecutiveDayLimit reports whether booking staff on d keeps them
// below three calendar days in a row. Undated slots are not constrained.
func (st *ScheduleState) RespectsConsecutiveDayLimit(staff string, d models.Date) bool {
	if d.IsZero() {
		return true
	}
	prev1 := st.booked(staff, d.AddDays(-1))
	if prev1 && st.booked(staff, d.AddDays(-2)) {
		return false
	}
	next1 := st.booked(staff, d.AddDays(1))
	if prev1 && next1 {
		return false
	}
	if next1 && st.booked(staff, d.AddDays(2)) {
		return false
	}
	return true
}

// Commit books the slot for staff
func (st *ScheduleState) Commit(staff string, slot models.Session) {
	byDay, ok := st.days[staff]
	if !ok {
		byDay = make(map[dayKey][]interval)
		st.days[staff] = byDay
	}
	k := keyOf(slot)
	byDay[k] = append(byDay[k], interval{start: slot.Start, end: slot.End, day: slot.Weekday()})
}

// PreferenceScore ranks staff for slot under the scheduling mode; lower is
// better. Staff with nothing booked that day score 1.
func (st *ScheduleState) PreferenceScore(staff string, slot models.Session, mode models.SchedulingMode) int {
	list := st.days[staff][keyOf(slot)]
	if len(list) == 0 {
		return 1
	}
	adjacent := false
	for _, iv := range list {
		if iv.end == slot.Start || iv.start == slot.End {
			adjacent = true
			break
		}
	}
	switch mode {
	case models.ModeConsecutive:
		if adjacent {
			return 0
		}
		return 1
	case models.ModeBreak:
		if adjacent {
			return 2
		}
		return 0
	default:
		if adjacent {
			return 1
		}
		return 0
	}
}

// Summary replays the bookings of staff into hours per weekday and a booking
// count
func (st *ScheduleState) Summary(staff string) (map[time.Weekday]float64, int) {
	perDay := make(map[time.Weekday]float64)
	count := 0
	for _, list := range st.days[staff] {
		for _, iv := range list {
			perDay[iv.day] += iv.end.Sub(iv.start).Hours()
			count++
		}
	}
	return perDay, count
}
