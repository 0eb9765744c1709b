package scheduler

import (
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// FairnessCap is the load ratio above which a candidate is only used when no
// one under the cap qualifies
const FairnessCap = 1.0

// minExpectedHours keeps load ratios finite for staff with no target
const minExpectedHours = 0.1

// Eligible checks if a staff member qualifies for a slot: matching role,
// subject not excluded, and available on the slot's weekday.
func Eligible(slot models.Session, st models.Staff) bool {
	return st.Role == slot.Role &&
		!st.Excludes(slot.Subject) &&
		st.AvailableDays.Contains(slot.Weekday())
}

// ConstraintSet names which of the static checks a pass enforces. Role match,
// no overlap and the consecutive-day limit are enforced by every pass.
type ConstraintSet struct {
	Name                  string
	RequireAvailableDay   bool
	RequireSubjectAllowed bool
}

var (
	// Strict is used by the greedy pass
	Strict = ConstraintSet{Name: "strict", RequireAvailableDay: true, RequireSubjectAllowed: true}
	// RelaxedAvailability drops day availability and subject exclusions
	RelaxedAvailability = ConstraintSet{Name: "relaxed-availability"}
	// SingleForced is the last attempt for sessions nobody covers
	SingleForced = ConstraintSet{Name: "single-forced"}
	// Standby selects backups: availability holds, exclusions do not apply
	Standby = ConstraintSet{Name: "standby", RequireAvailableDay: true}
)

// Admits applies the static part of the constraint set
func (cs ConstraintSet) Admits(slot models.Session, st models.Staff) bool {
	if st.Role != slot.Role {
		return false
	}
	if cs.RequireSubjectAllowed && st.Excludes(slot.Subject) {
		return false
	}
	if cs.RequireAvailableDay && !st.AvailableDays.Contains(slot.Weekday()) {
		return false
	}
	return true
}

// candidates returns the indexes of staff admitted by cs who are free for the
// slot right now, skipping anyone in exclude
func (s *Scheduler) candidates(slot models.Session, cs ConstraintSet, exclude map[string]bool) []int {
	var pool []int
	for i, st := range s.Staff {
		if exclude[st.Name] {
			continue
		}
		if !cs.Admits(slot, st) {
			continue
		}
		if s.state.HasOverlap(st.Name, slot) {
			continue
		}
		if !s.state.RespectsConsecutiveDayLimit(st.Name, slot.Date) {
			continue
		}
		pool = append(pool, i)
	}
	return pool
}

// LoadRatio is hours so far over the staff member's expected hours
func (s *Scheduler) LoadRatio(i int) float64 {
	exp := s.expected[i]
	if exp < minExpectedHours {
		exp = minExpectedHours
	}
	return s.hours[i] / exp
}

// better orders candidates: load ratio, then preference score, then name
func (s *Scheduler) better(a, b int, slot models.Session) bool {
	ra, rb := s.LoadRatio(a), s.LoadRatio(b)
	if ra != rb {
		return ra < rb
	}
	pa := s.state.PreferenceScore(s.Staff[a].Name, slot, s.Config.Mode)
	pb := s.state.PreferenceScore(s.Staff[b].Name, slot, s.Config.Mode)
	if pa != pb {
		return pa < pb
	}
	return s.Staff[a].Name < s.Staff[b].Name
}

// pick chooses from the pool, preferring staff at or under the fairness cap
func (s *Scheduler) pick(slot models.Session, pool []int) (int, bool) {
	if len(pool) == 0 {
		return -1, false
	}
	var underCap []int
	for _, i := range pool {
		if s.LoadRatio(i) <= FairnessCap {
			underCap = append(underCap, i)
		}
	}
	if len(underCap) > 0 {
		pool = underCap
	}
	best := pool[0]
	for _, i := range pool[1:] {
		if s.better(i, best, slot) {
			best = i
		}
	}
	return best, true
}

// commit books slot for staff i and adds its duration to their running total
func (s *Scheduler) commit(i int, slot models.Session) {
	s.state.Commit(s.Staff[i].Name, slot)
	s.hours[i] += slot.DurationHours()
}
