package scheduler

import (
	"go.uber.org/zap"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Backfill tops up sessions the greedy pass left short, ignoring day
// availability and subject exclusions but still honouring role, overlap and
// the consecutive-day limit
func (s *Scheduler) Backfill() {
	added := 0
	for i, sess := range s.Sessions {
		s.assigned[i] = distinct(s.assigned[i])
		taken := make(map[string]bool, len(s.assigned[i]))
		for _, name := range s.assigned[i] {
			taken[name] = true
		}
		for len(s.assigned[i]) < sess.RequiredCount() {
			best, ok := s.pick(sess, s.candidates(sess, RelaxedAvailability, taken))
			if !ok {
				break
			}
			s.commit(best, sess)
			name := s.Staff[best].Name
			taken[name] = true
			s.assigned[i] = append(s.assigned[i], name)
			added++
		}
	}
	s.logger.Debug("backfill pass complete", zap.Int("added", added))
}

// ResolveStatuses settles each session's status. Sessions still empty get one
// last forced attempt before being reported unassigned.
func (s *Scheduler) ResolveStatuses() {
	forced := 0
	s.statuses = make([]models.SessionAssignment, len(s.Sessions))
	for i, sess := range s.Sessions {
		sa := models.SessionAssignment{Session: sess, Assigned: s.assigned[i]}
		switch n := len(s.assigned[i]); {
		case n == sess.RequiredCount():
			sa.Status = models.StatusAssigned
		case n > 0:
			sa.Status = models.StatusPartiallyAssigned
			sa.Reason = ReasonInsufficient
		default:
			if best, ok := s.pick(sess, s.candidates(sess, SingleForced, nil)); ok {
				s.commit(best, sess)
				s.assigned[i] = []string{s.Staff[best].Name}
				sa.Assigned = s.assigned[i]
				sa.Status = models.StatusPartiallyAssigned
				sa.Reason = ReasonAutoBackfill
				forced++
			} else {
				sa.Assigned = []string{}
				sa.Status = models.StatusUnassigned
				sa.Reason = ReasonNoFreeStaff
			}
		}
		s.statuses[i] = sa
	}
	s.logger.Debug("status resolution complete", zap.Int("forced", forced))
}
