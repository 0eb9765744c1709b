package scheduler

import (
	"go.uber.org/zap"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// AssignBackups picks standby staff for every dated real session (as many as
// it requires) and every floor slot (exactly one). Maintenance slots get no
// backups. Backups are booked like primaries so later checks see them.
func (s *Scheduler) AssignBackups() {
	floorEnd := s.realCount + s.floorCount
	for i := 0; i < floorEnd; i++ {
		sess := s.Sessions[i]
		if sess.Date.IsZero() {
			continue
		}
		need := sess.RequiredCount()
		if i >= s.realCount {
			need = 1
		}
		exclude := make(map[string]bool, len(s.assigned[i])+need)
		for _, name := range s.assigned[i] {
			exclude[name] = true
		}
		pool := s.candidates(sess, Standby, exclude)
		for added := 0; added < need; added++ {
			best, ok := s.pick(sess, pool)
			if !ok {
				break
			}
			s.commit(best, sess)
			name := s.Staff[best].Name
			s.backups = append(s.backups, models.BackupAssignment{
				Date:      sess.Date,
				Period:    sess.Period,
				Role:      sess.Role,
				Staff:     name,
				Building:  sess.Building,
				SessionID: sess.ID,
				Subject:   sess.Subject,
			})
			pool = remove(pool, best)
		}
	}
	s.logger.Debug("backup pass complete", zap.Int("backups", len(s.backups)))
}

func remove(pool []int, v int) []int {
	out := pool[:0:0]
	for _, i := range pool {
		if i != v {
			out = append(out, i)
		}
	}
	return out
}
