package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

var (
	ErrNilSessions = errors.New("scheduler: session list is nil")
	ErrNilStaff    = errors.New("scheduler: staff list is nil")
)

// Reasons attached to sessions that are not fully staffed
const (
	ReasonInsufficient = "insufficient eligible staff or conflicts"
	ReasonAutoBackfill = "auto backfill due to constraints"
	ReasonNoFreeStaff  = "no free staff (overlap constraint)"
)

// Scheduler handles the logic of assigning staff to exam sessions. A
// Scheduler is single use: build one per run.
type Scheduler struct {
	Staff    []models.Staff
	Sessions []models.Session // exams, then floor, then maintenance slots
	Config   models.Config

	realCount  int
	floorCount int
	targets    Targets
	state      *ScheduleState
	hours      []float64
	expected   []float64
	assigned   [][]string
	statuses   []models.SessionAssignment
	backups    []models.BackupAssignment
	warnings   []string
	logger     *zap.Logger
}

// Option customises a Scheduler
type Option func(*Scheduler)

// WithLogger attaches a logger for per-pass diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScheduler creates a new scheduler instance with the synthetic floor and
// maintenance slots appended to the exam sessions
func NewScheduler(sessions []models.Session, staff []models.Staff, cfg models.Config, opts ...Option) *Scheduler {
	exams := make([]models.Session, len(sessions))
	for i, sess := range sessions {
		sess.Required = sess.RequiredCount()
		exams[i] = sess
	}
	floor := FloorSlots(exams)
	maintenance := MaintenanceSlots(exams, staff, cfg.RestDays)

	all := make([]models.Session, 0, len(exams)+len(floor)+len(maintenance))
	all = append(all, exams...)
	all = append(all, floor...)
	all = append(all, maintenance...)

	s := &Scheduler{
		Staff:      staff,
		Sessions:   all,
		Config:     cfg,
		realCount:  len(exams),
		floorCount: len(floor),
		targets:    ComputeTargets(exams, floor, maintenance, staff),
		state:      NewScheduleState(),
		hours:      make([]float64, len(staff)),
		expected:   make([]float64, len(staff)),
		assigned:   make([][]string, len(all)),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for i, st := range staff {
		s.expected[i] = s.targets.Expected(st)
	}
	s.checkInputs()
	return s
}

// Assign runs every pass and returns the complete result. Only a nil session
// or staff list is an error; shortages are reported per session.
func Assign(sessions []models.Session, staff []models.Staff, cfg models.Config, opts ...Option) (*models.AssignmentResult, error) {
	if sessions == nil {
		return nil, ErrNilSessions
	}
	if staff == nil {
		return nil, ErrNilStaff
	}
	return NewScheduler(sessions, staff, cfg, opts...).Run(), nil
}

// Run executes greedy assignment, backfill, forced fallback, backups and
// totals in that order
func (s *Scheduler) Run() *models.AssignmentResult {
	s.AssignGreedy()
	s.Backfill()
	s.ResolveStatuses()
	s.AssignBackups()
	result := &models.AssignmentResult{
		Sessions:           s.statuses,
		Backups:            s.backups,
		Totals:             s.Totals(),
		TargetHoursPerUnit: s.targets.TargetPerUnit(),
		TotalHoursNeeded:   s.targets.TotalHoursNeeded,
		Warnings:           s.warnings,
	}
	if result.Backups == nil {
		result.Backups = []models.BackupAssignment{}
	}
	result.FairnessScore = FairnessScore(result.Totals)

	counts := result.Counts()
	s.logger.Info("schedule computed",
		zap.Int("sessions", len(s.Sessions)),
		zap.Int("staff", len(s.Staff)),
		zap.Int("assigned", counts.Assigned),
		zap.Int("partially_assigned", counts.PartiallyAssigned),
		zap.Int("unassigned", counts.Unassigned),
		zap.Int("backups", len(s.backups)),
		zap.Float64("fairness_score", result.FairnessScore),
	)
	return result
}

func (s *Scheduler) checkInputs() {
	for _, sess := range s.Sessions[:s.realCount] {
		if sess.End <= sess.Start {
			s.warnings = append(s.warnings, fmt.Sprintf("session %s has a non-positive duration", sess.ID))
		}
	}
	needed := make(map[models.Role]int)
	for _, sess := range s.Sessions {
		needed[sess.Role]++
	}
	for _, role := range models.Roles {
		if needed[role] > 0 && s.targets.LoadUnits[role] == 0 {
			s.warnings = append(s.warnings, fmt.Sprintf("%d sessions need role %s but no staff carry load for it", needed[role], role))
		}
	}
}

type slotUnit struct {
	session  int
	duration float64
	eligible int
}

// AssignGreedy expands every session into one unit per required staff member
// and fills units longest first, scarcest first within equal duration
func (s *Scheduler) AssignGreedy() {
	eligibleCount := make([]int, len(s.Sessions))
	for i, sess := range s.Sessions {
		for _, st := range s.Staff {
			if Eligible(sess, st) {
				eligibleCount[i]++
			}
		}
	}

	var units []slotUnit
	for i, sess := range s.Sessions {
		for k := 0; k < sess.RequiredCount(); k++ {
			units = append(units, slotUnit{session: i, duration: sess.DurationHours(), eligible: eligibleCount[i]})
		}
	}
	sort.SliceStable(units, func(a, b int) bool {
		if units[a].duration != units[b].duration {
			return units[a].duration > units[b].duration
		}
		return units[a].eligible < units[b].eligible
	})

	unfilled := 0
	for _, u := range units {
		slot := s.Sessions[u.session]
		best, ok := s.pick(slot, s.candidates(slot, Strict, nil))
		if !ok {
			unfilled++
			continue
		}
		s.commit(best, slot)
		s.assigned[u.session] = append(s.assigned[u.session], s.Staff[best].Name)
	}
	s.logger.Debug("greedy pass complete", zap.Int("units", len(units)), zap.Int("unfilled", unfilled))
}
