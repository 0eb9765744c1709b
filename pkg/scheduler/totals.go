package scheduler

import (
	"gonum.org/v1/gonum/stat"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// Totals snapshots primary, backup and per-day hours for every staff member,
// in input order
func (s *Scheduler) Totals() []models.StaffTotals {
	duration := make(map[string]float64, s.realCount+s.floorCount)
	for _, sess := range s.Sessions[:s.realCount+s.floorCount] {
		duration[sess.ID] = sess.DurationHours()
	}
	primary := make(map[string]float64, len(s.Staff))
	for _, sa := range s.statuses {
		for _, name := range sa.Assigned {
			primary[name] += sa.Session.DurationHours()
		}
	}
	backup := make(map[string]float64, len(s.Staff))
	for _, ba := range s.backups {
		backup[ba.Staff] += duration[ba.SessionID]
	}

	totals := make([]models.StaffTotals, 0, len(s.Staff))
	for i, st := range s.Staff {
		perDay, count := s.state.Summary(st.Name)
		byName := make(map[string]float64, len(perDay))
		for day, h := range perDay {
			byName[day.String()] = h
		}
		total := primary[st.Name] + backup[st.Name]
		totals = append(totals, models.StaffTotals{
			Staff:          st.Name,
			Role:           st.Role,
			LoadPercentage: st.Load(),
			PrimaryHours:   primary[st.Name],
			BackupHours:    backup[st.Name],
			TotalHours:     total,
			ExpectedHours:  s.expected[i],
			Deviation:      total - s.expected[i],
			PerDayHours:    byName,
			SessionCount:   count,
		})
	}
	return totals
}

// FairnessScore returns a percentage (0-100) representing how evenly load is
// spread relative to each person's target. 100% means every staff member with
// a target sits at the same load ratio.
func FairnessScore(totals []models.StaffTotals) float64 {
	var ratios []float64
	for _, t := range totals {
		if t.ExpectedHours > 0 {
			ratios = append(ratios, t.TotalHours/t.ExpectedHours)
		}
	}
	if len(ratios) < 2 {
		return 100.0
	}
	mean, stdDev := stat.MeanStdDev(ratios, nil)
	if mean == 0 {
		return 100.0
	}
	score := (1.0 - stdDev/mean) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
