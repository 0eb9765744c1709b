package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

var (
	assignmentHeaders = []string{"Session ID", "Subject", "Role", "Building", "Period", "Day", "Date", "From", "To", "Required", "Assigned", "Status", "Reason"}
	totalsHeaders     = []string{"Name", "Role", "Load %", "Primary Hours", "Backup Hours", "Total Hours", "Expected Hours", "Deviation", "Sessions", "Target Reached %"}
	backupHeaders     = []string{"Date", "Day", "Period", "Role", "Staff", "Building", "Session ID", "Subject"}
	scheduleHeaders   = []string{"Staff", "Kind", "Date", "Day", "Period", "From", "To", "Subject", "Building", "Session ID"}
)

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

func periodLess(a, b models.Period) bool {
	return a.Rank() < b.Rank()
}

// dateLess orders dated entries before undated ones
func dateLess(a, b models.Date) (less, decided bool) {
	switch {
	case a.IsZero() && b.IsZero():
		return false, false
	case a.IsZero():
		return false, true
	case b.IsZero():
		return true, true
	case !a.Equal(b.Time):
		return a.Before(b.Time), true
	}
	return false, false
}

func sortedSessions(result *models.AssignmentResult) []models.SessionAssignment {
	out := append([]models.SessionAssignment(nil), result.Sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Session, out[j].Session
		if less, ok := dateLess(a.Date, b.Date); ok {
			return less
		}
		if a.Date.IsZero() && a.Weekday() != b.Weekday() {
			return a.Weekday() < b.Weekday()
		}
		if a.Period != b.Period {
			return periodLess(a.Period, b.Period)
		}
		if a.Building != b.Building {
			return a.Building < b.Building
		}
		if a.IsFloor() != b.IsFloor() {
			return a.IsFloor()
		}
		return a.Start < b.Start
	})
	return out
}

// AssignmentsDataset lists one row per session ordered by date, period,
// building, floor slots first, then start time
func AssignmentsDataset(result *models.AssignmentResult) Dataset {
	data := Dataset{Headers: assignmentHeaders}
	for _, sa := range sortedSessions(result) {
		s := sa.Session
		data.Rows = append(data.Rows, map[string]string{
			"Session ID": s.ID,
			"Subject":    s.Subject,
			"Role":       s.Role.String(),
			"Building":   s.Building,
			"Period":     string(s.Period),
			"Day":        s.Weekday().String(),
			"Date":       s.Date.String(),
			"From":       s.Start.String(),
			"To":         s.End.String(),
			"Required":   strconv.Itoa(s.Required),
			"Assigned":   strings.Join(sa.Assigned, ", "),
			"Status":     string(sa.Status),
			"Reason":     sa.Reason,
		})
	}
	return data
}

// TotalsDataset lists floor supervisors first, then everyone else, by name
func TotalsDataset(result *models.AssignmentResult) Dataset {
	totals := append([]models.StaffTotals(nil), result.Totals...)
	sort.SliceStable(totals, func(i, j int) bool {
		fi, fj := totals[i].Role == models.FloorSupervisor, totals[j].Role == models.FloorSupervisor
		if fi != fj {
			return fi
		}
		return totals[i].Staff < totals[j].Staff
	})

	data := Dataset{Headers: totalsHeaders}
	for _, t := range totals {
		reached := 100.0
		if t.ExpectedHours > 0 {
			reached = t.TotalHours / t.ExpectedHours * 100
		}
		if reached > 100 {
			reached = 100
		}
		data.Rows = append(data.Rows, map[string]string{
			"Name":             t.Staff,
			"Role":             t.Role.String(),
			"Load %":           strconv.FormatFloat(t.LoadPercentage, 'f', -1, 64),
			"Primary Hours":    hours(t.PrimaryHours),
			"Backup Hours":     hours(t.BackupHours),
			"Total Hours":      hours(t.TotalHours),
			"Expected Hours":   hours(t.ExpectedHours),
			"Deviation":        hours(t.Deviation),
			"Sessions":         strconv.Itoa(t.SessionCount),
			"Target Reached %": strconv.FormatFloat(reached, 'f', 0, 64),
		})
	}
	return data
}

// BackupsDataset lists standby staff by date, period and name
func BackupsDataset(result *models.AssignmentResult) Dataset {
	backups := append([]models.BackupAssignment(nil), result.Backups...)
	sort.SliceStable(backups, func(i, j int) bool {
		a, b := backups[i], backups[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		if a.Period != b.Period {
			return periodLess(a.Period, b.Period)
		}
		return a.Staff < b.Staff
	})

	data := Dataset{Headers: backupHeaders}
	for _, b := range backups {
		data.Rows = append(data.Rows, map[string]string{
			"Date":       b.Date.String(),
			"Day":        b.Date.Weekday().String(),
			"Period":     string(b.Period),
			"Role":       b.Role.String(),
			"Staff":      b.Staff,
			"Building":   b.Building,
			"Session ID": b.SessionID,
			"Subject":    b.Subject,
		})
	}
	return data
}

type event struct {
	kind    string
	session models.Session
}

// StaffScheduleDataset lists every primary and backup duty per staff member,
// staff in totals order and each person's duties by date then start time
func StaffScheduleDataset(result *models.AssignmentResult) Dataset {
	byID := make(map[string]models.Session, len(result.Sessions))
	events := make(map[string][]event)
	for _, sa := range result.Sessions {
		byID[sa.Session.ID] = sa.Session
		for _, name := range sa.Assigned {
			events[name] = append(events[name], event{"Primary", sa.Session})
		}
	}
	for _, b := range result.Backups {
		if sess, ok := byID[b.SessionID]; ok {
			events[b.Staff] = append(events[b.Staff], event{"Backup", sess})
		}
	}

	data := Dataset{Headers: scheduleHeaders}
	for _, t := range result.Totals {
		list := events[t.Staff]
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].session, list[j].session
			if less, ok := dateLess(a.Date, b.Date); ok {
				return less
			}
			return a.Start < b.Start
		})
		for _, ev := range list {
			s := ev.session
			data.Rows = append(data.Rows, map[string]string{
				"Staff":      t.Staff,
				"Kind":       ev.kind,
				"Date":       s.Date.String(),
				"Day":        s.Weekday().String(),
				"Period":     string(s.Period),
				"From":       s.Start.String(),
				"To":         s.End.String(),
				"Subject":    s.Subject,
				"Building":   s.Building,
				"Session ID": s.ID,
			})
		}
	}
	return data
}

// AssignmentsCSV renders AssignmentsDataset
func AssignmentsCSV(result *models.AssignmentResult, opts ...CSVOption) ([]byte, error) {
	return NewCSVExporter(opts...).Render(AssignmentsDataset(result))
}

// TotalsCSV renders TotalsDataset
func TotalsCSV(result *models.AssignmentResult, opts ...CSVOption) ([]byte, error) {
	return NewCSVExporter(opts...).Render(TotalsDataset(result))
}

// BackupsCSV renders BackupsDataset
func BackupsCSV(result *models.AssignmentResult, opts ...CSVOption) ([]byte, error) {
	return NewCSVExporter(opts...).Render(BackupsDataset(result))
}

// StaffScheduleCSV renders StaffScheduleDataset
func StaffScheduleCSV(result *models.AssignmentResult, opts ...CSVOption) ([]byte, error) {
	return NewCSVExporter(opts...).Render(StaffScheduleDataset(result))
}

// PDFReport renders a printable summary: status counts and hour figures,
// one line per session in date and start order, then the totals table.
func PDFReport(result *models.AssignmentResult, title string) ([]byte, error) {
	if title == "" {
		title = "Staffing assignments"
	}
	counts := result.Counts()
	summary := Section{
		Title: "Summary",
		Lines: []string{
			fmt.Sprintf("Sessions: %d (assigned %d, partial %d, unassigned %d)",
				len(result.Sessions), counts.Assigned, counts.PartiallyAssigned, counts.Unassigned),
			fmt.Sprintf("Backups: %d", len(result.Backups)),
			fmt.Sprintf("Total hours needed: %s, target per load unit: %s",
				hours(result.TotalHoursNeeded), hours(result.TargetHoursPerUnit)),
			fmt.Sprintf("Fairness score: %.1f", result.FairnessScore),
		},
	}
	for _, w := range result.Warnings {
		summary.Lines = append(summary.Lines, "Warning: "+w)
	}

	ordered := append([]models.SessionAssignment(nil), result.Sessions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Session, ordered[j].Session
		if less, ok := dateLess(a.Date, b.Date); ok {
			return less
		}
		return a.Start < b.Start
	})
	sessions := Section{Title: "Sessions"}
	for _, sa := range ordered {
		s := sa.Session
		assigned := strings.Join(sa.Assigned, ", ")
		if assigned == "" {
			assigned = "-"
		}
		sessions.Lines = append(sessions.Lines, fmt.Sprintf("%s | %s %s | %s - %s | %s",
			s.Subject, s.Weekday(), s.Date, s.Start, s.End, assigned))
	}

	totals := Section{Title: "Totals", Data: TotalsDataset(result)}
	return NewPDFExporter().Render(title, summary, sessions, totals)
}
