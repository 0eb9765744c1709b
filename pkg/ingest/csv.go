package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

var (
	ErrNoSessions = errors.New("no sessions found")
	ErrNoStaff    = errors.New("no staff found")
)

// headerScanLimit bounds how far down a sheet we look for the header row;
// exported workbooks often carry a note line above it.
const headerScanLimit = 50

// Column aliases, English and Arabic.
var (
	colID        = []string{"ID", "Id", "المعرف"}
	colSubject   = []string{"المادة", "Subject"}
	colDay       = []string{"اليوم", "Day"}
	colDate      = []string{"التاريخ", "Date"}
	colPeriod    = []string{"الفترة", "Period"}
	colFrom      = []string{"من", "From"}
	colTo        = []string{"إلى", "الى", "To"}
	colBuilding  = []string{"المبنى", "المبني", "Building"}
	colRequired  = []string{"عدد_الملاحظين", "عدد_المشرفين", "Supervisors Required", "Required"}
	colRoleType  = []string{"نوع", "Type", "Role Type", "Role"}
	colName      = []string{"الاسم", "المشرف", "Supervisor", "Name"}
	colDays      = []string{"الأيام المتاحة", "الايام المتاحة", "Available Days"}
	colLoad      = []string{"النسبة٪", "النسبة%", "Load%", "LoadPct", "Load"}
	colStaffRole = []string{"الوظيفة", "النوع", "Role"}
	colExcluded  = []string{"المواد المستبعدة", "Excluded Subjects"}
)

type sheet struct {
	name   string
	header int
	cols   map[string]int
	rows   [][]string
}

func readSheet(r io.Reader, name string, required ...[]string) (*sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: read csv: %w", name, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	limit := len(records)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		cols := make(map[string]int, len(records[i]))
		for c, cell := range records[i] {
			if h := strings.TrimSpace(cell); h != "" {
				if _, dup := cols[h]; !dup {
					cols[h] = c
				}
			}
		}
		if hasAll(cols, required) {
			return &sheet{name: name, header: i, cols: cols, rows: records}, nil
		}
	}

	names := make([]string, len(required))
	for i, group := range required {
		names[i] = strings.Join(group, "/")
	}
	return nil, fmt.Errorf("%s: missing required columns: %s", name, strings.Join(names, ", "))
}

func hasAll(cols map[string]int, groups [][]string) bool {
	for _, group := range groups {
		found := false
		for _, name := range group {
			if _, ok := cols[name]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *sheet) get(row []string, aliases []string) string {
	for _, name := range aliases {
		if c, ok := s.cols[name]; ok {
			if c < len(row) {
				return strings.TrimSpace(row[c])
			}
			return ""
		}
	}
	return ""
}

func blank(values ...string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadSessionsCSV reads exam sessions. Rows need a subject, a start and end
// time and either a date or a day; fully blank rows are skipped. A missing
// required count falls back to cfg.DefaultStaffPerSession.
func ReadSessionsCSV(r io.Reader, cfg models.Config) ([]models.Session, error) {
	sh, err := readSheet(r, "sessions", colSubject, colFrom, colTo)
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	for i := sh.header + 1; i < len(sh.rows); i++ {
		row := sh.rows[i]
		line := i + 1
		subject := sh.get(row, colSubject)
		dayStr := sh.get(row, colDay)
		dateStr := sh.get(row, colDate)
		from := sh.get(row, colFrom)
		to := sh.get(row, colTo)
		if blank(subject, dayStr, dateStr, from, to) {
			continue
		}
		if subject == "" || from == "" || to == "" || (dayStr == "" && dateStr == "") {
			return nil, fmt.Errorf("sessions row %d: required fields missing", line)
		}

		sess := models.Session{
			ID:       sh.get(row, colID),
			Subject:  subject,
			Building: sh.get(row, colBuilding),
			Role:     models.ParseRole(sh.get(row, colRoleType)),
		}
		if sess.ID == "" {
			sess.ID = fmt.Sprintf("S-%d", i-sh.header)
		}

		if dateStr != "" {
			if sess.Date, err = models.ParseDate(dateStr); err != nil {
				return nil, fmt.Errorf("sessions row %d: %w", line, err)
			}
			sess.Day = sess.Date.Weekday()
		} else if sess.Day, err = models.ParseWeekday(dayStr); err != nil {
			return nil, fmt.Errorf("sessions row %d: %w", line, err)
		}

		period, err := models.ParsePeriod(sh.get(row, colPeriod))
		if err != nil {
			return nil, fmt.Errorf("sessions row %d: %w", line, err)
		}
		if sess.Start, sess.End, sess.Period, err = resolveTimes(from, to, period); err != nil {
			return nil, fmt.Errorf("sessions row %d: %w", line, err)
		}

		sess.Required = cfg.DefaultStaffPerSession
		if raw := sh.get(row, colRequired); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("sessions row %d: invalid required count %q", line, raw)
			}
			sess.Required = n
		}
		if sess.Required < 1 {
			sess.Required = 1
		}

		sessions = append(sessions, sess)
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}
	return sessions, nil
}

// ReadStaffCSV reads staff members. Name and available days are required and
// names must be unique.
func ReadStaffCSV(r io.Reader) ([]models.Staff, error) {
	sh, err := readSheet(r, "staff", colName, colDays)
	if err != nil {
		return nil, err
	}

	var staff []models.Staff
	seen := make(map[string]bool)
	for i := sh.header + 1; i < len(sh.rows); i++ {
		row := sh.rows[i]
		line := i + 1
		name := sh.get(row, colName)
		days := sh.get(row, colDays)
		if blank(name, days) {
			continue
		}
		if name == "" || days == "" {
			return nil, fmt.Errorf("staff row %d: required fields missing", line)
		}
		if seen[name] {
			return nil, fmt.Errorf("staff row %d: duplicate name %q", line, name)
		}
		seen[name] = true

		st := models.Staff{Name: name, Role: models.ParseRole(sh.get(row, colStaffRole))}
		if st.AvailableDays, err = models.ParseWeekdays(days); err != nil {
			return nil, fmt.Errorf("staff row %d: %w", line, err)
		}
		if raw := strings.TrimSuffix(strings.TrimSuffix(sh.get(row, colLoad), "%"), "٪"); raw != "" {
			pct, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("staff row %d: invalid load percentage %q", line, raw)
			}
			st.LoadPercentage = models.Percent(pct)
		}
		if raw := sh.get(row, colExcluded); raw != "" {
			for _, subject := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '،' }) {
				if s := strings.TrimSpace(subject); s != "" {
					st.ExcludedSubjects = append(st.ExcludedSubjects, s)
				}
			}
		}
		staff = append(staff, st)
	}
	if len(staff) == 0 {
		return nil, ErrNoStaff
	}
	return staff, nil
}

// ApplyDefaults fills in the required count for sessions that carry none
func ApplyDefaults(sessions []models.Session, cfg models.Config) {
	for i := range sessions {
		if sessions[i].Required < 1 {
			sessions[i].Required = cfg.DefaultStaffPerSession
		}
	}
}
