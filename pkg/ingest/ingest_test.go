package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

func TestReadSessionsCSV_English(t *testing.T) {
	in := strings.Join([]string{
		"Enter one exam per row",
		"Subject,Building,Period,Day,Date,From,To,Supervisors Required,Role Type",
		"Math,North,Morning,Saturday,2025-01-04,10:00,12:00,3,",
		"Chem,North,Evening,Saturday,4/1/2025,01:00,03:00,,Floor Supervisor",
		",,,,,,,,",
		"Art,,,Monday,,9:00 AM,10:30 AM,0,",
	}, "\n")

	sessions, err := ReadSessionsCSV(strings.NewReader(in), models.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	math := sessions[0]
	assert.Equal(t, "S-1", math.ID)
	assert.Equal(t, models.NewDate(2025, time.January, 4), math.Date)
	assert.Equal(t, time.Saturday, math.Weekday())
	assert.Equal(t, models.At(10, 0), math.Start)
	assert.Equal(t, 3, math.Required)
	assert.Equal(t, models.Invigilator, math.Role)

	chem := sessions[1]
	assert.Equal(t, models.At(13, 0), chem.Start)
	assert.Equal(t, models.At(15, 0), chem.End)
	assert.Equal(t, models.Evening, chem.Period)
	assert.Equal(t, 2, chem.Required, "default staff per session")
	assert.Equal(t, models.FloorSupervisor, chem.Role)

	art := sessions[2]
	assert.Equal(t, "S-4", art.ID)
	assert.True(t, art.Date.IsZero())
	assert.Equal(t, time.Monday, art.Weekday())
	assert.Equal(t, models.At(9, 0), art.Start)
	assert.Equal(t, models.At(10, 30), art.End)
	assert.Equal(t, 1, art.Required)
}

func TestReadSessionsCSV_Arabic(t *testing.T) {
	in := "\ufeffالمعرف,المادة,المبنى,الفترة,اليوم,التاريخ,من,إلى,عدد_الملاحظين\n" +
		"S1,رياضيات,المبنى الرابع,مسائي,السبت,2025-01-04,01:00,03:00,2\n"

	sessions, err := ReadSessionsCSV(strings.NewReader(in), models.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "S1", sessions[0].ID)
	assert.Equal(t, "المبنى الرابع", sessions[0].Building)
	assert.Equal(t, models.Evening, sessions[0].Period)
	assert.Equal(t, models.At(13, 0), sessions[0].Start)
}

func TestReadSessionsCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing columns", "Subject,Day\nMath,Saturday\n", "missing required columns"},
		{"partial row", "Subject,Date,From,To\nMath,,10:00,12:00\n", "sessions row 2: required fields missing"},
		{"bad date", "Subject,Date,From,To\nMath,someday,10:00,12:00\n", "sessions row 2"},
		{"bad period", "Subject,Date,Period,From,To\nMath,2025-01-04,Noon,10:00,12:00\n", "unknown period"},
		{"bad count", "Subject,Date,From,To,Required\nMath,2025-01-04,10:00,12:00,two\n", "invalid required count"},
		{"no rows", "Subject,Date,From,To\n", ErrNoSessions.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSessionsCSV(strings.NewReader(tt.in), models.DefaultConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveTimes(t *testing.T) {
	tests := []struct {
		from, to   string
		period     models.Period
		start, end models.Clock
		resolved   models.Period
	}{
		{"10:00", "12:00", models.Morning, models.At(10, 0), models.At(12, 0), models.Morning},
		{"01:00", "03:00", models.Evening, models.At(13, 0), models.At(15, 0), models.Evening},
		{"12:00", "01:00", models.Morning, models.At(12, 0), models.At(13, 0), models.Evening},
		{"13:30", "15:00", "", models.At(13, 30), models.At(15, 0), models.Morning},
		{"2:00 PM", "4:00 PM", models.Morning, models.At(14, 0), models.At(16, 0), models.Morning},
	}
	for _, tt := range tests {
		t.Run(tt.from+"-"+tt.to, func(t *testing.T) {
			start, end, period, err := resolveTimes(tt.from, tt.to, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
			assert.Equal(t, tt.resolved, period)
		})
	}

	_, _, _, err := resolveTimes("15:00", "14:00", models.Morning)
	assert.ErrorIs(t, err, errEndBeforeStart)
	_, _, _, err = resolveTimes("25:00", "26:00", models.Morning)
	assert.Error(t, err)
}

func TestReadStaffCSV(t *testing.T) {
	in := strings.Join([]string{
		"Name,Available Days,Load%,Role,Excluded Subjects",
		`Amy,"Saturday, Sunday",50%,Invigilator,"Math, Art"`,
		"Bob,Mon;Tue,,Floor Supervisor,",
		"سالم,السبت، يوم الأحد,100,عامل,",
	}, "\n")

	staff, err := ReadStaffCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, staff, 3)

	assert.Equal(t, models.Weekdays{time.Saturday, time.Sunday}, staff[0].AvailableDays)
	assert.InDelta(t, 0.5, staff[0].LoadFraction(), 1e-9)
	assert.Equal(t, []string{"Math", "Art"}, staff[0].ExcludedSubjects)

	assert.Equal(t, models.FloorSupervisor, staff[1].Role)
	assert.Nil(t, staff[1].LoadPercentage)
	assert.Equal(t, models.Weekdays{time.Monday, time.Tuesday}, staff[1].AvailableDays)

	assert.Equal(t, models.Maintenance, staff[2].Role)
	assert.Equal(t, models.Weekdays{time.Saturday, time.Sunday}, staff[2].AvailableDays)
}

func TestReadStaffCSV_Errors(t *testing.T) {
	_, err := ReadStaffCSV(strings.NewReader("Name,Available Days\nAmy,Sat\nAmy,Sun\n"))
	assert.ErrorContains(t, err, "duplicate name")

	_, err = ReadStaffCSV(strings.NewReader("Name,Available Days\nAmy,\n"))
	assert.ErrorContains(t, err, "staff row 2: required fields missing")

	_, err = ReadStaffCSV(strings.NewReader("Name,Available Days\nAmy,Someday\n"))
	assert.ErrorContains(t, err, "unknown day")

	_, err = ReadStaffCSV(strings.NewReader("Name,Available Days\n"))
	assert.ErrorIs(t, err, ErrNoStaff)
}

func TestValidate(t *testing.T) {
	good := models.ScheduleInput{
		Sessions: []models.Session{{ID: "S1", Subject: "Math", Start: models.At(9, 0), End: models.At(10, 0)}},
		Staff:    []models.Staff{{Name: "Amy"}},
	}
	assert.Empty(t, Validate(good))

	bad := models.ScheduleInput{
		Sessions: []models.Session{
			{ID: "S1", Subject: "Math", Start: models.At(9, 0), End: models.At(10, 0)},
			{ID: "S1", Subject: "Art", Start: models.At(11, 0), End: models.At(10, 0)},
		},
		Staff: []models.Staff{{Name: "Amy"}, {Name: "Amy", LoadPercentage: models.Percent(150)}},
	}
	problems := Validate(bad)
	assert.Contains(t, problems, "duplicate session ID: S1")
	assert.Contains(t, problems, "duplicate staff name: Amy")
	joined := strings.Join(problems, "\n")
	assert.Contains(t, joined, "Sessions[1].End")
	assert.Contains(t, joined, "Staff[1].LoadPercentage")

	assert.Contains(t, Validate(models.ScheduleInput{Sessions: []models.Session{}, Staff: []models.Staff{}}), "at least one session is required")
}

func TestApplyDefaults(t *testing.T) {
	sessions := []models.Session{{Required: 0}, {Required: 4}, {Required: -1}}
	ApplyDefaults(sessions, models.DefaultConfig())
	assert.Equal(t, 2, sessions[0].Required)
	assert.Equal(t, 4, sessions[1].Required)
	assert.Equal(t, 2, sessions[2].Required)
}

func TestTemplatesRoundTripThroughReaders(t *testing.T) {
	var sessionsBuf, staffBuf bytes.Buffer
	require.NoError(t, WriteSessionsTemplate(&sessionsBuf, models.NewDate(2025, time.January, 1)))
	require.NoError(t, WriteStaffTemplate(&staffBuf))

	sessions, err := ReadSessionsCSV(&sessionsBuf, models.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, sessions, 4)
	assert.Equal(t, models.NewDate(2025, time.January, 4), sessions[0].Date)
	assert.Equal(t, models.At(13, 0), sessions[1].Start)

	staff, err := ReadStaffCSV(&staffBuf)
	require.NoError(t, err)
	require.Len(t, staff, 6)
	assert.Equal(t, models.FloorSupervisor, staff[4].Role)
	assert.Equal(t, models.Maintenance, staff[5].Role)
}
