package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// nextWeekday returns the first date on or after from falling on day
func nextWeekday(from models.Date, day time.Weekday) models.Date {
	offset := (int(day) - int(from.Weekday()) + 7) % 7
	return from.AddDays(offset)
}

// WriteSessionsTemplate writes an example sessions sheet dated from the week
// starting at from
func WriteSessionsTemplate(w io.Writer, from models.Date) error {
	sat := nextWeekday(from, time.Saturday)
	sun := nextWeekday(from, time.Sunday)
	mon := nextWeekday(from, time.Monday)
	rows := [][]string{
		{"ID", "Subject", "Building", "Period", "Day", "Date", "From", "To", "Supervisors Required", "Role Type"},
		{"S1", "General Mathematics 101", "Building 4 - Floor 2", "Morning", "Saturday", sat.String(), "10:00", "12:00", "2", "Invigilator"},
		{"S2", "General Chemistry 101", "Building 5 - Floor 3", "Evening", "Saturday", sat.String(), "01:00", "03:00", "2", "Invigilator"},
		{"S3", "Arabic Language 101", "Building 4 - Floor 2", "Morning", "Sunday", sun.String(), "10:00", "12:00", "2", "Invigilator"},
		{"S4", "Software Engineering", "New Building - Floor 1", "Evening", "Monday", mon.String(), "01:00", "03:00", "2", "Invigilator"},
	}
	return writeAll(w, rows)
}

// WriteStaffTemplate writes an example staff sheet
func WriteStaffTemplate(w io.Writer) error {
	weekdays := "Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday"
	rows := [][]string{
		{"Name", "Available Days", "Load%", "Role", "Excluded Subjects"},
		{"Ahmed Ali", weekdays, "100", "Invigilator", ""},
		{"Mohammed Hassan", weekdays, "100", "Invigilator", ""},
		{"Khalid Youssef", weekdays, "100", "Invigilator", "Arabic Language 101"},
		{"Salman Alotaibi", weekdays, "50", "Invigilator", ""},
		{"Hussein Salem", weekdays, "100", "Floor Supervisor", ""},
		{"Omar Nasser", weekdays, "100", "Maintenance", ""},
	}
	return writeAll(w, rows)
}

func writeAll(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
