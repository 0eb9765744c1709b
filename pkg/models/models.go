package models

import (
	"strings"
	"time"
)

// Synthetic session ID prefixes.
const (
	FloorPrefix       = "F-"
	MaintenancePrefix = "M-"
)

// Session represents an exam sitting or a derived duty slot that needs staff
type Session struct {
	ID       string       `json:"id" binding:"required"`
	Subject  string       `json:"subject" binding:"required"`
	Date     Date         `json:"date"`
	Day      time.Weekday `json:"-"`
	Start    Clock        `json:"start"`
	End      Clock        `json:"end" binding:"gtfield=Start"`
	Required int          `json:"required"`
	Building string       `json:"building,omitempty"`
	Period   Period       `json:"period,omitempty"`
	Role     Role         `json:"role"`
}

// Weekday returns the weekday of the session date, or Day for undated sessions
func (s Session) Weekday() time.Weekday {
	if s.Date.IsZero() {
		return s.Day
	}
	return s.Date.Weekday()
}

// DurationHours returns End - Start in hours
func (s Session) DurationHours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// RequiredCount clamps the required staff count to at least one
func (s Session) RequiredCount() int {
	if s.Required < 1 {
		return 1
	}
	return s.Required
}

// IsFloor reports whether the session is a derived floor supervision slot
func (s Session) IsFloor() bool {
	return s.Role == FloorSupervisor && strings.HasPrefix(s.ID, FloorPrefix)
}

// IsSynthetic reports whether the session was derived by the scheduler rather
// than supplied as an exam
func (s Session) IsSynthetic() bool {
	return s.IsFloor() || (s.Role == Maintenance && strings.HasPrefix(s.ID, MaintenancePrefix))
}

// Staff represents a person who can be assigned to sessions
type Staff struct {
	Name             string   `json:"name" binding:"required"`
	AvailableDays    Weekdays `json:"available_days"`
	Role             Role     `json:"role"`
	LoadPercentage   *float64 `json:"load_percentage,omitempty" binding:"omitempty,gte=0,lte=100"`
	ExcludedSubjects []string `json:"excluded_subjects,omitempty"`
}

// LoadFraction returns the load percentage as a fraction, defaulting to 1
func (s Staff) LoadFraction() float64 {
	if s.LoadPercentage == nil {
		return 1.0
	}
	return *s.LoadPercentage / 100.0
}

// Load returns the configured load percentage, defaulting to 100
func (s Staff) Load() float64 {
	return s.LoadFraction() * 100.0
}

// Excludes reports whether the staff member must never cover subject
func (s Staff) Excludes(subject string) bool {
	for _, ex := range s.ExcludedSubjects {
		if ex == subject {
			return true
		}
	}
	return false
}

// Percent is a helper for building Staff literals
func Percent(v float64) *float64 {
	return &v
}

// Config holds the scheduling knobs handed to the core
type Config struct {
	Mode                   SchedulingMode `json:"mode,omitempty"`
	DefaultStaffPerSession int            `json:"default_staff_per_session,omitempty"`
	RestDays               Weekdays       `json:"rest_days,omitempty"`
}

// DefaultConfig returns the defaults used when the caller supplies nothing
func DefaultConfig() Config {
	return Config{
		Mode:                   ModeMixed,
		DefaultStaffPerSession: 2,
		RestDays:               Weekdays{time.Friday},
	}
}

// AssignmentStatus describes how completely a session was staffed
type AssignmentStatus string

const (
	StatusAssigned          AssignmentStatus = "Assigned"
	StatusPartiallyAssigned AssignmentStatus = "PartiallyAssigned"
	StatusUnassigned        AssignmentStatus = "Unassigned"
)

// SessionAssignment is the primary staffing outcome for one session
type SessionAssignment struct {
	Session  Session          `json:"session"`
	Assigned []string         `json:"assigned"`
	Status   AssignmentStatus `json:"status"`
	Reason   string           `json:"reason,omitempty"`
}

// BackupAssignment holds one standby staff member for a session
type BackupAssignment struct {
	Date      Date   `json:"date"`
	Period    Period `json:"period,omitempty"`
	Role      Role   `json:"role"`
	Staff     string `json:"staff"`
	Building  string `json:"building,omitempty"`
	SessionID string `json:"session_id"`
	Subject   string `json:"subject"`
}

// StaffTotals is the final workload snapshot for one staff member
type StaffTotals struct {
	Staff          string             `json:"staff"`
	Role           Role               `json:"role"`
	LoadPercentage float64            `json:"load_percentage"`
	PrimaryHours   float64            `json:"primary_hours"`
	BackupHours    float64            `json:"backup_hours"`
	TotalHours     float64            `json:"total_hours"`
	ExpectedHours  float64            `json:"expected_hours"`
	Deviation      float64            `json:"deviation"`
	PerDayHours    map[string]float64 `json:"per_day_hours"`
	SessionCount   int                `json:"session_count"`
}

// AssignmentResult is everything the core hands back to its callers
type AssignmentResult struct {
	Sessions           []SessionAssignment `json:"sessions"`
	Backups            []BackupAssignment  `json:"backups"`
	Totals             []StaffTotals       `json:"totals"`
	TargetHoursPerUnit float64             `json:"target_hours_per_unit"`
	TotalHoursNeeded   float64             `json:"total_hours_needed"`
	FairnessScore      float64             `json:"fairness_score"`
	Warnings           []string            `json:"warnings,omitempty"`
}

// StatusCounts tallies sessions by status
type StatusCounts struct {
	Assigned          int `json:"assigned"`
	PartiallyAssigned int `json:"partially_assigned"`
	Unassigned        int `json:"unassigned"`
}

// Counts returns the number of sessions in each status
func (r *AssignmentResult) Counts() StatusCounts {
	var c StatusCounts
	for _, sa := range r.Sessions {
		switch sa.Status {
		case StatusAssigned:
			c.Assigned++
		case StatusPartiallyAssigned:
			c.PartiallyAssigned++
		case StatusUnassigned:
			c.Unassigned++
		}
	}
	return c
}

// ScheduleInput is the data structure for the scheduling endpoint
type ScheduleInput struct {
	Sessions []Session `json:"sessions" binding:"required,dive"`
	Staff    []Staff   `json:"staff" binding:"required,dive"`
	Config   *Config   `json:"config,omitempty"`
}
