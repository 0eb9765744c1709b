package models

import (
	"fmt"
	"strings"
)

// Role is the duty category of a staff member or a session
type Role int

const (
	Invigilator Role = iota
	FloorSupervisor
	Maintenance
)

// Roles lists every role in declaration order
var Roles = []Role{Invigilator, FloorSupervisor, Maintenance}

func (r Role) String() string {
	switch r {
	case FloorSupervisor:
		return "FloorSupervisor"
	case Maintenance:
		return "Maintenance"
	default:
		return "Invigilator"
	}
}

// ParseRole maps a free-text label to a Role. It never fails: labels that
// match nothing are treated as Invigilator.
func ParseRole(label string) Role {
	v := strings.ToLower(strings.TrimSpace(label))
	switch {
	case v == "":
		return Invigilator
	case strings.Contains(v, "مشرف") && strings.Contains(v, "دور"):
		return FloorSupervisor
	case strings.Contains(v, "ملاحظ"):
		return Invigilator
	case strings.Contains(v, "عامل"):
		return Maintenance
	case strings.Contains(v, "floor"):
		return FloorSupervisor
	case strings.Contains(v, "invigil"):
		return Invigilator
	case strings.Contains(v, "maintenance"):
		return Maintenance
	}
	return Invigilator
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// Period is the half of the exam day a session belongs to
type Period string

const (
	Morning Period = "Morning"
	Evening Period = "Evening"
)

// ParsePeriod accepts English and Arabic period labels. Blank input yields
// the empty Period.
func ParsePeriod(label string) (Period, error) {
	v := strings.ToLower(strings.TrimSpace(label))
	switch {
	case v == "":
		return "", nil
	case strings.HasPrefix(v, "morn"), v == "am", strings.Contains(v, "صباح"):
		return Morning, nil
	case strings.HasPrefix(v, "even"), v == "pm", strings.Contains(v, "مساء"), strings.Contains(v, "مسائ"):
		return Evening, nil
	}
	return "", fmt.Errorf("unknown period: %q", label)
}

// Rank orders periods with Morning first
func (p Period) Rank() int {
	if p == Evening {
		return 1
	}
	return 0
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SchedulingMode controls whether back-to-back bookings are preferred
type SchedulingMode string

const (
	ModeConsecutive SchedulingMode = "Consecutive"
	ModeBreak       SchedulingMode = "Break"
	ModeMixed       SchedulingMode = "Mixed"
)

// ParseSchedulingMode is lenient: unknown labels fall back to Mixed
func ParseSchedulingMode(label string) SchedulingMode {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "consecutive":
		return ModeConsecutive
	case "break":
		return ModeBreak
	}
	return ModeMixed
}

func (m *SchedulingMode) UnmarshalText(text []byte) error {
	*m = ParseSchedulingMode(string(text))
	return nil
}
