package scheduler

import (
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// Targets holds the workload demand per role and the resulting expected hours
// per load unit. Targets are advisory: they order candidates, they never cap.
type Targets struct {
	InvigilatorHours float64
	FloorHours       float64
	MaintenanceHours float64
	TotalHoursNeeded float64
	LoadUnits        map[models.Role]float64
	PerUnit          map[models.Role]float64
}

// ComputeTargets divides each role's demand, doubled for backups, by that
// role's load units
func ComputeTargets(exams, floor, maintenance []models.Session, staff []models.Staff) Targets {
	t := Targets{
		LoadUnits: make(map[models.Role]float64),
		PerUnit:   make(map[models.Role]float64),
	}
	// every real session counts as invigilation demand, whatever its role;
	// floor and maintenance demand comes from the synthetic slots only
	for _, s := range exams {
		t.InvigilatorHours += s.DurationHours() * float64(s.RequiredCount())
	}
	for _, s := range floor {
		t.FloorHours += s.DurationHours()
	}
	for _, s := range maintenance {
		t.MaintenanceHours += s.DurationHours()
	}
	t.TotalHoursNeeded = t.InvigilatorHours + t.FloorHours + t.MaintenanceHours

	for _, st := range staff {
		t.LoadUnits[st.Role] += st.LoadFraction()
	}

	demand := map[models.Role]float64{
		models.Invigilator:     t.InvigilatorHours * 2,
		models.FloorSupervisor: t.FloorHours * 2,
		models.Maintenance:     t.MaintenanceHours * 2,
	}
	for role, hours := range demand {
		if units := t.LoadUnits[role]; units != 0 {
			t.PerUnit[role] = hours / units
		}
	}
	return t
}

// Expected returns the hours target for one staff member
func (t Targets) Expected(st models.Staff) float64 {
	return t.PerUnit[st.Role] * st.LoadFraction()
}

// TargetPerUnit is the reported global target, the invigilator rate
func (t Targets) TargetPerUnit() float64 {
	return t.PerUnit[models.Invigilator]
}
