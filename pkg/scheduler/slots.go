package scheduler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// Maintenance duty covers the whole working day.
var (
	MaintenanceStart = models.At(8, 0)
	MaintenanceEnd   = models.At(16, 0)
)

// WholeCampus is the building label of maintenance slots
const WholeCampus = "Whole campus"

type floorKey struct {
	date     models.Date
	period   models.Period
	building string
}

func (k floorKey) less(o floorKey) bool {
	if !k.date.Equal(o.date.Time) {
		return k.date.Before(o.date.Time)
	}
	if k.period.Rank() != o.period.Rank() {
		return k.period.Rank() < o.period.Rank()
	}
	return k.building < o.building
}

// FloorSlots derives one floor supervision slot per (date, period, building)
// spanning the earliest start to the latest end of the group. Sessions without
// a date, period or building are left out. Groups are numbered in sorted key
// order.
func FloorSlots(sessions []models.Session) []models.Session {
	groups := make(map[floorKey][]models.Session)
	var keys []floorKey
	for _, s := range sessions {
		building := strings.TrimSpace(s.Building)
		if s.Date.IsZero() || s.Period == "" || building == "" {
			continue
		}
		k := floorKey{date: s.Date, period: s.Period, building: building}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], s)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	slots := make([]models.Session, 0, len(keys))
	for i, k := range keys {
		list := groups[k]
		start, end := list[0].Start, list[0].End
		for _, s := range list[1:] {
			if s.Start < start {
				start = s.Start
			}
			if s.End > end {
				end = s.End
			}
		}
		slots = append(slots, models.Session{
			ID:       fmt.Sprintf("%s%d", models.FloorPrefix, i+1),
			Subject:  "Floor supervision - " + k.building,
			Date:     k.date,
			Day:      k.date.Weekday(),
			Start:    start,
			End:      end,
			Required: 1,
			Building: k.building,
			Period:   k.period,
			Role:     models.FloorSupervisor,
		})
	}
	return slots
}

// MaintenanceSlots derives one campus-wide maintenance slot per working date.
// Nothing is generated when no maintenance staff exist.
func MaintenanceSlots(sessions []models.Session, staff []models.Staff, restDays models.Weekdays) []models.Session {
	hasMaintenance := false
	for _, st := range staff {
		if st.Role == models.Maintenance {
			hasMaintenance = true
			break
		}
	}
	if !hasMaintenance {
		return nil
	}

	seen := make(map[models.Date]bool)
	var dates []models.Date
	for _, s := range sessions {
		if s.Date.IsZero() || restDays.Contains(s.Date.Weekday()) || seen[s.Date] {
			continue
		}
		seen[s.Date] = true
		dates = append(dates, s.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })

	slots := make([]models.Session, 0, len(dates))
	for i, d := range dates {
		slots = append(slots, models.Session{
			ID:       fmt.Sprintf("%s%d", models.MaintenancePrefix, i+1),
			Subject:  "Campus maintenance - " + d.String(),
			Date:     d,
			Day:      d.Weekday(),
			Start:    MaintenanceStart,
			End:      MaintenanceEnd,
			Required: 1,
			Building: WholeCampus,
			Period:   models.Morning,
			Role:     models.Maintenance,
		})
	}
	return slots
}
