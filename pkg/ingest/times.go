package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

var errEndBeforeStart = errors.New("end time must be after start time")

// parseTime reads a time of day. Explicit AM/PM wins; bare hours 13-23 and 0
// are taken as 24-hour; anything else is a 12-hour clock read in period.
func parseTime(s string, period models.Period) (models.Clock, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if strings.Contains(v, "AM") || strings.Contains(v, "PM") {
		return models.ParseClock(v)
	}

	parts := strings.Split(v, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day: %q", s)
	}
	minute := 0
	if len(parts) > 1 {
		if minute, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil || minute < 0 || minute > 59 {
			return 0, fmt.Errorf("invalid time of day: %q", s)
		}
	}

	switch {
	case hour == 0 || (hour >= 13 && hour <= 23):
		return models.At(hour, minute), nil
	case hour < 1 || hour > 23:
		return 0, fmt.Errorf("invalid time of day: %q", s)
	case period == models.Evening && hour != 12:
		hour += 12
	}
	return models.At(hour, minute), nil
}

func opposite(p models.Period) models.Period {
	if p == models.Evening {
		return models.Morning
	}
	return models.Evening
}

// resolveTimes parses a start/end pair. When the pair is not increasing under
// the given period the opposite period is tried, then a literal 24-hour
// reading. The returned period is the one that produced a valid range.
func resolveTimes(from, to string, period models.Period) (models.Clock, models.Clock, models.Period, error) {
	if period == "" {
		period = models.Morning
	}
	start, err := parseTime(from, period)
	if err != nil {
		return 0, 0, "", err
	}
	end, err := parseTime(to, period)
	if err != nil {
		return 0, 0, "", err
	}
	if end > start {
		return start, end, period, nil
	}

	alt := opposite(period)
	if s, err := parseTime(from, alt); err == nil {
		if e, err := parseTime(to, alt); err == nil && e > s {
			return s, e, alt, nil
		}
	}

	s, errS := models.ParseClock(from)
	e, errE := models.ParseClock(to)
	if errS == nil && errE == nil && e > s {
		p := models.Morning
		if s.Hour() >= 12 {
			p = models.Evening
		}
		return s, e, p, nil
	}
	return 0, 0, "", errEndBeforeStart
}
